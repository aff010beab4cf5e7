package process

import "github.com/san-kum/ecopatch/internal/world"

// ZeroStores flushes negative soil and litter pools to zero.
type ZeroStores struct{}

func (ZeroStores) Clamp(p *world.Patch) {
	for _, v := range []*float64{
		&p.SoilC.Soil1c, &p.SoilC.Soil2c, &p.SoilC.Soil3c, &p.SoilC.Soil4c, &p.SoilC.DOC,
		&p.SoilN.Soil1n, &p.SoilN.Soil2n, &p.SoilN.Soil3n, &p.SoilN.Soil4n,
		&p.SoilN.Sminn, &p.SoilN.Nitrate, &p.SoilN.DON,
		&p.LitterC.Litr1c, &p.LitterC.Litr2c, &p.LitterC.Litr3c, &p.LitterC.Litr4c,
		&p.LitterN.Litr1n, &p.LitterN.Litr2n, &p.LitterN.Litr3n, &p.LitterN.Litr4n,
	} {
		if *v < 0 {
			*v = 0
		}
	}
}
