package world

import "fmt"

type VegType int

const (
	Tree VegType = iota
	Grass
	NonVeg
)

func (v VegType) String() string {
	switch v {
	case Tree:
		return "tree"
	case Grass:
		return "grass"
	case NonVeg:
		return "non_veg"
	default:
		return "unknown"
	}
}

func (v VegType) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *VegType) UnmarshalText(b []byte) error {
	for _, t := range []VegType{Tree, Grass, NonVeg} {
		if t.String() == string(b) {
			*v = t
			return nil
		}
	}
	return fmt.Errorf("world: unknown vegetation type %q", b)
}

type StratumCarbon struct {
	Cpool         float64
	Availc        float64
	Leafc         float64
	LeafcStore    float64
	LeafcTransfer float64
	Frootc        float64
	Stemc         float64
	NetPsn        float64
}

func (c StratumCarbon) Total() float64 {
	return c.Cpool + c.Leafc + c.LeafcStore + c.LeafcTransfer + c.Frootc + c.Stemc
}

type StratumNitrogen struct {
	Npool         float64
	Leafn         float64
	LeafnStore    float64
	LeafnTransfer float64
	Frootn        float64
	Stemn         float64
}

func (n StratumNitrogen) Total() float64 {
	return n.Npool + n.Leafn + n.LeafnStore + n.LeafnTransfer + n.Frootn + n.Stemn
}

type StratumCarbonFlux struct {
	PsnToCpool                float64
	TotalMR                   float64
	LeafcStoreToLeafcTransfer float64
	Litterfall                float64
}

type StratumNitrogenFlux struct {
	PotentialNUptake          float64
	ActualNUptake             float64
	LeafnStoreToLeafnTransfer float64
}

type Conductance struct {
	LWP float64
}

type Phenology struct {
	AnnualAllocation bool
}

type Stratum struct {
	ID            StratumID
	Patch         PatchID
	Veg           VegID
	CoverFraction float64
	LAI           float64
	RootDepth     float64

	Evaporation        float64
	Sublimation        float64
	TranspirationUnsat float64
	TranspirationSat   float64
	PET                float64
	RainStored         float64
	SnowStored         float64
	AbsorbedKdown      float64
	AbsorbedPAR        float64

	GsSunlit        float64
	GsShade         float64
	MultConductance Conductance

	CS   StratumCarbon
	NS   StratumNitrogen
	CDF  StratumCarbonFlux
	NDF  StratumNitrogenFlux
	Phen Phenology

	AccYearPsn float64
}
