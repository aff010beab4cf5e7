package world

type Radiation struct {
	KdownDirect  float64
	KdownDiffuse float64
	PARDirect    float64
	PARDiffuse   float64
}

func (r Radiation) Scale(f float64) Radiation {
	return Radiation{r.KdownDirect * f, r.KdownDiffuse * f, r.PARDirect * f, r.PARDiffuse * f}
}

func (r Radiation) Add(o Radiation) Radiation {
	return Radiation{
		r.KdownDirect + o.KdownDirect,
		r.KdownDiffuse + o.KdownDiffuse,
		r.PARDirect + o.PARDirect,
		r.PARDiffuse + o.PARDiffuse,
	}
}

func (r Radiation) Kdown() float64 { return r.KdownDirect + r.KdownDiffuse }

// Cascade is the set of quantities carried down through the canopy layers.
type Cascade struct {
	Radiation
	Rain float64
	Snow float64
	Ga   float64
	Wind float64
}

func (c Cascade) Scale(f float64) Cascade {
	return Cascade{c.Radiation.Scale(f), c.Rain * f, c.Snow * f, c.Ga * f, c.Wind * f}
}

func (c Cascade) Add(o Cascade) Cascade {
	return Cascade{c.Radiation.Add(o.Radiation), c.Rain + o.Rain, c.Snow + o.Snow, c.Ga + o.Ga, c.Wind + o.Wind}
}
