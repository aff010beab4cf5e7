// Package hydraulics provides stateless soil-water point functions for a
// soil column whose porosity decays exponentially with depth,
//
//	n(z) = n0 * exp(-z/m)
//
// Depths are positive downward in m, water volumes in m of water, fluxes
// in m/day. A decay of zero or at least ConstantPorosityDecay selects a
// uniform profile.
//
// # Example
//
//	soil := hydraulics.ForSoil(&defaults)
//	z := soil.WaterTableDepth(patch.SatDeficit)
//	fc := soil.LayerFieldCapacity(z, patch.Rootzone.Depth, 0)
package hydraulics
