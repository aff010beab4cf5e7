// Package patch advances one patch of the world by one day.
//
// The Integrator runs a fixed sequence over the patch: forcing and dated
// inputs, the canopy cascade in three height passes around the snowpack,
// snowpack update, surface detention and infiltration, transpiration demand
// arbitration, end-of-day drainage, biogeochemistry and the water, carbon
// and nitrogen closure residuals. Biophysics outside that sequence is
// delegated to the collaborators in Processes.
//
// # Example
//
//	integ, err := patch.New(process.Defaults(), patch.Flags{Grow: true})
//	if err != nil {
//		return err
//	}
//	diag, err := integ.Step(w, id, date)
//	if err != nil {
//		return err // fatal, abort the run
//	}
//	for _, warn := range diag.Warnings {
//		log.Println(warn.Stage, warn.Message)
//	}
//
// # Thread Safety
//
// Step mutates the patch, its strata and its hillslope. Patches of one
// hillslope must be stepped sequentially; different hillslopes may run
// concurrently on one Integrator.
package patch
