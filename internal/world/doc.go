// Package world holds the simulation arena: basins, hillslopes, zones,
// patches and canopy strata stored in flat slices and addressed by stable
// integer ids. Each level keeps id lists into the level below; nothing holds
// a back-pointer.
//
// The arena is built once at load time. Slices are never appended after
// that, so pointers returned by the accessors stay valid for the run.
//
// # Thread Safety
//
// A World is not safe for concurrent mutation. Patches of different
// hillslopes may be stepped concurrently because a patch-day writes only to
// its own patch, its own strata and its own hillslope's groundwater store.
package world
