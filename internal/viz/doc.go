// Package viz renders run progress and daily series in the terminal.
//
//   - [LiveModel]: Bubble Tea view of a running simulation, fed by a [Feed]
//   - [Picker]: preset menu shown by the live command
//   - [Canvas]: braille canvas used for the soil column diagram
//   - [Plot]: asciigraph line plot of a stored series
//
// # Key Bindings
//
//	Tab   - Next patch
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Stop the run and quit
package viz
