// Package viz provides terminal visualization for Brownian dynamics runs.
//
// The live view is a Bubble Tea program that steps the splitting integrator
// every frame and draws the periodic box, particle positions and short
// trails through a rotatable 3D [Camera] onto a Braille [Canvas]:
//
//   - [Model]: live simulation with replay, parameter tuning and recording
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Camera]: rotation, zoom and perspective projection
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	N     - Toggle thermostat noise
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Replay recent history
//
// # Recording
//
// G starts and stops a recording. Frames are written to
// live_G{gamma}_T{T}_N{n}.gif in the current directory.
package viz
