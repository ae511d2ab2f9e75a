// Package analysis provides statistical tools for Brownian trajectories.
//
//   - [Equipartition]: per-axis momentum variance against the bath temperature
//   - [Autocorrelation]: normalized momentum autocorrelation function
//   - [MeanSquaredDisplacement]: MSD from minimum-image unwrapped positions
//   - [DiffusionCoefficient]: slope of the MSD over 6t
//   - [PowerSpectrum]: one-sided spectrum of a momentum series
//   - [GeneratePhasePortrait]: position against momentum for one coordinate
//
// # Thermal Checks
//
// A thermostatted run should satisfy <p_k²> ≈ T on every axis:
//
//	rep := analysis.Equipartition(traj, params.Temperature, burnIn)
//	if rep.MaxRelError > 0.1 {
//	    // not yet equilibrated, or dt too large
//	}
package analysis
