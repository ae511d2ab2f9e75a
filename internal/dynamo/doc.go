// Package dynamo provides the core data model for Brownian dynamics runs.
//
// The package defines the types shared by the integrator, the trajectory
// driver and every downstream consumer:
//
//   - [Vec3]: a three-component real vector
//   - [ParticleState]: positions and momenta of N particles
//   - [Params]: immutable simulation parameters
//   - [Trajectory]: one snapshot per completed step
//   - [WrapConvention]: how positions fold back into the periodic box
//
// # Example
//
//	params := dynamo.DefaultParams()
//	x0 := dynamo.UniformState(params.Particles, 0, 0)
//	if err := params.Validate(); err != nil {
//	    return err
//	}
//
// # Periodic Domain
//
// The canonical convention is [WrapModulo], which keeps every position
// component in [0, box). [WrapNearest] keeps components in [-box/2, box/2).
package dynamo
