package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a simulation parameter outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid simulation parameter")

	// ErrDimensionMismatch indicates a state whose particle count disagrees with the parameters.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and parameters")

	// ErrNoRandomSource indicates the noise term is enabled but no random source was supplied.
	ErrNoRandomSource = errors.New("dynamo: noise enabled without a random source")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// ParamError reports which parameter failed validation.
type ParamError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidParameter, e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

// DimensionError wraps ErrDimensionMismatch with the lengths involved.
type DimensionError struct {
	Field string
	Got   int
	Want  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s has %d particles, want %d", ErrDimensionMismatch, e.Field, e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}
