package icnn

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrConfiguration reports an invalid model or training configuration.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrShapeMismatch reports an input whose rank or width does not match
	// the model.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInfeasible reports a constrained weight with a negative entry.
	ErrInfeasible = errors.New("constrained weight is negative")
)

// ConfigError describes an invalid configuration value.
type ConfigError struct {
	Field  string // Offending field (e.g., "HiddenDim")
	Value  any    // Offending value
	Reason string // Why it is invalid
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", ErrConfiguration, e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// ShapeError describes an input tensor with the wrong shape.
type ShapeError struct {
	Op   string // Operation that rejected the input (e.g., "FICNN.Forward")
	Want []int  // Expected shape; -1 marks a free dimension
	Got  []int  // Actual shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %v: want %v, got %v", e.Op, ErrShapeMismatch, e.Want, e.Got)
}

// Unwrap returns ErrShapeMismatch.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func positive(field string, v int) error {
	if v <= 0 {
		return &ConfigError{Field: field, Value: v, Reason: "must be > 0"}
	}
	return nil
}

// checkBatch validates a [batch, width] input.
func checkBatch(op string, shape []int, width int) error {
	if len(shape) != 2 || shape[1] != width || shape[0] <= 0 {
		return &ShapeError{Op: op, Want: []int{-1, width}, Got: append([]int(nil), shape...)}
	}
	return nil
}

// FeasibilityError locates the first negative entry of a constrained weight.
type FeasibilityError struct {
	Model  int     // Index of the model in the Feasible call
	Weight int     // Index into the model's ConstrainedWeights
	Index  int     // Flat element index
	Value  float64 // Offending value
}

// Error implements the error interface.
func (e *FeasibilityError) Error() string {
	return fmt.Sprintf("%v: model %d weight %d element %d = %g", ErrInfeasible, e.Model, e.Weight, e.Index, e.Value)
}

// Unwrap returns ErrInfeasible.
func (e *FeasibilityError) Unwrap() error {
	return ErrInfeasible
}
