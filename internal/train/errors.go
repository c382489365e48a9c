package train

import (
	"errors"
	"fmt"
)

// ErrNumericInstability reports a loss or gradient that is NaN or infinite.
var ErrNumericInstability = errors.New("numeric instability")

// NumericError locates the first non-finite value seen by the loop.
type NumericError struct {
	Epoch int     // Zero-based epoch
	Batch int     // Zero-based batch index within the epoch
	Value float64 // Offending value
	What  string  // "loss" or the name of the parameter whose gradient failed
}

// Error implements the error interface.
func (e *NumericError) Error() string {
	return fmt.Sprintf("%v: epoch %d batch %d: %s = %g", ErrNumericInstability, e.Epoch, e.Batch, e.What, e.Value)
}

// Unwrap returns ErrNumericInstability.
func (e *NumericError) Unwrap() error {
	return ErrNumericInstability
}
