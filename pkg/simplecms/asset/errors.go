package asset

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperation indicates that neither an entity nor its asset
	// handle defines the requested operation.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidArgument indicates an operation received an argument of the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingURL indicates an operation needs a URL the handle does not have.
	ErrMissingURL = errors.New("asset has no url")
)

// UnknownOperationError carries the name of the operation that could not be resolved.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("the method: %q does not exist", e.Name)
}

func (e *UnknownOperationError) Unwrap() error {
	return ErrUnknownOperation
}
