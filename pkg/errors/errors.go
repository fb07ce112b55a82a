package errors

import "errors"

// Error categories. Module errors wrap one of these so the HTTP layer can
// fall back to a category when it has no mapping for the specific error.
var (
	// ErrValidation malformed or missing input (4xx)
	ErrValidation = errors.New("validation failed")
	// ErrNotFound referenced entity absent or outside the caller's department (4xx)
	ErrNotFound = errors.New("not found")
	// ErrForbidden caller's role may not perform the operation
	ErrForbidden = errors.New("forbidden")
	// ErrStorage persistence failure; details are logged, never returned (5xx)
	ErrStorage = errors.New("storage failure")
)

// Storage wraps a persistence error into the storage category.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrStorage, err)
}
