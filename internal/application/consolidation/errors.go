package consolidation

import "errors"

// Validation errors. All are raised before anything is written.
var (
	ErrEmptySelection         = errors.New("Select at least one collection")
	ErrHeterogeneousSelection = errors.New("Selected collections belong to more than one generating entity")
	ErrUnknownCollection      = errors.New("One or more selected collections do not exist")
)

// IsValidation reports whether err means the caller must change the selection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrHeterogeneousSelection) ||
		errors.Is(err, ErrUnknownCollection)
}
