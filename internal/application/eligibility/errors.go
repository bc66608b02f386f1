package eligibility

import "errors"

var (
	// ErrStaleSelection means a selected collection was bound, released or deactivated
	// since the caller last listed it. The caller must refresh and choose again.
	ErrStaleSelection = errors.New("Selection is out of date: one or more collections are no longer eligible")
	ErrOutOfScope     = errors.New("Collections belong to an entity outside your access")
)
