package certificates

import (
	"errors"
	"fmt"
	"strings"

	"wastecert-backend/internal/application/consolidation"
	"wastecert-backend/internal/application/eligibility"

	"github.com/google/uuid"
)

var (
	ErrCodeGeneration      = errors.New("Could not generate a unique certificate code")
	ErrCertificateNotFound = errors.New("Certificate not found")
)

// Re-exported so handlers can match every issuance error from one package.
var (
	ErrEmptySelection         = consolidation.ErrEmptySelection
	ErrHeterogeneousSelection = consolidation.ErrHeterogeneousSelection
	ErrUnknownCollection      = consolidation.ErrUnknownCollection
	ErrStaleSelection         = eligibility.ErrStaleSelection
	ErrOutOfScope             = eligibility.ErrOutOfScope
)

// PersistenceError wraps a store failure. It is transient: the caller may retry the
// whole operation. Nothing retries it automatically.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Transient() bool { return true }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IssuanceIntegrityError means an issuance failed after the certificate row was written and
// the compensating cleanup failed too. The store may hold a partial certificate that needs
// manual reconciliation; the fields say where to look.
type IssuanceIntegrityError struct {
	CertificateID   uuid.UUID
	Code            string
	Step            string
	Cause           error
	CompensationErr error
}

func (e *IssuanceIntegrityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "issuance of certificate %s (%s) failed at %s: %v", e.CertificateID, e.Code, e.Step, e.Cause)
	fmt.Fprintf(&b, "; compensation failed: %v", e.CompensationErr)
	return b.String()
}

func (e *IssuanceIntegrityError) Unwrap() []error {
	return []error{e.Cause, e.CompensationErr}
}

// IsValidation reports errors fixed by changing the selection.
func IsValidation(err error) bool {
	return consolidation.IsValidation(err)
}

// IsConflict reports errors fixed by refreshing the selection and retrying.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStaleSelection)
}

// IsIntegrity reports errors that need manual reconciliation.
func IsIntegrity(err error) bool {
	var ie *IssuanceIntegrityError
	return errors.As(err, &ie)
}
