package profcheck

import (
	"fmt"

	"hostfold/internal/diag"
	"hostfold/internal/kind"
)

// ErrorKind enumerates the problems a profile check finds.
type ErrorKind uint8

const (
	// ErrInvalidProfile indicates facts that cannot describe a real host.
	ErrInvalidProfile ErrorKind = iota + 1
	ErrInconsistent
	ErrComplexWithoutReal
	ErrNoIEEE
	ErrSnapshotMismatch
	ErrSelfTest
)

// Error is one problem found in a profile.
type Error struct {
	Kind    ErrorKind
	Profile string
	Subject kind.SourceKind // zero when the problem is not about one kind
	Detail  string
	Err     error // for ErrInvalidProfile
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrInvalidProfile:
		return fmt.Sprintf("profile %q is invalid: %v", e.Profile, e.Err)
	case ErrInconsistent:
		return fmt.Sprintf("profile %q: %s maps to a representation that does not map back (%s)", e.Profile, e.Subject, e.Detail)
	case ErrComplexWithoutReal:
		return fmt.Sprintf("profile %q: %s is supported without its REAL counterpart", e.Profile, e.Subject)
	case ErrNoIEEE:
		return fmt.Sprintf("profile %q has no IEEE-754 floating-point type", e.Profile)
	case ErrSnapshotMismatch:
		return fmt.Sprintf("profile %q: cached table differs from the decided one (%s)", e.Profile, e.Detail)
	case ErrSelfTest:
		return fmt.Sprintf("profile %q: %s", e.Profile, e.Detail)
	default:
		return fmt.Sprintf("profile check error kind=%d profile %q", e.Kind, e.Profile)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Severity is the diagnostic severity the problem is reported with. A host
// without IEEE types is usable for integer folding, so it only warns.
func (e *Error) Severity() diag.Severity {
	if e.Kind == ErrNoIEEE {
		return diag.SevWarning
	}
	return diag.SevError
}

// Code is the diagnostic code the problem is reported with.
func (e *Error) Code() diag.Code {
	switch e.Kind {
	case ErrInvalidProfile:
		return diag.ProfileInvalid
	case ErrInconsistent, ErrComplexWithoutReal:
		return diag.ProfileTables
	case ErrNoIEEE:
		return diag.ProfileNoIEEE
	case ErrSnapshotMismatch:
		return diag.ProfileMismatch
	case ErrSelfTest:
		return diag.ProfileSelfTest
	}
	return diag.UnknownCode
}
