package fold

import (
	"errors"
	"fmt"

	"hostfold/internal/diag"
	"hostfold/internal/fpenv"
	"hostfold/internal/kind"
	"hostfold/internal/scalar"
)

var flagCodes = []struct {
	flag fpenv.Flags
	code diag.Code
}{
	{fpenv.Invalid, diag.FoldInvalid},
	{fpenv.DivByZero, diag.FoldDivByZero},
	{fpenv.Overflow, diag.FoldOverflow},
	{fpenv.Underflow, diag.FoldUnderflow},
}

// judge applies the trap policy to the outcome of one guarded evaluation.
// A trapped condition fails the fold; untrapped ones keep the IEEE result
// and become warnings.
func (f *Folder) judge(subject string, v scalar.Value, raised fpenv.Flags, err error) (scalar.Value, error) {
	var trap *fpenv.TrapError
	if errors.As(err, &trap) {
		diag.ReportError(f.reporter, diag.FoldTrapped, subject, trap.Error()).
			WithNote("raised: " + raised.String()).
			Emit()
		return scalar.Value{}, fmt.Errorf("%w: %s: %w", ErrTrapped, subject, trap)
	}
	if err != nil {
		return scalar.Value{}, f.operandError(err, subject)
	}
	result := scalar.Text(v)
	for _, fc := range flagCodes {
		if !raised.Has(fc.flag) {
			continue
		}
		if fc.flag == fpenv.Underflow && !tiny(v) {
			continue
		}
		diag.ReportWarning(f.reporter, fc.code, subject, fc.code.Title()).
			WithNote("result " + result).
			Emit()
	}
	if raised.Has(fpenv.Inexact) && f.policy.ReportInexact {
		diag.ReportInfo(f.reporter, diag.FoldInexact, subject, "rounded to "+result).Emit()
	}
	return v, nil
}

// tiny reports whether a REAL or COMPLEX result (or one of its parts) is
// zero or subnormal.
func tiny(v scalar.Value) bool {
	parts := []scalar.Value{v}
	if v.Kind.Category == kind.Complex {
		re, im, err := v.Parts()
		if err != nil {
			return false
		}
		parts = []scalar.Value{re, im}
	}
	for _, p := range parts {
		d, err := scalar.DecodeReal(p)
		if err != nil {
			continue
		}
		if d.Class == scalar.ClassZero || d.Class == scalar.ClassSubnormal {
			return true
		}
	}
	return false
}
