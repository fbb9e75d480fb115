package fold

import (
	"context"
	"fmt"
	"math/big"

	"hostfold/internal/diag"
	"hostfold/internal/fpenv"
	"hostfold/internal/kind"
	"hostfold/internal/scalar"
	"hostfold/internal/trace"
)

// Convert returns x as a value of kind to. REAL and COMPLEX targets are
// rounded with the configured attributes and follow the same trap policy as
// Fold. INTEGER targets truncate toward zero; a value out of range fails.
// LOGICAL keeps the truth value and CHARACTER keeps the text.
func (f *Folder) Convert(ctx context.Context, to kind.SourceKind, x scalar.Value) (scalar.Value, error) {
	subject := fmt.Sprintf("%s(%s)", to, scalar.Text(x))
	ctx, span := trace.Start(ctx, trace.ScopeFold, "convert")
	span.WithExtra("from", x.Kind.String()).WithExtra("to", to.String())

	v, err := f.convert(ctx, to, x, subject)
	if err != nil {
		span.End(err.Error())
		return scalar.Value{}, err
	}
	span.End(scalar.Text(v))
	return v, nil
}

func (f *Folder) convert(ctx context.Context, to kind.SourceKind, x scalar.Value, subject string) (scalar.Value, error) {
	if !kind.Valid(to) {
		diag.ReportError(f.reporter, diag.KindUnknown, subject, fmt.Sprintf("unknown kind %s", to)).Emit()
		return scalar.Value{}, fmt.Errorf("%w: unknown kind %s", ErrOperands, to)
	}
	if err := x.Check(); err != nil {
		return scalar.Value{}, f.operandError(fmt.Errorf("%w: %w", ErrOperands, err), subject)
	}
	if !f.usable(to) {
		return scalar.Value{}, f.unsupported(to, subject)
	}
	if x.Kind == to {
		return scalar.Value{Kind: to, Bits: append([]byte(nil), x.Bits...)}, nil
	}

	from := x.Kind.Category
	switch {
	case floating(from) && floating(to.Category):
		return f.guarded(ctx, subject, func(e *fpenv.Env) (scalar.Value, error) {
			v, flags, err := scalar.Convert(x, to, e.Rounding(), e.FlushSubnormals())
			if err != nil {
				return scalar.Value{}, err
			}
			return v, e.Raise(flags)
		})
	case from == kind.Integer && floating(to.Category):
		n, err := scalar.IntegerValue(x)
		if err != nil {
			return scalar.Value{}, f.operandError(err, subject)
		}
		return f.guarded(ctx, subject, func(e *fpenv.Env) (scalar.Value, error) {
			return fromInteger(e, n, to)
		})
	case from == kind.Integer && to.Category == kind.Integer:
		n, err := scalar.IntegerValue(x)
		if err != nil {
			return scalar.Value{}, f.operandError(err, subject)
		}
		v, err := scalar.IntegerOf(to, n)
		return v, f.integerError(err, subject)
	case floating(from) && to.Category == kind.Integer:
		v, err := truncate(x, to)
		return v, f.integerError(err, subject)
	case from == kind.Logical && to.Category == kind.Logical:
		return scalar.LogicalOf(to, scalar.Truth(x)), nil
	case from == kind.Character && to.Category == kind.Character:
		text, err := scalar.CharacterString(x)
		if err != nil {
			return scalar.Value{}, f.operandError(err, subject)
		}
		v, err := scalar.CharacterOf(to, text)
		if err != nil {
			return scalar.Value{}, f.operandError(fmt.Errorf("%w: %w", ErrOperands, err), subject)
		}
		return v, nil
	}
	return scalar.Value{}, f.operandError(fmt.Errorf("%w: no conversion from %s to %s", ErrOperands, x.Kind, to), subject)
}

func (f *Folder) usable(k kind.SourceKind) bool {
	if kind.Promotes(k.Category) {
		_, _, ok := f.reg.WidestUsable(k)
		return ok
	}
	return f.reg.Exists(k)
}

func floating(c kind.Category) bool {
	return c == kind.Real || c == kind.Complex
}

func fromInteger(e *fpenv.Env, n *big.Int, to kind.SourceKind) (scalar.Value, error) {
	prec := uint(n.BitLen())
	if prec < 64 {
		prec = 64
	}
	exact := new(big.Float).SetPrec(prec).SetInt(n)
	part := to.Part()
	re, flags, err := scalar.EncodeReal(part, scalar.Finite(exact), e.Rounding(), e.FlushSubnormals())
	if err != nil {
		return scalar.Value{}, err
	}
	v := re
	if to.Category == kind.Complex {
		if v, err = scalar.Compose(re, scalar.Zero(part)); err != nil {
			return scalar.Value{}, err
		}
	}
	return v, e.Raise(flags)
}

// truncate converts the real part of x toward zero.
func truncate(x scalar.Value, to kind.SourceKind) (scalar.Value, error) {
	re := x
	if x.Kind.Category == kind.Complex {
		var err error
		if re, _, err = x.Parts(); err != nil {
			return scalar.Value{}, err
		}
	}
	d, err := scalar.DecodeReal(re)
	if err != nil {
		return scalar.Value{}, err
	}
	if !d.IsFinite() {
		return scalar.Value{}, fmt.Errorf("%w: %s has no %s value", scalar.ErrRange, scalar.Text(re), to)
	}
	n, _ := d.Value.Int(nil)
	return scalar.IntegerOf(to, n)
}
