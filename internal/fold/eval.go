package fold

import (
	"fmt"

	"hostfold/internal/bridge"
	"hostfold/internal/fpenv"
	"hostfold/internal/hostarith"
	"hostfold/internal/kind"
	"hostfold/internal/scalar"
)

func evalFloat(e *fpenv.Env, op hostarith.Op, k kind.SourceKind, args []scalar.Value) (scalar.Value, error) {
	switch k {
	case kind.Real4:
		return evalWith(e, bridge.Real4, hostarith.Real[float32], op, args)
	case kind.Real8:
		return evalWith(e, bridge.Real8, hostarith.Real[float64], op, args)
	case kind.Complex4:
		return evalWith(e, bridge.Complex4, hostarith.Complex64, op, args)
	case kind.Complex8:
		return evalWith(e, bridge.Complex8, hostarith.Complex128, op, args)
	}
	return scalar.Value{}, fmt.Errorf("%w: no host arithmetic for %s", ErrUnsupportedKind, k)
}

// evalWith casts the operands to host values, applies fn and casts the
// result back. The value is returned with a trap error so the caller can
// still inspect it.
func evalWith[S scalar.Fixed, H any](
	e *fpenv.Env,
	m bridge.Mapping[S, H],
	fn func(*fpenv.Env, hostarith.Op, H, H) (H, error),
	op hostarith.Op,
	args []scalar.Value,
) (scalar.Value, error) {
	var hs [2]H
	for i, a := range args {
		s, err := scalar.As[S](a)
		if err != nil {
			return scalar.Value{}, err
		}
		hs[i] = bridge.ToHost(m, s)
	}
	r, err := fn(e, op, hs[0], hs[1])
	return scalar.Of(m.Kind(), bridge.ToSource(m, r)), err
}

func evalInteger(op hostarith.Op, k kind.SourceKind, args []scalar.Value) (scalar.Value, error) {
	switch k {
	case kind.Int1:
		return intWith(bridge.Int1, op, args)
	case kind.Int2:
		return intWith(bridge.Int2, op, args)
	case kind.Int4:
		return intWith(bridge.Int4, op, args)
	case kind.Int8:
		return intWith(bridge.Int8, op, args)
	}
	return scalar.Value{}, fmt.Errorf("%w: no host arithmetic for %s", ErrUnsupportedKind, k)
}

func intWith[S scalar.Fixed, I hostarith.Integer](m bridge.Mapping[S, I], op hostarith.Op, args []scalar.Value) (scalar.Value, error) {
	var hs [2]I
	for i, a := range args {
		s, err := scalar.As[S](a)
		if err != nil {
			return scalar.Value{}, err
		}
		hs[i] = bridge.ToHost(m, s)
	}
	r, err := hostarith.Int(op, hs[0], hs[1])
	if err != nil {
		return scalar.Value{}, err
	}
	return scalar.Of(m.Kind(), bridge.ToSource(m, r)), nil
}

// widen converts operands up the promotion chain. Every step of the chain
// holds all values of the previous kind, so no condition is raised.
func widen(args []scalar.Value, to kind.SourceKind) ([]scalar.Value, error) {
	out := make([]scalar.Value, len(args))
	for i, a := range args {
		v, _, err := scalar.Convert(a, to, fpenv.NearestEven, false)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// narrow rounds a promoted result back to k under e's attributes and raises
// what the rounding raised.
func narrow(e *fpenv.Env, v scalar.Value, k kind.SourceKind) (scalar.Value, error) {
	out, flags, err := scalar.Convert(v, k, e.Rounding(), e.FlushSubnormals())
	if err != nil {
		return scalar.Value{}, err
	}
	return out, e.Raise(flags)
}
