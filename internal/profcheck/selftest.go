package profcheck

import (
	"context"
	"fmt"
	"math"

	"hostfold/internal/bridge"
	"hostfold/internal/fold"
	"hostfold/internal/hostarith"
	"hostfold/internal/scalar"
)

type floatCase struct {
	op   hostarith.Op
	a, b float64
}

// Single operations only: the compiler may fuse a multiply feeding an add.
var floatCases = []floatCase{
	{hostarith.Div, 1, 3},
	{hostarith.Add, 0.1, 0.2},
	{hostarith.Sub, 1, 0x1p-60},
	{hostarith.Mul, 1e30, 1e30},
	{hostarith.Mul, math.MaxFloat64, 2},
	{hostarith.Div, math.SmallestNonzeroFloat64, 3},
	{hostarith.Div, -1, 0},
	{hostarith.Sqrt, 2, 0},
	{hostarith.Neg, 0, 0},
}

type intCase struct {
	op   hostarith.Op
	a, b int64
}

// Every result fits INTEGER(1).
var intCases = []intCase{
	{hostarith.Add, 100, 27},
	{hostarith.Sub, -5, 120},
	{hostarith.Mul, -11, 11},
	{hostarith.Div, 7, -2},
	{hostarith.Neg, -127, 0},
}

// selfTest folds a fixed set of expressions with f and compares the results
// with Go's own arithmetic under round-to-nearest. It returns one line per
// disagreement.
func selfTest(ctx context.Context, f *fold.Folder) []string {
	var out []string
	out = append(out, floatSelfTest(ctx, f, bridge.Real4)...)
	out = append(out, floatSelfTest(ctx, f, bridge.Real8)...)
	out = append(out, intSelfTest(ctx, f, bridge.Int1)...)
	out = append(out, intSelfTest(ctx, f, bridge.Int2)...)
	out = append(out, intSelfTest(ctx, f, bridge.Int4)...)
	out = append(out, intSelfTest(ctx, f, bridge.Int8)...)
	return out
}

func floatSelfTest[S scalar.Fixed, F hostarith.Float](ctx context.Context, f *fold.Folder, m bridge.Mapping[S, F]) []string {
	var out []string
	k := m.Kind()
	for _, tc := range floatCases {
		a, b := F(tc.a), F(tc.b)
		want := nativeFloat(tc.op, a, b)
		got, err := fold1(ctx, f, m, tc.op, a, b)
		switch {
		case err != nil:
			out = append(out, fmt.Sprintf("%s %v %s %v: %v", k, a, tc.op, b, err))
		case math.Float64bits(float64(got)) != math.Float64bits(float64(want)) && !(got != got && want != want):
			out = append(out, fmt.Sprintf("%s %v %s %v = %v, Go computes %v", k, a, tc.op, b, got, want))
		}
	}
	return out
}

func intSelfTest[S scalar.Fixed, I hostarith.Integer](ctx context.Context, f *fold.Folder, m bridge.Mapping[S, I]) []string {
	var out []string
	k := m.Kind()
	for _, tc := range intCases {
		a, b := I(tc.a), I(tc.b)
		want := nativeInt(tc.op, a, b)
		got, err := fold1(ctx, f, m, tc.op, a, b)
		switch {
		case err != nil:
			out = append(out, fmt.Sprintf("%s %d %s %d: %v", k, a, tc.op, b, err))
		case got != want:
			out = append(out, fmt.Sprintf("%s %d %s %d = %d, Go computes %d", k, a, tc.op, b, got, want))
		}
	}
	return out
}

func fold1[S scalar.Fixed, H any](ctx context.Context, f *fold.Folder, m bridge.Mapping[S, H], op hostarith.Op, a, b H) (H, error) {
	var zero H
	args := []scalar.Value{
		scalar.Of(m.Kind(), bridge.ToSource(m, a)),
		scalar.Of(m.Kind(), bridge.ToSource(m, b)),
	}
	if op.Arity() == 1 {
		args = args[:1]
	}
	v, err := f.Fold(ctx, op, m.Kind(), args...)
	if err != nil {
		return zero, err
	}
	s, err := scalar.As[S](v)
	if err != nil {
		return zero, err
	}
	return bridge.ToHost(m, s), nil
}

func nativeFloat[F hostarith.Float](op hostarith.Op, a, b F) F {
	switch op {
	case hostarith.Add:
		return a + b
	case hostarith.Sub:
		return a - b
	case hostarith.Mul:
		return a * b
	case hostarith.Div:
		return a / b
	case hostarith.Sqrt:
		return F(math.Sqrt(float64(a)))
	default:
		return -a
	}
}

func nativeInt[I hostarith.Integer](op hostarith.Op, a, b I) I {
	switch op {
	case hostarith.Add:
		return a + b
	case hostarith.Sub:
		return a - b
	case hostarith.Mul:
		return a * b
	case hostarith.Div:
		return a / b
	default:
		return -a
	}
}
