package hostarith

import (
	"errors"
	"math"
	"testing"
)

func TestInt(t *testing.T) {
	cases := []struct {
		name string
		op   Op
		a, b int64
		want int64
		err  error
	}{
		{"add", Add, 40, 2, 42, nil},
		{"add overflow", Add, math.MaxInt64, 1, 0, ErrIntegerOverflow},
		{"add negative overflow", Add, math.MinInt64, -1, 0, ErrIntegerOverflow},
		{"sub", Sub, -40, 2, -42, nil},
		{"sub overflow", Sub, math.MinInt64, 1, 0, ErrIntegerOverflow},
		{"sub negative overflow", Sub, 0, math.MinInt64, 0, ErrIntegerOverflow},
		{"mul", Mul, -6, 7, -42, nil},
		{"mul overflow", Mul, math.MaxInt64/2 + 1, 2, 0, ErrIntegerOverflow},
		{"mul minus one by min", Mul, -1, math.MinInt64, 0, ErrIntegerOverflow},
		{"mul min by minus one", Mul, math.MinInt64, -1, 0, ErrIntegerOverflow},
		{"mul zero", Mul, 0, math.MinInt64, 0, nil},
		{"div truncates", Div, -7, 2, -3, nil},
		{"div by zero", Div, 7, 0, 0, ErrDivideByZero},
		{"div overflow", Div, math.MinInt64, -1, 0, ErrIntegerOverflow},
		{"neg", Neg, 5, 0, -5, nil},
		{"neg min", Neg, math.MinInt64, 0, 0, ErrIntegerOverflow},
		{"sqrt", Sqrt, 4, 0, 0, ErrOperation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Int(tc.op, tc.a, tc.b)
			if !errors.Is(err, tc.err) || (tc.err == nil && err != nil) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestIntNarrowWidths(t *testing.T) {
	if _, err := Int[int8](Add, math.MaxInt8, 1); !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("int8 add: %v", err)
	}
	if _, err := Int[int16](Mul, 200, 200); !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("int16 mul: %v", err)
	}
	if got, err := Int[int16](Mul, -128, 256); err != nil || got != math.MinInt16 {
		t.Fatalf("int16 mul to min: %d, %v", got, err)
	}
	if _, err := Int[int32](Neg, math.MinInt32, 0); !errors.Is(err, ErrIntegerOverflow) {
		t.Fatalf("int32 neg: %v", err)
	}
	if minOf[int8]() != math.MinInt8 || minOf[int64]() != math.MinInt64 {
		t.Fatal("minOf")
	}
}
