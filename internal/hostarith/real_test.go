package hostarith

import (
	"errors"
	"math"
	"testing"

	"hostfold/internal/fpenv"
)

func envWith(cfg fpenv.Config) *fpenv.Env {
	e := fpenv.New()
	e.SetUp(cfg)
	return e
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b && math.Signbit(a) == math.Signbit(b)
}

func TestReal64(t *testing.T) {
	negZero := math.Copysign(0, -1)
	tiny := math.SmallestNonzeroFloat64
	cases := []struct {
		name  string
		mode  fpenv.Rounding
		op    Op
		a, b  float64
		want  float64
		flags fpenv.Flags
	}{
		{"exact sum", fpenv.NearestEven, Add, 1, 2, 3, 0},
		{"inexact sum", fpenv.NearestEven, Add, 0.1, 0.2, 0.30000000000000004, fpenv.Inexact},
		{"inexact sum down", fpenv.Downward, Add, 0.1, 0.2, 0.3, fpenv.Inexact},
		{"inexact sum zero", fpenv.TowardZero, Add, 0.1, 0.2, 0.3, fpenv.Inexact},
		{"inexact sum up", fpenv.Upward, Add, 0.1, 0.2, 0.30000000000000004, fpenv.Inexact},
		{"cancel", fpenv.NearestEven, Sub, 1, 1, 0, 0},
		{"cancel down", fpenv.Downward, Sub, 1, 1, negZero, 0},
		{"third", fpenv.NearestEven, Div, 1, 3, 1.0 / 3, fpenv.Inexact},
		{"third up", fpenv.Upward, Div, 1, 3, math.Nextafter(1.0/3, 1), fpenv.Inexact},
		{"minus third zero", fpenv.TowardZero, Div, -1, 3, -1.0 / 3, fpenv.Inexact},
		{"minus third down", fpenv.Downward, Div, -1, 3, math.Nextafter(-1.0/3, -1), fpenv.Inexact},
		{"overflow", fpenv.NearestEven, Mul, math.MaxFloat64, 2, math.Inf(1), fpenv.Overflow | fpenv.Inexact},
		{"overflow zero", fpenv.TowardZero, Mul, math.MaxFloat64, 2, math.MaxFloat64, fpenv.Overflow | fpenv.Inexact},
		{"overflow down", fpenv.Downward, Mul, math.MaxFloat64, 2, math.MaxFloat64, fpenv.Overflow | fpenv.Inexact},
		{"negative overflow up", fpenv.Upward, Mul, -math.MaxFloat64, 2, -math.MaxFloat64, fpenv.Overflow | fpenv.Inexact},
		{"overflow by division", fpenv.NearestEven, Div, math.MaxFloat64, 0.5, math.Inf(1), fpenv.Overflow | fpenv.Inexact},
		{"overflow just above max up", fpenv.Upward, Add, math.MaxFloat64, 1, math.Inf(1), fpenv.Overflow | fpenv.Inexact},
		{"just above max nearest", fpenv.NearestEven, Add, math.MaxFloat64, 1, math.MaxFloat64, fpenv.Inexact},
		{"divide by zero", fpenv.NearestEven, Div, 1, 0, math.Inf(1), fpenv.DivByZero},
		{"divide by negative zero", fpenv.NearestEven, Div, 1, negZero, math.Inf(-1), fpenv.DivByZero},
		{"zero over zero", fpenv.NearestEven, Div, 0, 0, math.NaN(), fpenv.Invalid},
		{"inf minus inf", fpenv.NearestEven, Sub, math.Inf(1), math.Inf(1), math.NaN(), fpenv.Invalid},
		{"zero times inf", fpenv.NearestEven, Mul, 0, math.Inf(-1), math.NaN(), fpenv.Invalid},
		{"inf over zero", fpenv.NearestEven, Div, math.Inf(1), 0, math.Inf(1), 0},
		{"nan is quiet", fpenv.NearestEven, Add, math.NaN(), 1, math.NaN(), 0},
		{"sqrt exact", fpenv.NearestEven, Sqrt, 2.25, 0, 1.5, 0},
		{"sqrt two", fpenv.NearestEven, Sqrt, 2, 0, math.Sqrt2, fpenv.Inexact},
		{"sqrt negative", fpenv.NearestEven, Sqrt, -1, 0, math.NaN(), fpenv.Invalid},
		{"sqrt negative zero", fpenv.NearestEven, Sqrt, negZero, 0, negZero, 0},
		{"exact subnormal", fpenv.NearestEven, Mul, 0x1p-1022, 0.5, 0x1p-1023, 0},
		{"underflow to zero", fpenv.NearestEven, Mul, tiny, 0.5, 0, fpenv.Underflow | fpenv.Inexact},
		{"underflow up", fpenv.Upward, Mul, tiny, 0.5, tiny, fpenv.Underflow | fpenv.Inexact},
		{"underflow negative", fpenv.NearestEven, Mul, -tiny, 0.25, negZero, fpenv.Underflow | fpenv.Inexact},
		{"subnormal quotient", fpenv.NearestEven, Div, tiny * 3, 2, tiny * 2, fpenv.Underflow | fpenv.Inexact},
		{"subnormal quotient down", fpenv.Downward, Div, tiny * 3, 2, tiny, fpenv.Underflow | fpenv.Inexact},
		{"negate", fpenv.NearestEven, Neg, 2, 0, -2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := envWith(fpenv.Config{Rounding: tc.mode})
			got, err := Real(e, tc.op, tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !sameFloat(got, tc.want) {
				t.Errorf("%v %s %v = %v, want %v", tc.a, tc.op, tc.b, got, tc.want)
			}
			if e.Status() != tc.flags {
				t.Errorf("flags = %s, want %s", e.Status(), tc.flags)
			}
		})
	}
}

func TestReal32(t *testing.T) {
	cases := []struct {
		name  string
		mode  fpenv.Rounding
		op    Op
		a, b  float32
		want  float32
		flags fpenv.Flags
	}{
		{"tie to even", fpenv.NearestEven, Add, 1 << 24, 1, 1 << 24, fpenv.Inexact},
		{"tie up", fpenv.Upward, Add, 1 << 24, 1, 1<<24 + 2, fpenv.Inexact},
		{"tie down", fpenv.Downward, Add, 1 << 24, 1, 1 << 24, fpenv.Inexact},
		{"exact", fpenv.NearestEven, Mul, 1.5, 4, 6, 0},
		{"third", fpenv.NearestEven, Div, 1, 3, 1.0 / 3, fpenv.Inexact},
		{"third zero", fpenv.TowardZero, Div, 1, 3, math.Nextafter32(1.0/3, 0), fpenv.Inexact},
		{"third up", fpenv.Upward, Div, 1, 3, 1.0 / 3, fpenv.Inexact},
		{"overflow", fpenv.NearestEven, Mul, math.MaxFloat32, 2, float32(math.Inf(1)), fpenv.Overflow | fpenv.Inexact},
		{"overflow zero", fpenv.TowardZero, Mul, math.MaxFloat32, 2, math.MaxFloat32, fpenv.Overflow | fpenv.Inexact},
		{"underflow", fpenv.NearestEven, Mul, math.SmallestNonzeroFloat32, 0.25, 0, fpenv.Underflow | fpenv.Inexact},
		{"sqrt", fpenv.NearestEven, Sqrt, 2, 0, float32(math.Sqrt2), fpenv.Inexact},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := envWith(fpenv.Config{Rounding: tc.mode})
			got, err := Real(e, tc.op, tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("%v %s %v = %v, want %v", tc.a, tc.op, tc.b, got, tc.want)
			}
			if e.Status() != tc.flags {
				t.Errorf("flags = %s, want %s", e.Status(), tc.flags)
			}
		})
	}
}

func TestFlushSubnormals(t *testing.T) {
	e := envWith(fpenv.Config{FlushSubnormals: true})
	got, err := Real(e, Mul, 0x1p-1022, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 || math.Signbit(got) {
		t.Fatalf("got %v, want +0", got)
	}
	if e.Status() != fpenv.Underflow|fpenv.Inexact {
		t.Fatalf("flags = %s", e.Status())
	}

	e = envWith(fpenv.Config{FlushSubnormals: true})
	g, _ := Real(e, Div, float32(-0x1p-126), 4)
	if g != 0 || !math.Signbit(float64(g)) {
		t.Fatalf("float32 flush gave %v, want -0", g)
	}
}

func TestTrap(t *testing.T) {
	e := envWith(fpenv.Config{Traps: fpenv.Overflow | fpenv.DivByZero})
	got, err := Real(e, Mul, math.MaxFloat64, 4)
	var trap *fpenv.TrapError
	if !errors.As(err, &trap) || trap.Flags != fpenv.Overflow {
		t.Fatalf("err = %v, want overflow trap", err)
	}
	if !math.IsInf(got, 1) {
		t.Fatalf("trapped overflow still yields the IEEE value, got %v", got)
	}
	if _, err := Real(e, Add, 0.1, 0.2); err != nil {
		t.Fatalf("inexact is not trapped: %v", err)
	}
}

func TestGuardOverflowRoundTrip(t *testing.T) {
	e := fpenv.New()
	outer := e.SetUp(fpenv.Config{Rounding: fpenv.Downward, Traps: fpenv.Invalid})
	before := e.Snapshot()

	var reported fpenv.Flags
	g := e.SetUp(fpenv.Config{})
	if _, err := Real(e, Div, math.MaxFloat64, 0.5); err != nil {
		t.Fatal(err)
	}
	got := g.CheckAndRestore(fpenv.SinkFunc(func(f fpenv.Flags) { reported = f }))

	if !got.Has(fpenv.Overflow) || reported != got {
		t.Fatalf("raised %s, reported %s", got, reported)
	}
	if e.Snapshot() != before {
		t.Fatalf("environment not restored: %+v, want %+v", e.Snapshot(), before)
	}
	outer.CheckAndRestore(nil)
	if e.Depth() != 0 {
		t.Fatalf("depth = %d", e.Depth())
	}
}

func TestParseOp(t *testing.T) {
	for in, want := range map[string]Op{"+": Add, "sub": Sub, "*": Mul, "DIV": Div, "neg": Neg, " sqrt ": Sqrt} {
		got, err := ParseOp(in)
		if err != nil || got != want {
			t.Errorf("ParseOp(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseOp("%"); err == nil {
		t.Error("ParseOp(%) should fail")
	}
}
