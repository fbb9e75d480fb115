package fold

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hostfold/internal/bridge"
	"hostfold/internal/diag"
	"hostfold/internal/fpenv"
	"hostfold/internal/hostarith"
	"hostfold/internal/kind"
	"hostfold/internal/scalar"
	"hostfold/internal/trace"
)

func newFolder(cfg fpenv.Config, policy Policy) (*Folder, *diag.Bag) {
	bag := diag.NewBag(32)
	f := New(Options{Config: cfg, Reporter: diag.BagReporter{Bag: bag}, Policy: policy})
	return f, bag
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func real8(x float64) scalar.Value {
	return scalar.Of(kind.Real8, bridge.ToSource(bridge.Real8, x))
}

func float64Of(t *testing.T, v scalar.Value) float64 {
	t.Helper()
	s, err := scalar.As[scalar.Real8](v)
	if err != nil {
		t.Fatalf("As REAL(8): %v", err)
	}
	return bridge.ToHost(bridge.Real8, s)
}

func int4(x int32) scalar.Value {
	return scalar.Of(kind.Int4, bridge.ToSource(bridge.Int4, x))
}

func parse(t *testing.T, k kind.SourceKind, text string) scalar.Value {
	t.Helper()
	v, _, err := scalar.Parse(k, text, fpenv.NearestEven)
	if err != nil {
		t.Fatalf("Parse(%s, %q): %v", k, text, err)
	}
	return v
}

func TestFoldRealConditions(t *testing.T) {
	cases := []struct {
		name  string
		op    hostarith.Op
		a, b  float64
		want  float64
		codes []diag.Code
	}{
		{"third", hostarith.Div, 1, 3, 1.0 / 3, nil},
		{"overflow", hostarith.Mul, math.MaxFloat64, 2, math.Inf(1), []diag.Code{diag.FoldOverflow}},
		{"div by zero", hostarith.Div, 1, 0, math.Inf(1), []diag.Code{diag.FoldDivByZero}},
		{"invalid", hostarith.Div, 0, 0, math.NaN(), []diag.Code{diag.FoldInvalid}},
		{"underflow to zero", hostarith.Div, math.SmallestNonzeroFloat64, 2, 0, []diag.Code{diag.FoldUnderflow}},
		{"sqrt", hostarith.Sqrt, 4, 0, 2, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, bag := newFolder(fpenv.Config{}, Policy{})
			args := []scalar.Value{real8(tc.a), real8(tc.b)}
			if tc.op.Arity() == 1 {
				args = args[:1]
			}
			v, err := f.Fold(context.Background(), tc.op, kind.Real8, args...)
			if err != nil {
				t.Fatalf("Fold: %v", err)
			}
			got := float64Of(t, v)
			if got != tc.want && !(math.IsNaN(got) && math.IsNaN(tc.want)) {
				t.Errorf("result = %v, want %v", got, tc.want)
			}
			if diff := cmp.Diff(tc.codes, codes(bag)); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s", diff)
			}
			if bag.HasErrors() {
				t.Errorf("unexpected errors:\n%s", bag.Short())
			}
		})
	}
}

func TestFoldReportInexact(t *testing.T) {
	f, bag := newFolder(fpenv.Config{}, Policy{ReportInexact: true})
	if _, err := f.Fold(context.Background(), hostarith.Div, kind.Real8, real8(1), real8(3)); err != nil {
		t.Fatal(err)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.FoldInexact || items[0].Severity != diag.SevInfo {
		t.Fatalf("diagnostics = %+v", items)
	}
	if _, err := f.Fold(context.Background(), hostarith.Add, kind.Real8, real8(1), real8(2)); err != nil {
		t.Fatal(err)
	}
	if bag.Len() != 1 {
		t.Errorf("exact sum reported: %s", bag.Short())
	}
}

func TestFoldRounding(t *testing.T) {
	cases := []struct {
		mode fpenv.Rounding
		want float64
	}{
		{fpenv.NearestEven, 0x1.5555555555555p-2},
		{fpenv.TowardZero, 0x1.5555555555555p-2},
		{fpenv.Downward, 0x1.5555555555555p-2},
		{fpenv.Upward, 0x1.5555555555556p-2},
	}
	for _, tc := range cases {
		f, _ := newFolder(fpenv.Config{Rounding: tc.mode}, Policy{})
		v, err := f.Fold(context.Background(), hostarith.Div, kind.Real8, real8(1), real8(3))
		if err != nil {
			t.Fatalf("%s: %v", tc.mode, err)
		}
		if got := float64Of(t, v); got != tc.want {
			t.Errorf("%s: 1/3 = %x, want %x", tc.mode, got, tc.want)
		}
	}
}

func TestFoldTrapped(t *testing.T) {
	env := fpenv.New()
	g := env.SetUp(fpenv.Config{Rounding: fpenv.Downward})
	defer g.CheckAndRestore(nil)
	before := env.Snapshot()

	bag := diag.NewBag(8)
	f := New(Options{
		Env:      env,
		Config:   fpenv.Config{Traps: fpenv.Overflow},
		Reporter: diag.BagReporter{Bag: bag},
	})
	v, err := f.Fold(context.Background(), hostarith.Mul, kind.Real8, real8(math.MaxFloat64), real8(2))
	if !errors.Is(err, ErrTrapped) {
		t.Fatalf("err = %v, want ErrTrapped", err)
	}
	var trap *fpenv.TrapError
	if !errors.As(err, &trap) || trap.Flags != fpenv.Overflow {
		t.Fatalf("trap = %v", trap)
	}
	if v.Bits != nil {
		t.Errorf("trapped fold returned %v", v)
	}
	if diff := cmp.Diff([]diag.Code{diag.FoldTrapped}, codes(bag)); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
	if got := env.Snapshot(); got != before {
		t.Errorf("environment not restored: %+v, want %+v", got, before)
	}
	if env.Depth() != 1 {
		t.Errorf("depth = %d, want 1", env.Depth())
	}
}

func TestFoldRestoresCallerEnvironment(t *testing.T) {
	env := fpenv.New()
	g := env.SetUp(fpenv.Config{Rounding: fpenv.Downward, FlushSubnormals: true})
	_ = env.Raise(fpenv.Inexact)
	before := env.Snapshot()

	f := New(Options{Env: env, Config: fpenv.Config{Rounding: fpenv.Upward}})
	if _, err := f.Fold(context.Background(), hostarith.Div, kind.Real8, real8(1), real8(0)); err != nil {
		t.Fatal(err)
	}
	if got := env.Snapshot(); got != before {
		t.Errorf("snapshot = %+v, want %+v", got, before)
	}
	if raised := g.CheckAndRestore(nil); raised != fpenv.Inexact {
		t.Errorf("caller flags = %s, want inexact", raised)
	}
}

func TestFoldPromoted(t *testing.T) {
	cases := []struct {
		mode fpenv.Rounding
		want [2]byte
	}{
		{fpenv.NearestEven, [2]byte{0x55, 0x35}},
		{fpenv.TowardZero, [2]byte{0x55, 0x35}},
		{fpenv.Upward, [2]byte{0x56, 0x35}},
	}
	for _, tc := range cases {
		f, bag := newFolder(fpenv.Config{Rounding: tc.mode}, Policy{ReportPromotion: true})
		one, three := parse(t, kind.Real2, "1"), parse(t, kind.Real2, "3")
		v, err := f.Fold(context.Background(), hostarith.Div, kind.Real2, one, three)
		if err != nil {
			t.Fatalf("%s: %v", tc.mode, err)
		}
		if v.Kind != kind.Real2 {
			t.Fatalf("kind = %s", v.Kind)
		}
		if got := [2]byte(v.Bits); got != tc.want {
			t.Errorf("%s: REAL(2) 1/3 = %x, want %x", tc.mode, got, tc.want)
		}
		if diff := cmp.Diff([]diag.Code{diag.KindPromoted}, codes(bag)); diff != "" {
			t.Errorf("diagnostics (-want +got):\n%s", diff)
		}
	}
}

func TestFoldPromotedOverflow(t *testing.T) {
	f, bag := newFolder(fpenv.Config{}, Policy{})
	big := parse(t, kind.Real2, "60000")
	v, err := f.Fold(context.Background(), hostarith.Add, kind.Real2, big, big)
	if err != nil {
		t.Fatal(err)
	}
	if got := scalar.Text(v); got != "+Inf" {
		t.Errorf("60000+60000 in REAL(2) = %s, want +Inf", got)
	}
	if diff := cmp.Diff([]diag.Code{diag.FoldOverflow}, codes(bag)); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
}

func TestFoldComplex(t *testing.T) {
	f, bag := newFolder(fpenv.Config{}, Policy{})
	a, b := parse(t, kind.Complex8, "(1,2)"), parse(t, kind.Complex8, "(3,4)")
	v, err := f.Fold(context.Background(), hostarith.Mul, kind.Complex8, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := scalar.Text(v), "(-5,10)"; got != want {
		t.Errorf("(1,2)*(3,4) = %s, want %s", got, want)
	}
	if bag.Len() != 0 {
		t.Errorf("diagnostics:\n%s", bag.Short())
	}

	_, err = f.Fold(context.Background(), hostarith.Sqrt, kind.Complex8, a)
	if !errors.Is(err, hostarith.ErrOperation) {
		t.Errorf("complex sqrt err = %v", err)
	}
	if diff := cmp.Diff([]diag.Code{diag.FoldBadOperands}, codes(bag)); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
}

func TestFoldInteger(t *testing.T) {
	cases := []struct {
		name  string
		op    hostarith.Op
		a, b  int32
		want  int32
		err   error
		codes []diag.Code
	}{
		{"quotient", hostarith.Div, -7, 2, -3, nil, nil},
		{"overflow", hostarith.Add, math.MaxInt32, 1, 0, hostarith.ErrIntegerOverflow, []diag.Code{diag.FoldIntOverflow}},
		{"div by zero", hostarith.Div, 7, 0, 0, hostarith.ErrDivideByZero, []diag.Code{diag.FoldIntDivByZero}},
		{"neg", hostarith.Neg, 5, 0, -5, nil, nil},
		{"sqrt", hostarith.Sqrt, 4, 0, 0, hostarith.ErrOperation, []diag.Code{diag.FoldBadOperands}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, bag := newFolder(fpenv.Config{}, Policy{})
			args := []scalar.Value{int4(tc.a), int4(tc.b)}
			if tc.op.Arity() == 1 {
				args = args[:1]
			}
			v, err := f.Fold(context.Background(), tc.op, kind.Int4, args...)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if err == nil {
				s, _ := scalar.As[scalar.Int4](v)
				if got := bridge.ToHost(bridge.Int4, s); got != tc.want {
					t.Errorf("result = %d, want %d", got, tc.want)
				}
			}
			if diff := cmp.Diff(tc.codes, codes(bag)); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFoldUnsupported(t *testing.T) {
	for _, k := range []kind.SourceKind{kind.Real16, kind.Real10, kind.Complex16, kind.Int16} {
		f, bag := newFolder(fpenv.Config{}, Policy{})
		x := scalar.Zero(k)
		_, err := f.Fold(context.Background(), hostarith.Add, k, x, x)
		if !errors.Is(err, ErrUnsupportedKind) {
			t.Errorf("%s: err = %v, want ErrUnsupportedKind", k, err)
		}
		if diff := cmp.Diff([]diag.Code{diag.KindUnsupported}, codes(bag)); diff != "" {
			t.Errorf("%s: diagnostics (-want +got):\n%s", k, diff)
		}
	}
}

func TestFoldBadOperands(t *testing.T) {
	cases := []struct {
		name string
		op   hostarith.Op
		k    kind.SourceKind
		args []scalar.Value
		err  error
	}{
		{"mixed kinds", hostarith.Add, kind.Real8, []scalar.Value{real8(1), int4(1)}, ErrOperands},
		{"arity", hostarith.Add, kind.Real8, []scalar.Value{real8(1)}, ErrOperands},
		{"short encoding", hostarith.Neg, kind.Real8, []scalar.Value{{Kind: kind.Real8, Bits: []byte{1}}}, ErrOperands},
		{"logical", hostarith.Add, kind.Logical4, []scalar.Value{scalar.LogicalOf(kind.Logical4, true), scalar.LogicalOf(kind.Logical4, false)}, hostarith.ErrOperation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, bag := newFolder(fpenv.Config{}, Policy{})
			_, err := f.Fold(context.Background(), tc.op, tc.k, tc.args...)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if diff := cmp.Diff([]diag.Code{diag.FoldBadOperands}, codes(bag)); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFoldTrace(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	f, _ := newFolder(fpenv.Config{}, Policy{})
	if _, err := f.Fold(ctx, hostarith.Div, kind.Real8, real8(1), real8(0)); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	want := []string{"fold", "setup", "raised", "restore", "fold"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestConvert(t *testing.T) {
	ctx := context.Background()

	t.Run("narrow real", func(t *testing.T) {
		f, bag := newFolder(fpenv.Config{}, Policy{})
		v, err := f.Convert(ctx, kind.Real4, real8(0.1))
		if err != nil {
			t.Fatal(err)
		}
		s, _ := scalar.As[scalar.Real4](v)
		if got := bridge.ToHost(bridge.Real4, s); got != float32(0.1) {
			t.Errorf("REAL(4)(0.1) = %v", got)
		}
		if bag.Len() != 0 {
			t.Errorf("diagnostics:\n%s", bag.Short())
		}
	})

	t.Run("narrow overflow", func(t *testing.T) {
		f, bag := newFolder(fpenv.Config{}, Policy{})
		v, err := f.Convert(ctx, kind.Real4, real8(1e300))
		if err != nil {
			t.Fatal(err)
		}
		if got := scalar.Text(v); got != "+Inf" {
			t.Errorf("REAL(4)(1e300) = %s", got)
		}
		if diff := cmp.Diff([]diag.Code{diag.FoldOverflow}, codes(bag)); diff != "" {
			t.Errorf("diagnostics (-want +got):\n%s", diff)
		}
	})

	t.Run("integer to real", func(t *testing.T) {
		f, _ := newFolder(fpenv.Config{}, Policy{})
		v, err := f.Convert(ctx, kind.Real4, int4(16777217))
		if err != nil {
			t.Fatal(err)
		}
		s, _ := scalar.As[scalar.Real4](v)
		if got := bridge.ToHost(bridge.Real4, s); got != 16777216 {
			t.Errorf("REAL(4)(16777217) = %v", got)
		}
	})

	t.Run("integer to complex", func(t *testing.T) {
		f, _ := newFolder(fpenv.Config{}, Policy{})
		v, err := f.Convert(ctx, kind.Complex8, int4(-3))
		if err != nil {
			t.Fatal(err)
		}
		if got := scalar.Text(v); got != "(-3,0)" {
			t.Errorf("COMPLEX(8)(-3) = %s", got)
		}
	})

	t.Run("real to integer", func(t *testing.T) {
		f, _ := newFolder(fpenv.Config{}, Policy{})
		v, err := f.Convert(ctx, kind.Int4, real8(-2.7))
		if err != nil {
			t.Fatal(err)
		}
		if got := scalar.Text(v); got != "-2" {
			t.Errorf("INTEGER(4)(-2.7) = %s", got)
		}
	})

	t.Run("integer out of range", func(t *testing.T) {
		f, bag := newFolder(fpenv.Config{}, Policy{})
		_, err := f.Convert(ctx, kind.Int1, int4(300))
		if !errors.Is(err, scalar.ErrRange) {
			t.Fatalf("err = %v", err)
		}
		_, err = f.Convert(ctx, kind.Int4, real8(math.NaN()))
		if !errors.Is(err, scalar.ErrRange) {
			t.Fatalf("NaN err = %v", err)
		}
		if diff := cmp.Diff([]diag.Code{diag.FoldIntOverflow, diag.FoldIntOverflow}, codes(bag)); diff != "" {
			t.Errorf("diagnostics (-want +got):\n%s", diff)
		}
	})

	t.Run("logical", func(t *testing.T) {
		f, _ := newFolder(fpenv.Config{}, Policy{})
		v, err := f.Convert(ctx, kind.Logical1, scalar.Value{Kind: kind.Logical4, Bits: []byte{0, 0, 2, 0}})
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]byte{1}, v.Bits); diff != "" {
			t.Errorf("bits (-want +got):\n%s", diff)
		}
	})

	t.Run("character", func(t *testing.T) {
		f, _ := newFolder(fpenv.Config{}, Policy{})
		src := parse(t, kind.Char1, "héllo")
		wide, err := f.Convert(ctx, kind.Char4, src)
		if err != nil {
			t.Fatal(err)
		}
		if len(wide.Bits) != 5*4 {
			t.Errorf("CHARACTER(4) has %d bytes, want 20", len(wide.Bits))
		}
		back, err := f.Convert(ctx, kind.Char1, wide)
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(src) {
			t.Errorf("round trip = %q, want %q", back.Bits, src.Bits)
		}
	})

	t.Run("unsupported target", func(t *testing.T) {
		f, bag := newFolder(fpenv.Config{}, Policy{})
		_, err := f.Convert(ctx, kind.Real16, real8(1))
		if !errors.Is(err, ErrUnsupportedKind) {
			t.Fatalf("err = %v", err)
		}
		if diff := cmp.Diff([]diag.Code{diag.KindUnsupported}, codes(bag)); diff != "" {
			t.Errorf("diagnostics (-want +got):\n%s", diff)
		}
	})

	t.Run("no conversion", func(t *testing.T) {
		f, _ := newFolder(fpenv.Config{}, Policy{})
		_, err := f.Convert(ctx, kind.Logical4, real8(1))
		if !errors.Is(err, ErrOperands) {
			t.Fatalf("err = %v", err)
		}
	})
}
