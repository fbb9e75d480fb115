package scalar

import (
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"hostfold/internal/fpenv"
	"hostfold/internal/kind"
)

func TestLoadAndBytes(t *testing.T) {
	r, err := Load[Real4]([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := Bytes(r); string(got) != "\x01\x02\x03\x04" {
		t.Fatalf("bytes %x", got)
	}
	if _, err := Load[Real8]([]byte{1, 2}); !errors.Is(err, ErrSize) {
		t.Fatalf("expected ErrSize, got %v", err)
	}
}

func TestSplitJoin(t *testing.T) {
	c := Complex4{1, 2, 3, 4, 5, 6, 7, 8}
	re, im := Split[Complex4, Real4](c)
	if re != (Real4{1, 2, 3, 4}) || im != (Real4{5, 6, 7, 8}) {
		t.Fatalf("split %v %v", re, im)
	}
	if back := Join[Complex4](re, im); back != c {
		t.Fatalf("join %v", back)
	}
}

func TestSplitMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Split[Complex4, Real8](Complex4{})
}

func TestIntegerRoundTrip(t *testing.T) {
	tests := []struct {
		k    kind.SourceKind
		text string
	}{
		{kind.Int1, "-128"},
		{kind.Int1, "127"},
		{kind.Int2, "-1"},
		{kind.Int8, "9223372036854775807"},
		{kind.Int16, "-170141183460469231731687303715884105728"},
	}
	for _, tt := range tests {
		v, _, err := Parse(tt.k, tt.text, fpenv.NearestEven)
		if err != nil {
			t.Fatalf("parse %s %s: %v", tt.k, tt.text, err)
		}
		if got := Text(v); got != tt.text {
			t.Errorf("%s %s rendered as %s", tt.k, tt.text, got)
		}
	}
	if _, err := IntegerOf(kind.Int1, big.NewInt(128)); !errors.Is(err, ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
}

func TestLogicalAndCharacter(t *testing.T) {
	v, _, err := Parse(kind.Logical4, ".true.", fpenv.NearestEven)
	if err != nil || !Truth(v) || len(v.Bits) != 4 || Text(v) != ".TRUE." {
		t.Fatalf("logical: %v %x", err, v.Bits)
	}
	for _, k := range []kind.SourceKind{kind.Char1, kind.Char2, kind.Char4} {
		c, err := CharacterOf(k, "héllo, 世界")
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if err := c.Check(); err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if got := Text(c); got != `"héllo, 世界"` {
			t.Errorf("%s rendered as %s", k, got)
		}
	}
}

func TestParseCharacterNFC(t *testing.T) {
	composed, _, err := Parse(kind.Char4, "\u00e9t\u00e9", fpenv.NearestEven)
	if err != nil {
		t.Fatal(err)
	}
	decomposed, _, err := Parse(kind.Char4, "e\u0301te\u0301", fpenv.NearestEven)
	if err != nil {
		t.Fatal(err)
	}
	if !composed.Equal(decomposed) {
		t.Errorf("decomposed literal = %x, want %x", decomposed.Bits, composed.Bits)
	}
	if len(composed.Bits) != 3*4 {
		t.Errorf("CHARACTER(4) %q has %d bytes", Text(composed), len(composed.Bits))
	}
}

func TestParseReal(t *testing.T) {
	tests := []struct {
		k     kind.SourceKind
		in    string
		out   string
		flags fpenv.Flags
	}{
		{kind.Real4, "0.1", "0.100000001490116119384765625", fpenv.Inexact},
		{kind.Real4, "0.5e-3", "0.0005000000237487256526947021484375", fpenv.Inexact},
		{kind.Real8, "-0", "-0", 0},
		{kind.Real8, "inf", "+Inf", 0},
		{kind.Real2, "65504", "65504", 0},
		{kind.Real2, "1e6", "+Inf", fpenv.Overflow | fpenv.Inexact},
		{kind.Real10, "1.5", "1.5", 0},
		{kind.Real16, "0.5", "0.5", 0},
		{kind.Real3, "3", "3", 0},
		{kind.Real8, "1e300000", "+Inf", fpenv.Overflow | fpenv.Inexact},
	}
	for _, tt := range tests {
		v, flags, err := Parse(tt.k, tt.in, fpenv.NearestEven)
		if err != nil {
			t.Fatalf("parse %s %q: %v", tt.k, tt.in, err)
		}
		if got := Text(v); got != tt.out || flags != tt.flags {
			t.Errorf("%s %q -> %s (%s), want %s (%s)", tt.k, tt.in, got, flags, tt.out, tt.flags)
		}
	}
}

func TestParseRealRoundsOnce(t *testing.T) {
	next := math.Nextafter(1, 2)
	tests := []struct {
		name  string
		in    string
		want  float64
		flags fpenv.Flags
	}{
		{"just above a tie", "1.00000000000000011102230246251565404236316680908203125" + strings.Repeat("0", 400) + "1", next, fpenv.Inexact},
		{"exact tie", "1.00000000000000011102230246251565404236316680908203125", 1, fpenv.Inexact},
		{"just below a tie", "1.00000000000000011102230246251565404236316680908203124" + strings.Repeat("9", 400), 1, fpenv.Inexact},
		{"far digit", "1." + strings.Repeat("0", 300) + "1", 1, fpenv.Inexact},
		{"negative far digit", "-1." + strings.Repeat("0", 300) + "1", -1, fpenv.Inexact},
		{"exact", "1.0000000000000002220446049250313080847263336181640625", next, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, flags, err := Parse(kind.Real8, tt.in, fpenv.NearestEven)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := string(v.Bits); got != string(f64bits(tt.want)) || flags != tt.flags {
				t.Errorf("got %x (%s), want %x (%s)", v.Bits, flags, f64bits(tt.want), tt.flags)
			}
		})
	}
}

func TestParseRealUpward(t *testing.T) {
	v, flags, err := Parse(kind.Real8, "1."+strings.Repeat("0", 300)+"1", fpenv.Upward)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if string(v.Bits) != string(f64bits(math.Nextafter(1, 2))) || flags != fpenv.Inexact {
		t.Errorf("got %x (%s)", v.Bits, flags)
	}
}

func TestParseRealRejectsNonDecimal(t *testing.T) {
	for _, in := range []string{"1/3", "0x1p-2", "1_000.5", "1.0d0", ""} {
		if _, _, err := Parse(kind.Real8, in, fpenv.NearestEven); err == nil {
			t.Errorf("Parse(%q) accepted", in)
		}
	}
}

func TestTextIsExact(t *testing.T) {
	v, _, err := Parse(kind.Real8, "0.1", fpenv.NearestEven)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := Text(v), "0.1000000000000000055511151231257827021181583404541015625"; got != want {
		t.Errorf("Text = %s, want %s", got, want)
	}
	big2, _, err := Parse(kind.Real8, "1e30", fpenv.NearestEven)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := Text(big2), "1000000000000000019884624838656"; got != want {
		t.Errorf("Text = %s, want %s", got, want)
	}
}

func TestCheckRejectsBadLength(t *testing.T) {
	if err := (Value{Kind: kind.Real8, Bits: make([]byte, 4)}).Check(); !errors.Is(err, ErrSize) {
		t.Fatalf("expected ErrSize, got %v", err)
	}
	if err := (Value{Kind: kind.Of(kind.Real, 5), Bits: nil}).Check(); !errors.Is(err, ErrKind) {
		t.Fatalf("expected ErrKind, got %v", err)
	}
}
