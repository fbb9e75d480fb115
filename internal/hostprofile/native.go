package hostprofile

import "unsafe"

// Facts of Go's own float types. math.MaxFloat32 is (2-2^-23)·2^127, so its
// C max_exponent is 128; likewise 1024 for float64.
const (
	float32Digits = 24
	float64Digits = 53
	float32MaxExp = 128
	float64MaxExp = 1024
)

var (
	_ [0]struct{} = [unsafe.Sizeof(float32(0)) - 4]struct{}{}
	_ [0]struct{} = [unsafe.Sizeof(float64(0)) - 8]struct{}{}
)

// Native returns the profile of the Go runtime this binary runs on. Go has
// IEEE-754 binary32 and binary64, no extended or quad type and no 128-bit
// integer primitive.
func Native() Profile {
	return Profile{
		Name:   "go",
		Int128: false,
		Floats: []FloatType{
			{Name: "float32", Size: int(unsafe.Sizeof(float32(0))), Digits: float32Digits, MaxExponent: float32MaxExp, IEC559: true},
			{Name: "float64", Size: int(unsafe.Sizeof(float64(0))), Digits: float64Digits, MaxExponent: float64MaxExp, IEC559: true},
		},
	}
}
