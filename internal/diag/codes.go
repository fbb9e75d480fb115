package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Folding conditions
	FoldInfo         Code = 4000
	FoldOverflow     Code = 4001
	FoldInvalid      Code = 4002
	FoldDivByZero    Code = 4003
	FoldUnderflow    Code = 4004
	FoldInexact      Code = 4005
	FoldTrapped      Code = 4010
	FoldIntOverflow  Code = 4020
	FoldIntDivByZero Code = 4021
	FoldBadOperands  Code = 4030

	// Kind support
	KindInfo        Code = 5000
	KindUnsupported Code = 5001
	KindPromoted    Code = 5002
	KindUnknown     Code = 5003

	// Host profiles
	ProfileInfo     Code = 6000
	ProfileInvalid  Code = 6001
	ProfileUnknown  Code = 6002
	ProfileMismatch Code = 6003
	ProfileNoIEEE   Code = 6004
	ProfileTables   Code = 6005
	ProfileSelfTest Code = 6006
)

var (
	codeDescription = map[Code]string{
		UnknownCode:      "Unknown error",
		FoldInfo:         "Folding information",
		FoldOverflow:     "floating-point overflow in constant expression",
		FoldInvalid:      "invalid floating-point operation in constant expression",
		FoldDivByZero:    "floating-point division by zero in constant expression",
		FoldUnderflow:    "floating-point underflow in constant expression",
		FoldInexact:      "inexact result in constant expression",
		FoldTrapped:      "trapped floating-point condition in constant expression",
		FoldIntOverflow:  "integer overflow in constant expression",
		FoldIntDivByZero: "integer division by zero in constant expression",
		FoldBadOperands:  "operation not defined for these operands",
		KindInfo:         "Kind information",
		KindUnsupported:  "kind not supported on this target",
		KindPromoted:     "kind folded in a wider host type",
		KindUnknown:      "unknown kind",
		ProfileInfo:      "Profile information",
		ProfileInvalid:   "invalid host profile",
		ProfileUnknown:   "unknown host profile",
		ProfileMismatch:  "host table differs from its recorded snapshot",
		ProfileNoIEEE:    "host has no IEEE-754 floating-point type",
		ProfileTables:    "registry tables disagree",
		ProfileSelfTest:  "host arithmetic self-test failed",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("FLD%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("KND%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRF%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
