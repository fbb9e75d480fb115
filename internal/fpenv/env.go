package fpenv

import "fmt"

// Snapshot is the complete floating-point environment at one instant.
type Snapshot struct {
	Rounding        Rounding
	Traps           Flags // conditions that stop the operation raising them
	Status          Flags // sticky conditions raised so far
	FlushSubnormals bool
}

// Config is the environment a folding context asks for at SetUp.
type Config struct {
	Rounding        Rounding
	Traps           Flags
	FlushSubnormals bool
}

// Env is the floating-point environment of one goroutine. Host arithmetic
// reads its rounding attributes and raises conditions into it.
//
// An Env is not safe for concurrent use; every goroutine that folds owns one.
type Env struct {
	cur  Snapshot
	open []*Guard
}

// New returns an environment with IEEE defaults: round to nearest even,
// no traps, no raised conditions.
func New() *Env {
	return &Env{}
}

// Snapshot returns a copy of the current state.
func (e *Env) Snapshot() Snapshot {
	return e.cur
}

// Rounding returns the active rounding direction.
func (e *Env) Rounding() Rounding {
	return e.cur.Rounding
}

// FlushSubnormals reports whether subnormal results are replaced by zero.
func (e *Env) FlushSubnormals() bool {
	return e.cur.FlushSubnormals
}

// Status returns the conditions raised since the last SetUp.
func (e *Env) Status() Flags {
	return e.cur.Status
}

// Depth returns the number of guards currently open.
func (e *Env) Depth() int {
	return len(e.open)
}

// Raise records conditions. When one of them is trapped it returns a
// *TrapError; the conditions stay recorded either way.
func (e *Env) Raise(f Flags) error {
	if f == 0 {
		return nil
	}
	e.cur.Status |= f
	if trapped := f & e.cur.Traps; trapped != 0 {
		return &TrapError{Flags: trapped}
	}
	return nil
}

// TrapError reports that an operation raised a trapped condition.
type TrapError struct {
	Flags Flags
}

func (e *TrapError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("floating-point trap: %s", e.Flags)
}
