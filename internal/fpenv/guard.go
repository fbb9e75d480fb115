package fpenv

// Sink receives the conditions raised inside a guard scope.
type Sink interface {
	ReportFlags(Flags)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Flags)

func (f SinkFunc) ReportFlags(fl Flags) { f(fl) }

// Guard is one SetUp/CheckAndRestore scope on an Env. Guards of one Env nest
// strictly: the most recent SetUp must be the first CheckAndRestore.
type Guard struct {
	env    *Env
	saved  Snapshot
	depth  int
	active bool
}

// SetUp saves the current environment, clears the raised conditions and
// installs cfg. The returned guard must be closed with CheckAndRestore on
// every path, typically with defer.
func (e *Env) SetUp(cfg Config) *Guard {
	g := &Guard{
		env:    e,
		saved:  e.cur,
		depth:  len(e.open) + 1,
		active: true,
	}
	e.open = append(e.open, g)
	e.cur = Snapshot{
		Rounding:        cfg.Rounding,
		Traps:           cfg.Traps,
		FlushSubnormals: cfg.FlushSubnormals,
	}
	return g
}

// CheckAndRestore reports the conditions raised since SetUp to sink (when
// any were raised and sink is not nil), restores the environment saved at
// SetUp and returns the raised conditions.
//
// Closing a guard twice or out of stack order is a programming error and
// panics.
func (g *Guard) CheckAndRestore(sink Sink) Flags {
	if g == nil || !g.active {
		panic("fpenv: CheckAndRestore on a guard that is not active")
	}
	e := g.env
	if len(e.open) == 0 || e.open[len(e.open)-1] != g {
		panic("fpenv: guards restored out of stack order")
	}
	raised := e.cur.Status
	e.open[len(e.open)-1] = nil
	e.open = e.open[:len(e.open)-1]
	e.cur = g.saved
	g.active = false
	if sink != nil && raised != 0 {
		sink.ReportFlags(raised)
	}
	return raised
}

// Active reports whether the guard is still open.
func (g *Guard) Active() bool {
	return g != nil && g.active
}

// Depth returns the nesting level of the guard, starting at 1.
func (g *Guard) Depth() int {
	if g == nil {
		return 0
	}
	return g.depth
}
