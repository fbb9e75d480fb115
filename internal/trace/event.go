package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of the event. Lower values are coarser.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1 // one CLI command or library entry point
	ScopeFold                     // one folded constant or conversion
	ScopeGuard                    // floating-point environment scopes
	ScopeStep                     // single host operations
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopeFold:
		return "fold"
	case ScopeGuard:
		return "guard"
	case ScopeStep:
		return "step"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for a root span
	GID      uint64
	Name     string // e.g. "fold", "guard", "check:aarch64-linux-gnu"
	Detail   string
	Extra    map[string]string
}
