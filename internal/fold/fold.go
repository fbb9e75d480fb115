// Package fold evaluates constant expressions of source kinds with host
// arithmetic. Every evaluation runs inside a floating-point guard, so the
// rounding direction, traps and flush mode of the caller's environment are
// the same before and after a fold.
package fold

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hostfold/internal/diag"
	"hostfold/internal/fpenv"
	"hostfold/internal/hostarith"
	"hostfold/internal/kind"
	"hostfold/internal/registry"
	"hostfold/internal/scalar"
	"hostfold/internal/trace"
)

var (
	// ErrUnsupportedKind reports a kind the host cannot represent, even
	// through promotion.
	ErrUnsupportedKind = errors.New("kind not supported on this host")
	// ErrTrapped reports a fold stopped by a trapped condition. It wraps
	// the *fpenv.TrapError that stopped it.
	ErrTrapped = errors.New("trapped floating-point condition")
	// ErrOperands reports operands that do not fit the operation.
	ErrOperands = errors.New("bad operands")
)

// Policy selects the diagnostics a folder reports besides errors.
type Policy struct {
	ReportInexact   bool // FLD4005 for rounded results
	ReportPromotion bool // KND5002 when a kind is folded in a wider one
}

// Options configures a Folder. Zero fields take defaults.
type Options struct {
	Env      *fpenv.Env   // default: a fresh environment
	Config   fpenv.Config // installed for the duration of every fold
	Reporter diag.Reporter
	Policy   Policy
}

// Folder folds constants of one compilation. It owns an fpenv.Env and is
// not safe for concurrent use; give each goroutine its own Folder.
type Folder struct {
	reg      *registry.Registry
	env      *fpenv.Env
	cfg      fpenv.Config
	reporter diag.Reporter
	policy   Policy
}

// New returns a folder backed by the host registry.
func New(opts Options) *Folder {
	f := &Folder{
		reg:      registry.Host(),
		env:      opts.Env,
		cfg:      opts.Config,
		reporter: opts.Reporter,
		policy:   opts.Policy,
	}
	if f.env == nil {
		f.env = fpenv.New()
	}
	if f.reporter == nil {
		f.reporter = diag.NopReporter{}
	}
	return f
}

// Env returns the folder's floating-point environment.
func (f *Folder) Env() *fpenv.Env {
	return f.env
}

// Registry returns the correspondence table the folder consults.
func (f *Folder) Registry() *registry.Registry {
	return f.reg
}

// Fold applies op to args, all of kind k, and returns the result in k.
// A kind without a host type of its own is evaluated in the widest usable
// kind and narrowed back with the configured rounding.
func (f *Folder) Fold(ctx context.Context, op hostarith.Op, k kind.SourceKind, args ...scalar.Value) (scalar.Value, error) {
	subject := describe(op, k, args)
	ctx, span := trace.Start(ctx, trace.ScopeFold, "fold")
	span.WithExtra("op", op.String()).WithExtra("kind", k.String())

	v, err := f.fold(ctx, op, k, args, subject)
	if err != nil {
		span.End(err.Error())
		return scalar.Value{}, err
	}
	span.End(scalar.Text(v))
	return v, nil
}

func (f *Folder) fold(ctx context.Context, op hostarith.Op, k kind.SourceKind, args []scalar.Value, subject string) (scalar.Value, error) {
	if err := f.checkOperands(op, k, args, subject); err != nil {
		return scalar.Value{}, err
	}
	switch k.Category {
	case kind.Integer:
		if _, ok := f.reg.RepresentationOf(k); !ok {
			return scalar.Value{}, f.unsupported(k, subject)
		}
		v, err := evalInteger(op, k, args)
		return v, f.integerError(err, subject)
	case kind.Real, kind.Complex:
		_, via, ok := f.reg.WidestUsable(k)
		if !ok {
			return scalar.Value{}, f.unsupported(k, subject)
		}
		if via != k && f.policy.ReportPromotion {
			diag.ReportInfo(f.reporter, diag.KindPromoted, k.String(),
				fmt.Sprintf("%s folded as %s", k, via)).Emit()
		}
		return f.guarded(ctx, subject, func(e *fpenv.Env) (scalar.Value, error) {
			wide := args
			if via != k {
				var err error
				if wide, err = widen(args, via); err != nil {
					return scalar.Value{}, err
				}
			}
			v, err := evalFloat(e, op, via, wide)
			if err != nil || via == k {
				return v, err
			}
			return narrow(e, v, k)
		})
	default:
		err := fmt.Errorf("%w: %s on %s", hostarith.ErrOperation, op, k)
		return scalar.Value{}, f.operandError(err, subject)
	}
}

func (f *Folder) checkOperands(op hostarith.Op, k kind.SourceKind, args []scalar.Value, subject string) error {
	if !kind.Valid(k) {
		diag.ReportError(f.reporter, diag.KindUnknown, subject, fmt.Sprintf("unknown kind %s", k)).Emit()
		return fmt.Errorf("%w: unknown kind %s", ErrOperands, k)
	}
	if n := op.Arity(); n == 0 || len(args) != n {
		return f.operandError(fmt.Errorf("%w: %s takes %d operands, have %d", ErrOperands, op, n, len(args)), subject)
	}
	for i, a := range args {
		if a.Kind != k {
			return f.operandError(fmt.Errorf("%w: operand %d is %s, want %s", ErrOperands, i+1, a.Kind, k), subject)
		}
		if err := a.Check(); err != nil {
			return f.operandError(fmt.Errorf("%w: operand %d: %w", ErrOperands, i+1, err), subject)
		}
	}
	return nil
}

// guarded runs body with the folder's configuration installed and turns the
// conditions it raised into diagnostics.
func (f *Folder) guarded(ctx context.Context, subject string, body func(*fpenv.Env) (scalar.Value, error)) (v scalar.Value, err error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	g := f.env.SetUp(f.cfg)
	trace.Point(tracer, trace.ScopeGuard, "setup", f.cfg.Rounding.String(), parent,
		map[string]string{"depth": fmt.Sprint(g.Depth())})
	defer func() {
		raised := g.CheckAndRestore(fpenv.SinkFunc(func(fl fpenv.Flags) {
			trace.Point(tracer, trace.ScopeGuard, "raised", fl.String(), parent, nil)
		}))
		trace.Point(tracer, trace.ScopeGuard, "restore", f.env.Rounding().String(), parent, nil)
		v, err = f.judge(subject, v, raised, err)
	}()
	return body(f.env)
}

func (f *Folder) unsupported(k kind.SourceKind, subject string) error {
	diag.ReportError(f.reporter, diag.KindUnsupported, subject,
		fmt.Sprintf("%s has no host representation", k)).
		WithNote(fmt.Sprintf("host profile %q", f.reg.Profile().Name)).
		Emit()
	return fmt.Errorf("%w: %s", ErrUnsupportedKind, k)
}

func (f *Folder) operandError(err error, subject string) error {
	diag.ReportError(f.reporter, diag.FoldBadOperands, subject, err.Error()).Emit()
	return err
}

func (f *Folder) integerError(err error, subject string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, hostarith.ErrIntegerOverflow), errors.Is(err, scalar.ErrRange):
		diag.ReportError(f.reporter, diag.FoldIntOverflow, subject, err.Error()).Emit()
	case errors.Is(err, hostarith.ErrDivideByZero):
		diag.ReportError(f.reporter, diag.FoldIntDivByZero, subject, err.Error()).Emit()
	default:
		diag.ReportError(f.reporter, diag.FoldBadOperands, subject, err.Error()).Emit()
	}
	return err
}

func describe(op hostarith.Op, k kind.SourceKind, args []scalar.Value) string {
	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = scalar.Text(a)
	}
	switch {
	case len(texts) == 2 && op.Arity() == 2:
		return fmt.Sprintf("%s %s %s %s", k, texts[0], op, texts[1])
	default:
		return fmt.Sprintf("%s %s(%s)", k, op, strings.Join(texts, ", "))
	}
}
