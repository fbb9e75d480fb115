// Package profcheck verifies host profiles: that their facts are valid, that
// the registry decided from them is self-consistent, that a cached table
// still matches, and for the native profile that host folding agrees with
// Go's own arithmetic.
package profcheck

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"hostfold/internal/diag"
	"hostfold/internal/fold"
	"hostfold/internal/fpenv"
	"hostfold/internal/hostprofile"
	"hostfold/internal/kind"
	"hostfold/internal/regcache"
	"hostfold/internal/registry"
	"hostfold/internal/trace"
	"hostfold/internal/ui"
)

// Progress receives per-profile status changes.
type Progress interface {
	Publish(ui.Event)
}

// Options configures a check. Zero fields disable the feature.
type Options struct {
	Cache    *regcache.Cache
	Jobs     int // concurrent profiles in CheckAll; <= 0 means one per profile
	Progress Progress
	Reporter diag.Reporter
}

// Result is the outcome of checking one profile.
type Result struct {
	Profile   string
	Digest    [32]byte
	Supported int
	Promoted  int
	Cached    bool // the table came from the cache
	SelfTest  bool // the native self-test ran
	Problems  []*Error
}

// OK reports whether no problem is an error.
func (r Result) OK() bool {
	for _, p := range r.Problems {
		if p.Severity() == diag.SevError {
			return false
		}
	}
	return true
}

// Check verifies one profile.
func Check(ctx context.Context, p hostprofile.Profile, opts Options) Result {
	ctx, span := trace.Start(ctx, trace.ScopeFold, "check")
	span.WithExtra("profile", p.Name)

	res := Result{Profile: p.Name, Digest: p.Digest()}
	defer func() {
		report(opts.Reporter, res)
		span.End(fmt.Sprintf("%d problems", len(res.Problems)))
	}()

	if err := p.Validate(); err != nil {
		res.Problems = append(res.Problems, &Error{Kind: ErrInvalidProfile, Profile: p.Name, Err: err})
		return res
	}

	reg := registry.New(p)
	if opts.Cache != nil {
		cached, hit, err := opts.Cache.Get(res.Digest)
		switch {
		case err != nil:
			res.Problems = append(res.Problems, &Error{Kind: ErrSnapshotMismatch, Profile: p.Name, Detail: err.Error()})
		case hit && !slices.Equal(cached.Entries(), reg.Entries()):
			res.Problems = append(res.Problems, &Error{Kind: ErrSnapshotMismatch, Profile: p.Name, Detail: diffEntries(cached, reg)})
		case hit:
			res.Cached = true
		}
		if !res.Cached {
			if err := opts.Cache.Put(reg); err != nil {
				res.Problems = append(res.Problems, &Error{Kind: ErrSnapshotMismatch, Profile: p.Name, Detail: err.Error()})
			}
		}
	}

	res.Problems = append(res.Problems, tables(p.Name, reg)...)
	for _, e := range reg.Entries() {
		if e.Supported {
			res.Supported++
		} else if e.Promoted() {
			res.Promoted++
		}
	}

	if res.Digest == hostprofile.Native().Digest() && ctx.Err() == nil {
		res.SelfTest = true
		f := fold.New(fold.Options{Env: fpenv.New()})
		for _, line := range selfTest(ctx, f) {
			res.Problems = append(res.Problems, &Error{Kind: ErrSelfTest, Profile: p.Name, Detail: line})
		}
	}
	return res
}

// tables checks the registry's own invariants.
func tables(name string, reg *registry.Registry) []*Error {
	var out []*Error
	anyReal := false
	for _, k := range kind.All() {
		rep, ok := reg.RepresentationOf(k)
		if !ok {
			continue
		}
		want := k
		if k.Category == kind.Logical {
			want = kind.Logical1
		}
		if back, ok := reg.KindOf(rep); !ok || back != want {
			out = append(out, &Error{Kind: ErrInconsistent, Profile: name, Subject: k, Detail: rep.String()})
		}
		switch k.Category {
		case kind.Real:
			anyReal = true
		case kind.Complex:
			if !reg.Exists(k.Part()) {
				out = append(out, &Error{Kind: ErrComplexWithoutReal, Profile: name, Subject: k})
			}
		}
	}
	if !anyReal {
		out = append(out, &Error{Kind: ErrNoIEEE, Profile: name})
	}
	return out
}

func diffEntries(cached, decided *registry.Registry) string {
	a, b := cached.Entries(), decided.Entries()
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != b[i] {
			return fmt.Sprintf("%s: cached %v, decided %v", a[i].Kind, a[i].Rep, b[i].Rep)
		}
	}
	return fmt.Sprintf("cached %d kinds, decided %d", len(a), len(b))
}

func report(r diag.Reporter, res Result) {
	if r == nil {
		return
	}
	for _, p := range res.Problems {
		subject := res.Profile
		if !p.Subject.IsZero() {
			subject += " " + p.Subject.String()
		}
		diag.NewReportBuilder(r, p.Severity(), p.Code(), subject, p.Error()).Emit()
	}
}

// CheckAll verifies profiles concurrently, at most opts.Jobs at a time.
// Results are in the order of profiles. Each worker folds with its own
// environment. The error is non-nil only when ctx is cancelled.
func CheckAll(ctx context.Context, profiles []hostprofile.Profile, opts Options) ([]Result, error) {
	results := make([]Result, len(profiles))
	publish := func(ev ui.Event) {
		if opts.Progress != nil {
			opts.Progress.Publish(ev)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, p := range profiles {
		i, p := i, p
		publish(ui.Event{Item: p.Name, Status: ui.StatusQueued})
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			publish(ui.Event{Item: p.Name, Status: ui.StatusWorking})
			res := Check(gctx, p, opts)
			results[i] = res
			status, note := ui.StatusDone, fmt.Sprintf("%d kinds, %d promoted", res.Supported, res.Promoted)
			if !res.OK() {
				status, note = ui.StatusFailed, fmt.Sprintf("%d problems", len(res.Problems))
			}
			publish(ui.Event{Item: p.Name, Status: status, Note: note})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
