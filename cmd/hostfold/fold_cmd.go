package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hostfold/internal/diag"
	"hostfold/internal/fold"
	"hostfold/internal/fpenv"
	"hostfold/internal/hostarith"
	"hostfold/internal/kind"
	"hostfold/internal/scalar"
)

// envFlags are the floating-point environment flags shared by fold and
// convert.
type envFlags struct {
	rounding   string
	traps      string
	flush      bool
	inexact    bool
	promotions bool
	bytes      bool
}

func (f *envFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rounding, "round", "nearest", "rounding direction (nearest|zero|up|down)")
	cmd.Flags().StringVar(&f.traps, "traps", "none", "conditions that stop the fold (e.g. overflow,invalid or all)")
	cmd.Flags().BoolVar(&f.flush, "flush", false, "flush subnormal results to zero")
	cmd.Flags().BoolVar(&f.inexact, "inexact", false, "report inexact results")
	cmd.Flags().BoolVar(&f.promotions, "promotion-notes", false, "report kinds folded in a wider host type")
	cmd.Flags().BoolVar(&f.bytes, "bytes", false, "also print the result encoding in hex")
}

func (f *envFlags) options(r diag.Reporter) (fold.Options, error) {
	rounding, err := fpenv.ParseRounding(f.rounding)
	if err != nil {
		return fold.Options{}, err
	}
	traps, err := fpenv.ParseFlags(f.traps)
	if err != nil {
		return fold.Options{}, err
	}
	return fold.Options{
		Env:      fpenv.New(),
		Config:   fpenv.Config{Rounding: rounding, Traps: traps, FlushSubnormals: f.flush},
		Reporter: r,
		Policy:   fold.Policy{ReportInexact: f.inexact, ReportPromotion: f.promotions},
	}, nil
}

var foldFlags envFlags

func init() {
	foldFlags.register(foldCmd)
}

var foldCmd = &cobra.Command{
	Use:   "fold <kind> <op> <a> [b]",
	Short: "Fold one operation on constants with host arithmetic",
	Long: `fold evaluates one operation (add, sub, mul, div, neg, sqrt) on literal
operands of the given kind under the requested floating-point environment.
Put negative operands after "--", for example: hostfold fold REAL(8) div -- -1 0`,
	Example: `  hostfold fold 'REAL(8)' div 1 3
  hostfold fold 'REAL(2)' add 60000 60000 --promotion-notes
  hostfold fold 'COMPLEX(8)' mul '(1,2)' '(3,4)'
  hostfold fold 'INTEGER(1)' add 100 100`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runFold,
}

func runFold(cmd *cobra.Command, args []string) error {
	k, err := kind.Parse(args[0])
	if err != nil {
		return err
	}
	op, err := hostarith.ParseOp(args[1])
	if err != nil {
		return err
	}
	if got := len(args) - 2; got != op.Arity() {
		return fmt.Errorf("%s takes %d operands, got %d", op, op.Arity(), got)
	}

	bag, err := newBag(cmd)
	if err != nil {
		return err
	}
	opts, err := foldFlags.options(diag.BagReporter{Bag: bag})
	if err != nil {
		return err
	}
	operands := make([]scalar.Value, 0, 2)
	for _, text := range args[2:] {
		v, err := parseOperand(k, text, opts)
		if err != nil {
			return err
		}
		operands = append(operands, v)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	var result scalar.Value
	foldErr := s.phase("fold", func() (string, error) {
		var err error
		result, err = fold.New(opts).Fold(s.ctx, op, k, operands...)
		return op.String(), err
	})
	printDiagnostics(cmd.ErrOrStderr(), bag)
	if foldErr != nil {
		return foldErr
	}
	printResult(cmd.OutOrStdout(), result, foldFlags.bytes)
	return nil
}

// parseOperand reads a literal under the requested rounding. A literal
// that is not exactly representable gets an inexact note when asked for.
func parseOperand(k kind.SourceKind, text string, opts fold.Options) (scalar.Value, error) {
	v, flags, err := scalar.Parse(k, text, opts.Config.Rounding)
	if err != nil {
		return scalar.Value{}, err
	}
	subject := fmt.Sprintf("%s literal %s", k, text)
	if flags.Has(fpenv.Overflow) {
		diag.ReportWarning(opts.Reporter, diag.FoldOverflow, subject, "literal is out of range for its kind").
			WithNote("value " + scalar.Text(v)).Emit()
	} else if flags.Has(fpenv.Inexact) && opts.Policy.ReportInexact {
		diag.ReportInfo(opts.Reporter, diag.FoldInexact, subject, "literal is rounded to its kind").
			WithNote("value " + scalar.Text(v)).Emit()
	}
	return v, nil
}

func printResult(out io.Writer, v scalar.Value, withBytes bool) {
	if withBytes {
		fmt.Fprintf(out, "%s = %s [%s]\n", v.Kind, scalar.Text(v), hex.EncodeToString(v.Bits))
		return
	}
	fmt.Fprintln(out, scalar.Text(v))
}
