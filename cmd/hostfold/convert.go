package main

import (
	"github.com/spf13/cobra"

	"hostfold/internal/diag"
	"hostfold/internal/fold"
	"hostfold/internal/kind"
	"hostfold/internal/scalar"
)

var convertFlags envFlags

func init() {
	convertFlags.register(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <to-kind> <from-kind> <literal>",
	Short: "Convert a constant between kinds",
	Example: `  hostfold convert 'REAL(4)' 'REAL(8)' 0.1 --inexact
  hostfold convert 'INTEGER(2)' 'REAL(8)' 12.75
  hostfold convert 'COMPLEX(8)' 'INTEGER(4)' 7`,
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	to, err := kind.Parse(args[0])
	if err != nil {
		return err
	}
	from, err := kind.Parse(args[1])
	if err != nil {
		return err
	}

	bag, err := newBag(cmd)
	if err != nil {
		return err
	}
	opts, err := convertFlags.options(diag.BagReporter{Bag: bag})
	if err != nil {
		return err
	}
	x, err := parseOperand(from, args[2], opts)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close(cmd)

	var result scalar.Value
	convErr := s.phase("convert", func() (string, error) {
		var err error
		result, err = fold.New(opts).Convert(s.ctx, to, x)
		return from.String() + " -> " + to.String(), err
	})
	printDiagnostics(cmd.ErrOrStderr(), bag)
	if convErr != nil {
		return convErr
	}
	printResult(cmd.OutOrStdout(), result, convertFlags.bytes)
	return nil
}
