package cli

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/oracle"
	"github.com/AndreyAkinshin/specoracle/internal/tests"
)

type checkOptions struct {
	file     string
	doc      int
	suite    string
	snapshot string
}

func (a *app) newCheckCmd() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check --file FILE [--doc N] ACTUAL.json",
		Short: "Check an actual solver outcome against a test case",
		Long: `Check matches an actual outcome, given as JSON, against the expectations of
the test case built from document N (0-based) of FILE. FILE is relative to
the corpus root. When several suites include FILE, the outcome is checked
against each of their cases unless --suite selects one.

The actual outcome is read from ACTUAL.json, or from stdin when it is "-":
  {"status": "SATISFIED", "solution": {"x": 1}, "objective": 3, "output": "x = 1;"}
  {"error": {"kind": "TypeError", "message": "..."}}

The command exits with status 1 when any case fails.

Examples:
  specoracle check --file models/queens.mzn actual.json
  solver ... | specoracle check --file a.mzn --doc 1 -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "source file of the case, relative to the corpus root")
	cmd.Flags().IntVarP(&opts.doc, "doc", "d", 0, "document index of the case within the file")
	cmd.Flags().StringVar(&opts.suite, "suite", "", "only check the case of this suite")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "read the corpus from a snapshot instead of ingesting")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, opts checkOptions, actualPath string) error {
	if opts.doc < 0 {
		return oerrors.Configf("--doc must not be negative (got %d)", opts.doc)
	}
	data, err := readActual(cmd.InOrStdin(), actualPath)
	if err != nil {
		return err
	}
	actual, err := oracle.DecodeActual(data)
	if err != nil {
		return err
	}

	p, err := a.loadProject()
	if err != nil {
		return err
	}
	corpus, err := a.loadCorpus(cmd.Context(), p, opts.snapshot)
	if err != nil {
		return err
	}

	file := path.Clean(filepath.ToSlash(opts.file))
	cases := findCases(corpus, opts.suite, file, opts.doc)
	if len(cases) == 0 {
		a.reportErrors(corpus)
		return oerrors.NotFound("test case", fmt.Sprintf("%s[%d]", file, opts.doc))
	}

	o := oracle.New(corpus, p.Config.FloatTolerance)
	failed := 0
	for _, tc := range cases {
		res := o.Check(tc, actual)
		label := fmt.Sprintf("%s %s (%s)", tc.Suite, tc.ID(), tc.Name)
		if res.Passed {
			a.out.CasePassed(label, fmt.Sprintf("expected[%d]", res.Matched))
			continue
		}
		failed++
		diagnostics := make([]string, len(res.Diagnostics))
		for i, d := range res.Diagnostics {
			diagnostics[i] = d.String()
		}
		a.out.CaseFailed(label, diagnostics)
	}

	a.out.CheckSummary(len(cases), failed)
	if failed > 0 {
		a.logger.Debug("check failed", "cases", len(cases), "failed", failed)
		return &exitCodeError{code: oerrors.ExitRuntimeError}
	}
	return nil
}

func readActual(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, oerrors.Wrap(err, "read actual outcome from stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NotFound("actual outcome", name)
		}
		return nil, oerrors.Wrap(err, "read actual outcome")
	}
	return data, nil
}

// findCases returns the cases built from document doc of file, restricted
// to suite when it is set.
func findCases(corpus *tests.Corpus, suite, file string, doc int) []*tests.TestCase {
	if suite != "" {
		if tc, ok := corpus.Case(suite, file, doc); ok {
			return []*tests.TestCase{tc}
		}
		return nil
	}
	var out []*tests.TestCase
	for _, tc := range corpus.Cases {
		if tc.SourceFile == file && tc.Index == doc {
			out = append(out, tc)
		}
	}
	return out
}
