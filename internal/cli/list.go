package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/specoracle/internal/tests"
	"github.com/AndreyAkinshin/specoracle/internal/value"
)

type listOptions struct {
	suite    string
	snapshot string
}

func (a *app) newListCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List suites, test cases and ingestion errors",
		Long: `List ingests the corpus and prints its suites, test cases and any
ingestion errors.

Examples:
  specoracle list
  specoracle list --suite models
  specoracle list --snapshot corpus.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.suite, "suite", "", "only list cases of this suite")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "read the corpus from a snapshot instead of ingesting")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, opts listOptions) error {
	p, err := a.loadProject()
	if err != nil {
		return err
	}
	corpus, err := a.loadCorpus(cmd.Context(), p, opts.snapshot)
	if err != nil {
		return err
	}

	var suiteRows [][]string
	for _, s := range corpus.Suites {
		if opts.suite != "" && s.Name != opts.suite {
			continue
		}
		suiteRows = append(suiteRows, []string{
			s.Name,
			strconv.FormatBool(s.Strict),
			strings.Join(s.Solvers, ","),
			strconv.Itoa(len(s.IncludeFiles)),
			strconv.Itoa(len(s.TestCases)),
		})
	}
	a.out.Section("Suites")
	a.out.Table([]string{"SUITE", "STRICT", "SOLVERS", "FILES", "CASES"}, suiteRows)

	var caseRows [][]string
	for _, tc := range corpus.Cases {
		if opts.suite != "" && tc.Suite != opts.suite {
			continue
		}
		caseRows = append(caseRows, caseRow(tc))
	}
	a.out.Section("Cases")
	a.out.Table([]string{"ID", "SUITE", "NAME", "TYPE", "EXPECTED"}, caseRows)

	if len(corpus.Errors) > 0 {
		a.out.Section("Errors")
		items := make([]string, len(corpus.Errors))
		for i, err := range corpus.Errors {
			items[i] = err.Error()
		}
		a.out.List(items)
	}

	a.out.Info("")
	a.out.Info("%s", summary(corpus))
	return nil
}

func caseRow(tc *tests.TestCase) []string {
	outcomes := make([]string, len(tc.Expectations))
	for i, exp := range tc.Expectations {
		switch e := exp.(type) {
		case *value.Result:
			outcomes[i] = e.Status
		case *value.ErrorExpectation:
			outcomes[i] = "error " + e.Type
		}
	}
	return []string{tc.ID(), tc.Suite, tc.Name, tc.Type, strings.Join(outcomes, " | ")}
}
