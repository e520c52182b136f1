package cli

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/snapshot"
)

type snapshotOptions struct {
	output string
	check  bool
}

func (a *app) newSnapshotCmd() *cobra.Command {
	var opts snapshotOptions
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the ingested corpus as canonical JSON",
		Long: `Snapshot ingests the corpus and writes it as canonical JSON, by default to
the snapshot path of the configuration. Use "-o -" to write to stdout.

With --check nothing is written; the command fails when the existing
snapshot differs from the freshly ingested corpus.

Examples:
  specoracle snapshot
  specoracle snapshot -o - | jq .
  specoracle snapshot --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSnapshot(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default from config, - for stdout)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "verify the existing snapshot is up to date")
	return cmd
}

func (a *app) runSnapshot(cmd *cobra.Command, opts snapshotOptions) error {
	p, err := a.loadProject()
	if err != nil {
		return err
	}
	corpus, err := a.buildCorpus(cmd.Context(), p)
	if err != nil {
		return err
	}
	a.reportErrors(corpus)

	data, err := snapshot.Encode(corpus)
	if err != nil {
		return oerrors.Wrap(err, "encode snapshot")
	}

	path := opts.output
	if path == "" {
		path = p.SnapshotPath()
	}

	if opts.check {
		existing, err := os.ReadFile(path)
		if err != nil {
			return oerrors.Wrap(err, "read snapshot")
		}
		if !bytes.Equal(existing, data) {
			a.out.ErrorPrefix("snapshot %s is out of date; run 'specoracle snapshot' to update it", path)
			return &exitCodeError{code: oerrors.ExitRuntimeError}
		}
		a.out.Success("snapshot %s is up to date (%s)", path, summary(corpus))
		return nil
	}

	if path == "-" {
		if _, err := a.out.Out().Write(append(data, '\n')); err != nil {
			return oerrors.Wrap(err, "write snapshot")
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return oerrors.Wrap(err, "write snapshot")
	}
	a.out.Info("wrote %s (%s)", path, summary(corpus))
	return nil
}
