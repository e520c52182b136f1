package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/project"
	"github.com/AndreyAkinshin/specoracle/internal/snapshot"
	"github.com/AndreyAkinshin/specoracle/internal/watcher"
)

type watchOptions struct {
	snapshot bool
}

func (a *app) newWatchCmd() *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-ingest the corpus whenever source files change",
		Long: `Watch ingests the corpus, then re-ingests it each time a file below the
corpus root or the suite-definition file changes. Bursts of changes are
coalesced using the watch.debounce_ms setting. Stop with Ctrl-C.

Examples:
  specoracle watch
  specoracle watch --snapshot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.snapshot, "snapshot", false, "rewrite the snapshot after every ingestion")
	return cmd
}

func (a *app) runWatch(ctx context.Context, opts watchOptions) error {
	p, err := a.loadProject()
	if err != nil {
		return err
	}

	snapshotPath, err := filepath.Abs(p.SnapshotPath())
	if err != nil {
		return oerrors.Wrap(err, "resolve snapshot path")
	}
	w, err := watcher.New(
		watcher.WithDebounce(p.Config.Debounce()),
		watcher.WithLogger(a.logger),
		watcher.WithIgnore(func(path string) bool { return path == snapshotPath }),
	)
	if err != nil {
		return oerrors.Environmentf("failed to start file watcher: %v", err)
	}
	defer w.Close()

	for _, path := range []string{p.RootDir(), p.SuitesPath()} {
		if err := w.Add(path); err != nil {
			return oerrors.Configf("cannot watch %s: %v", path, err)
		}
	}

	a.ingest(ctx, p, opts, snapshotPath)
	a.out.Info("watching %s (Ctrl-C to stop)", p.RootDir())

	err = w.Run(ctx, func(ctx context.Context, events []watcher.Event) {
		for _, e := range events {
			a.logger.Debug("change", "path", e.Path, "op", e.Op.String())
		}
		a.ingest(ctx, p, opts, snapshotPath)
	})
	if err != nil {
		return oerrors.Wrap(err, "watch stopped")
	}
	return nil
}

// ingest rebuilds the corpus and reports the outcome. Failures are printed
// and watching continues.
func (a *app) ingest(ctx context.Context, p *project.Project, opts watchOptions, snapshotPath string) {
	corpus, err := a.buildCorpus(ctx, p)
	if err != nil {
		if ctx.Err() == nil {
			a.out.ErrorPrefix("%v", err)
		}
		return
	}
	a.reportErrors(corpus)

	if opts.snapshot {
		if err := snapshot.WriteFile(snapshotPath, corpus); err != nil {
			a.out.ErrorPrefix("%v", err)
			return
		}
	}

	if len(corpus.Errors) > 0 {
		a.out.Warning("%s", summary(corpus))
		return
	}
	a.out.Success("%s", summary(corpus))
}
