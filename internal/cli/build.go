package cli

import (
	"context"
	"fmt"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/project"
	"github.com/AndreyAkinshin/specoracle/internal/snapshot"
	"github.com/AndreyAkinshin/specoracle/internal/tests"
)

// buildCorpus ingests the project's corpus. Cancellation is reported as an
// error even though a partial corpus exists.
func (a *app) buildCorpus(ctx context.Context, p *project.Project) (*tests.Corpus, error) {
	a.logger.Debug("building corpus", "root", p.RootDir(), "suites", p.SuitesPath())
	corpus, err := p.Build(ctx, a.logger)
	if err != nil {
		if ctx.Err() != nil {
			return nil, oerrors.Wrap(err, "ingestion cancelled")
		}
		return nil, err
	}
	return corpus, nil
}

// loadCorpus reads a snapshot when path is set and builds the corpus otherwise.
func (a *app) loadCorpus(ctx context.Context, p *project.Project, path string) (*tests.Corpus, error) {
	if path == "" {
		return a.buildCorpus(ctx, p)
	}
	a.logger.Debug("reading snapshot", "path", path)
	return snapshot.ReadFile(path)
}

// reportErrors prints ingestion errors as warnings.
func (a *app) reportErrors(corpus *tests.Corpus) {
	for _, err := range corpus.Errors {
		a.out.Warning("%v", err)
	}
}

func summary(corpus *tests.Corpus) string {
	return fmt.Sprintf("%d suites, %d cases, %d errors", len(corpus.Suites), len(corpus.Cases), len(corpus.Errors))
}
