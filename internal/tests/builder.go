package tests

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
	"github.com/AndreyAkinshin/specoracle/internal/extract"
)

const (
	// minWorkers keeps the semaphore from deadlocking when NumCPU reports 0.
	minWorkers = 1
	maxWorkers = 256
)

// FileReader reads a file by absolute path.
type FileReader func(path string) ([]byte, error)

// Builder ingests the files included by a set of suite definitions.
type Builder struct {
	Root        string       // corpus root; globs resolve relative to it
	Definitions *Definitions // parsed suite definitions
	Workers     int          // parallel file tasks; <= 0 means runtime.NumCPU()
	ReadFile    FileReader   // defaults to os.ReadFile
	Logger      *slog.Logger // defaults to slog.Default()
}

// fileResult is the extraction of one included file.
type fileResult struct {
	done bool
	res  extract.Result
	err  error
}

// Build resolves every suite's includes, extracts the embedded documents of
// each file and assembles the corpus.
//
// Files are extracted in parallel; the corpus is merged in suite, file and
// document order regardless of completion order. Per-file and per-document
// problems are collected in Corpus.Errors. The returned error is non-nil
// only when the root is missing or ctx is cancelled; in the latter case the
// corpus holds the files that were processed before cancellation.
func (b *Builder) Build(ctx context.Context) (*Corpus, error) {
	log := b.logger()

	info, err := os.Stat(b.Root)
	if err != nil || !info.IsDir() {
		return nil, oerrors.Configf("corpus root %q does not exist or is not a directory", b.Root)
	}
	idx, err := indexFiles(os.DirFS(b.Root))
	if err != nil {
		return nil, oerrors.Wrap(err, "failed to list corpus root")
	}

	corpus := &Corpus{Root: b.Root}
	defs := b.Definitions
	if defs == nil {
		defs = &Definitions{}
	}
	for _, w := range defs.Warnings {
		log.Warn(w)
	}
	corpus.Errors = append(corpus.Errors, defs.Errors...)

	// Suites are copied so repeated builds never share case lists.
	var files []string
	slot := make(map[string]int)
	for _, def := range defs.Suites {
		s := *def
		s.TestCases = nil
		var globErrs []*oerrors.Error
		s.IncludeFiles, globErrs = idx.resolve(s.IncludeGlobs)
		for _, err := range globErrs {
			corpus.Errors = append(corpus.Errors, err.InSuite(s.Name))
		}
		for _, f := range s.IncludeFiles {
			if _, ok := slot[f]; !ok {
				slot[f] = len(files)
				files = append(files, f)
			}
		}
		corpus.Suites = append(corpus.Suites, &s)
	}

	results := b.extractAll(ctx, files)

	reported := make([]bool, len(files))
	for _, s := range corpus.Suites {
		for _, f := range s.IncludeFiles {
			i := slot[f]
			r := &results[i]
			if !r.done {
				continue
			}
			if !reported[i] {
				reported[i] = true
				corpus.Errors = append(corpus.Errors, fileErrors(f, r)...)
			}
			for _, doc := range r.res.Documents {
				tc, warnings, err := buildCase(s, f, doc)
				for _, w := range warnings {
					log.Warn(w, "suite", s.Name)
				}
				if err != nil {
					corpus.Errors = append(corpus.Errors, err)
					continue
				}
				s.TestCases = append(s.TestCases, tc)
				corpus.Cases = append(corpus.Cases, tc)
			}
		}
	}

	for _, err := range corpus.Errors {
		log.Warn("ingestion error", "error", err)
	}
	log.Info("corpus built",
		"suites", len(corpus.Suites),
		"files", len(files),
		"cases", len(corpus.Cases),
		"errors", len(corpus.Errors))

	if err := ctx.Err(); err != nil {
		return corpus, err
	}
	return corpus, nil
}

// extractAll runs one task per file through a bounded worker pool.
// Once ctx is done no further task is started; running tasks finish.
func (b *Builder) extractAll(ctx context.Context, files []string) []fileResult {
	results := make([]fileResult, len(files))
	read := b.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	log := b.logger()

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.workers())

dispatch:
	for i, f := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-sem
			break dispatch
		}

		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			defer func() { <-sem }()

			log.Debug("extracting", "file", f)
			data, err := read(filepath.Join(b.Root, filepath.FromSlash(f)))
			if err != nil {
				results[i] = fileResult{done: true, err: err}
				return
			}
			results[i] = fileResult{done: true, res: extract.Extract(string(data))}
		}(i, f)
	}

	wg.Wait()
	return results
}

func fileErrors(file string, r *fileResult) []error {
	if r.err != nil {
		return []error{oerrors.Wrap(r.err, "failed to read file").At(file, 0, 0)}
	}
	out := make([]error, 0, len(r.res.Errors))
	for _, err := range r.res.Errors {
		var e *oerrors.Error
		if errors.As(err, &e) {
			err = e.At(file, e.Document, e.Line)
		}
		out = append(out, err)
	}
	return out
}

func (b *Builder) workers() int {
	n := b.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return min(max(n, minWorkers), maxWorkers)
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
