package tests

import (
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	oerrors "github.com/AndreyAkinshin/specoracle/internal/errors"
)

// fileIndex is a lexical listing of every regular file below the corpus root.
type fileIndex struct {
	files []string        // slash paths relative to the root, in walk order
	dirs  map[string]bool // directories, "." included
}

func indexFiles(fsys fs.FS) (*fileIndex, error) {
	idx := &fileIndex{dirs: make(map[string]bool)}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			idx.dirs[p] = true
			return nil
		}
		if d.Type().IsRegular() {
			idx.files = append(idx.files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// resolve expands globs in declaration order. Files are de-duplicated;
// the first glob that matches a file decides its position.
//
// A pattern naming a directory ("." or "models/sat") selects every file
// below it. Other patterns are matched against slash paths, with "**"
// spanning any number of path segments.
func (idx *fileIndex) resolve(globs []string) ([]string, []*oerrors.Error) {
	var (
		out  []string
		errs []*oerrors.Error
		seen = make(map[string]bool)
	)
	for _, raw := range globs {
		pattern := normalizePattern(raw)
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, oerrors.Globf("invalid include pattern %q", raw))
			continue
		}

		matched := 0
		for _, f := range idx.files {
			if !idx.match(pattern, f) {
				continue
			}
			matched++
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
		if matched == 0 {
			errs = append(errs, oerrors.Globf("include pattern %q matched no files", raw))
		}
	}
	return out, errs
}

func (idx *fileIndex) match(pattern, file string) bool {
	if idx.dirs[pattern] {
		return pattern == "." || strings.HasPrefix(file, pattern+"/")
	}
	ok, err := doublestar.Match(pattern, file)
	return err == nil && ok
}

func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if p == "" {
		return "."
	}
	if strings.ContainsAny(p, "*?[{") {
		return strings.TrimSuffix(p, "/")
	}
	return path.Clean(p)
}
