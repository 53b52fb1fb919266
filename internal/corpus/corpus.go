// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads the text files of a documentation tree for
// comparison. It walks the tree recursively, skips symbolic links and
// files that are not UTF-8 text, applies the name and extension filters,
// and removes lines matching the skip patterns.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/msuchane/near-facsimile/pkg/types"
)

// ErrInvalidPattern reports a skip-lines expression that does not compile.
var ErrInvalidPattern = errors.New("invalid skip-lines pattern")

// Summary holds counts from a corpus loading run.
type Summary struct {
	Loaded   int
	Filtered int
	Symlinks int
	NotUTF8  int
}

// Total returns the number of files encountered.
func (s Summary) Total() int {
	return s.Loaded + s.Filtered + s.Symlinks + s.NotUTF8
}

// Load reads every matching file under cfg.Root from fsys. Files are
// returned in lexical path order.
func Load(fsys afero.Fs, cfg types.LoadConfig, log zerolog.Logger) ([]types.TextUnit, Summary, error) {
	skip, err := compilePatterns(cfg.SkipLines)
	if err != nil {
		return nil, Summary{}, err
	}
	filter := newFilter(cfg)

	root := cfg.Root
	if root == "" {
		root = "."
	}

	var (
		units   []types.TextUnit
		summary Summary
	)

	walkRoot := followRoot(fsys, root)
	err = afero.Walk(fsys, walkRoot, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			log.Debug().Str("path", path).Msg("Skipping the symbolic link")
			summary.Symlinks++
			return nil
		case info.IsDir():
			if path != walkRoot {
				log.Debug().Str("path", path).Msg("Descending into directory")
			}
			return nil
		case !info.Mode().IsRegular():
			return nil
		case !filter.accepts(path):
			summary.Filtered++
			return nil
		}

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if !utf8.Valid(data) {
			log.Debug().Str("path", path).Msg("Skipping file that is not valid UTF-8 text")
			summary.NotUTF8++
			return nil
		}

		log.Debug().Str("path", path).Msg("Loading file")
		units = append(units, types.TextUnit{
			Path:    path,
			Content: stripLines(string(data), skip),
		})
		summary.Loaded++
		return nil
	})
	if err != nil {
		return nil, summary, fmt.Errorf("loading files from %s: %w", root, err)
	}

	log.Info().
		Int("loaded", summary.Loaded).
		Int("filtered", summary.Filtered).
		Int("symlinks", summary.Symlinks).
		Int("not_utf8", summary.NotUTF8).
		Msg("Loaded files")

	return units, summary, nil
}

// followRoot returns the path to walk for root. A root that is itself a
// symbolic link is followed; links inside the tree are not.
func followRoot(fsys afero.Fs, root string) string {
	lstater, ok := fsys.(afero.Lstater)
	if !ok {
		return root
	}
	info, _, err := lstater.LstatIfPossible(root)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return root
	}
	// Lstat resolves a link whose path ends in a separator.
	return root + string(filepath.Separator)
}

func compilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, expr, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// stripLines removes every line that matches one of the patterns. Line
// endings of the kept lines are preserved.
func stripLines(content string, patterns []*regexp.Regexp) string {
	if len(patterns) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	for line := range strings.SplitAfterSeq(content, "\n") {
		text := strings.TrimRight(line, "\r\n")
		if slices.ContainsFunc(patterns, func(re *regexp.Regexp) bool { return re.MatchString(text) }) {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}

// filter decides which files take part in the comparison by name and
// extension.
type filter struct {
	ignoreFiles  []string
	ignoreExts   []string
	requireFiles []string
	requireExts  []string
}

func newFilter(cfg types.LoadConfig) filter {
	return filter{
		ignoreFiles:  cfg.IgnoreFiles,
		ignoreExts:   normalizeExts(cfg.IgnoreExts),
		requireFiles: cfg.RequireFiles,
		requireExts:  normalizeExts(cfg.RequireExts),
	}
}

func (f filter) accepts(path string) bool {
	name := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")

	if slices.Contains(f.ignoreFiles, name) || slices.Contains(f.ignoreExts, ext) {
		return false
	}
	if len(f.requireFiles) > 0 && !slices.Contains(f.requireFiles, name) {
		return false
	}
	if len(f.requireExts) > 0 && !slices.Contains(f.requireExts, ext) {
		return false
	}
	return true
}

// normalizeExts accepts extensions with or without the leading dot.
func normalizeExts(exts []string) []string {
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = strings.TrimPrefix(e, ".")
	}
	return out
}
