package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"golang.org/x/sync/errgroup"
)

// AnalyzeDir analyzes every file under root whose extension is allowed,
// skipping ignored and hidden directories. Files are processed by a bounded
// pool of workers. Files that are too large or not text are logged and
// skipped. Results are sorted by path relative to root, which is also the
// Filename of each entry.
func (s *Service) AnalyzeDir(ctx context.Context, root string) ([]FileAnalysis, error) {
	paths, err := s.collectFiles(root)
	if err != nil {
		return nil, err
	}

	results := make([]*FileAnalysis, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := s.readFile(path)
			if err != nil {
				if errors.Is(err, ErrFileTooLarge) {
					s.logger.Warn("skipping file", "path", path, "error", err)
					return nil
				}
				return err
			}
			rel, _ := filepath.Rel(root, path)
			fa, err := s.AnalyzeSource(gctx, filepath.ToSlash(rel), content)
			if err != nil {
				if errors.Is(err, ErrNotText) {
					s.logger.Warn("skipping file", "path", path, "error", err)
					return nil
				}
				return err
			}
			results[i] = fa
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", root, err)
	}

	out := make([]FileAnalysis, 0, len(results))
	for _, fa := range results {
		if fa != nil {
			out = append(out, *fa)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	s.logger.Info("analyzed directory", "root", root, "files", len(out))
	return out, nil
}

func (s *Service) collectFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && s.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && s.allowed(analyzer.ExtOf(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}

func (s *Service) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(s.opts.IgnoreDirs, name)
}
