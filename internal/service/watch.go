package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/olehluchkiv/codesage/internal/analyzer"
)

// DefaultDebounce is how long Watch waits after the last change before
// re-analyzing.
const DefaultDebounce = 250 * time.Millisecond

// WatchFunc receives the analyses of files changed since the last call.
type WatchFunc func([]FileAnalysis)

// Watch re-analyzes allowed files under target (a file or a directory) when
// they change, calling fn with each debounced batch. It blocks until ctx is
// done and then returns nil.
func (s *Service) Watch(ctx context.Context, target string, debounce time.Duration, fn WatchFunc) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	info, err := os.Stat(absTarget)
	if err != nil {
		return fmt.Errorf("stat %s: %w", target, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	root := absTarget
	if !info.IsDir() {
		root = filepath.Dir(absTarget)
	}
	if err := s.addWatchRecursive(watcher, root); err != nil {
		return err
	}
	s.logger.Info("watching for changes", "target", absTarget)

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if st, statErr := os.Stat(path); statErr == nil && st.IsDir() && !s.skipDir(st.Name()) {
					s.watchNewDir(watcher, path)
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !info.IsDir() && path != absTarget {
				continue
			}
			if !s.allowed(analyzer.ExtOf(path)) {
				continue
			}
			pending[path] = true
			timer.Reset(debounce)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			if batch := s.analyzeChanged(ctx, root, changed); len(batch) > 0 {
				fn(batch)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", target, watchErr)
		}
	}
}

func (s *Service) analyzeChanged(ctx context.Context, root string, paths []string) []FileAnalysis {
	var out []FileAnalysis
	for _, path := range paths {
		content, err := s.readFile(path)
		if err != nil {
			s.logger.Warn("skipping changed file", "path", path, "error", err)
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		fa, err := s.AnalyzeSource(ctx, filepath.ToSlash(rel), content)
		if err != nil {
			s.logger.Warn("re-analysis failed", "path", path, "error", err)
			continue
		}
		out = append(out, *fa)
	}
	return out
}

// watchNewDir registers a directory created under the watched root. A failure
// is logged and the directory stays unwatched.
func (s *Service) watchNewDir(watcher *fsnotify.Watcher, path string) bool {
	if err := s.addWatchRecursive(watcher, path); err != nil {
		s.logger.Warn("failed to watch new directory", "path", path, "error", err)
		return false
	}
	return true
}

func (s *Service) addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && s.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
