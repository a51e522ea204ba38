package resolver

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Target is a local file or directory ready for analysis.
type Target struct {
	Path  string
	IsDir bool
	// Remote is the URL the target was cloned from, empty for local input.
	Remote string
}

type gitFunc func(ctx context.Context, dir string, args ...string) error

// Resolver turns user input into a local Target. GitHub URLs are shallow
// cloned into a persistent cache under CacheRoot.
type Resolver struct {
	CacheRoot string
	logger    *slog.Logger
	git       gitFunc
}

// New creates a Resolver caching clones in cacheRoot. An empty cacheRoot
// means ~/.cache/codesage/repos.
func New(cacheRoot string, logger *slog.Logger) (*Resolver, error) {
	if cacheRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home dir: %w", err)
		}
		cacheRoot = filepath.Join(home, ".cache", "codesage", "repos")
	}
	return &Resolver{
		CacheRoot: cacheRoot,
		logger:    logger.With("component", "resolver"),
		git:       runGit,
	}, nil
}

// Resolve takes an input (local file, local directory or GitHub URL) and
// returns the local target to analyze.
func (r *Resolver) Resolve(ctx context.Context, input string) (Target, error) {
	if IsGitHubURL(input) {
		dir, err := r.fetchRepo(ctx, input)
		if err != nil {
			return Target{}, err
		}
		return Target{Path: dir, IsDir: true, Remote: input}, nil
	}

	absPath, err := filepath.Abs(input)
	if err != nil {
		return Target{}, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return Target{}, fmt.Errorf("stat %s: %w", absPath, err)
	}

	r.logger.Debug("resolved local path", "input", input, "path", absPath, "dir", info.IsDir())
	return Target{Path: absPath, IsDir: info.IsDir()}, nil
}

// IsGitHubURL reports whether input is an http(s) GitHub URL.
func IsGitHubURL(input string) bool {
	return strings.Contains(input, "github.com") &&
		(strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"))
}

// cacheDir returns a stable directory for caching a cloned repo, named by a
// hash of the URL.
func (r *Resolver) cacheDir(url string) string {
	h := sha256.Sum256([]byte(url))
	return filepath.Join(r.CacheRoot, fmt.Sprintf("%x", h[:8]))
}

// fetchRepo either updates an existing cached clone or does a fresh clone.
func (r *Resolver) fetchRepo(ctx context.Context, url string) (string, error) {
	dir := r.cacheDir(url)

	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return r.cloneRepo(ctx, url, dir)
	}

	r.logger.Info("updating cached repository", "url", url, "dir", dir)
	if err := r.git(ctx, dir, "fetch", "--depth=1", "origin"); err != nil {
		r.logger.Warn("git fetch failed, will re-clone", "error", err)
		_ = os.RemoveAll(dir)
		return r.cloneRepo(ctx, url, dir)
	}
	if err := r.git(ctx, dir, "reset", "--hard", "origin/HEAD"); err != nil {
		r.logger.Warn("git reset failed, will re-clone", "error", err)
		_ = os.RemoveAll(dir)
		return r.cloneRepo(ctx, url, dir)
	}
	r.logger.Info("repository updated", "dir", dir)
	return dir, nil
}

func (r *Resolver) cloneRepo(ctx context.Context, url, dir string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	r.logger.Info("cloning repository", "url", url, "dest", dir)
	if err := r.git(ctx, "", "clone", "--depth=1", url, dir); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("git clone: %w", err)
	}
	r.logger.Info("clone complete", "dest", dir)
	return dir, nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
