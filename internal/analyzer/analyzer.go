// Package analyzer implements heuristic, multi-language structural analysis of
// source files. Every language analyzer produces the same AnalysisResult so
// callers can treat Python, Go, TypeScript, JavaScript and unknown files alike.
package analyzer

import (
	"context"
	"path/filepath"
	"strings"
)

// Analyzer extracts structure from the source of one language family.
// Implementations hold only immutable configuration and are safe for
// concurrent use.
type Analyzer interface {
	// CanAnalyze reports whether ext (".py", "PY", ...) belongs to this analyzer.
	CanAnalyze(ext string) bool
	// Language returns the language name reported in results.
	Language() string
	// Extensions lists the claimed extensions, lower case with a leading dot.
	Extensions() []string
	// Analyze inspects source. filename is informational; dispatch has
	// already happened by the time Analyze is called.
	Analyze(ctx context.Context, source, filename string) (*AnalysisResult, error)
}

// NormalizeExt lower-cases ext and adds the leading dot when missing.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ExtOf returns the normalized extension of filename, or "" when it has none.
func ExtOf(filename string) string {
	return NormalizeExt(filepath.Ext(filename))
}

// extensionSet is a fixed, case-insensitive set of file extensions.
type extensionSet []string

func (s extensionSet) contains(ext string) bool {
	ext = NormalizeExt(ext)
	if ext == "" {
		return false
	}
	for _, e := range s {
		if e == ext {
			return true
		}
	}
	return false
}

func (s extensionSet) list() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
