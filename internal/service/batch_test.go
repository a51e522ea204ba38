package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olehluchkiv/codesage/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func filenames(fas []service.FileAnalysis) []string {
	names := make([]string, len(fas))
	for i, fa := range fas {
		names[i] = fa.Filename
	}
	return names
}

func TestAnalyzeDir(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.py":                pySource,
		"a.go":                "package a\n",
		"pkg/c.js":            "function c() {}\n",
		"pkg/image.png":       "not analyzed",
		"node_modules/dep.js": "function dep() {}\n",
		".hidden/secret.py":   "x = 1\n",
		"big.py":              strings.Repeat("y", 2048),
		"binary.ts":           "\xff\xfe",
	})

	got, err := newService(nil).AnalyzeDir(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.py", "pkg/c.js"}, filenames(got))
	assert.Equal(t, "Go", got[0].Language)
	assert.Equal(t, "Python", got[1].Language)
	assert.Equal(t, "JavaScript", got[2].Language)
}

func TestAnalyzeDir_Deterministic(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		files[filepath.Join("d", string(rune('a'+i))+".py")] = pySource
	}
	root := writeTree(t, files)
	svc := newService(nil)

	first, err := svc.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)
	second, err := svc.AnalyzeDir(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, first, 20)
	assert.Equal(t, first, second)
}

func TestAnalyzeDir_Canceled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": pySource, "b.py": pySource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(nil).AnalyzeDir(ctx, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeDir_MissingRoot(t *testing.T) {
	_, err := newService(nil).AnalyzeDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestWatch_ReanalyzesChangedFile(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})
	svc := newService(nil)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []service.FileAnalysis, 4)
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, root, 20*time.Millisecond, func(b []service.FileAnalysis) {
			select {
			case batches <- b:
			default:
			}
		})
	}()

	// Keep writing until the watcher is registered and reports the change.
	var got []service.FileAnalysis
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case got = <-batches:
			break loop
		case <-tick.C:
			require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte(pySource), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.png"), []byte("x"), 0o644))
		case <-deadline:
			t.Fatal("no re-analysis reported")
		}
	}

	cancel()
	require.NoError(t, <-done)

	require.Len(t, got, 1)
	assert.Equal(t, "a.py", got[0].Filename)
	assert.Equal(t, "Python", got[0].Language)
}

func TestWatch_MissingTarget(t *testing.T) {
	err := newService(nil).Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), 0, func([]service.FileAnalysis) {})
	require.Error(t, err)
}
