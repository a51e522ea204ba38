package analyzer_test

import (
	"context"
	"testing"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeterSource = `import os
from typing import List


def hello(name: str) -> str:
    """Say hello."""
    return f"Hello, {name}"


class Greeter:
    def __init__(self, greeting):
        self.greeting = greeting
`

func analyzePython(t *testing.T, src string) *analyzer.AnalysisResult {
	t.Helper()
	r, err := analyzer.NewPythonAnalyzer().Analyze(context.Background(), src, "sample.py")
	require.NoError(t, err)
	return r
}

func TestPythonAnalyzer_Capabilities(t *testing.T) {
	a := analyzer.NewPythonAnalyzer()
	assert.Equal(t, "Python", a.Language())
	assert.True(t, a.CanAnalyze(".py"))
	assert.True(t, a.CanAnalyze(".PYW"))
	assert.True(t, a.CanAnalyze("py"))
	assert.False(t, a.CanAnalyze(".pyc"))
	assert.False(t, a.CanAnalyze(""))
}

func TestPythonAnalyzer_FunctionAndClass(t *testing.T) {
	r := analyzePython(t, greeterSource)

	assert.Equal(t, "Python", r.Language)
	require.Len(t, r.Functions, 1)
	require.Len(t, r.Classes, 1)
	assert.Equal(t, []string{"__init__"}, r.Classes[0].Methods)
	assert.Greater(t, r.ComplexityScore, 0.0)

	fn := r.Functions[0]
	assert.Equal(t, "hello", fn.Name)
	assert.Equal(t, 5, fn.LineStart)
	assert.GreaterOrEqual(t, fn.LineEnd, 7)
	assert.Equal(t, []string{"name"}, fn.Parameters)
	assert.Equal(t, "Say hello.", fn.Docstring)
	assert.Equal(t, "function", fn.Type)
	assert.False(t, fn.IsAsync)

	cls := r.Classes[0]
	assert.Equal(t, "Greeter", cls.Name)
	assert.Equal(t, 11, cls.LineStart)
	assert.Empty(t, cls.Bases)

	assert.Equal(t, []string{"import os", "from typing import List"}, r.Imports)
	assert.Equal(t, "Python code with 1 class(es), 1 function(s), 2 import(s)", r.Summary)
	assert.Equal(t, []string{"Consider adding docstrings to 1 class(es)"}, r.Suggestions)
	assert.Equal(t, 1.0, r.Metrics["function_count"])
	assert.Equal(t, 2.0, r.Metrics["import_count"])
}

func TestPythonAnalyzer_DecoratorsAsyncAndParameters(t *testing.T) {
	src := `import functools

@functools.lru_cache(maxsize=None)
async def fetch(url, timeout=3, *args, retries: int = 2):
    pass


class Service(Base, metaclass=Meta):
    """Runs things."""

    @staticmethod
    def build():
        def inner():
            pass
        return inner

    async def run(self):
        pass
`
	r := analyzePython(t, src)

	require.Len(t, r.Functions, 2)
	fetch := r.Functions[0]
	assert.Equal(t, "fetch", fetch.Name)
	assert.Equal(t, 4, fetch.LineStart)
	assert.True(t, fetch.IsAsync)
	assert.Equal(t, []string{"functools.lru_cache(maxsize=None)"}, fetch.Decorators)
	assert.Equal(t, []string{"url", "timeout"}, fetch.Parameters)

	// Nested functions are not class members, so they are reported.
	assert.Equal(t, "inner", r.Functions[1].Name)

	require.Len(t, r.Classes, 1)
	svc := r.Classes[0]
	assert.Equal(t, []string{"Base"}, svc.Bases)
	assert.Equal(t, []string{"build", "run"}, svc.Methods)
	assert.Equal(t, "Runs things.", svc.Docstring)

	assert.Contains(t, r.Suggestions, "Consider adding docstrings to 2 function(s)")
	assert.NotContains(t, r.Suggestions, "Consider adding type hints for better code clarity")
}

func TestPythonAnalyzer_MissingTypeHints(t *testing.T) {
	r := analyzePython(t, "def add(a, b):\n    \"\"\"Adds.\"\"\"\n    return a + b\n")
	assert.Equal(t, []string{"Consider adding type hints for better code clarity"}, r.Suggestions)
}

func TestPythonAnalyzer_MultilineDocstring(t *testing.T) {
	src := "def f():\n    \"\"\"Summary line.\n\n    Details here.\n    \"\"\"\n"
	r := analyzePython(t, src)
	require.Len(t, r.Functions, 1)
	assert.Equal(t, "Summary line.\n\nDetails here.", r.Functions[0].Docstring)
}

func TestPythonAnalyzer_LongFunction(t *testing.T) {
	src := "def long():\n"
	for i := 0; i < 60; i++ {
		src += "    x = 1\n"
	}
	r := analyzePython(t, src)
	assert.Contains(t, r.Suggestions, "Consider refactoring 1 long function(s)")
}

func TestPythonAnalyzer_SyntaxErrorFallsBack(t *testing.T) {
	src := "import os\n\ndef broken(:\n    pass\n\nclass Foo:\n    pass\n"
	r := analyzePython(t, src)

	assert.Equal(t, "Python", r.Language)
	require.Len(t, r.Functions, 1)
	require.Len(t, r.Classes, 1)
	assert.Equal(t, "broken", r.Functions[0].Name)
	assert.Equal(t, "Foo", r.Classes[0].Name)
	assert.False(t, r.Functions[0].HasPosition())
	assert.Equal(t, 0, r.Classes[0].LineEnd)
	assert.Equal(t, []string{"import os"}, r.Imports)

	require.Len(t, r.Suggestions, 1)
	assert.Contains(t, r.Suggestions[0], "syntax errors")
}

func TestPythonAnalyzer_RejectsWhatPython3Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unindented body", "def f():\nreturn 1\n"},
		{"print statement", "print \"hello\"\n"},
		{"exec statement", "exec \"x = 1\"\n"},
		{"nested unindented body", "class A:\n    def g(self):\n    return 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := analyzePython(t, tt.src)
			require.Len(t, r.Suggestions, 1)
			assert.Contains(t, r.Suggestions[0], "syntax errors")
			for _, fn := range r.Functions {
				assert.False(t, fn.HasPosition(), fn.Name)
			}
		})
	}
}

func TestPythonAnalyzer_PrintCallIsValid(t *testing.T) {
	r := analyzePython(t, "def f():\n    \"\"\"Say hi.\"\"\"\n    print(\"hi\")\n")

	require.Len(t, r.Functions, 1)
	assert.True(t, r.Functions[0].HasPosition())
	for _, s := range r.Suggestions {
		assert.NotContains(t, s, "syntax errors")
	}
}

func TestPythonAnalyzer_Empty(t *testing.T) {
	r := analyzePython(t, "")

	assert.Equal(t, 0.0, r.ComplexityScore)
	assert.Empty(t, r.Functions)
	assert.Empty(t, r.Classes)
	assert.Empty(t, r.Imports)
	assert.NotNil(t, r.Functions)
	assert.Equal(t, "Empty Python file", r.Summary)
}
