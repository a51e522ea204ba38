package analyzer

import (
	"context"
	"regexp"
	"strings"
)

// JavaScriptLanguage is the language reported for JavaScript sources.
const JavaScriptLanguage = "JavaScript"

var (
	jsVar           = regexp.MustCompile(`\bvar\s+`)
	jsLooseEquality = regexp.MustCompile(`(?:^|[^=!<>])(?:==|!=)(?:[^=]|$)`)
)

// JavaScriptAnalyzer recognizes declarations with per-line regular expressions.
//
// Function patterns are tried in priority order and the first match on a line
// wins: "function" declarations, then arrow bindings, then arrow-valued
// object properties ("method").
type JavaScriptAnalyzer struct {
	exts   extensionSet
	family scriptFamily
}

// NewJavaScriptAnalyzer returns the analyzer for .js, .jsx, .mjs and .cjs files.
func NewJavaScriptAnalyzer() *JavaScriptAnalyzer {
	return &JavaScriptAnalyzer{
		exts: extensionSet{".js", ".jsx", ".mjs", ".cjs"},
		family: scriptFamily{
			imports: regexp.MustCompile(`import\s+.*?from\s+['"][^'"]+['"]|import\s+['"][^'"]+['"]|require\s*\(\s*['"][^'"]+['"]\s*\)`),
			functions: []functionPattern{
				{regexp.MustCompile(`(?:export\s+)?(?:default\s+)?(?:async\s+)?function(?:\s*\*\s*|\s+)(\w+)\s*\(`), "function"},
				{regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:\([^)]*\)|\w+)\s*=>`), "arrow"},
				{regexp.MustCompile(`(\w+)\s*:\s*(?:async\s+)?(?:\([^)]*\)\s*=>|function\b)`), "method"},
			},
			class:  regexp.MustCompile(`\bclass\s+(\w+)(?:\s+extends\s+([\w.]+))?`),
			method: regexp.MustCompile(`(\w+)\s*\([^)]*\)\s*\{`),
		},
	}
}

func (a *JavaScriptAnalyzer) CanAnalyze(ext string) bool { return a.exts.contains(ext) }

func (a *JavaScriptAnalyzer) Language() string { return JavaScriptLanguage }

func (a *JavaScriptAnalyzer) Extensions() []string { return a.exts.list() }

func (a *JavaScriptAnalyzer) Analyze(_ context.Context, source, _ string) (*AnalysisResult, error) {
	lines := splitLines(source)
	imports := ScanImports(source, a.family.importMatcher())
	functions := a.family.extractFunctions(lines)
	classes := a.family.extractClasses(lines)

	suggestions := runChecks(
		func() (string, bool) {
			return "Consider removing console.log statements for production", strings.Contains(source, "console.log")
		},
		func() (string, bool) {
			return "Consider using 'const' or 'let' instead of 'var'", jsVar.MatchString(source)
		},
		func() (string, bool) {
			return "Consider using strict equality (=== and !==)", jsLooseEquality.MatchString(source)
		},
	)

	return NewResult(AnalysisResult{
		Language:        JavaScriptLanguage,
		ComplexityScore: ComplexityScore(source, DefaultControlKeywords),
		Functions:       functions,
		Classes:         classes,
		Imports:         imports,
		Summary: Summarize("JavaScript code", "JavaScript code with no structures detected",
			Count{labelClasses, len(classes)},
			Count{labelFunctions, len(functions)},
			Count{labelImports, len(imports)}),
		Suggestions: suggestions,
		Metrics: Metrics{
			"total_lines":             float64(len(lines)),
			"function_count":          float64(len(functions)),
			"class_count":             float64(len(classes)),
			"import_count":            float64(len(imports)),
			"average_function_length": averageLength(functions),
		},
	})
}
