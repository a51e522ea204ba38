package analyzer

import (
	"context"
	"regexp"
)

// TypeScriptLanguage is the language reported for TypeScript sources.
const TypeScriptLanguage = "TypeScript"

var (
	tsInterface     = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:declare\s+)?interface\s+(\w+)`)
	tsTypeAlias     = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:declare\s+)?type\s+(\w+)(?:\s*<[^>]*>)?\s*=`)
	tsUntypedReturn = regexp.MustCompile(`function\s+\w+\s*(?:<[^>]*>)?\s*\([^)]*\)\s*\{`)
	tsAny           = regexp.MustCompile(`:\s*any\b`)
)

// TypeScriptAnalyzer extends the JavaScript heuristics with type-aware
// patterns and also reports interface and type alias declarations.
type TypeScriptAnalyzer struct {
	exts   extensionSet
	family scriptFamily
}

// NewTypeScriptAnalyzer returns the analyzer for .ts, .tsx, .mts and .cts files.
func NewTypeScriptAnalyzer() *TypeScriptAnalyzer {
	return &TypeScriptAnalyzer{
		exts: extensionSet{".ts", ".tsx", ".mts", ".cts"},
		family: scriptFamily{
			imports: regexp.MustCompile(`import\s+.*?from\s+['"][^'"]+['"]|import\s+['"][^'"]+['"]|require\s*\(\s*['"][^'"]+['"]\s*\)`),
			functions: []functionPattern{
				{regexp.MustCompile(`(?:export\s+)?(?:default\s+)?(?:async\s+)?function(?:\s*\*\s*|\s+)(\w+)\s*(?:<[^>]*>)?\s*\(`), "function"},
				{regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:<[^>]*>\s*)?(?:\([^)]*\)|\w+)\s*(?::\s*[^=]+)?=>`), "arrow"},
				{regexp.MustCompile(`(\w+)\s*:\s*(?:async\s+)?\([^)]*\)\s*(?::\s*[^=]+)?=>`), "method"},
			},
			class:  regexp.MustCompile(`\bclass\s+(\w+)(?:\s*<[^>]*>)?(?:\s+extends\s+([\w.]+))?`),
			method: regexp.MustCompile(`(?:public|private|protected)?\s*(\w+)\s*(?:<[^>]*>)?\s*\([^)]*\)\s*[:{]`),
		},
	}
}

func (a *TypeScriptAnalyzer) CanAnalyze(ext string) bool { return a.exts.contains(ext) }

func (a *TypeScriptAnalyzer) Language() string { return TypeScriptLanguage }

func (a *TypeScriptAnalyzer) Extensions() []string { return a.exts.list() }

func (a *TypeScriptAnalyzer) Analyze(_ context.Context, source, _ string) (*AnalysisResult, error) {
	lines := splitLines(source)
	imports := ScanImports(source, a.family.importMatcher())
	functions := a.family.extractFunctions(lines)
	classes := a.family.extractClasses(lines)
	interfaces := tsInterface.FindAllStringSubmatch(source, -1)
	types := tsTypeAlias.FindAllStringSubmatch(source, -1)

	suggestions := runChecks(
		func() (string, bool) {
			return "Consider adding TypeScript interfaces or types for better type safety", len(interfaces) == 0 && len(types) == 0
		},
		func() (string, bool) {
			return "Consider adding explicit return types to functions", tsUntypedReturn.MatchString(source)
		},
		func() (string, bool) {
			return "Consider replacing 'any' with a specific type", tsAny.MatchString(source)
		},
		func() (string, bool) {
			return "Consider using 'const' or 'let' instead of 'var'", jsVar.MatchString(source)
		},
	)

	return NewResult(AnalysisResult{
		Language:        TypeScriptLanguage,
		ComplexityScore: ComplexityScore(source, DefaultControlKeywords),
		Functions:       functions,
		Classes:         classes,
		Imports:         imports,
		Summary: Summarize("TypeScript code", "TypeScript code with no structures detected",
			Count{labelClasses, len(classes)},
			Count{labelFunctions, len(functions)},
			Count{labelInterfaces, len(interfaces)},
			Count{labelTypes, len(types)},
			Count{labelImports, len(imports)}),
		Suggestions: suggestions,
		Metrics: Metrics{
			"total_lines":     float64(len(lines)),
			"function_count":  float64(len(functions)),
			"class_count":     float64(len(classes)),
			"interface_count": float64(len(interfaces)),
			"type_count":      float64(len(types)),
			"import_count":    float64(len(imports)),
		},
	})
}
