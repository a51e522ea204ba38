package analyzer

import (
	"context"
	"strings"
)

// GenericLanguage is the language reported by the fallback analyzer.
const GenericLanguage = "Generic"

var (
	genericFunctionKeywords = []string{"function", "def", "fn ", "func "}
	genericClassKeywords    = []string{"class ", "struct ", "interface "}
)

// GenericAnalyzer is the catch-all analyzer. It claims every extension and
// only looks for keyword hints, reporting each hit as a single-line record.
type GenericAnalyzer struct {
	imports ImportMatcher
}

// NewGenericAnalyzer returns the fallback analyzer.
func NewGenericAnalyzer() *GenericAnalyzer {
	return &GenericAnalyzer{imports: PrefixImports("import ", "from ", "#include")}
}

func (a *GenericAnalyzer) CanAnalyze(string) bool { return true }

func (a *GenericAnalyzer) Language() string { return GenericLanguage }

// Extensions is empty: the fallback claims files by default, not by extension.
func (a *GenericAnalyzer) Extensions() []string { return nil }

func (a *GenericAnalyzer) Analyze(_ context.Context, source, _ string) (*AnalysisResult, error) {
	lines := splitLines(source)

	var functions []Function
	var classes []Class
	nonEmpty := 0

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		nonEmpty++

		if containsAny(stripped, genericFunctionKeywords) && strings.Contains(stripped, "(") {
			functions = append(functions, Function{
				Name:      genericFunctionName(stripped),
				LineStart: i + 1,
				LineEnd:   i + 1,
			})
		}
		if kw := firstContained(stripped, genericClassKeywords); kw != "" {
			classes = append(classes, Class{
				Name:      genericClassName(stripped, kw),
				LineStart: i + 1,
				LineEnd:   i + 1,
			})
		}
	}

	return NewResult(AnalysisResult{
		Language:        GenericLanguage,
		ComplexityScore: ComplexityScore(source, DefaultControlKeywords),
		Functions:       functions,
		Classes:         classes,
		Imports:         ScanImports(source, a.imports),
		Summary: Summarize("Code file", "Code file with no potential functions or classes",
			Count{"potential " + labelClasses, len(classes)},
			Count{"potential " + labelFunctions, len(functions)}),
		Suggestions: []string{"Consider using a language-specific analyzer for better insights"},
		Metrics: Metrics{
			"total_lines":     float64(len(lines)),
			"non_empty_lines": float64(nonEmpty),
			"function_count":  float64(len(functions)),
			"class_count":     float64(len(classes)),
		},
	})
}

// genericFunctionName takes the last word before the first "(" and drops any
// generic parameter list, e.g. "pub fn parse<T>(" gives "parse".
func genericFunctionName(line string) string {
	fields := strings.Fields(line[:strings.Index(line, "(")])
	if len(fields) == 0 {
		return UnknownName
	}
	name := fields[len(fields)-1]
	if i := strings.IndexAny(name, "<["); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return UnknownName
	}
	return name
}

// genericClassName takes the word following kw, cut at "{", ":" or "<".
func genericClassName(line, kw string) string {
	rest := line[strings.Index(line, kw)+len(kw):]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return UnknownName
	}
	name := fields[0]
	if i := strings.IndexAny(name, "{:<("); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return UnknownName
	}
	return name
}

func containsAny(s string, subs []string) bool {
	return firstContained(s, subs) != ""
}

func firstContained(s string, subs []string) string {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return sub
		}
	}
	return ""
}
