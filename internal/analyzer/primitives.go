package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// MaxComplexity is the upper bound of every complexity score.
const MaxComplexity = 10.0

// DefaultControlKeywords are the branch, loop and exception keywords counted by ComplexityScore.
var DefaultControlKeywords = []string{"if", "else", "elif", "for", "while", "switch", "case", "try", "except", "catch"}

// ImportMatcher returns the import statements found on a single source line.
type ImportMatcher func(line string) []string

// PrefixImports matches lines that, once trimmed, start with one of prefixes.
// The whole trimmed line is the import statement.
func PrefixImports(prefixes ...string) ImportMatcher {
	return func(line string) []string {
		trimmed := strings.TrimSpace(line)
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				return []string{trimmed}
			}
		}
		return nil
	}
}

// PatternImports returns every match of re on a line.
func PatternImports(re *regexp.Regexp) ImportMatcher {
	return func(line string) []string {
		return re.FindAllString(line, -1)
	}
}

// ScanImports applies m to each line of source and returns the matches in
// source order. Duplicates are kept. Comments and string literals are not
// special: a line that passes the textual test counts as an import.
func ScanImports(source string, m ImportMatcher) []string {
	imports := []string{}
	for _, line := range splitLines(source) {
		imports = append(imports, m(line)...)
	}
	return imports
}

// ComplexityScore returns a bounded, line-local complexity estimate:
// each non-blank line adds 0.1, plus 0.5 per control keyword occurrence,
// plus 0.1 per leading whitespace character. The sum is clamped to
// [0, MaxComplexity] and rounded to two decimals.
func ComplexityScore(source string, keywords []string) float64 {
	kw := keywordPattern(keywords)
	score := 0.0
	for _, line := range splitLines(source) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		score += 0.1
		if kw != nil {
			score += 0.5 * float64(len(kw.FindAllStringIndex(line, -1)))
		}
		score += 0.1 * float64(indentWidth(line))
		if score >= MaxComplexity {
			return MaxComplexity
		}
	}
	return math.Round(math.Max(score, 0)*100) / 100
}

func keywordPattern(keywords []string) *regexp.Regexp {
	if len(keywords) == 0 {
		return nil
	}
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// Count is one category of a summary, e.g. {"class(es)", 2}.
type Count struct {
	Label string
	N     int
}

// Summarize renders "<subject> with 2 class(es), 3 function(s)" from the
// non-zero counts in the order given. When every count is zero it returns empty.
func Summarize(subject, empty string, counts ...Count) string {
	var parts []string
	for _, c := range counts {
		if c.N > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.N, c.Label))
		}
	}
	if len(parts) == 0 {
		return empty
	}
	return subject + " with " + strings.Join(parts, ", ")
}

// Category labels shared by every analyzer, listed in summary order.
const (
	labelClasses    = "class(es)"
	labelFunctions  = "function(s)"
	labelInterfaces = "interface(s)"
	labelTypes      = "type(s)"
	labelImports    = "import(s)"
)

// check is one independent suggestion rule. It returns the suggestion and
// whether it applies.
type check func() (string, bool)

// runChecks evaluates every check and keeps the ones that apply, in order.
func runChecks(checks ...check) []string {
	suggestions := []string{}
	for _, c := range checks {
		if s, ok := c(); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

func splitLines(source string) []string {
	return strings.Split(source, "\n")
}

func lineCount(source string) float64 {
	return float64(len(splitLines(source)))
}

func averageLength(fns []Function) float64 {
	if len(fns) == 0 {
		return 0
	}
	total := 0
	for _, fn := range fns {
		total += fn.LineEnd - fn.LineStart
	}
	return float64(total) / float64(len(fns))
}
