package analyzer

import (
	"regexp"
	"strings"
)

// forwardScanLimit bounds the lines inspected after a class header when
// collecting its methods. Unbalanced braces can never make the scan run away.
const forwardScanLimit = 100

// reservedMethodNames are keywords that look like calls in a method regex,
// e.g. "if (x) {".
var reservedMethodNames = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "with": true,
}

// functionPattern is one candidate declaration form. The first capture group
// is the function name.
type functionPattern struct {
	re   *regexp.Regexp
	kind string
}

// scriptFamily holds the regular expressions of one brace-delimited scripting
// language. The zero value is unusable; see the JavaScript and TypeScript
// constructors.
type scriptFamily struct {
	imports   *regexp.Regexp
	functions []functionPattern
	class     *regexp.Regexp
	method    *regexp.Regexp
}

// extractFunctions tries each pattern on every line and keeps the first that
// matches, so a line yields at most one record.
func (f *scriptFamily) extractFunctions(lines []string) []Function {
	var out []Function
	for i, line := range lines {
		for _, p := range f.functions {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			out = append(out, Function{
				Name:      m[1],
				LineStart: i + 1,
				LineEnd:   i + 1,
				IsAsync:   strings.Contains(m[0], "async"),
				Type:      p.kind,
			})
			break
		}
	}
	return out
}

// extractClasses finds class headers and collects method names from the lines
// that follow, stopping at the first line that is exactly "}" once trimmed or
// after forwardScanLimit lines. Nested blocks are not tracked: the first
// closing brace on its own line ends the scan.
func (f *scriptFamily) extractClasses(lines []string) []Class {
	var out []Class
	for i, line := range lines {
		m := f.class.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		c := Class{
			Name:      m[1],
			LineStart: i + 1,
			LineEnd:   i + 1,
			Methods:   []string{},
		}
		if len(m) > 2 && m[2] != "" {
			c.Bases = []string{m[2]}
		}
		for j := i + 1; j < len(lines) && j < i+forwardScanLimit; j++ {
			if name := f.methodName(lines[j]); name != "" {
				c.Methods = append(c.Methods, name)
			}
			if strings.TrimSpace(lines[j]) == "}" {
				break
			}
		}
		out = append(out, c)
	}
	return out
}

func (f *scriptFamily) methodName(line string) string {
	for _, m := range f.method.FindAllStringSubmatch(line, -1) {
		if !reservedMethodNames[m[1]] {
			return m[1]
		}
	}
	return ""
}

func (f *scriptFamily) importMatcher() ImportMatcher {
	return PatternImports(f.imports)
}
