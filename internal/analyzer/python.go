package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonLanguage is the language reported for Python sources.
const PythonLanguage = "Python"

// longFunctionLines is the body length above which a function is reported as long.
const longFunctionLines = 50

var (
	pyFallbackFunc  = regexp.MustCompile(`def\s+(\w+)\s*\(`)
	pyFallbackClass = regexp.MustCompile(`class\s+(\w+)`)
)

// PythonAnalyzer parses Python with tree-sitter. Source the grammar rejects is
// analyzed with regular expressions instead, and positions are then unknown.
type PythonAnalyzer struct {
	exts    extensionSet
	imports ImportMatcher
}

// NewPythonAnalyzer returns the analyzer for .py and .pyw files.
func NewPythonAnalyzer() *PythonAnalyzer {
	return &PythonAnalyzer{
		exts:    extensionSet{".py", ".pyw"},
		imports: PrefixImports("import ", "from "),
	}
}

func (a *PythonAnalyzer) CanAnalyze(ext string) bool { return a.exts.contains(ext) }

func (a *PythonAnalyzer) Language() string { return PythonLanguage }

func (a *PythonAnalyzer) Extensions() []string { return a.exts.list() }

func (a *PythonAnalyzer) Analyze(ctx context.Context, source, _ string) (*AnalysisResult, error) {
	content := []byte(source)

	// A parser is not safe for concurrent use, so each call gets its own.
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return a.fallback(source, 0)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return a.fallback(source, firstErrorLine(root))
	}
	if line, ok := firstRejectedLine(root); ok {
		return a.fallback(source, line)
	}

	w := &pyWalker{src: content}
	w.walk(root)

	checks := []check{
		func() (string, bool) {
			n := 0
			for _, fn := range w.functions {
				if fn.Docstring == "" {
					n++
				}
			}
			return fmt.Sprintf("Consider adding docstrings to %d function(s)", n), n > 0
		},
		func() (string, bool) {
			n := 0
			for _, c := range w.classes {
				if c.Docstring == "" {
					n++
				}
			}
			return fmt.Sprintf("Consider adding docstrings to %d class(es)", n), n > 0
		},
		func() (string, bool) {
			n := 0
			for _, fn := range w.functions {
				if fn.LineEnd-fn.LineStart > longFunctionLines {
					n++
				}
			}
			return fmt.Sprintf("Consider refactoring %d long function(s)", n), n > 0
		},
		func() (string, bool) {
			return "Consider adding type hints for better code clarity", w.defs > 0 && !w.annotated
		},
	}

	return NewResult(AnalysisResult{
		Language:        PythonLanguage,
		ComplexityScore: ComplexityScore(source, DefaultControlKeywords),
		Functions:       w.functions,
		Classes:         w.classes,
		Imports:         w.imports,
		Summary: Summarize("Python code", "Empty Python file",
			Count{labelClasses, len(w.classes)},
			Count{labelFunctions, len(w.functions)},
			Count{labelImports, len(w.imports)}),
		Suggestions: runChecks(checks...),
		Metrics: Metrics{
			"total_lines":             lineCount(source),
			"function_count":          float64(len(w.functions)),
			"class_count":             float64(len(w.classes)),
			"import_count":            float64(len(w.imports)),
			"average_function_length": averageLength(w.functions),
		},
	})
}

// fallback extracts names only. errLine is the 1-based line of the first
// syntax error, or 0 when it is not known.
func (a *PythonAnalyzer) fallback(source string, errLine int) (*AnalysisResult, error) {
	var functions []Function
	for _, m := range pyFallbackFunc.FindAllStringSubmatch(source, -1) {
		functions = append(functions, Function{Name: m[1]})
	}
	var classes []Class
	for _, m := range pyFallbackClass.FindAllStringSubmatch(source, -1) {
		classes = append(classes, Class{Name: m[1]})
	}
	imports := ScanImports(source, a.imports)

	msg := "Code contains syntax errors - structured parsing failed"
	if errLine > 0 {
		msg = fmt.Sprintf("Code contains syntax errors near line %d - structured parsing failed", errLine)
	}

	return NewResult(AnalysisResult{
		Language:        PythonLanguage,
		ComplexityScore: ComplexityScore(source, DefaultControlKeywords),
		Functions:       functions,
		Classes:         classes,
		Imports:         imports,
		Summary: Summarize("Python code", "Python code with no structures detected",
			Count{labelClasses, len(classes)},
			Count{labelFunctions, len(functions)},
			Count{labelImports, len(imports)}),
		Suggestions: []string{msg},
		Metrics:     Metrics{"total_lines": lineCount(source)},
	})
}

// firstErrorLine returns the 1-based line of the first ERROR or MISSING node
// in document order.
func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if line := firstErrorLine(child); line > 0 {
			return line
		}
	}
	return 0
}

// python2Statements are parsed by the grammar but rejected by Python 3.
var python2Statements = map[string]bool{
	"print_statement": true,
	"exec_statement":  true,
}

// firstRejectedLine finds the first node the grammar accepts although Python 3
// does not: Python 2 print and exec statements, and blocks with no statement
// such as a function body that lost its indentation.
func firstRejectedLine(n *sitter.Node) (int, bool) {
	if python2Statements[n.Type()] || n.Type() == "block" && n.NamedChildCount() == 0 {
		return int(n.StartPoint().Row) + 1, true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if line, ok := firstRejectedLine(n.NamedChild(i)); ok {
			return line, true
		}
	}
	return 0, false
}

// pyWalker collects records in document order.
type pyWalker struct {
	src       []byte
	functions []Function
	classes   []Class
	imports   []string

	defs      int
	annotated bool
}

func (w *pyWalker) text(n *sitter.Node) string {
	return string(w.src[n.StartByte():n.EndByte()])
}

func (w *pyWalker) walk(n *sitter.Node) {
	switch n.Type() {
	case "function_definition":
		w.defs++
		if n.ChildByFieldName("return_type") != nil {
			w.annotated = true
		}
		if !isClassMember(n) {
			w.functions = append(w.functions, w.function(n))
		}
	case "class_definition":
		w.classes = append(w.classes, w.class(n))
	case "import_statement", "import_from_statement", "future_import_statement":
		w.imports = append(w.imports, collapseImport(w.text(n)))
		return
	case "typed_parameter", "typed_default_parameter":
		w.annotated = true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

func (w *pyWalker) function(n *sitter.Node) Function {
	fn := Function{
		Name:       w.name(n),
		LineStart:  int(n.StartPoint().Row) + 1,
		LineEnd:    int(n.EndPoint().Row) + 1,
		Parameters: w.parameters(n.ChildByFieldName("parameters")),
		Decorators: w.decorators(n),
		Docstring:  w.docstring(n),
		Type:       "function",
	}
	if first := n.Child(0); first != nil && first.Type() == "async" {
		fn.IsAsync = true
	}
	return fn
}

func (w *pyWalker) class(n *sitter.Node) Class {
	c := Class{
		Name:       w.name(n),
		LineStart:  int(n.StartPoint().Row) + 1,
		LineEnd:    int(n.EndPoint().Row) + 1,
		Decorators: w.decorators(n),
		Docstring:  w.docstring(n),
		Methods:    []string{},
	}
	if args := n.ChildByFieldName("superclasses"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			switch arg.Type() {
			case "keyword_argument", "comment", "list_splat", "dictionary_splat":
				continue
			}
			c.Bases = append(c.Bases, w.text(arg))
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			if member.Type() == "decorated_definition" {
				member = member.ChildByFieldName("definition")
			}
			if member != nil && member.Type() == "function_definition" {
				c.Methods = append(c.Methods, w.name(member))
			}
		}
	}
	return c
}

func (w *pyWalker) name(n *sitter.Node) string {
	if id := n.ChildByFieldName("name"); id != nil {
		return w.text(id)
	}
	return UnknownName
}

// parameters returns the names of the positional parameters, stopping at the
// first splat or bare "*".
func (w *pyWalker) parameters(params *sitter.Node) []string {
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			names = append(names, w.text(p))
		case "default_parameter", "typed_default_parameter":
			if id := p.ChildByFieldName("name"); id != nil {
				names = append(names, w.text(id))
			}
		case "typed_parameter":
			id := p.NamedChild(0)
			if id == nil || id.Type() != "identifier" {
				return names
			}
			names = append(names, w.text(id))
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			return names
		}
	}
	return names
}

// decorators returns the decorator expressions of a definition wrapped in a
// decorated_definition, without the leading "@".
func (w *pyWalker) decorators(n *sitter.Node) []string {
	parent := n.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return nil
	}
	var out []string
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		d := parent.NamedChild(i)
		if d.Type() != "decorator" {
			continue
		}
		out = append(out, strings.TrimSpace(strings.TrimPrefix(w.text(d), "@")))
	}
	return out
}

func (w *pyWalker) docstring(n *sitter.Node) string {
	body := n.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return ""
		}
		if lit := stmt.NamedChild(0); lit.Type() == "string" {
			return cleanDocstring(w.text(lit))
		}
		return ""
	}
	return ""
}

// isClassMember reports whether a function definition sits directly in a class body.
func isClassMember(fn *sitter.Node) bool {
	p := fn.Parent()
	if p != nil && p.Type() == "decorated_definition" {
		p = p.Parent()
	}
	if p == nil || p.Type() != "block" {
		return false
	}
	owner := p.Parent()
	return owner != nil && owner.Type() == "class_definition"
}

// cleanDocstring strips the prefix and quotes of a string literal and removes
// the common indentation of its continuation lines.
func cleanDocstring(lit string) string {
	lit = strings.TrimLeft(lit, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(lit) >= 2*len(q) && strings.HasPrefix(lit, q) && strings.HasSuffix(lit, q) {
			lit = lit[len(q) : len(lit)-len(q)]
			break
		}
	}

	lines := strings.Split(strings.ReplaceAll(lit, "\t", "        "), "\n")
	indent := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if w := indentWidth(l); indent < 0 || w < indent {
			indent = w
		}
	}
	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if indent > 0 && len(lines[i]) >= indent {
			lines[i] = lines[i][indent:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// collapseImport renders an import statement on one line.
func collapseImport(stmt string) string {
	s := strings.Join(strings.Fields(strings.ReplaceAll(stmt, "\\\n", " ")), " ")
	s = strings.ReplaceAll(s, "( ", "(")
	s = strings.ReplaceAll(s, ",)", ")")
	s = strings.ReplaceAll(s, " )", ")")
	return s
}
