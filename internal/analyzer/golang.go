package analyzer

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"regexp"
	"strings"

	"golang.org/x/tools/go/ast/inspector"
)

// GoLanguage is the language reported for Go sources.
const GoLanguage = "Go"

var (
	goControlKeywords = []string{"if", "else", "for", "switch", "case", "select"}

	goFallbackFunc = regexp.MustCompile(`func\s+(?:\([^)]*\)\s*)?(\w+)\s*[\[(]`)
	goFallbackType = regexp.MustCompile(`type\s+(\w+)(?:\[[^\]]*\])?\s+(?:struct|interface)\b`)
)

// GoAnalyzer parses Go with go/parser. Struct and interface types are
// reported as classes and methods are attached to their receiver when the
// receiver type is declared in the same file.
type GoAnalyzer struct {
	exts    extensionSet
	imports ImportMatcher
}

// NewGoAnalyzer returns the analyzer for .go files.
func NewGoAnalyzer() *GoAnalyzer {
	return &GoAnalyzer{
		exts:    extensionSet{".go"},
		imports: PatternImports(regexp.MustCompile(`^\s*import\s+.*|^\s*(?:\w+\s+)?"[^"]+"\s*$`)),
	}
}

func (a *GoAnalyzer) CanAnalyze(ext string) bool { return a.exts.contains(ext) }

func (a *GoAnalyzer) Language() string { return GoLanguage }

func (a *GoAnalyzer) Extensions() []string { return a.exts.list() }

func (a *GoAnalyzer) Analyze(_ context.Context, source, filename string) (*AnalysisResult, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, source, parser.ParseComments)
	if err != nil {
		return a.fallback(source, parseErrorLine(err))
	}

	v := goVisitor{fset: fset, classIndex: make(map[string]int)}
	insp := inspector.New([]*ast.File{f})

	// Types first, so methods declared above their receiver still attach to it.
	insp.Preorder([]ast.Node{(*ast.GenDecl)(nil)}, func(n ast.Node) {
		v.genDecl(n.(*ast.GenDecl))
	})
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil), (*ast.CallExpr)(nil)}, func(n ast.Node) {
		switch x := n.(type) {
		case *ast.FuncDecl:
			v.funcDecl(x)
		case *ast.CallExpr:
			if id, ok := x.Fun.(*ast.Ident); ok && id.Name == "panic" {
				v.panics++
			}
		}
	})

	imports := make([]string, 0, len(f.Imports))
	for _, spec := range f.Imports {
		stmt := "import "
		if spec.Name != nil {
			stmt += spec.Name.Name + " "
		}
		imports = append(imports, stmt+spec.Path.Value)
	}

	suggestions := runChecks(
		func() (string, bool) {
			return fmt.Sprintf("Consider documenting %d exported declaration(s)", v.undocumented), v.undocumented > 0
		},
		func() (string, bool) {
			return "Consider returning errors instead of calling panic", v.panics > 0
		},
		func() (string, bool) {
			return fmt.Sprintf("Consider refactoring %d long function(s)", v.long), v.long > 0
		},
	)

	return NewResult(AnalysisResult{
		Language:        GoLanguage,
		ComplexityScore: ComplexityScore(source, goControlKeywords),
		Functions:       v.functions,
		Classes:         v.classes,
		Imports:         imports,
		Summary: Summarize("Go code", "Go code with no structures detected",
			Count{labelClasses, len(v.classes) - v.interfaces},
			Count{labelFunctions, len(v.functions)},
			Count{labelInterfaces, v.interfaces},
			Count{labelImports, len(imports)}),
		Suggestions: suggestions,
		Metrics: Metrics{
			"total_lines":             lineCount(source),
			"function_count":          float64(len(v.functions)),
			"class_count":             float64(len(v.classes)),
			"interface_count":         float64(v.interfaces),
			"method_count":            float64(v.methods),
			"import_count":            float64(len(imports)),
			"average_function_length": averageLength(v.functions),
		},
	})
}

func (a *GoAnalyzer) fallback(source string, errLine int) (*AnalysisResult, error) {
	var functions []Function
	for _, m := range goFallbackFunc.FindAllStringSubmatch(source, -1) {
		functions = append(functions, Function{Name: m[1]})
	}
	var classes []Class
	for _, m := range goFallbackType.FindAllStringSubmatch(source, -1) {
		classes = append(classes, Class{Name: m[1]})
	}
	imports := ScanImports(source, a.imports)

	msg := "Code contains syntax errors - structured parsing failed"
	if errLine > 0 {
		msg = fmt.Sprintf("Code contains syntax errors near line %d - structured parsing failed", errLine)
	}

	return NewResult(AnalysisResult{
		Language:        GoLanguage,
		ComplexityScore: ComplexityScore(source, goControlKeywords),
		Functions:       functions,
		Classes:         classes,
		Imports:         imports,
		Summary: Summarize("Go code", "Go code with no structures detected",
			Count{labelClasses, len(classes)},
			Count{labelFunctions, len(functions)},
			Count{labelImports, len(imports)}),
		Suggestions: []string{msg},
		Metrics:     Metrics{"total_lines": lineCount(source)},
	})
}

func parseErrorLine(err error) int {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return list[0].Pos.Line
	}
	return 0
}

type goVisitor struct {
	fset       *token.FileSet
	functions  []Function
	classes    []Class
	classIndex map[string]int

	interfaces   int
	methods      int
	undocumented int
	long         int
	panics       int
}

func (v *goVisitor) lines(n ast.Node) (int, int) {
	return v.fset.Position(n.Pos()).Line, v.fset.Position(n.End()).Line
}

func (v *goVisitor) genDecl(d *ast.GenDecl) {
	if d.Tok != token.TYPE {
		return
	}
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		doc := ts.Doc
		if doc == nil && len(d.Specs) == 1 {
			doc = d.Doc
		}
		if ts.Name.IsExported() && doc == nil {
			v.undocumented++
		}

		var bases, methods []string
		switch t := ts.Type.(type) {
		case *ast.StructType:
			for _, field := range t.Fields.List {
				if len(field.Names) == 0 {
					bases = append(bases, types.ExprString(field.Type))
				}
			}
		case *ast.InterfaceType:
			v.interfaces++
			for _, field := range t.Methods.List {
				if len(field.Names) == 0 {
					bases = append(bases, types.ExprString(field.Type))
					continue
				}
				for _, name := range field.Names {
					methods = append(methods, name.Name)
				}
			}
		default:
			continue
		}

		start, end := v.lines(ts)
		v.classIndex[ts.Name.Name] = len(v.classes)
		v.classes = append(v.classes, Class{
			Name:      ts.Name.Name,
			LineStart: start,
			LineEnd:   end,
			Bases:     bases,
			Docstring: commentText(doc),
			Methods:   methods,
		})
	}
}

func (v *goVisitor) funcDecl(fd *ast.FuncDecl) {
	if fd.Name.IsExported() && fd.Doc == nil {
		v.undocumented++
	}
	start, end := v.lines(fd)
	if end-start > longFunctionLines {
		v.long++
	}

	kind := "function"
	if fd.Recv != nil && len(fd.Recv.List) > 0 {
		v.methods++
		if i, ok := v.classIndex[receiverName(fd.Recv.List[0].Type)]; ok {
			v.classes[i].Methods = append(v.classes[i].Methods, fd.Name.Name)
			return
		}
		kind = "method"
	}

	var params []string
	for _, field := range fd.Type.Params.List {
		for _, name := range field.Names {
			params = append(params, name.Name)
		}
	}
	v.functions = append(v.functions, Function{
		Name:       fd.Name.Name,
		LineStart:  start,
		LineEnd:    end,
		Parameters: params,
		Docstring:  commentText(fd.Doc),
		Type:       kind,
	})
}

// receiverName strips pointers and type parameters: *List[T] gives List.
func receiverName(expr ast.Expr) string {
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.ParenExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

func commentText(g *ast.CommentGroup) string {
	if g == nil {
		return ""
	}
	return strings.TrimSpace(g.Text())
}
