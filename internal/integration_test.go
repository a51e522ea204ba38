package internal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"github.com/olehluchkiv/codesage/internal/report"
	"github.com/olehluchkiv/codesage/internal/report/split"
	"github.com/olehluchkiv/codesage/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectDir = "../testdata/project"

func analyzeProject(t *testing.T) []service.FileAnalysis {
	t.Helper()
	svc := service.New(analyzer.DefaultRegistry(), nil, service.Options{
		MaxFileSize:       1 << 20,
		AllowedExtensions: []string{".py", ".ts", ".js", ".go"},
		Workers:           4,
		PreviewChars:      500,
		IgnoreDirs:        []string{"node_modules"},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	analyses, err := svc.AnalyzeDir(context.Background(), projectDir)
	require.NoError(t, err)
	return analyses
}

func byFilename(analyses []service.FileAnalysis) map[string]service.FileAnalysis {
	m := make(map[string]service.FileAnalysis, len(analyses))
	for _, fa := range analyses {
		m[fa.Filename] = fa
	}
	return m
}

func TestProject_Languages(t *testing.T) {
	analyses := analyzeProject(t)

	var names []string
	for _, fa := range analyses {
		names = append(names, fa.Filename)
	}
	assert.Equal(t, []string{"main.go", "shapes/shapes.py", "web/app.js", "web/widgets.ts"}, names)

	files := byFilename(analyses)
	assert.Equal(t, analyzer.GoLanguage, files["main.go"].Language)
	assert.Equal(t, analyzer.PythonLanguage, files["shapes/shapes.py"].Language)
	assert.Equal(t, analyzer.JavaScriptLanguage, files["web/app.js"].Language)
	assert.Equal(t, analyzer.TypeScriptLanguage, files["web/widgets.ts"].Language)

	for _, fa := range analyses {
		require.NotNil(t, fa.BasicAnalysis, fa.Filename)
		assert.Nil(t, fa.AIEnhancement, fa.Filename)
	}
}

func TestProject_PythonHierarchy(t *testing.T) {
	py := byFilename(analyzeProject(t))["shapes/shapes.py"].BasicAnalysis

	classes := make(map[string]analyzer.Class)
	for _, c := range py.Classes {
		classes[c.Name] = c
	}
	require.Contains(t, classes, "Shape")
	require.Contains(t, classes, "Circle")
	require.Contains(t, classes, "Square")
	assert.Equal(t, []string{"Shape"}, classes["Circle"].Bases)
	assert.Equal(t, []string{"__init__", "area"}, classes["Square"].Methods)
	assert.Contains(t, py.Imports, "import math")
}

func TestProject_Mermaid(t *testing.T) {
	out := report.GenerateMermaid(analyzeProject(t), report.DefaultDiagramOptions())

	assert.True(t, strings.HasPrefix(out, "classDiagram\n"))
	assert.Contains(t, out, "shapes_shapes_py_Circle --|> shapes_shapes_py_Shape")
	assert.Contains(t, out, "shapes_shapes_py_Square --|> shapes_shapes_py_Shape")
	assert.Contains(t, out, "web_widgets_ts_Button --|> web_widgets_ts_Widget")
	assert.Contains(t, out, `cssClass "shapes_shapes_py_Shape" baseStyle`)
	assert.Contains(t, out, `cssClass "shapes_shapes_py_Circle" classStyle`)
	assert.Contains(t, out, "%% file: shapes/shapes.py")
}

func TestProject_SplitSlides(t *testing.T) {
	analyses := analyzeProject(t)
	splitter := split.NewHubAndSpoke(split.Options{HubThreshold: 2, ChunkSize: 2})

	slides := report.BuildSlides(analyses, report.DefaultDiagramOptions(), splitter, report.SlideOptions{Threshold: 2})
	require.Greater(t, len(slides), 1)
	assert.Equal(t, "Overview", slides[0].Title)
	assert.NotContains(t, slides[0].Mermaid, "+area()")

	var all strings.Builder
	for _, s := range slides[1:] {
		all.WriteString(s.Mermaid)
	}
	assert.Contains(t, all.String(), "shapes_shapes_py_Circle")
	assert.Contains(t, all.String(), "web_widgets_ts_Button")

	again := report.BuildSlides(analyses, report.DefaultDiagramOptions(), splitter, report.SlideOptions{Threshold: 2})
	assert.Equal(t, slides, again)
}

func TestProject_Reports(t *testing.T) {
	analyses := analyzeProject(t)

	var md bytes.Buffer
	require.NoError(t, report.Write(&md, report.FormatMarkdown, analyses))
	assert.Contains(t, md.String(), "# Code Analysis Report")
	assert.Contains(t, md.String(), "shapes/shapes.py")
	assert.Contains(t, md.String(), "## Class Diagram")

	var js bytes.Buffer
	require.NoError(t, report.Write(&js, report.FormatJSON, analyses))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded, 4)
	assert.Equal(t, "main.go", decoded[0]["filename"])
	assert.Contains(t, decoded[0], "basic_analysis")
}
