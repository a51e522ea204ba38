// Package service ties the analyzer registry and the AI enricher together
// into the operations exposed by the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/olehluchkiv/codesage/internal/analyzer"
	"github.com/olehluchkiv/codesage/internal/enricher"
)

var (
	ErrUnsupportedExtension = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrNotText              = errors.New("file is not UTF-8 text")
	ErrEmptyInput           = errors.New("empty input")
)

// GenericLanguage is used for questions that do not name a language.
const GenericLanguage = analyzer.GenericLanguage

// Options bound what the service accepts.
type Options struct {
	MaxFileSize       int64
	AllowedExtensions []string
	Workers           int
	PreviewChars      int
	IgnoreDirs        []string
}

// FileAnalysis is the combined structural and AI view of one file.
type FileAnalysis struct {
	Filename      string                   `json:"filename" yaml:"filename"`
	Language      string                   `json:"language" yaml:"language"`
	FileExtension string                   `json:"file_extension" yaml:"file_extension"`
	BasicAnalysis *analyzer.AnalysisResult `json:"basic_analysis" yaml:"basic_analysis"`
	// AIEnhancement is nil when the service runs without an enricher.
	AIEnhancement *enricher.Enhancement `json:"ai_enhancement,omitempty" yaml:"ai_enhancement,omitempty"`
	CodePreview   string                `json:"code_preview" yaml:"code_preview"`
}

// Documentation is generated Markdown for one file.
type Documentation struct {
	Filename      string `json:"filename" yaml:"filename"`
	Language      string `json:"language" yaml:"language"`
	Documentation string `json:"documentation" yaml:"documentation"`
}

// Extensions describes what the service accepts.
type Extensions struct {
	Extensions    []string              `json:"extensions" yaml:"extensions"`
	MaxFileSizeMB float64               `json:"max_file_size_mb" yaml:"max_file_size_mb"`
	Analyzers     []analyzer.Capability `json:"analyzers" yaml:"analyzers"`
}

// Service orchestrates analysis. It is safe for concurrent use.
type Service struct {
	registry *analyzer.Registry
	enricher enricher.Enricher
	opts     Options
	logger   *slog.Logger
}

// New creates a Service. A nil enricher disables AI enhancement of file
// analyses; questions and documentation then report that AI is unavailable.
func New(registry *analyzer.Registry, enr enricher.Enricher, opts Options, logger *slog.Logger) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	exts := make([]string, 0, len(opts.AllowedExtensions))
	for _, e := range opts.AllowedExtensions {
		exts = append(exts, analyzer.NormalizeExt(e))
	}
	opts.AllowedExtensions = exts
	return &Service{
		registry: registry,
		enricher: enr,
		opts:     opts,
		logger:   logger.With("component", "service"),
	}
}

// Enriching reports whether file analyses carry an AI enhancement.
func (s *Service) Enriching() bool { return s.enricher != nil }

func (s *Service) textEnricher() enricher.Enricher {
	if s.enricher == nil {
		return enricher.NewDefaultEnricher()
	}
	return s.enricher
}

// ValidateFile checks an upload's extension and size.
func (s *Service) ValidateFile(filename string, size int64) error {
	ext := analyzer.ExtOf(filename)
	if !s.allowed(ext) {
		return fmt.Errorf("file type %q not supported: %w", ext, ErrUnsupportedExtension)
	}
	if s.opts.MaxFileSize > 0 && size > s.opts.MaxFileSize {
		return fmt.Errorf("file size exceeds maximum of %gMB: %w", mebibytes(s.opts.MaxFileSize), ErrFileTooLarge)
	}
	return nil
}

func (s *Service) allowed(ext string) bool {
	return ext != "" && slices.Contains(s.opts.AllowedExtensions, ext)
}

// SupportedExtensions lists the accepted upload types and the analyzers
// behind them.
func (s *Service) SupportedExtensions() Extensions {
	return Extensions{
		Extensions:    slices.Clone(s.opts.AllowedExtensions),
		MaxFileSizeMB: mebibytes(s.opts.MaxFileSize),
		Analyzers:     s.registry.Capabilities(),
	}
}

// AnalyzeSource runs structural analysis on content and, when an enricher is
// configured, attaches the AI review.
func (s *Service) AnalyzeSource(ctx context.Context, filename string, content []byte) (*FileAnalysis, error) {
	return s.analyze(ctx, filename, content, s.enricher != nil)
}

// AnalyzeStructure is AnalyzeSource without the AI review.
func (s *Service) AnalyzeStructure(ctx context.Context, filename string, content []byte) (*FileAnalysis, error) {
	return s.analyze(ctx, filename, content, false)
}

func (s *Service) analyze(ctx context.Context, filename string, content []byte, enrich bool) (*FileAnalysis, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", filename, ErrNotText)
	}
	source := string(content)

	a := s.registry.ForFile(filename)
	result, err := a.Analyze(ctx, source, filename)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", filename, err)
	}
	s.logger.Debug("analyzed file", "filename", filename, "language", result.Language,
		"functions", len(result.Functions), "classes", len(result.Classes))

	fa := &FileAnalysis{
		Filename:      filename,
		Language:      a.Language(),
		FileExtension: filepath.Ext(filename),
		BasicAnalysis: result,
		CodePreview:   preview(source, s.opts.PreviewChars),
	}
	if enrich {
		enh := s.enricher.Enhance(ctx, source, a.Language(), result)
		fa.AIEnhancement = &enh
	}
	return fa, nil
}

// AnalyzeFile reads path and analyzes it. The file must not exceed the
// configured size limit.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (*FileAnalysis, error) {
	content, err := s.readFile(path)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeSource(ctx, filepath.Base(path), content)
}

func (s *Service) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrFileTooLarge)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

// GenerateDocumentation analyzes content and asks the enricher for Markdown
// documentation.
func (s *Service) GenerateDocumentation(ctx context.Context, filename string, content []byte) (*Documentation, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", filename, ErrNotText)
	}
	source := string(content)

	a := s.registry.ForFile(filename)
	result, err := a.Analyze(ctx, source, filename)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", filename, err)
	}
	return &Documentation{
		Filename:      filename,
		Language:      a.Language(),
		Documentation: s.textEnricher().Document(ctx, source, a.Language(), result),
	}, nil
}

// AnswerQuestion answers a question about code. Both question and code must
// be non-blank; language defaults to Generic.
func (s *Service) AnswerQuestion(ctx context.Context, question, code, language string) (enricher.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return enricher.Answer{}, fmt.Errorf("question is required: %w", ErrEmptyInput)
	}
	if strings.TrimSpace(code) == "" {
		return enricher.Answer{}, fmt.Errorf("code content is required: %w", ErrEmptyInput)
	}
	if strings.TrimSpace(language) == "" {
		language = GenericLanguage
	}
	return s.textEnricher().Answer(ctx, question, code, language), nil
}

// preview returns the first n runes of s.
func preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func mebibytes(n int64) float64 {
	return float64(n) / 1024 / 1024
}
