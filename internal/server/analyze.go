package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/olehluchkiv/codesage/internal/report"
	"github.com/olehluchkiv/codesage/internal/service"
)

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type diagramResponse struct {
	Filename string `json:"filename"`
	Language string `json:"language"`
	Mermaid  string `json:"mermaid"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, rootResponse{Message: "CodeSage API is running", Version: s.opts.Version, Status: "healthy"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: "codesage", Version: s.opts.Version})
}

func (s *Server) handleSupportedExtensions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.SupportedExtensions())
}

// limitBody caps the request body at the upload limit plus 1MB for the
// other form fields.
func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize+1<<20)
}

func (s *Server) writeFormError(w http.ResponseWriter, err error, detail string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	s.writeError(w, http.StatusBadRequest, detail)
}

// readUpload returns the validated "file" field of a multipart request. It
// writes the error response itself and returns ok=false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (filename string, content []byte, ok bool) {
	s.limitBody(w, r)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeFormError(w, err, "error parsing multipart form")
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	f, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return "", nil, false
	}
	defer f.Close()

	content, err = io.ReadAll(f)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("reading upload: %v", err))
		return "", nil, false
	}
	if err := s.svc.ValidateFile(header.Filename, int64(len(content))); err != nil {
		s.writeServiceError(w, r, "Validation failed", err)
		return "", nil, false
	}
	return header.Filename, content, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	filename, content, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	fa, err := s.svc.AnalyzeSource(r.Context(), filename, content)
	if err != nil {
		s.writeServiceError(w, r, "Analysis failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, fa)
}

func (s *Server) handleDocumentation(w http.ResponseWriter, r *http.Request) {
	filename, content, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	doc, err := s.svc.GenerateDocumentation(r.Context(), filename, content)
	if err != nil {
		s.writeServiceError(w, r, "Documentation generation failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	filename, content, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	fa, err := s.svc.AnalyzeStructure(r.Context(), filename, content)
	if err != nil {
		s.writeServiceError(w, r, "Diagram generation failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, diagramResponse{
		Filename: fa.Filename,
		Language: fa.Language,
		Mermaid:  report.GenerateMermaid([]service.FileAnalysis{*fa}, report.DefaultDiagramOptions()),
	})
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	s.limitBody(w, r)
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.writeFormError(w, err, "error parsing form")
		return
	}
	ans, err := s.svc.AnswerQuestion(r.Context(), r.FormValue("question"), r.FormValue("code_content"), r.FormValue("language"))
	if err != nil {
		s.writeServiceError(w, r, "Failed to answer question", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ans)
}
