package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"medreport-ai/internal/services"
	"medreport-ai/internal/storage"
)

const maxMultipartMemory = 8 << 20 // 8 MB

// Server exposes the analysis flow over HTTP.
type Server struct {
	mux       *http.ServeMux
	analysis  *services.AnalysisService
	outputs   storage.Store
	uploadDir string
	ocrKeySet bool
	llmKeySet bool
}

func NewServer(analysis *services.AnalysisService, outputs storage.Store, uploadDir string, ocrKeySet, llmKeySet bool) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		analysis:  analysis,
		outputs:   outputs,
		uploadDir: uploadDir,
		ocrKeySet: ocrKeySet,
		llmKeySet: llmKeySet,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/download/", s.handleDownload)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	_, err := os.Stat(s.uploadDir)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "online",
		"ocr_key_present":      s.ocrKeySet,
		"llm_key_present":      s.llmKeySet,
		"upload_folder_exists": err == nil,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	s.analysis.Housekeep()

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	if form := r.MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		// A part with an empty filename is parsed as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeError(w, http.StatusBadRequest, "No file selected")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	header := files[0]
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	src, err := header.Open()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer src.Close()

	result, err := s.analysis.Analyze(r.Context(), header.Filename, src)
	if err != nil {
		log.Printf("analyze error: %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": result.Text,
		"pdf_url":  "/download/" + result.PDFName,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	name := filepath.Base(strings.TrimPrefix(r.URL.Path, "/download/"))
	if name == "" || name == "." || name == "/" {
		http.NotFound(w, r)
		return
	}

	f, err := s.outputs.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("stream %s: %v", name, err)
	}
}

// statusFor maps kinded service errors onto HTTP statuses. Validation
// and data-quality failures are the client's problem; everything else
// surfaces as a 500 carrying the raw message.
func statusFor(err error) int {
	if kind, ok := services.KindOf(err); ok {
		switch kind {
		case services.KindValidation, services.KindDataQuality:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
