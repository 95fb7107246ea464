package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"medreport-ai/internal/imaging"
	"medreport-ai/internal/storage"
)

// MsgNoText is the client-facing message for uploads the OCR provider
// could not read anything from.
const MsgNoText = "Could not read text. Image might be blurry or not a medical report."

// TextReader extracts text from an image file. Satisfied by the OCR client.
type TextReader interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// ReportInterpreter turns extracted report text into an analysis.
type ReportInterpreter interface {
	Interpret(ctx context.Context, reportText string) (string, error)
}

// PDFRenderer writes analysis text to a PDF at the given path.
type PDFRenderer interface {
	Render(text, path string) error
}

// Analysis is the outcome of one successful request.
type Analysis struct {
	Text    string
	PDFName string
}

// AnalysisService runs the whole flow for one upload: store, optimize,
// extract text, interpret, render. Every step is synchronous and any
// failure aborts the request.
type AnalysisService struct {
	uploads     storage.Store
	outputs     storage.Store
	optimizer   *imaging.Optimizer
	ocr         TextReader
	pdfText     *PDFTextExtractor
	interpreter ReportInterpreter
	renderer    PDFRenderer
	retention   time.Duration
}

func NewAnalysisService(
	uploads storage.Store,
	outputs storage.Store,
	optimizer *imaging.Optimizer,
	ocr TextReader,
	pdfText *PDFTextExtractor,
	interpreter ReportInterpreter,
	renderer PDFRenderer,
	retention time.Duration,
) *AnalysisService {
	return &AnalysisService{
		uploads:     uploads,
		outputs:     outputs,
		optimizer:   optimizer,
		ocr:         ocr,
		pdfText:     pdfText,
		interpreter: interpreter,
		renderer:    renderer,
		retention:   retention,
	}
}

// Housekeep expires stale uploads and outputs. Failures are logged and
// swallowed; housekeeping never blocks the request that triggered it.
func (s *AnalysisService) Housekeep() {
	for _, store := range []storage.Store{s.uploads, s.outputs} {
		if err := store.SweepOlderThan(s.retention); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}
}

// Analyze processes a single uploaded report and returns the analysis
// text together with the name of the rendered PDF.
func (s *AnalysisService) Analyze(ctx context.Context, filename string, src io.Reader) (*Analysis, error) {
	path, err := s.uploads.Save(storage.StoredName(filename), src)
	if err != nil {
		return nil, filesystem(fmt.Errorf("save upload: %w", err))
	}

	var text string
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		text, err = s.pdfText.ExtractText(path)
		if err != nil {
			return nil, fmt.Errorf("extract text from pdf: %w", err)
		}
	} else {
		optimized, err := s.optimizer.Optimize(path)
		if err != nil {
			return nil, filesystem(fmt.Errorf("optimize image: %w", err))
		}
		text, err = s.ocr.ExtractText(ctx, optimized)
		if err != nil {
			return nil, upstream(fmt.Errorf("ocr: %w", err))
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, dataQuality(MsgNoText)
	}

	analysis, err := s.interpreter.Interpret(ctx, text)
	if err != nil {
		return nil, upstream(fmt.Errorf("interpret report: %w", err))
	}

	pdfName := fmt.Sprintf("Report_Analysis_%d_%s.pdf", time.Now().Unix(), uuid.NewString()[:8])
	if err := s.renderer.Render(analysis, s.outputs.Path(pdfName)); err != nil {
		return nil, render(fmt.Errorf("render pdf: %w", err))
	}

	return &Analysis{Text: analysis, PDFName: pdfName}, nil
}
