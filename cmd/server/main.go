package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"medreport-ai/internal/api"
	"medreport-ai/internal/config"
	"medreport-ai/internal/imaging"
	"medreport-ai/internal/ocr"
	"medreport-ai/internal/report"
	"medreport-ai/internal/services"
	"medreport-ai/internal/storage"
)

func main() {
	cfg := config.Load()

	uploads := storage.NewDiskStore(cfg.UploadDir)
	outputs := storage.NewDiskStore(cfg.OutputDir)

	analysisService := services.NewAnalysisService(
		uploads,
		outputs,
		imaging.NewOptimizer(),
		ocr.NewClient(cfg.OCRKey, cfg.OCRURL, cfg.RemoteTimeout),
		services.NewPDFTextExtractor(),
		services.NewInterpreter(cfg.LLMKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.RemoteTimeout),
		report.NewRenderer(),
		cfg.RetentionAge,
	)

	server := api.NewServer(analysisService, outputs, cfg.UploadDir, cfg.OCRKey != "", cfg.LLMKey != "")

	mux := http.NewServeMux()
	mux.HandleFunc("/", serveFile("./web/index.html"))
	mux.Handle("/health", server.Handler())
	mux.Handle("/analyze", server.Handler())
	mux.Handle("/download/", server.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Two sequential remote calls can take a while; the write
		// deadline has to outlast both.
		WriteTimeout: 3 * cfg.RemoteTimeout,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func serveFile(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		http.ServeFile(w, r, path)
	}
}
