package main

import (
	"log"
	"net/http"
	"time"

	"billscan/internal/completion"
	"billscan/internal/completion/claude"
	"billscan/internal/completion/groq"
	"billscan/internal/config"
	"billscan/internal/extract"
	"billscan/internal/handler"
	"billscan/internal/ocr"
	"billscan/internal/port"
	"billscan/internal/router"
	"billscan/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	completion.RegisterProvider("groq", func(c *config.CompletionConfig) (port.Completer, error) {
		return groq.NewCompleter(c), nil
	})
	completion.RegisterProvider("claude", func(c *config.CompletionConfig) (port.Completer, error) {
		return claude.NewCompleter(c), nil
	})

	completer, err := completion.NewCompleter(&cfg.Completion)
	if err != nil {
		return err
	}

	source := ocr.NewTesseractSource(&cfg.OCR)
	extractor := extract.NewExtractor(completer,
		extract.WithMaxAttempts(cfg.Completion.MaxRetries+1),
		extract.WithMaxTokens(cfg.Completion.MaxOutputTokens),
		extract.WithPromptBudget(cfg.Pipeline.MaxPromptChars),
	)
	svc := service.NewBillExtractionService(source, extractor, cfg.Pipeline)
	extractHandler := handler.NewExtractHandler(svc)

	r := router.Setup(cfg, extractHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: maxDuration(cfg.Server.WriteTimeout, pipelineWriteTimeout),
	}

	log.Printf("main: starting billscan server on %s (provider=%s)", cfg.Server.Port, cfg.Completion.Provider)
	return srv.ListenAndServe()
}

// pipelineWriteTimeout bounds the slowest request path: document fetch,
// tesseract, and up to two completion rounds with retries.
const pipelineWriteTimeout = 5 * time.Minute

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
