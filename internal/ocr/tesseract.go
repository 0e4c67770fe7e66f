package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"billscan/internal/config"
	"billscan/internal/domain"
)

const maxDocumentBytes = 20 << 20 // refuse documents over 20MB

// TesseractSource implements port.TextSource by fetching an image over
// HTTP and running it through the tesseract CLI. Stateless across calls.
type TesseractSource struct {
	cmd         string
	language    string
	maxImageDim int
	client      *http.Client
	runner      Runner
}

// NewTesseractSource creates a text source from config using the real
// exec runner.
func NewTesseractSource(cfg *config.OCRConfig) *TesseractSource {
	return NewTesseractSourceWithRunner(cfg, NewExecRunner())
}

// NewTesseractSourceWithRunner creates a text source with a custom
// command runner (for testing).
func NewTesseractSourceWithRunner(cfg *config.OCRConfig, runner Runner) *TesseractSource {
	cmd := cfg.TesseractCmd
	if cmd == "" {
		cmd = "tesseract"
	}
	language := cfg.Language
	if language == "" {
		language = "eng"
	}
	maxDim := cfg.MaxImageDim
	if maxDim == 0 {
		maxDim = 4000
	}
	timeout := time.Duration(cfg.FetchTimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &TesseractSource{
		cmd:         cmd,
		language:    language,
		maxImageDim: maxDim,
		client:      &http.Client{Timeout: timeout},
		runner:      runner,
	}
}

// Extract fetches the document image and returns its OCR text with
// whitespace normalized. An empty string means no extractable text.
func (s *TesseractSource) Extract(ctx context.Context, documentURL string) (string, error) {
	imgBytes, err := s.fetch(ctx, documentURL)
	if err != nil {
		return "", err
	}

	img, format, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	log.Printf("ocr.TesseractSource: decoded %s image %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())

	prepared, err := s.preprocess(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}

	text, err := s.runTesseract(ctx, prepared)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCRUnavailable, err)
	}

	return NormalizeText(text), nil
}

func (s *TesseractSource) fetch(ctx context.Context, documentURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentFetch, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrDocumentFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentFetch, err)
	}
	if len(body) > maxDocumentBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", domain.ErrDocumentFetch, maxDocumentBytes)
	}
	return body, nil
}

// preprocess normalizes the image for OCR: downscale so no dimension
// exceeds the configured maximum, then grayscale/contrast/sharpen to
// make text legible, and re-encode as PNG for tesseract stdin.
func (s *TesseractSource) preprocess(src image.Image) ([]byte, error) {
	img := imaging.Clone(src)

	bounds := img.Bounds()
	if bounds.Dx() > s.maxImageDim || bounds.Dy() > s.maxImageDim {
		img = imaging.Fit(img, s.maxImageDim, s.maxImageDim, imaging.Lanczos)
	}

	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 20)
	img = imaging.Sharpen(img, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *TesseractSource) runTesseract(ctx context.Context, imgBytes []byte) (string, error) {
	args := []string{"stdin", "stdout", "--oem", "3", "--psm", "6", "-l", s.language}
	stdout, stderr, err := s.runner.Run(ctx, s.cmd, imgBytes, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %v (stderr: %s)", err, truncate(string(stderr), 512))
	}
	return string(stdout), nil
}

// NormalizeText trims every line and drops blank lines from raw OCR
// output.
func NormalizeText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
