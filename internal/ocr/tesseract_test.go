package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billscan/internal/config"
	"billscan/internal/domain"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error
	calls  int
	cmd    string
	args   []string
	stdin  []byte
}

func (r *stubRunner) Run(_ context.Context, name string, stdin []byte, args ...string) ([]byte, []byte, error) {
	r.calls++
	r.cmd = name
	r.args = args
	r.stdin = stdin
	return r.stdout, r.stderr, r.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func imageServer(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
}

func testSource(runner Runner) *TesseractSource {
	return NewTesseractSourceWithRunner(&config.OCRConfig{
		TesseractCmd:     "tesseract",
		Language:         "eng",
		FetchTimeoutSecs: 5,
		MaxImageDim:      4000,
	}, runner)
}

func TestExtract_Success(t *testing.T) {
	server := imageServer(t, pngBytes(t, 100, 60), http.StatusOK)
	defer server.Close()

	runner := &stubRunner{stdout: []byte("  City Hospital  \n\n  Aspirin 100  \n")}
	source := testSource(runner)

	text, err := source.Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "City Hospital\nAspirin 100", text)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "tesseract", runner.cmd)
	assert.Equal(t, []string{"stdin", "stdout", "--oem", "3", "--psm", "6", "-l", "eng"}, runner.args)
	assert.NotEmpty(t, runner.stdin)
}

func TestExtract_FetchFailure(t *testing.T) {
	server := imageServer(t, []byte("gone"), http.StatusNotFound)
	defer server.Close()

	source := testSource(&stubRunner{})
	_, err := source.Extract(context.Background(), server.URL)

	assert.ErrorIs(t, err, domain.ErrDocumentFetch)
}

func TestExtract_ConnectionRefused(t *testing.T) {
	server := imageServer(t, nil, http.StatusOK)
	server.Close()

	source := testSource(&stubRunner{})
	_, err := source.Extract(context.Background(), server.URL)

	assert.ErrorIs(t, err, domain.ErrDocumentFetch)
}

func TestExtract_NotAnImage(t *testing.T) {
	server := imageServer(t, []byte("<html>not an image</html>"), http.StatusOK)
	defer server.Close()

	runner := &stubRunner{}
	source := testSource(runner)
	_, err := source.Extract(context.Background(), server.URL)

	assert.ErrorIs(t, err, domain.ErrImageDecode)
	assert.Equal(t, 0, runner.calls)
}

func TestExtract_TesseractFailure(t *testing.T) {
	server := imageServer(t, pngBytes(t, 50, 50), http.StatusOK)
	defer server.Close()

	runner := &stubRunner{err: errors.New("exit status 1"), stderr: []byte("no languages found")}
	source := testSource(runner)
	_, err := source.Extract(context.Background(), server.URL)

	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
}

func TestExtract_DownscalesOversizedImage(t *testing.T) {
	server := imageServer(t, pngBytes(t, 300, 100), http.StatusOK)
	defer server.Close()

	runner := &stubRunner{stdout: []byte("text")}
	source := NewTesseractSourceWithRunner(&config.OCRConfig{MaxImageDim: 150, FetchTimeoutSecs: 5}, runner)

	_, err := source.Extract(context.Background(), server.URL)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(runner.stdin))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 150)
	assert.LessOrEqual(t, img.Bounds().Dy(), 150)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a\nb", NormalizeText("  a  \n\n\n  b  \n"))
	assert.Equal(t, "", NormalizeText("   \n \t \n"))
	assert.Equal(t, "single", NormalizeText("single"))
}
