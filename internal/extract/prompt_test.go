package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt_Deterministic(t *testing.T) {
	a := BuildExtractionPrompt("Aspirin 2 x 50 = 100", "1", 8000)
	b := BuildExtractionPrompt("Aspirin 2 x 50 = 100", "1", 8000)
	assert.Equal(t, a, b)
}

func TestBuildExtractionPrompt_EmbedsTextAndPage(t *testing.T) {
	prompt := BuildExtractionPrompt("Consultation Fee 500", "3", 8000)

	assert.Contains(t, prompt, "Consultation Fee 500")
	assert.Contains(t, prompt, "page 3")
	assert.Contains(t, prompt, "item_name")
	assert.Contains(t, prompt, "page_type")
}

func TestBuildExtractionPrompt_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 10000)
	prompt := BuildExtractionPrompt(long, "1", 8000)

	assert.Contains(t, prompt, TruncationMarker)
	assert.NotContains(t, prompt, strings.Repeat("x", 8001))
}

func TestBuildRepairPrompt_BoundsPriorOutput(t *testing.T) {
	prior := strings.Repeat("y", 2000)
	prompt := BuildRepairPrompt("some bill text", prior, 8000)

	assert.Contains(t, prompt, "could not be parsed")
	assert.Contains(t, prompt, "some bill text")
	assert.Contains(t, prompt, strings.Repeat("y", 500))
	assert.NotContains(t, prompt, strings.Repeat("y", 501))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "ab"+TruncationMarker, Truncate("abcdef", 2))
	assert.Equal(t, "anything", Truncate("anything", 0))
}
