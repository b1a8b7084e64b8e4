package subtitle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WritesTranslatedText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	lines := []Line{
		{Index: 1, StartTime: time.Second, EndTime: 2 * time.Second, Text: "hello", TranslatedText: "你好"},
		{Index: 2, StartTime: 3 * time.Second, EndTime: 4 * time.Second, Text: "untranslated"},
	}

	require.NoError(t, NewWriter().Write(path, lines, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "00:00:01,000 --> 00:00:02,000")
	assert.Contains(t, out, "你好")
	assert.NotContains(t, out, "hello\n你好")
	// falls back to original text when untranslated
	assert.Contains(t, out, "untranslated")
}

func TestWriter_IncludeOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	lines := []Line{
		{Index: 1, StartTime: time.Second, EndTime: 2 * time.Second, Text: "hello", TranslatedText: "你好"},
	}

	require.NoError(t, NewWriter().Write(path, lines, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello\n你好")
}

func TestWriter_EmptyLines(t *testing.T) {
	require.Error(t, NewWriter().Write(filepath.Join(t.TempDir(), "out.srt"), nil, false))
}
