package subtitle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
Hello there

2
00:00:03,000 --> 00:00:04,000
How are you today?

3
00:00:05,000 --> 00:00:06,000
Goodbye
`

func writeTempSRT(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.srt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReader_ParsesSRT(t *testing.T) {
	path := writeTempSRT(t, sampleSRT)

	f, err := NewReader(path).Read()
	require.NoError(t, err)

	require.Equal(t, 3, f.LineCount())
	lines := f.Lines()
	assert.Equal(t, 1, lines[0].Index)
	assert.Equal(t, time.Second, lines[0].StartTime)
	assert.Equal(t, 2500*time.Millisecond, lines[0].EndTime)
	assert.Equal(t, "Hello there", lines[0].Text)
	assert.Equal(t, "Goodbye", lines[2].Text)
	assert.Equal(t, "SRT", f.Format)
}

func TestReader_RejectsNonSRT(t *testing.T) {
	_, err := NewReader("movie.ass").Read()
	require.Error(t, err)
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.srt")).Read()
	require.Error(t, err)
}
