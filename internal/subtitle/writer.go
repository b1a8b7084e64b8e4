package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// DefaultWriter is the default subtitle file writer
type DefaultWriter struct{}

// NewWriter creates a new subtitle file writer
func NewWriter() Writer {
	return &DefaultWriter{}
}

// Write writes lines to the given path in SRT format. With includeOriginal
// the original text is kept above the translation.
func (w *DefaultWriter) Write(path string, lines []Line, includeOriginal bool) error {
	if len(lines) == 0 {
		return fmt.Errorf("no subtitle lines to write")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	defer writer.Flush()

	for _, line := range lines {
		// write index
		fmt.Fprintf(writer, "%d\n", line.Index)

		// write time
		startTime := formatDuration(line.StartTime)
		endTime := formatDuration(line.EndTime)
		fmt.Fprintf(writer, "%s --> %s\n", startTime, endTime)

		// write text (use translated text, fallback to original if empty)
		text := line.TranslatedText
		if text == "" {
			text = line.Text
		} else if includeOriginal && line.Text != "" {
			text = line.Text + "\n" + line.TranslatedText
		}
		fmt.Fprintf(writer, "%s\n\n", text)
	}

	return nil
}

// formatDuration formats time.Duration to SRT time format
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}
