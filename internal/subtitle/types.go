package subtitle

import (
	"time"

	"golang.org/x/text/language"
)

// Reader is the interface for reading subtitle files
type Reader interface {
	Read() (*File, error)
}

// Writer is the interface for writing subtitle files
type Writer interface {
	Write(path string, lines []Line, includeOriginal bool) error
}

// Line represents a single subtitle line
type Line struct {
	Index          int           `json:"index"`
	StartTime      time.Duration `json:"start"`
	EndTime        time.Duration `json:"end"`
	Text           string        `json:"text"`
	TranslatedText string        `json:"translated_text,omitempty"`
}

// Batch is a group of consecutive lines translated together
type Batch struct {
	Number  int    `json:"number"`
	Summary string `json:"summary,omitempty"`
	Lines   []Line `json:"lines"`
}

// Scene is a group of batches separated from its neighbours by a timing gap
type Scene struct {
	Number  int      `json:"number"`
	Summary string   `json:"summary,omitempty"`
	Batches []*Batch `json:"batches"`
}

// Owner is the back-reference to whatever owns the subtitle content.
// Mutations that should eventually be checkpointed notify the owner.
type Owner interface {
	MarkUpdateNeeded()
}

// File represents the subtitle content of a translation run
type File struct {
	Path           string            `json:"path,omitempty"`
	OutputPath     string            `json:"output_path,omitempty"`
	Format         string            `json:"format,omitempty"`
	Language       language.Tag      `json:"language"`
	TargetLanguage language.Tag      `json:"target_language"`
	Settings       map[string]string `json:"settings"`
	Scenes         []*Scene          `json:"scenes"`

	owner Owner
}

// LineCount returns the total number of lines in the batch
func (b *Batch) LineCount() int {
	if b == nil {
		return 0
	}
	return len(b.Lines)
}

// AnyTranslated reports whether any line in the batch has a translation
func (b *Batch) AnyTranslated() bool {
	if b == nil {
		return false
	}
	for _, line := range b.Lines {
		if line.TranslatedText != "" {
			return true
		}
	}
	return false
}

// LineCount returns the total number of lines in the scene
func (s *Scene) LineCount() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, batch := range s.Batches {
		total += batch.LineCount()
	}
	return total
}

// AnyTranslated reports whether any line in the scene has a translation
func (s *Scene) AnyTranslated() bool {
	if s == nil {
		return false
	}
	for _, batch := range s.Batches {
		if batch.AnyTranslated() {
			return true
		}
	}
	return false
}
