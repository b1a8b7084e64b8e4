package subtitle

import (
	"fmt"
	"sort"

	"github.com/machinewrapped/go-subtrans/pkg/file"
)

// NewFile creates an empty subtitle file for the given source path
func NewFile(path string) *File {
	return &File{
		Path:     path,
		Settings: make(map[string]string),
	}
}

// SetOwner attaches the owning project state. Only the owner itself should
// call this; the content never sets its own back-reference.
func (f *File) SetOwner(owner Owner) {
	f.owner = owner
}

// HasSubtitles reports whether there is any translatable content
func (f *File) HasSubtitles() bool {
	return f != nil && f.LineCount() > 0
}

// LineCount returns the total number of lines across all scenes
func (f *File) LineCount() int {
	if f == nil {
		return 0
	}
	total := 0
	for _, scene := range f.Scenes {
		total += scene.LineCount()
	}
	return total
}

// Lines returns all lines in scene and batch order
func (f *File) Lines() []Line {
	if f == nil {
		return nil
	}
	lines := make([]Line, 0, f.LineCount())
	for _, scene := range f.Scenes {
		for _, batch := range scene.Batches {
			lines = append(lines, batch.Lines...)
		}
	}
	return lines
}

// AnyTranslated reports whether any line has been translated yet
func (f *File) AnyTranslated() bool {
	if f == nil {
		return false
	}
	for _, scene := range f.Scenes {
		if scene.AnyTranslated() {
			return true
		}
	}
	return false
}

// GetScene returns the scene with the given number
func (f *File) GetScene(number int) (*Scene, error) {
	for _, scene := range f.Scenes {
		if scene.Number == number {
			return scene, nil
		}
	}
	return nil, fmt.Errorf("scene %d not found", number)
}

// LoadSubtitles reads the source subtitle file into the content
func (f *File) LoadSubtitles() error {
	loaded, err := NewReader(f.Path).Read()
	if err != nil {
		return err
	}

	f.Format = loaded.Format
	f.Language = loaded.Language
	f.Scenes = loaded.Scenes
	if f.Settings == nil {
		f.Settings = make(map[string]string)
	}
	return nil
}

// SaveTranslation writes the translated lines as a subtitle file. The output
// path is the explicit argument if given, otherwise the stored output path,
// otherwise a path derived from the source path and target language.
func (f *File) SaveTranslation(outputPath string, includeOriginal bool) error {
	if !f.HasSubtitles() {
		return fmt.Errorf("no subtitles to save")
	}

	if outputPath == "" {
		outputPath = f.OutputPath
	}
	if outputPath == "" {
		outputPath = file.OutputPath(f.Path, f.TargetLanguage.String())
	}
	if outputPath == "" {
		return fmt.Errorf("no output path for translation")
	}

	f.OutputPath = outputPath
	return NewWriter().Write(outputPath, f.Lines(), includeOriginal)
}

// UpdateOutputPath recomputes the output path from the source path and the
// current target language
func (f *File) UpdateOutputPath() {
	base := f.Path
	if base == "" {
		base = f.OutputPath
	}
	f.OutputPath = file.OutputPath(base, f.TargetLanguage.String())
}

// UpdateSettings applies the given settings to the content and notifies the
// owner that the state needs checkpointing
func (f *File) UpdateSettings(settings map[string]string) {
	if f.Settings == nil {
		f.Settings = make(map[string]string)
	}
	for key, value := range settings {
		f.Settings[key] = value
	}
	if f.owner != nil {
		f.owner.MarkUpdateNeeded()
	}
}

// Sanitise repairs internal consistency after loading: empty batches and
// scenes are dropped, lines are re-sorted by start time and scenes and
// batches are renumbered sequentially.
func (f *File) Sanitise() {
	if f == nil {
		return
	}

	scenes := make([]*Scene, 0, len(f.Scenes))
	for _, scene := range f.Scenes {
		if scene == nil {
			continue
		}
		batches := make([]*Batch, 0, len(scene.Batches))
		for _, batch := range scene.Batches {
			if batch == nil || len(batch.Lines) == 0 {
				continue
			}
			sort.SliceStable(batch.Lines, func(i, j int) bool {
				return batch.Lines[i].StartTime < batch.Lines[j].StartTime
			})
			batches = append(batches, batch)
		}
		if len(batches) == 0 {
			continue
		}
		scene.Batches = batches
		scenes = append(scenes, scene)
	}

	for i, scene := range scenes {
		scene.Number = i + 1
		for j, batch := range scene.Batches {
			batch.Number = j + 1
		}
	}
	f.Scenes = scenes
}
