package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/text/transform"

	"github.com/machinewrapped/go-subtrans/internal/subtitle"
	"github.com/machinewrapped/go-subtrans/pkg/file"
	"github.com/machinewrapped/go-subtrans/pkg/log"
)

// ReadOutcome classifies the result of reading a project file. Everything
// except ReadOK is recoverable: the Initialiser falls back to a fresh load.
type ReadOutcome int

const (
	ReadOK ReadOutcome = iota
	// ReadMissing means the project file does not exist. This is a normal,
	// expected condition.
	ReadMissing
	// ReadCorrupt means the file exists but could not be decoded.
	ReadCorrupt
	// ReadEmpty means the file decoded but contains no scenes.
	ReadEmpty
)

// WriteProjectFile checkpoints the full content to the project file, or to
// an explicit path when one is given. The write replaces the file atomically
// so readers never observe a partial document. On success the dirty flag is
// cleared.
func (p *Project) WriteProjectFile(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subtitles == nil {
		return NewError(ErrWritePrecondition, "can't write project file, no subtitles")
	}
	if len(p.subtitles.Scenes) == 0 {
		return NewError(ErrWritePrecondition, "can't write project file, no scenes")
	}

	if path == "" {
		path = p.projectFile
	} else if p.projectFile == "" {
		p.projectFile = ProjectFilepath(path)
		p.subtitles.OutputPath = file.OutputPath(p.projectFile, p.subtitles.TargetLanguage.String())
		p.flags.Read = true
		p.flags.Write = true
	}

	if path == "" {
		return NewError(ErrWritePrecondition, "no project file path provided")
	}
	path = filepath.Clean(path)

	log.Info("Writing project data to %s", path)

	data, err := json.MarshalIndent(p.subtitles, "", "    ")
	if err != nil {
		return NewErrorWithCause(ErrFileWrite, "failed to encode project data", err)
	}

	if p.encoding != nil {
		data, _, err = transform.Bytes(p.encoding.NewEncoder(), data)
		if err != nil {
			return NewErrorWithCause(ErrFileWrite, "failed to encode project data", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return NewErrorWithCause(ErrFileWrite, "failed to write project file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return NewErrorWithCause(ErrFileWrite, "failed to write project file", err)
	}

	p.dirty.Store(false)
	return nil
}

// WriteBackupFile saves a backup copy of the project file, using the
// `<projectfile>-backup` naming pattern and the identical encoding.
func (p *Project) WriteBackupFile() error {
	p.mu.Lock()
	subtitles := p.subtitles
	projectFile := p.projectFile
	p.mu.Unlock()

	if subtitles == nil || projectFile == "" {
		return nil
	}
	return p.WriteProjectFile(BackupFilepath(projectFile))
}

// ReadProjectFile loads scenes, settings and languages from a project file.
// Missing, corrupt and empty files are recoverable outcomes, not errors; the
// cause is logged and the caller falls back to a fresh load.
func (p *Project) ReadProjectFile(path string) (*subtitle.File, ReadOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path == "" {
		path = p.projectFile
	}

	log.Info("Reading project data from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("Project file %s not found", path)
			return nil, ReadMissing
		}
		log.Error("Failed to read project file %s: %v", path, err)
		return nil, ReadCorrupt
	}

	if p.encoding != nil {
		data, _, err = transform.Bytes(p.encoding.NewDecoder(), data)
		if err != nil {
			log.Error("Failed to decode project file %s: %v", path, err)
			return nil, ReadCorrupt
		}
	}

	subtitles := subtitle.NewFile("")
	if err := json.Unmarshal(data, subtitles); err != nil {
		log.Error("Failed to decode project file %s: %v", path, err)
		return nil, ReadCorrupt
	}

	subtitles.Sanitise()
	subtitles.SetOwner(p)
	p.subtitles = subtitles

	if len(subtitles.Scenes) == 0 {
		return subtitles, ReadEmpty
	}
	return subtitles, ReadOK
}

// UpdateProjectSettings applies settings changes to the content. It is a
// no-op when every key already has the supplied value; otherwise the changes
// are checkpointed synchronously, not deferred to autosave.
func (p *Project) UpdateProjectSettings(settings map[string]string) error {
	p.mu.Lock()
	if p.subtitles == nil {
		p.mu.Unlock()
		return nil
	}

	changed := false
	for key, value := range settings {
		if p.subtitles.Settings[key] != value {
			changed = true
			break
		}
	}
	if !changed {
		p.mu.Unlock()
		return nil
	}

	p.subtitles.UpdateSettings(settings)
	hasScenes := len(p.subtitles.Scenes) > 0
	if hasScenes {
		p.subtitles.UpdateOutputPath()
	}
	p.mu.Unlock()

	if hasScenes {
		return p.WriteProjectFile("")
	}
	return nil
}

// GetProjectSettings returns the non-empty settings of the content.
func (p *Project) GetProjectSettings() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ret := make(map[string]string)
	if p.subtitles == nil {
		return ret
	}
	for key, value := range p.subtitles.Settings {
		if value != "" {
			ret[key] = value
		}
	}
	return ret
}

// SaveTranslation writes the translated output file. The save is best
// effort: failures are logged but never escalated, so a failed save cannot
// mask the outcome of the run that requested it.
func (p *Project) SaveTranslation(outputPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subtitles == nil {
		return
	}
	if err := p.subtitles.SaveTranslation(outputPath, p.includeOriginal); err != nil {
		log.Error("Unable to save translation: %v", err)
	}
}

// autosaveTick checkpoints the project when state changed since the last
// write. The dirty flag is cleared before the write; a mutation racing the
// write is picked up on the next tick.
func (p *Project) autosaveTick() {
	if !p.dirty.CompareAndSwap(true, false) {
		return
	}
	if err := p.WriteProjectFile(""); err != nil {
		log.Error("Autosave failed: %v", err)
	}
}

// autosaveBackup writes a scheduled backup copy of the project file.
func (p *Project) autosaveBackup() {
	if err := p.WriteBackupFile(); err != nil {
		log.Error("Scheduled backup failed: %v", err)
	}
}

func (o ReadOutcome) String() string {
	switch o {
	case ReadOK:
		return "ok"
	case ReadMissing:
		return "missing"
	case ReadCorrupt:
		return "corrupt"
	case ReadEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
