package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/encoding"
	"golang.org/x/text/language"

	"github.com/machinewrapped/go-subtrans/internal/config"
	"github.com/machinewrapped/go-subtrans/internal/persistence"
	"github.com/machinewrapped/go-subtrans/internal/subtitle"
	"github.com/machinewrapped/go-subtrans/internal/translator"
	"github.com/machinewrapped/go-subtrans/pkg/file"
	"github.com/machinewrapped/go-subtrans/pkg/log"
)

// ProjectFileSuffix is the extension of project checkpoint files.
const ProjectFileSuffix = ".subtrans"

// Project holds the working state of a translation run: the subtitle content,
// the project file path and the checkpointing machinery. It is created once
// per run and never shared across runs.
type Project struct {
	// mu guards subtitles and all project-file I/O across the foreground /
	// autosave boundary.
	mu        sync.Mutex
	subtitles *subtitle.File

	projectFile string

	// flags is written only on the foreground (construction, Initialise and
	// explicit-path adoption before a run) and is frozen while a translation
	// run or the autosave loop is active, so reads need no lock.
	flags ModeFlags

	// dirty marks unpersisted mutations. It is cleared immediately before a
	// checkpoint write; scene-level saves provide the durability guarantee.
	dirty atomic.Bool

	events    *translator.Events
	autosaver *Autosaver
	journal   *persistence.Journal

	encoding        encoding.Encoding
	includeOriginal bool
	targetLanguage  language.Tag
	batch           config.BatchConfig
}

// NewProject creates the project state for a run. Autosave starts right away
// when it is enabled and the resolved mode tracks updates; callers must Close
// the project to stop it deterministically.
func NewProject(cfg *config.Config) (*Project, error) {
	enc, err := cfg.ProjectEncoding()
	if err != nil {
		return nil, NewErrorWithCause(ErrConfig, "invalid project encoding", err)
	}

	p := &Project{
		flags:           ResolveMode(cfg.Project.Mode),
		events:          translator.NewEvents(),
		encoding:        enc,
		includeOriginal: cfg.Translate.IncludeOriginal,
		targetLanguage:  cfg.Translate.TargetLanguage,
		batch:           cfg.Batch,
	}

	if cfg.Journal.Path != "" {
		journal, err := persistence.NewJournal(cfg.Journal.Path)
		if err != nil {
			return nil, NewErrorWithCause(ErrConfig, "failed to open run journal", err)
		}
		p.journal = journal
	}

	if p.flags.Update && cfg.Project.Autosave {
		p.autosaver = NewAutosaver(cfg.Project.AutosaveInterval, cfg.Project.BackupCronExpr, p)
		p.autosaver.Start()
	}

	return p, nil
}

// Close stops the autosave loop and releases the run journal. It must be
// called exactly once when the run is over.
func (p *Project) Close() error {
	if p.autosaver != nil {
		p.autosaver.Stop()
	}
	if p.journal != nil {
		return p.journal.Close()
	}
	return nil
}

// Flags returns the current mode flags. Initialise may downgrade the
// resolved flags, e.g. when the project file does not exist yet.
func (p *Project) Flags() ModeFlags {
	return p.flags
}

// Events is the project's own event bus; translator lifecycle events are
// forwarded here during a run.
func (p *Project) Events() *translator.Events {
	return p.events
}

// ProjectFile returns the checkpoint file path.
func (p *Project) ProjectFile() string {
	return p.projectFile
}

// Subtitles returns the owned subtitle content.
func (p *Project) Subtitles() *subtitle.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subtitles
}

// StateLock exposes the mutex guarding the content, so collaborators that
// mutate it during a run hold the same lock as the checkpoint writes.
func (p *Project) StateLock() sync.Locker {
	return &p.mu
}

// TargetLanguage returns the target language of the content, or Und when no
// content is loaded.
func (p *Project) TargetLanguage() language.Tag {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subtitles == nil {
		return language.Und
	}
	return p.subtitles.TargetLanguage
}

// AnyTranslated reports whether any subtitles have been translated yet.
func (p *Project) AnyTranslated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subtitles.AnyTranslated()
}

// MarkUpdateNeeded records that state has changed since the last checkpoint.
// Only update mode tracks the dirty flag.
func (p *Project) MarkUpdateNeeded() {
	if p.flags.Update {
		p.dirty.Store(true)
	}
}

// NeedsUpdate reports whether there are unpersisted mutations.
func (p *Project) NeedsUpdate() bool {
	return p.dirty.Load()
}

// Initialise populates the project state by loading an existing project file
// or the source subtitle file. A missing, corrupt or empty project file
// falls back to a fresh load of the source; having no translatable content
// after all fallbacks is fatal.
func (p *Project) Initialise(inputPath, outputPath string, writeBackup bool) error {
	if inputPath == "" {
		inputPath = "subtitles"
	}
	inputPath = filepath.Clean(inputPath)
	p.projectFile = ProjectFilepath(inputPath)

	// The caller pointed directly at a project file
	if p.projectFile == inputPath {
		p.flags.Read = true
		p.flags.Write = true
	}

	if p.flags.Read {
		if _, err := os.Stat(p.projectFile); os.IsNotExist(err) {
			log.Info("Project file %s does not exist", p.projectFile)
			p.flags.Read = false
			p.flags.LoadSource = true
		}
	}

	if p.flags.Read {
		subtitles, outcome := p.ReadProjectFile("")
		if outcome == ReadOK && len(subtitles.Scenes) > 0 {
			p.flags.LoadSource = false
			if writeBackup {
				log.Info("Project file loaded, saving backup copy")
				if err := p.WriteBackupFile(); err != nil {
					log.Error("Failed to write backup copy: %v", err)
				}
			} else {
				log.Info("Project file loaded")
			}
		} else {
			log.Error("Unable to read project file, starting afresh")
			p.flags.LoadSource = true
		}
	}

	if p.flags.LoadSource {
		if err := p.LoadSubtitleFile(inputPath); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subtitles != nil && outputPath != "" {
		p.subtitles.OutputPath = outputPath
	}

	if !p.subtitles.HasSubtitles() {
		return NewError(ErrNoContent, fmt.Sprintf("no subtitles to translate in %s", inputPath))
	}
	return nil
}

// LoadSubtitleFile loads subtitle content from the source file and attaches
// it as the owned content of the project.
func (p *Project) LoadSubtitleFile(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	subtitles := subtitle.NewFile(path)
	if err := subtitles.LoadSubtitles(); err != nil {
		return NewErrorWithCause(ErrFileRead, fmt.Sprintf("failed to load subtitles from %s", path), err)
	}

	subtitles.AutoBatch(p.batch.SceneThreshold, p.batch.MinBatchSize, p.batch.MaxBatchSize)
	subtitles.TargetLanguage = p.targetLanguage
	subtitles.UpdateOutputPath()
	subtitles.SetOwner(p)
	p.subtitles = subtitles
	return nil
}

// ProjectFilepath derives the project file path from any input path by
// extension substitution.
func ProjectFilepath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ProjectFileSuffix) {
		return filepath.Clean(path)
	}
	return filepath.Clean(file.ReplaceExt(path, ProjectFileSuffix))
}

// BackupFilepath derives the backup file path for a project file.
func BackupFilepath(path string) string {
	return ProjectFilepath(path) + "-backup"
}
