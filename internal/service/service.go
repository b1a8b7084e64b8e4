package service

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/machinewrapped/go-subtrans/internal/config"
	"github.com/machinewrapped/go-subtrans/internal/project"
	"github.com/machinewrapped/go-subtrans/internal/translator"
	"github.com/machinewrapped/go-subtrans/pkg/log"
)

// TransService drives a full translation run: project initialization,
// translation and the final project write.
type TransService struct {
	cfg *config.Config
}

func NewTransService(cfg *config.Config) *TransService {
	return &TransService{cfg: cfg}
}

var singleflightGroup singleflight.Group

// RunRequest describes one translation run.
type RunRequest struct {
	InputPath     string
	OutputPath    string
	WriteBackup   bool
	TranslateLine translator.LineTranslator
}

// Run executes a translation run. Concurrent triggers collapse into a single
// run; every caller observes its outcome.
func (s *TransService) Run(ctx context.Context, req RunRequest) error {
	_, err, _ := singleflightGroup.Do("translate", func() (any, error) {
		return nil, s.run(ctx, req)
	})
	return err
}

func (s *TransService) run(ctx context.Context, req RunRequest) error {
	proj, err := project.NewProject(s.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := proj.Close(); err != nil {
			log.Error("Failed to close project: %v", err)
		}
	}()

	if err := proj.Initialise(req.InputPath, req.OutputPath, req.WriteBackup); err != nil {
		return err
	}

	log.Info("Translating %d subtitles from %s", proj.Subtitles().LineCount(), req.InputPath)

	engine := translator.NewEngine(req.TranslateLine, s.cfg.Translate.StopOnError)
	if err := proj.TranslateSubtitles(ctx, engine); err != nil {
		return err
	}

	if proj.Flags().Write {
		log.Info("Writing project data to %s", proj.ProjectFile())
		return proj.WriteProjectFile("")
	}
	return nil
}
