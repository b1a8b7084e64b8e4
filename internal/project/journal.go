package project

import (
	"context"

	"github.com/machinewrapped/go-subtrans/internal/persistence"
	"github.com/machinewrapped/go-subtrans/internal/subtitle"
	"github.com/machinewrapped/go-subtrans/pkg/log"
)

// Journal helpers are nil-safe: without a configured journal they do
// nothing, and journal failures never affect the run itself.

func (p *Project) journalStart(ctx context.Context, kind string) string {
	if p.journal == nil {
		return ""
	}

	p.mu.Lock()
	inputPath := ""
	if p.subtitles != nil {
		inputPath = p.subtitles.Path
	}
	projectFile := p.projectFile
	p.mu.Unlock()

	runID, err := p.journal.StartRun(ctx, kind, inputPath, projectFile, modeString(p.flags))
	if err != nil {
		log.Error("Failed to record run start: %v", err)
		return ""
	}
	return runID
}

func (p *Project) journalFinish(ctx context.Context, runID string, status persistence.RunStatus, errMsg string) {
	if p.journal == nil || runID == "" {
		return
	}
	if err := p.journal.FinishRun(ctx, runID, status, errMsg); err != nil {
		log.Error("Failed to record run finish: %v", err)
	}
}

func (p *Project) journalScene(ctx context.Context, runID string, scene *subtitle.Scene) {
	if p.journal == nil || runID == "" || scene == nil {
		return
	}
	if err := p.journal.RecordSceneCheckpoint(ctx, runID, scene.Number, scene.LineCount()); err != nil {
		log.Error("Failed to record scene checkpoint: %v", err)
	}
}

func modeString(flags ModeFlags) string {
	switch {
	case flags.Resume:
		return "resume"
	case flags.Retranslate:
		return "retranslate"
	case flags.Reparse:
		return "reparse"
	case flags.Preview:
		return "preview"
	case flags.Read && flags.Write && flags.LoadSource:
		return "true"
	case flags.Write:
		return "write"
	case flags.Read:
		return "read"
	default:
		return ""
	}
}
