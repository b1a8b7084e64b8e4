package project

import (
	"context"
	"errors"

	"github.com/machinewrapped/go-subtrans/internal/persistence"
	"github.com/machinewrapped/go-subtrans/internal/subtitle"
	"github.com/machinewrapped/go-subtrans/internal/translator"
	"github.com/machinewrapped/go-subtrans/pkg/log"
)

// subscriptionGuard collects event subscriptions so they can be removed on
// every exit path of a translation run.
type subscriptionGuard struct {
	events *translator.Events
	tokens []translator.Token
}

func (g *subscriptionGuard) subscribe(event translator.EventType, handler translator.Handler) {
	g.tokens = append(g.tokens, g.events.Subscribe(event, handler))
}

func (g *subscriptionGuard) unsubscribeAll() {
	for _, token := range g.tokens {
		g.events.Unsubscribe(token)
	}
	g.tokens = nil
}

// TranslateSubtitles runs a whole-project translation. In write mode the
// project file is primed before any translation work so a file exists even
// for a run aborted immediately. Completed scenes are saved as they finish;
// a final save runs on success. An abort from the translator is propagated
// verbatim without a rescue-save.
func (p *Project) TranslateSubtitles(ctx context.Context, trans translator.Translator) error {
	if p.Subtitles() == nil {
		return NewError(ErrNoContent, "no subtitles to translate")
	}

	// Prime new project files
	if p.flags.Write {
		if err := p.WriteProjectFile(""); err != nil {
			return err
		}
	}

	runID := p.journalStart(ctx, "translate")

	trans.SetContentLock(p.StateLock())

	guard := &subscriptionGuard{events: trans.Events()}
	defer guard.unsubscribeAll()

	guard.subscribe(translator.EventPreprocessed, p.onPreprocessed)
	guard.subscribe(translator.EventBatchTranslated, p.onBatchTranslated)
	guard.subscribe(translator.EventSceneTranslated, func(payload any) {
		p.onSceneTranslated(ctx, runID, payload)
	})

	if err := trans.Translate(ctx, p.Subtitles()); err != nil {
		return p.handleTranslationFailure(ctx, runID, trans, err)
	}

	p.SaveTranslation("")
	p.journalFinish(ctx, runID, persistence.StatusSuccess, "")
	return nil
}

// TranslateScene runs a single-scene translation and returns the mutated
// scene on success.
func (p *Project) TranslateScene(ctx context.Context, trans translator.Translator, sceneNumber int, batchNumbers, lineNumbers []int) (*subtitle.Scene, error) {
	subtitles := p.Subtitles()
	if subtitles == nil {
		return nil, NewError(ErrNoContent, "no subtitles to translate")
	}

	if p.flags.Write {
		if err := p.WriteProjectFile(""); err != nil {
			return nil, err
		}
	}

	runID := p.journalStart(ctx, "translate-scene")

	trans.SetContentLock(p.StateLock())

	guard := &subscriptionGuard{events: trans.Events()}
	defer guard.unsubscribeAll()

	guard.subscribe(translator.EventPreprocessed, p.onPreprocessed)
	guard.subscribe(translator.EventBatchTranslated, p.onBatchTranslated)

	if err := trans.TranslateScene(ctx, subtitles, sceneNumber, batchNumbers, lineNumbers); err != nil {
		return nil, p.handleTranslationFailure(ctx, runID, trans, err)
	}

	p.SaveTranslation("")
	p.journalFinish(ctx, runID, persistence.StatusSuccess, "")

	return subtitles.GetScene(sceneNumber)
}

// handleTranslationFailure applies the failure policy: aborts are propagated
// verbatim with no rescue-save; any other failure triggers a best-effort
// rescue-save when the translator stops on error, and is re-raised after
// logging.
func (p *Project) handleTranslationFailure(ctx context.Context, runID string, trans translator.Translator, err error) error {
	if errors.Is(err, translator.ErrAborted) {
		log.Warn("Translation aborted")
		p.journalFinish(ctx, runID, persistence.StatusAborted, err.Error())
		return err
	}

	if p.Subtitles() != nil && trans.StopOnError() {
		p.SaveTranslation("")
	}

	log.Error("Failed to translate subtitles: %v", err)
	p.journalFinish(ctx, runID, persistence.StatusFailed, err.Error())
	return NewErrorWithCause(ErrTranslation, "failed to translate subtitles", err)
}

func (p *Project) onPreprocessed(payload any) {
	log.Debug("Pre-processing finished")
	p.MarkUpdateNeeded()
	p.events.Publish(translator.EventPreprocessed, payload)
}

func (p *Project) onBatchTranslated(payload any) {
	log.Debug("Batch translated")
	p.MarkUpdateNeeded()
	p.events.Publish(translator.EventBatchTranslated, payload)
}

// onSceneTranslated saves the translated output immediately: a completed
// scene must survive a crash, independent of the autosave cadence.
func (p *Project) onSceneTranslated(ctx context.Context, runID string, payload any) {
	log.Debug("Scene translated")
	p.SaveTranslation("")
	p.MarkUpdateNeeded()
	if scene, ok := payload.(*subtitle.Scene); ok {
		p.journalScene(ctx, runID, scene)
	}
	p.events.Publish(translator.EventSceneTranslated, payload)
}
