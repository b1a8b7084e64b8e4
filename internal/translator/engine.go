package translator

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/machinewrapped/go-subtrans/internal/subtitle"
	"github.com/machinewrapped/go-subtrans/pkg/log"
)

// LineTranslator produces the translation for a single line of text.
type LineTranslator func(ctx context.Context, text, targetLanguage string) (string, error)

// Engine walks scenes and batches, delegating the text of each line to a
// LineTranslator and publishing lifecycle events as it goes. The translation
// backend itself is pluggable.
type Engine struct {
	events        *Events
	translateLine LineTranslator
	stopOnError   bool
	contentLock   sync.Locker
}

func NewEngine(translateLine LineTranslator, stopOnError bool) *Engine {
	return &Engine{
		events:        NewEvents(),
		translateLine: translateLine,
		stopOnError:   stopOnError,
		contentLock:   noopLock{},
	}
}

// SetContentLock provides the lock that guards the content against a
// concurrent checkpointer. Translated text is written into the content only
// while holding it.
func (e *Engine) SetContentLock(l sync.Locker) {
	if l != nil {
		e.contentLock = l
	}
}

type noopLock struct{}

func (noopLock) Lock()   {}
func (noopLock) Unlock() {}

func (e *Engine) StopOnError() bool {
	return e.stopOnError
}

func (e *Engine) Events() *Events {
	return e.events
}

// Translate translates every scene of the content in place.
func (e *Engine) Translate(ctx context.Context, subtitles *subtitle.File) error {
	if subtitles == nil || !subtitles.HasSubtitles() {
		return fmt.Errorf("no subtitles to translate")
	}

	e.events.Publish(EventPreprocessed, subtitles.Scenes)

	for _, scene := range subtitles.Scenes {
		if err := e.translateSceneBatches(ctx, subtitles, scene, nil, nil); err != nil {
			return err
		}
		e.events.Publish(EventSceneTranslated, scene)
	}
	return nil
}

// TranslateScene translates a single scene of the content in place.
func (e *Engine) TranslateScene(ctx context.Context, subtitles *subtitle.File, sceneNumber int, batchNumbers, lineNumbers []int) error {
	if subtitles == nil || !subtitles.HasSubtitles() {
		return fmt.Errorf("no subtitles to translate")
	}

	scene, err := subtitles.GetScene(sceneNumber)
	if err != nil {
		return err
	}

	e.events.Publish(EventPreprocessed, []*subtitle.Scene{scene})

	return e.translateSceneBatches(ctx, subtitles, scene, batchNumbers, lineNumbers)
}

func (e *Engine) translateSceneBatches(ctx context.Context, subtitles *subtitle.File, scene *subtitle.Scene, batchNumbers, lineNumbers []int) error {
	targetLanguage := subtitles.TargetLanguage.String()

	for _, batch := range scene.Batches {
		if batchNumbers != nil && !slices.Contains(batchNumbers, batch.Number) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("scene %d batch %d: %w", scene.Number, batch.Number, ErrAborted)
		}

		// Translation runs without the lock; results are applied to the
		// content in one locked step per batch, so a concurrent checkpoint
		// never observes a half-written batch.
		texts := make(map[int]string, len(batch.Lines))
		apply := func() {
			if len(texts) == 0 {
				return
			}
			e.contentLock.Lock()
			for i, text := range texts {
				batch.Lines[i].TranslatedText = text
			}
			e.contentLock.Unlock()
		}

		for i := range batch.Lines {
			line := batch.Lines[i]
			if lineNumbers != nil && !slices.Contains(lineNumbers, line.Index) {
				continue
			}

			translated, err := e.translateLine(ctx, line.Text, targetLanguage)
			if err != nil {
				if ctx.Err() != nil {
					apply()
					return fmt.Errorf("line %d: %w", line.Index, ErrAborted)
				}
				if e.stopOnError {
					apply()
					return fmt.Errorf("failed to translate line %d: %w", line.Index, err)
				}
				log.Warn("Skipping line %d after translation error: %v", line.Index, err)
				continue
			}
			texts[i] = translated
		}

		apply()
		e.events.Publish(EventBatchTranslated, batch)
	}
	return nil
}
