package translator

import (
	"context"
	"errors"
	"sync"

	"github.com/machinewrapped/go-subtrans/internal/subtitle"
)

// ErrAborted signals that the caller cancelled the translation. It is
// propagated verbatim and never triggers a rescue-save.
var ErrAborted = errors.New("translation aborted")

// Translator drives the translation of subtitle content and publishes
// lifecycle events while doing so.
type Translator interface {
	// Translate translates the whole content in place.
	Translate(ctx context.Context, subtitles *subtitle.File) error

	// TranslateScene translates a single scene in place. Nil batchNumbers or
	// lineNumbers mean "all".
	TranslateScene(ctx context.Context, subtitles *subtitle.File, sceneNumber int, batchNumbers, lineNumbers []int) error

	// StopOnError reports whether the first translation failure ends the run.
	StopOnError() bool

	// Events exposes the translator's lifecycle events.
	Events() *Events

	// SetContentLock provides the lock guarding the content across the
	// foreground/checkpoint boundary. Implementations must hold it while
	// mutating the content.
	SetContentLock(l sync.Locker)
}
