package translator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/machinewrapped/go-subtrans/internal/subtitle"
)

func testSubtitles() *subtitle.File {
	return &subtitle.File{
		Language:       language.English,
		TargetLanguage: language.Chinese,
		Settings:       make(map[string]string),
		Scenes: []*subtitle.Scene{
			{
				Number: 1,
				Batches: []*subtitle.Batch{
					{Number: 1, Lines: []subtitle.Line{
						{Index: 1, StartTime: time.Second, EndTime: 2 * time.Second, Text: "hello"},
						{Index: 2, StartTime: 3 * time.Second, EndTime: 4 * time.Second, Text: "world"},
					}},
				},
			},
			{
				Number: 2,
				Batches: []*subtitle.Batch{
					{Number: 1, Lines: []subtitle.Line{
						{Index: 3, StartTime: 60 * time.Second, EndTime: 61 * time.Second, Text: "bye"},
					}},
				},
			},
		},
	}
}

func upperTranslator(_ context.Context, text, _ string) (string, error) {
	return strings.ToUpper(text), nil
}

func TestEngine_TranslateWalksAllScenes(t *testing.T) {
	engine := NewEngine(upperTranslator, true)

	var batches, scenes int
	engine.Events().Subscribe(EventBatchTranslated, func(any) { batches++ })
	engine.Events().Subscribe(EventSceneTranslated, func(any) { scenes++ })

	subs := testSubtitles()
	require.NoError(t, engine.Translate(context.Background(), subs))

	assert.Equal(t, 2, batches)
	assert.Equal(t, 2, scenes)
	lines := subs.Lines()
	assert.Equal(t, "HELLO", lines[0].TranslatedText)
	assert.Equal(t, "BYE", lines[2].TranslatedText)
}

func TestEngine_TranslateSceneOnlyTouchesThatScene(t *testing.T) {
	engine := NewEngine(upperTranslator, true)
	subs := testSubtitles()

	require.NoError(t, engine.TranslateScene(context.Background(), subs, 2, nil, nil))

	lines := subs.Lines()
	assert.Empty(t, lines[0].TranslatedText)
	assert.Equal(t, "BYE", lines[2].TranslatedText)
}

func TestEngine_CancelledContextIsAborted(t *testing.T) {
	engine := NewEngine(upperTranslator, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Translate(ctx, testSubtitles())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAborted)
}

func TestEngine_StopOnErrorEndsRun(t *testing.T) {
	failing := func(_ context.Context, text, _ string) (string, error) {
		return "", fmt.Errorf("backend unavailable")
	}

	engine := NewEngine(failing, true)
	err := engine.Translate(context.Background(), testSubtitles())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAborted)

	// Without stop-on-error the run completes, leaving lines untranslated.
	lenient := NewEngine(failing, false)
	subs := testSubtitles()
	require.NoError(t, lenient.Translate(context.Background(), subs))
	for _, line := range subs.Lines() {
		assert.Empty(t, line.TranslatedText)
	}
}

func TestEngine_AppliesPartialBatchBeforeFailing(t *testing.T) {
	failing := func(_ context.Context, text, _ string) (string, error) {
		if text == "world" {
			return "", fmt.Errorf("backend unavailable")
		}
		return strings.ToUpper(text), nil
	}

	engine := NewEngine(failing, true)
	subs := testSubtitles()

	err := engine.Translate(context.Background(), subs)
	require.Error(t, err)

	// lines translated before the failure are kept for a rescue-save
	lines := subs.Lines()
	assert.Equal(t, "HELLO", lines[0].TranslatedText)
	assert.Empty(t, lines[1].TranslatedText)
}

func TestEngine_MutatesContentUnderProvidedLock(t *testing.T) {
	var mu sync.Mutex
	engine := NewEngine(func(_ context.Context, text, _ string) (string, error) {
		time.Sleep(100 * time.Microsecond)
		return strings.ToUpper(text), nil
	}, true)
	engine.SetContentLock(&mu)

	subs := testSubtitles()

	// concurrent reader holding the same lock, like the autosave checkpoint
	done := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			mu.Lock()
			for _, line := range subs.Lines() {
				_ = line.TranslatedText
			}
			mu.Unlock()
		}
	}()

	require.NoError(t, engine.Translate(context.Background(), subs))
	close(stop)
	<-done

	for _, line := range subs.Lines() {
		assert.NotEmpty(t, line.TranslatedText)
	}
}

func TestEngine_LineFilter(t *testing.T) {
	engine := NewEngine(upperTranslator, true)
	subs := testSubtitles()

	require.NoError(t, engine.TranslateScene(context.Background(), subs, 1, []int{1}, []int{2}))

	lines := subs.Lines()
	assert.Empty(t, lines[0].TranslatedText)
	assert.Equal(t, "WORLD", lines[1].TranslatedText)
}
