package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/machinewrapped/go-subtrans/internal/config"
	"github.com/machinewrapped/go-subtrans/internal/subtitle"
	"github.com/machinewrapped/go-subtrans/internal/translator"
)

const testSRT = `1
00:00:01,000 --> 00:00:02,000
Hello there

2
00:00:03,000 --> 00:00:04,000
How are you?

3
00:01:30,000 --> 00:01:31,000
A new scene starts

4
00:01:32,000 --> 00:01:33,000
Goodbye
`

func testConfig(mode string) *config.Config {
	return &config.Config{
		Project: config.ProjectConfig{
			Mode:             mode,
			Autosave:         false,
			AutosaveInterval: 20 * time.Second,
			Encoding:         "utf-8",
		},
		Translate: config.TranslateConfig{
			TargetLanguage: language.Chinese,
		},
		Batch: config.BatchConfig{
			SceneThreshold: 30 * time.Second,
			MinBatchSize:   1,
			MaxBatchSize:   100,
		},
	}
}

func newTestProject(t *testing.T, mode string) *Project {
	t.Helper()
	p, err := NewProject(testConfig(mode))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func writeSourceFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "movie.srt")
	require.NoError(t, os.WriteFile(path, []byte(testSRT), 0o644))
	return path
}

// writeLongSourceFile generates a source file with count lines, two seconds
// apart so they land in a single scene.
func writeLongSourceFile(t *testing.T, dir string, count int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < count; i++ {
		start := i * 2
		fmt.Fprintf(&b, "%d\n%s --> %s\nLine number %d\n\n",
			i+1, srtTimestamp(start), srtTimestamp(start+1), i+1)
	}
	path := filepath.Join(dir, "long.srt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func srtTimestamp(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d,000", seconds/3600, (seconds/60)%60, seconds%60)
}

// writeProjectFixture initialises a project from a fresh source and writes
// its project file, returning the source and project file paths.
func writeProjectFixture(t *testing.T, dir string) (string, string) {
	t.Helper()
	source := writeSourceFile(t, dir)

	p := newTestProject(t, "write")
	require.NoError(t, p.Initialise(source, "", false))
	require.NoError(t, p.WriteProjectFile(""))
	return source, p.ProjectFile()
}

// fakeTranslator is a controllable Translator for orchestration tests.
type fakeTranslator struct {
	events      *translator.Events
	stopOnError bool
	contentLock sync.Locker

	translateFn      func(ctx context.Context, subs *subtitle.File) error
	translateSceneFn func(ctx context.Context, subs *subtitle.File, sceneNumber int, batchNumbers, lineNumbers []int) error
}

func newFakeTranslator(stopOnError bool) *fakeTranslator {
	return &fakeTranslator{
		events:      translator.NewEvents(),
		stopOnError: stopOnError,
	}
}

func (f *fakeTranslator) Translate(ctx context.Context, subs *subtitle.File) error {
	return f.translateFn(ctx, subs)
}

func (f *fakeTranslator) TranslateScene(ctx context.Context, subs *subtitle.File, sceneNumber int, batchNumbers, lineNumbers []int) error {
	return f.translateSceneFn(ctx, subs, sceneNumber, batchNumbers, lineNumbers)
}

func (f *fakeTranslator) StopOnError() bool {
	return f.stopOnError
}

func (f *fakeTranslator) Events() *translator.Events {
	return f.events
}

func (f *fakeTranslator) SetContentLock(l sync.Locker) {
	f.contentLock = l
}
