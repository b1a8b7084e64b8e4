package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialise_FreshStartLoadsSource(t *testing.T) {
	dir := t.TempDir()
	source := writeSourceFile(t, dir)

	p := newTestProject(t, "")
	require.NoError(t, p.Initialise(source, "", false))

	assert.False(t, p.Flags().Read)
	assert.False(t, p.Flags().Write)
	assert.True(t, p.Flags().LoadSource)
	assert.Equal(t, 4, p.Subtitles().LineCount())
	assert.Len(t, p.Subtitles().Scenes, 2)

	// nothing written without write mode
	assert.NoFileExists(t, p.ProjectFile())
}

func TestInitialise_ProjectPathAsInputForcesReadWrite(t *testing.T) {
	dir := t.TempDir()
	_, projectFile := writeProjectFixture(t, dir)

	p := newTestProject(t, "")
	require.NoError(t, p.Initialise(projectFile, "", false))

	assert.True(t, p.Flags().Read)
	assert.True(t, p.Flags().Write)
	assert.Equal(t, projectFile, p.ProjectFile())
	assert.Equal(t, 4, p.Subtitles().LineCount())
}

func TestInitialise_MissingProjectFileDowngradesToSource(t *testing.T) {
	dir := t.TempDir()
	source := writeSourceFile(t, dir)

	p := newTestProject(t, "resume")
	require.True(t, p.Flags().Read)

	require.NoError(t, p.Initialise(source, "", false))

	assert.False(t, p.Flags().Read)
	assert.True(t, p.Flags().LoadSource)
	assert.Equal(t, 4, p.Subtitles().LineCount())
}

func TestInitialise_ResumeSkipsSourceFile(t *testing.T) {
	dir := t.TempDir()
	source, _ := writeProjectFixture(t, dir)

	// the source file is gone but the project file remains
	require.NoError(t, os.Remove(source))

	p := newTestProject(t, "resume")
	require.NoError(t, p.Initialise(source, "", false))

	assert.False(t, p.Flags().LoadSource)
	assert.Equal(t, 4, p.Subtitles().LineCount())
}

func TestInitialise_CorruptProjectFileFallsBackToSource(t *testing.T) {
	dir := t.TempDir()
	source := writeSourceFile(t, dir)
	projectFile := ProjectFilepath(source)
	require.NoError(t, os.WriteFile(projectFile, []byte("{broken"), 0o644))

	p := newTestProject(t, "resume")
	require.NoError(t, p.Initialise(source, "", false))

	assert.True(t, p.Flags().LoadSource)
	assert.Equal(t, 4, p.Subtitles().LineCount())
}

func TestInitialise_WriteBackupOnLoad(t *testing.T) {
	dir := t.TempDir()
	source, projectFile := writeProjectFixture(t, dir)

	p := newTestProject(t, "resume")
	require.NoError(t, p.Initialise(source, "", true))

	assert.FileExists(t, projectFile+"-backup")
}

func TestInitialise_NoBackupWithoutRequest(t *testing.T) {
	dir := t.TempDir()
	source, projectFile := writeProjectFixture(t, dir)

	p := newTestProject(t, "resume")
	require.NoError(t, p.Initialise(source, "", false))

	assert.NoFileExists(t, projectFile+"-backup")
}

func TestInitialise_EmptySourceIsNoContent(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "empty.srt")
	require.NoError(t, os.WriteFile(source, []byte(""), 0o644))

	p := newTestProject(t, "")
	err := p.Initialise(source, "", false)
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrNoContent))
}

func TestInitialise_UnrecognizedModeIsNoContent(t *testing.T) {
	dir := t.TempDir()
	source := writeSourceFile(t, dir)

	// an unrecognized mode neither reads nor loads anything
	p := newTestProject(t, "bogus")
	err := p.Initialise(source, "", false)
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrNoContent))
}

func TestInitialise_MissingSourceFails(t *testing.T) {
	p := newTestProject(t, "")
	err := p.Initialise(filepath.Join(t.TempDir(), "nope.srt"), "", false)
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrFileRead))
}

func TestInitialise_OutputPathOverride(t *testing.T) {
	dir := t.TempDir()
	source := writeSourceFile(t, dir)
	override := filepath.Join(dir, "custom.zh.srt")

	p := newTestProject(t, "")
	require.NoError(t, p.Initialise(source, override, false))

	assert.Equal(t, override, p.Subtitles().OutputPath)
}

func TestProjectFilepath(t *testing.T) {
	assert.Equal(t, filepath.Clean("/tmp/movie.subtrans"), ProjectFilepath("/tmp/movie.srt"))
	assert.Equal(t, filepath.Clean("/tmp/movie.subtrans"), ProjectFilepath("/tmp/movie.subtrans"))
	assert.Equal(t, filepath.Clean("/tmp/Movie.SUBTRANS"), ProjectFilepath("/tmp/Movie.SUBTRANS"))
}

func TestBackupFilepath(t *testing.T) {
	assert.Equal(t, filepath.Clean("/tmp/movie.subtrans")+"-backup", BackupFilepath("/tmp/movie.srt"))
}

func TestMarkUpdateNeeded_OnlyInUpdateMode(t *testing.T) {
	p := newTestProject(t, "read")
	p.MarkUpdateNeeded()
	assert.False(t, p.NeedsUpdate())

	p2 := newTestProject(t, "true")
	p2.MarkUpdateNeeded()
	assert.True(t, p2.NeedsUpdate())
}

func TestAnyTranslated(t *testing.T) {
	dir := t.TempDir()
	source := writeSourceFile(t, dir)

	p := newTestProject(t, "")
	require.NoError(t, p.Initialise(source, "", false))
	assert.False(t, p.AnyTranslated())

	p.Subtitles().Scenes[0].Batches[0].Lines[0].TranslatedText = "你好"
	assert.True(t, p.AnyTranslated())
}
