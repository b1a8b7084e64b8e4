package file

import (
	"path/filepath"
	"strings"
)

// ReplaceExt swaps the extension of path for ext. An empty ext strips the
// extension, a missing leading dot is added.
func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if lastDot <= 0 {
		return filepath.Join(dir, filename+ext)
	}

	return filepath.Join(dir, filename[:lastDot]+ext)
}

// OutputPath derives the translated subtitle path for a source or project
// file, e.g. "show.srt" + "zh" -> "show.zh.srt".
func OutputPath(path, language string) string {
	if path == "" {
		return path
	}
	if language == "" {
		return ReplaceExt(path, ".srt")
	}
	return ReplaceExt(path, "."+language+".srt")
}
