package project

import (
	"strings"

	"github.com/machinewrapped/go-subtrans/pkg/log"
)

// ModeFlags is the run behaviour derived once from the project mode string.
type ModeFlags struct {
	// Read loads existing state from the project file.
	Read bool
	// Write allows checkpointing state to the project file.
	Write bool
	// Update enables dirty-flag tracking and autosave during the run.
	Update bool
	// LoadSource loads content from the source subtitle file.
	LoadSource bool

	Preview     bool
	Resume      bool
	Reparse     bool
	Retranslate bool
}

// ResolveMode derives the mode flags from the project mode string. The mode
// is case-insensitive; an empty string means no project file involvement.
// Unrecognized modes resolve to all-false with a warning since they are
// usually typos.
func ResolveMode(mode string) ModeFlags {
	mode = strings.ToLower(strings.TrimSpace(mode))

	switch mode {
	case "":
		return ModeFlags{LoadSource: true}
	case "true":
		return ModeFlags{Read: true, Write: true, Update: true, LoadSource: true}
	case "write":
		return ModeFlags{Write: true, Update: true, LoadSource: true}
	case "read":
		return ModeFlags{Read: true}
	case "reload":
		return ModeFlags{LoadSource: true}
	case "resume":
		return ModeFlags{Read: true, Write: true, Update: true, Resume: true}
	case "retranslate":
		return ModeFlags{Read: true, Write: true, Update: true, Retranslate: true}
	case "reparse":
		return ModeFlags{Read: true, Write: true, Reparse: true}
	case "preview":
		return ModeFlags{Write: true, Update: true, Preview: true}
	default:
		log.Warn("Unrecognized project mode %q, treating as no mode", mode)
		return ModeFlags{}
	}
}
