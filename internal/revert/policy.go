package revert

import (
	"fmt"

	"github.com/valksor/go-patrol/internal/config"
)

// Decision is what the resolution policy wants done about a finding
type Decision int

const (
	// DecisionProceed means no conflict, carry on
	DecisionProceed Decision = iota
	// DecisionProceedSilently means the conflict is auto-resolved in favor
	// of continuing, with a log line but no prompt
	DecisionProceedSilently
	// DecisionAskUser means the prompter decides
	DecisionAskUser
	// DecisionAbort means stop without reverting. This is a clean stop,
	// not an error.
	DecisionAbort
)

// PromptKind identifies which confirmation a finding calls for
type PromptKind string

const (
	PromptNone           PromptKind = ""
	PromptNewerBySame    PromptKind = "newer-edits"
	PromptNewerByOther   PromptKind = "newer-by-other"
	PromptMultipleBySame PromptKind = "multiple-by-same"
)

// Resolve maps a conflict finding to a decision under the user's policy.
// Precedence: the multiple-newer-edits rule is checked before the plain
// same-author rule, so a stricter site setting is not masked by
// revert_new_by_same.
func Resolve(f Finding, user config.UserConfig, confirmMultiple bool) (Decision, PromptKind) {
	if !f.HasNewer {
		return DecisionProceed, PromptNone
	}

	if f.MultipleBySame && confirmMultiple {
		if !user.AutoResolveConflicts {
			return DecisionAskUser, PromptMultipleBySame
		}
		if user.RevertOnMultipleEdits {
			return DecisionProceedSilently, PromptMultipleBySame
		}
		return DecisionAbort, PromptMultipleBySame
	}

	if f.Authorship == AuthorshipSame {
		if !user.AutoResolveConflicts {
			return DecisionAskUser, PromptNewerBySame
		}
		if user.RevertNewBySame {
			return DecisionProceedSilently, PromptNewerBySame
		}
		return DecisionAbort, PromptNewerBySame
	}

	// Newer edits by someone else: never auto-proceed.
	if !user.AutoResolveConflicts {
		return DecisionAskUser, PromptNewerByOther
	}
	return DecisionAbort, PromptNewerByOther
}

// promptText renders the confirmation question for a prompt kind
func promptText(kind PromptKind, page string) string {
	switch kind {
	case PromptNewerBySame:
		return fmt.Sprintf("There are newer edits to %s by the same user, are you sure you want to revert them all?", page)
	case PromptMultipleBySame:
		return fmt.Sprintf("This user made multiple edits to %s, are you sure you want to revert them all?", page)
	default:
		return fmt.Sprintf("There are newer edits to %s by someone else, reverting now would likely fail or destroy their work. Revert anyway?", page)
	}
}
