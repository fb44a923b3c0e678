package revert

import "github.com/valksor/go-patrol/internal/wiki"

// Request describes one revert to perform
type Request struct {
	// Edit is the edit to undo. RevID may be wiki.UnknownRevID when the
	// caller only knows the page and author.
	Edit *wiki.Edit
	// Summary overrides the site's summary template when non-empty
	Summary string
	// OneEditOnly restricts the revert to this single edit. It skips the
	// conflict checks (the caller has already serialized that decision)
	// and forces the manual-revert strategy.
	OneEditOnly bool
	// Minor marks the revert edit as minor (manual reverts only)
	Minor bool
	// ForceSoftware skips privileged rollback even when available
	ForceSoftware bool
}

// Kind tells which strategy produced a revert
type Kind string

const (
	KindRollback     Kind = "rollback"
	KindManualRevert Kind = "manual-revert"
)

// HistoryRecord is the undo-history entry produced by a successful revert
type HistoryRecord struct {
	Target string
	Kind   Kind
	Result string
}

// Outcome is the terminal result of a workflow
type Outcome struct {
	// Success is true only when the page actually ended up reverted,
	// including the case where someone else got there first
	Success bool
	// Cancelled is true for user- or policy-requested stops; a cancelled
	// outcome is not an error
	Cancelled bool
	// Status is the human-readable final status line
	Status string
	// History is set on success only
	History *HistoryRecord
}
