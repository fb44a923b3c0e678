// Package revert implements the asynchronous revert workflow: the state
// machine that decides whether and how to undo an edit, detects conflicts
// from concurrent edits, and falls back from privileged rollback to a
// manual content-restoring revert.
package revert

// State represents a workflow state
type State string

const (
	StateCreated           State = "created"            // Request accepted, nothing issued yet
	StatePreflighting      State = "preflighting"       // Registry conflict check in progress
	StateAwaitingPreflight State = "awaiting_preflight" // Waiting on the current-revisions query
	StateReverting         State = "reverting"          // Committed to a strategy, executing it
	StateDone              State = "done"               // Terminal success
	StateFailed            State = "failed"             // Terminal failure
	StateSuspended         State = "suspended"          // Waiting for session re-authentication
	StateCancelled         State = "cancelled"          // User or policy requested abort
)

// SubState refines StateReverting for the manual-revert strategy
type SubState string

const (
	SubNone            SubState = ""
	SubFetchingHistory SubState = "fetching_history"
	SubSelectingTarget SubState = "selecting_target"
	SubFetchingContent SubState = "fetching_content"
	SubSubmitting      SubState = "submitting"
	SubComplete        SubState = "complete"
)

// StateInfo holds metadata about a state
type StateInfo struct {
	Name        State
	Description string
	Terminal    bool
}

// StateRegistry maps states to their metadata
var StateRegistry = map[State]StateInfo{
	StateCreated: {
		Name:        StateCreated,
		Description: "Revert requested, awaiting first tick",
	},
	StatePreflighting: {
		Name:        StatePreflighting,
		Description: "Checking the edit registry for conflicts",
	},
	StateAwaitingPreflight: {
		Name:        StateAwaitingPreflight,
		Description: "Waiting for the page's current revisions",
	},
	StateReverting: {
		Name:        StateReverting,
		Description: "Executing the revert strategy",
	},
	StateDone: {
		Name:        StateDone,
		Description: "Revert completed",
		Terminal:    true,
	},
	StateFailed: {
		Name:        StateFailed,
		Description: "Revert failed",
		Terminal:    true,
	},
	StateSuspended: {
		Name:        StateSuspended,
		Description: "Waiting for session re-authentication",
	},
	StateCancelled: {
		Name:        StateCancelled,
		Description: "Revert stopped by user or policy",
		Terminal:    true,
	},
}

// IsTerminal returns true if the state is terminal
func IsTerminal(s State) bool {
	info, ok := StateRegistry[s]
	return ok && info.Terminal
}

// TickResult is the outcome of one step of the workflow.
// The tick driver invokes at most one step at a time, synchronously, so
// the step function is non-reentrant by construction.
type TickResult int

const (
	// TickPending means the workflow is waiting on a remote query or the session
	TickPending TickResult = iota
	// TickAdvanced means the workflow made forward progress this tick
	TickAdvanced
	// TickTerminal means the workflow reached a terminal state
	TickTerminal
)
