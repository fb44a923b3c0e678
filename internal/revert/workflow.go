package revert

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/valksor/go-patrol/internal/config"
	"github.com/valksor/go-patrol/internal/events"
	"github.com/valksor/go-patrol/internal/log"
	"github.com/valksor/go-patrol/internal/mediawiki"
	"github.com/valksor/go-patrol/internal/wiki"
)

// Prompter asks the user a yes/no question. Implementations may block;
// the workflow only prompts from inside a tick, never concurrently.
type Prompter interface {
	AskYesNo(title, question string) bool
}

// SessionState is the slice of the session the workflow needs
type SessionState interface {
	IsAuthenticated() bool
	Invalidate()
}

// Reputation is the slice of the reputation store the workflow needs
type Reputation interface {
	Add(user string, delta int) int
}

// Deps carries everything a workflow collaborates with. Config, Issuer
// and Session are required; the rest degrade gracefully when nil.
type Deps struct {
	Config     *config.Config
	Issuer     mediawiki.Issuer
	Session    SessionState
	Registry   *wiki.Registry
	Prompter   Prompter
	Reputation Reputation
	Bus        *events.Bus
}

// Workflow is one revert attempt, driven by periodic Tick calls. All
// mutation happens under the mutex inside a tick; remote queries run
// concurrently but are only observed by polling their status.
type Workflow struct {
	deps Deps
	req  *Request

	mu         sync.Mutex
	state      State
	sub        SubState
	resume     State // state to return to when leaving StateSuspended
	statusText string
	started    bool
	finalized  bool
	outcome    *Outcome
	done       chan struct{}

	usingSoftware   bool
	conflictCleared bool // a discovery pass already resolved in favor of reverting
	tokenRetried    bool // the one badtoken retry has been spent

	// Single-slot query ownership: at most one of these is in flight.
	qPreflight *mediawiki.Query
	qHistory   *mediawiki.Query
	qRetrieve  *mediawiki.Query
	qRollback  *mediawiki.Query
	qSubmit    *mediawiki.Query

	// Manual-revert selection, filled in by the history step
	targetRevID int64
	targetUser  string
	depth       int
}

// New creates a workflow for a request. Call Start before ticking.
func New(req *Request, deps Deps) (*Workflow, error) {
	if req == nil || req.Edit == nil {
		return nil, fmt.Errorf("revert: request has no edit")
	}
	if req.Edit.Page.Title == "" {
		return nil, fmt.Errorf("revert: request has no page")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("revert: missing config")
	}
	if deps.Issuer == nil {
		return nil, fmt.Errorf("revert: missing issuer")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("revert: missing session")
	}

	return &Workflow{
		deps:        deps,
		req:         req,
		state:       StateCreated,
		targetRevID: wiki.UnknownRevID,
		done:        make(chan struct{}),
	}, nil
}

// Start arms the workflow. It performs no I/O; the first Tick does.
func (w *Workflow) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return fmt.Errorf("revert: already started")
	}
	w.started = true
	w.statusText = "Waiting for preflight check"
	log.Debug("revert workflow started",
		log.Page(w.req.Edit.Page.Title),
		log.User(w.req.Edit.User.Name),
		log.RevID(w.req.Edit.RevID))
	return nil
}

// Tick performs at most one step of the workflow. It never blocks on the
// network: in-flight queries are polled, not awaited.
func (w *Workflow) Tick(ctx context.Context) TickResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finalized {
		return TickTerminal
	}
	if !w.started {
		return TickPending
	}

	if w.state == StateSuspended {
		if !w.deps.Session.IsAuthenticated() {
			return TickPending
		}
		return w.resumeFromSuspend()
	}

	if !w.deps.Session.IsAuthenticated() {
		w.suspend(w.state)
		return TickPending
	}

	switch w.state {
	case StateCreated:
		return w.beginPreflight(ctx)
	case StateAwaitingPreflight:
		return w.evaluatePreflight(ctx)
	case StateReverting:
		if w.usingSoftware {
			return w.tickSoftwareRevert(ctx)
		}
		return w.tickRollback(ctx)
	default:
		// Terminal states are caught by the finalized check above.
		return TickPending
	}
}

// Cancel stops the workflow. It wins any race with in-flight queries:
// their late results are discarded and nothing further is issued.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finalized {
		return
	}
	log.Info("revert cancelled", log.Page(w.req.Edit.Page.Title))
	w.outcome = &Outcome{Cancelled: true, Status: "Stopped"}
	w.finalize(StateCancelled)
}

// Restart cancels any current attempt and re-arms the workflow with the
// same request and fresh internal state.
func (w *Workflow) Restart() {
	w.Cancel()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = StateCreated
	w.sub = SubNone
	w.resume = StateCreated
	w.statusText = "Waiting for preflight check"
	w.started = true
	w.finalized = false
	w.outcome = nil
	w.done = make(chan struct{})
	w.usingSoftware = false
	w.conflictCleared = false
	w.tokenRetried = false
	w.targetRevID = wiki.UnknownRevID
	w.targetUser = ""
	w.depth = 0
}

// State returns the current workflow state
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// IsTerminal reports whether the workflow has finished
func (w *Workflow) IsTerminal() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finalized
}

// Outcome returns the terminal outcome, nil while running
func (w *Workflow) Outcome() *Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outcome
}

// CurrentStatusText returns a human-readable description of what the
// workflow is doing right now
func (w *Workflow) CurrentStatusText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statusText
}

// Done is closed when the workflow reaches a terminal state
func (w *Workflow) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// beginPreflight runs the registry check and issues the current-revisions
// query. OneEditOnly skips both: the caller already serialized the
// conflict decision for single-edit reverts.
func (w *Workflow) beginPreflight(ctx context.Context) TickResult {
	w.setState(StatePreflighting)
	w.statusText = "Preflight check"

	if w.req.OneEditOnly {
		return w.commitStrategy(ctx)
	}

	if w.deps.Registry != nil {
		finding := DetectRegistry(w.req.Edit, w.deps.Registry.Snapshot())
		if res, stop := w.resolveFinding(finding, "registry"); stop {
			return res
		}
	}

	w.qPreflight = w.issue(ctx, mediawiki.Request{
		Action: mediawiki.ActionQuery,
		Params: map[string]string{
			"prop":    "revisions",
			"rvprop":  "ids|timestamp|user|comment",
			"rvlimit": "20",
			"titles":  w.req.Edit.Page.Title,
		},
		Target: w.req.Edit.Page.Title,
	})
	w.setState(StateAwaitingPreflight)
	w.statusText = "Checking for edit conflicts"
	return TickAdvanced
}

// evaluatePreflight consumes the current-revisions query and re-runs
// conflict detection against the authoritative server state.
func (w *Workflow) evaluatePreflight(ctx context.Context) TickResult {
	q := w.qPreflight
	if q == nil {
		return w.fail("preflight query went missing")
	}
	if !q.IsProcessed() {
		return TickPending
	}
	w.qPreflight = nil

	if q.IsFailed() {
		return w.fail("preflight check failed: " + q.FailureReason())
	}

	// A conflict already resolved in favor of reverting stays resolved;
	// the user is not asked twice about the same newer edits.
	if !w.conflictCleared {
		finding := DetectHistory(w.req.Edit, mediawiki.Revisions(q.Result()))
		if res, stop := w.resolveFinding(finding, "history"); stop {
			return res
		}
	}

	return w.commitStrategy(ctx)
}

// resolveFinding applies the resolution policy to a finding. The second
// return is true when the workflow reached a terminal state and the
// caller must return the first value as-is.
func (w *Workflow) resolveFinding(finding Finding, phase string) (TickResult, bool) {
	decision, kind := Resolve(finding, w.deps.Config.User, w.deps.Config.Site.ConfirmMultipleEdits)

	switch decision {
	case DecisionProceed:
		return TickPending, false
	case DecisionProceedSilently:
		log.Info("conflict auto-resolved, reverting anyway",
			log.Page(w.req.Edit.Page.Title),
			"phase", phase,
			"kind", string(kind))
		w.conflictCleared = true
		return TickPending, false
	case DecisionAskUser:
		if w.askUser(kind) {
			w.conflictCleared = true
			return TickPending, false
		}
		log.Info("revert declined by user",
			log.Page(w.req.Edit.Page.Title), "kind", string(kind))
		w.outcome = &Outcome{Cancelled: true, Status: "Stopped"}
		w.finalize(StateCancelled)
		return TickTerminal, true
	default: // DecisionAbort
		log.Info("conflicting edits found, not reverting",
			log.Page(w.req.Edit.Page.Title),
			"phase", phase,
			"kind", string(kind))
		w.outcome = &Outcome{Cancelled: true, Status: "Stopped"}
		w.finalize(StateCancelled)
		return TickTerminal, true
	}
}

// askUser runs the prompt hook exactly once for this finding. A nil
// prompter declines, which is the safe default.
func (w *Workflow) askUser(kind PromptKind) bool {
	accepted := false
	if w.deps.Prompter != nil {
		accepted = w.deps.Prompter.AskYesNo("Edit conflict", promptText(kind, w.req.Edit.Page.Title))
	}
	if w.deps.Bus != nil {
		w.deps.Bus.PublishAsync(events.ConflictPromptEvent{
			Page:     w.req.Edit.Page.Title,
			Kind:     string(kind),
			Accepted: accepted,
		})
	}
	return accepted
}

// commitStrategy picks rollback or manual revert and issues the first
// query of the chosen strategy.
func (w *Workflow) commitStrategy(ctx context.Context) TickResult {
	w.setState(StateReverting)

	w.usingSoftware = w.req.ForceSoftware || w.req.OneEditOnly
	if !w.usingSoftware && !w.deps.Config.Site.HasRight("rollback") {
		log.Debug("rollback right not available, falling back to manual revert",
			log.Page(w.req.Edit.Page.Title))
		w.usingSoftware = true
	}

	if w.usingSoftware {
		return w.beginSoftwareRevert(ctx)
	}
	return w.issueRollback(ctx)
}

// suspend parks the workflow until the session is authenticated again
func (w *Workflow) suspend(resume State) {
	w.resume = resume
	w.setState(StateSuspended)
	w.statusText = "Waiting for re-login"
}

// resumeFromSuspend returns the workflow to the state it was suspended
// in. A rollback interrupted by badtoken has no live query anymore; the
// reverting tick reissues it.
func (w *Workflow) resumeFromSuspend() TickResult {
	log.Debug("session restored, resuming revert",
		log.Page(w.req.Edit.Page.Title), "resume", string(w.resume))
	w.setState(w.resume)
	return TickAdvanced
}

// issue hands a request to the issuer
func (w *Workflow) issue(ctx context.Context, req mediawiki.Request) *mediawiki.Query {
	return w.deps.Issuer.Issue(ctx, req)
}

// succeed finalizes the workflow with a success outcome. The revert
// history record and the reputation penalty are applied here and only
// here, so a late duplicate completion cannot double-count.
func (w *Workflow) succeed(kind Kind, status string) TickResult {
	w.outcome = &Outcome{
		Success: true,
		Status:  status,
		History: &HistoryRecord{
			Target: w.req.Edit.Page.Title,
			Kind:   kind,
			Result: status,
		},
	}
	log.Info("revert succeeded",
		log.Page(w.req.Edit.Page.Title),
		log.User(w.req.Edit.User.Name),
		"kind", string(kind))
	return w.finalize(StateDone)
}

// fail finalizes the workflow with a failure outcome
func (w *Workflow) fail(reason string) TickResult {
	w.outcome = &Outcome{Status: "Failed: " + reason}
	log.Error("revert failed",
		log.Page(w.req.Edit.Page.Title),
		"reason", reason)
	if w.deps.Bus != nil {
		w.deps.Bus.PublishAsync(events.ErrorEvent{
			Page:  w.req.Edit.Page.Title,
			Error: fmt.Errorf("%s", reason),
		})
	}
	return w.finalize(StateFailed)
}

// failData is fail with the raw server payload logged for diagnosis
func (w *Workflow) failData(reason, data string) TickResult {
	log.Debug("inconsistent api response", log.Page(w.req.Edit.Page.Title), "data", data)
	return w.fail(reason)
}

// finalize moves the workflow to a terminal state, kills any in-flight
// queries and applies the success side effects. Idempotent: the first
// caller wins, later calls are no-ops via the finalized flag checked by
// every entry point.
func (w *Workflow) finalize(terminal State) TickResult {
	if w.finalized {
		return TickTerminal
	}
	w.finalized = true
	w.setState(terminal)
	w.statusText = w.outcome.Status
	w.releaseQueries()

	if w.outcome.Success {
		if w.deps.Reputation != nil {
			score := w.deps.Reputation.Add(w.req.Edit.User.Name, wiki.RevertPenalty)
			if w.deps.Bus != nil {
				w.deps.Bus.PublishAsync(events.ReputationChangedEvent{
					User:  w.req.Edit.User.Name,
					Delta: wiki.RevertPenalty,
					Score: score,
				})
			}
		}
		if w.deps.Bus != nil && w.outcome.History != nil {
			w.deps.Bus.PublishAsync(events.HistoryRecordedEvent{
				Target: w.outcome.History.Target,
				Kind:   string(w.outcome.History.Kind),
				Result: w.outcome.History.Result,
			})
		}
	}

	close(w.done)
	return TickTerminal
}

// releaseQueries kills and forgets every query slot
func (w *Workflow) releaseQueries() {
	for _, q := range []**mediawiki.Query{&w.qPreflight, &w.qHistory, &w.qRetrieve, &w.qRollback, &w.qSubmit} {
		if *q != nil {
			(*q).Kill()
			*q = nil
		}
	}
}

// setState transitions the workflow state and notifies subscribers
func (w *Workflow) setState(to State) {
	if w.state == to {
		return
	}
	from := w.state
	w.state = to
	log.Debug("revert state change",
		log.Page(w.req.Edit.Page.Title),
		"from", string(from),
		"to", string(to))
	if w.deps.Bus != nil {
		w.deps.Bus.PublishAsync(events.StateChangedEvent{
			From: string(from),
			To:   string(to),
			Page: w.req.Edit.Page.Title,
		})
	}
}

// renderRollbackSummary fills $1 (the reverted author) and appends the
// site suffix. The remaining placeholders have no value on the rollback
// path and stay untouched.
func (w *Workflow) renderRollbackSummary(template string) string {
	s := strings.ReplaceAll(template, "$1", w.req.Edit.User.Name)
	return config.GenerateSuffix(s, w.deps.Config.Site)
}

// renderSummary fills the $1..$4 placeholders of a summary template and
// appends the site suffix
func (w *Workflow) renderSummary(template string) string {
	r := strings.NewReplacer(
		"$1", w.req.Edit.User.Name,
		"$2", w.targetUser,
		"$3", fmt.Sprintf("%d", w.depth),
		"$4", fmt.Sprintf("%d", w.targetRevID),
	)
	return config.GenerateSuffix(r.Replace(template), w.deps.Config.Site)
}

// writeParams returns the parameter bag entries shared by all write
// actions: watchlist behavior and, where the site supports them, tags.
func (w *Workflow) writeParams(params map[string]string) map[string]string {
	if w.deps.Config.User.Watchlist != "" {
		params["watchlist"] = w.deps.Config.User.Watchlist
	}
	site := w.deps.Config.Site
	if site.ChangeTag != "" && mediawiki.SupportsChangeTags(site.Version) {
		params["tags"] = site.ChangeTag
	}
	return params
}
