package revert

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/valksor/go-patrol/internal/log"
	"github.com/valksor/go-patrol/internal/mediawiki"
	"github.com/valksor/go-patrol/internal/wiki"
)

// The manual ("software") revert walks the page history for the newest
// revision not authored by the reverted user, fetches its content and
// resubmits it as a regular edit. It is the fallback when the session
// lacks the rollback right, and the only strategy able to honor
// OneEditOnly.

// beginSoftwareRevert issues the history query that starts the chain
func (w *Workflow) beginSoftwareRevert(ctx context.Context) TickResult {
	w.sub = SubFetchingHistory
	w.qHistory = w.issue(ctx, mediawiki.Request{
		Action: mediawiki.ActionQuery,
		Params: map[string]string{
			"prop":    "revisions",
			"rvprop":  "ids|timestamp|user|comment",
			"rvlimit": "20",
			"titles":  w.req.Edit.Page.Title,
		},
		Target: w.req.Edit.Page.Title,
	})
	w.statusText = "Retrieving history of " + w.req.Edit.Page.Title
	return TickAdvanced
}

// tickSoftwareRevert dispatches on the current sub-state
func (w *Workflow) tickSoftwareRevert(ctx context.Context) TickResult {
	switch w.sub {
	case SubFetchingHistory:
		return w.evaluateHistory(ctx)
	case SubFetchingContent:
		return w.evaluateContent(ctx)
	case SubSubmitting:
		return w.evaluateSubmit()
	default:
		return w.fail("manual revert in unexpected sub-state " + string(w.sub))
	}
}

// evaluateHistory consumes the history query, re-checks for conflicts
// against the fresh server state and selects the revision to restore.
func (w *Workflow) evaluateHistory(ctx context.Context) TickResult {
	q := w.qHistory
	if q == nil {
		return w.fail("history query went missing")
	}
	if !q.IsProcessed() {
		return TickPending
	}
	w.qHistory = nil

	if q.IsFailed() {
		return w.fail("failed to retrieve the list of edits made to this page: " + q.FailureReason())
	}

	revs := mediawiki.Revisions(q.Result())
	if len(revs) == 0 {
		return w.failData("history query returned no revisions", q.Result().Data)
	}

	if !w.req.OneEditOnly && !w.conflictCleared {
		finding := DetectHistory(w.req.Edit, revs)
		if res, stop := w.resolveFinding(finding, "history"); stop {
			return res
		}
	}

	w.sub = SubSelectingTarget
	// The server usually reports newest-first already, but the selection
	// walk depends on it, so order is not left to chance. Revisions
	// without an id sort last and fail the walk if reached.
	sort.SliceStable(revs, func(i, j int) bool {
		if revs[i].HasID != revs[j].HasID {
			return revs[i].HasID
		}
		return revs[i].ID > revs[j].ID
	})

	author := wiki.SanitizeUser(w.req.Edit.User.Name)
	target, depth, err := selectTarget(revs, author, w.req.OneEditOnly)
	if err != nil {
		return w.failData(err.Error(), q.Result().Data)
	}
	w.targetRevID = target.ID
	w.targetUser = target.User
	w.depth = depth

	log.Debug("selected revision to restore",
		log.Page(w.req.Edit.Page.Title),
		log.RevID(w.targetRevID),
		log.User(w.targetUser),
		"depth", w.depth)

	w.sub = SubFetchingContent
	w.qRetrieve = w.issue(ctx, mediawiki.Request{
		Action: mediawiki.ActionQuery,
		Params: map[string]string{
			"prop":   "revisions",
			"rvprop": "ids|content",
			"revids": strconv.FormatInt(w.targetRevID, 10),
		},
		Target: w.req.Edit.Page.Title,
	})
	w.statusText = fmt.Sprintf("Retrieving content of revision %d", w.targetRevID)
	return TickAdvanced
}

// selectTarget walks a newest-first revision list for the most recent
// revision not authored by author. Depth counts how many revisions get
// undone; with oneEditOnly the walk stops after the first.
func selectTarget(revs []mediawiki.Revision, author string, oneEditOnly bool) (mediawiki.Revision, int, error) {
	depth := 0
	for _, r := range revs {
		if !r.HasID || !r.HasUser {
			return mediawiki.Revision{}, 0, fmt.Errorf("revision list entry is missing its id or author")
		}
		sameAuthor := wiki.SanitizeUser(r.User) == author
		if (oneEditOnly && depth >= 1) || !sameAuthor {
			if depth == 0 {
				return mediawiki.Revision{}, 0, fmt.Errorf("the latest revision is not by %s, the page changed meanwhile", author)
			}
			return r, depth, nil
		}
		depth++
	}
	return mediawiki.Revision{}, 0, fmt.Errorf("no revision by another author found in recent history, page may need manual cleanup")
}

// evaluateContent consumes the content query, applies the blank-page
// safety check and submits the restoring edit.
func (w *Workflow) evaluateContent(ctx context.Context) TickResult {
	q := w.qRetrieve
	if q == nil {
		return w.fail("content query went missing")
	}
	if !q.IsProcessed() {
		return TickPending
	}
	w.qRetrieve = nil

	if q.IsFailed() {
		return w.fail("failed to obtain the content of the previous revision: " + q.FailureReason())
	}

	rev := q.Result().GetNode("rev")
	if rev == nil {
		return w.failData("content query returned no revision", q.Result().Data)
	}
	if !rev.HasAttribute("revid") {
		return w.failData("content query returned a revision with no id", q.Result().Data)
	}
	id, err := strconv.ParseInt(rev.GetAttribute("revid"), 10, 64)
	if err != nil || id != w.targetRevID {
		return w.failData("content query returned a different revision than requested", q.Result().Data)
	}

	content := rev.Value
	if content == "" {
		// Restoring an empty revision would blank the page; that is
		// never what a revert means.
		return w.fail(fmt.Sprintf("cowardly refusing to blank %q, revert stopped to prevent damage", w.req.Edit.Page.Title))
	}

	template := w.req.Summary
	if template == "" {
		template = w.deps.Config.Site.SoftwareRevertSummary
	}

	params := w.writeParams(map[string]string{
		"title":   w.req.Edit.Page.Title,
		"text":    content,
		"summary": w.renderSummary(template),
	})
	if w.deps.Config.Site.EditToken != "" {
		params["token"] = w.deps.Config.Site.EditToken
	}
	if w.req.Minor || w.deps.Config.User.MinorEdit {
		params["minor"] = "1"
	}

	w.sub = SubSubmitting
	w.qSubmit = w.issue(ctx, mediawiki.Request{
		Action: mediawiki.ActionEdit,
		Params: params,
		POST:   true,
		Target: w.req.Edit.Page.Title,
	})
	w.statusText = "Editing " + w.req.Edit.Page.Title
	return TickAdvanced
}

// evaluateSubmit consumes the edit query and finishes the workflow
func (w *Workflow) evaluateSubmit() TickResult {
	q := w.qSubmit
	if q == nil {
		return w.fail("edit query went missing")
	}
	if !q.IsProcessed() {
		return TickPending
	}
	w.qSubmit = nil

	if res := q.Result(); res != nil {
		if errNode := res.GetNode("error"); errNode != nil {
			code := errNode.GetAttribute("code")
			if code == "" {
				return w.failData("edit response carried an error without a code", res.Data)
			}
			return w.fail("edit failed: in error (" + code + ")")
		}
		if edit := res.GetNode("edit"); edit != nil && edit.GetAttribute("result") != "Success" {
			return w.failData("edit was not saved: "+edit.GetAttribute("result"), res.Data)
		}
	}
	if q.IsFailed() {
		return w.fail("edit failed: " + q.FailureReason())
	}

	w.sub = SubComplete
	return w.succeed(KindManualRevert,
		fmt.Sprintf("Restored revision %d by %s", w.targetRevID, w.targetUser))
}
