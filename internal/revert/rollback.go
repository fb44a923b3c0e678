package revert

import (
	"context"

	"github.com/valksor/go-patrol/internal/log"
	"github.com/valksor/go-patrol/internal/mediawiki"
)

// issueRollback sends the privileged rollback request. Rollback undoes
// every trailing edit by the target author in one server-side action.
func (w *Workflow) issueRollback(ctx context.Context) TickResult {
	site := w.deps.Config.Site
	if site.RollbackToken == "" {
		return w.fail("rollback token is empty, session is not usable for rollback")
	}

	template := w.req.Summary
	if template == "" {
		template = site.RollbackSummary
	}

	params := w.writeParams(map[string]string{
		"title":   w.req.Edit.Page.Title,
		"user":    w.req.Edit.User.Name,
		"token":   site.RollbackToken,
		"summary": w.renderRollbackSummary(template),
	})
	w.qRollback = w.issue(ctx, mediawiki.Request{
		Action: mediawiki.ActionRollback,
		Params: params,
		POST:   true,
		Target: w.req.Edit.Page.Title,
	})
	w.statusText = "Rolling back " + w.req.Edit.Page.Title
	return TickAdvanced
}

// tickRollback polls the rollback query and interprets its result. An
// empty query slot means a badtoken suspension consumed the previous
// attempt; a fresh request is issued.
func (w *Workflow) tickRollback(ctx context.Context) TickResult {
	if w.qRollback == nil {
		return w.issueRollback(ctx)
	}
	q := w.qRollback
	if !q.IsProcessed() {
		return TickPending
	}
	w.qRollback = nil

	if res := q.Result(); res != nil {
		if errNode := res.GetNode("error"); errNode != nil {
			return w.handleRollbackError(errNode.GetAttribute("code"), res.Data)
		}
	}
	if q.IsFailed() {
		return w.fail("rollback failed: " + q.FailureReason())
	}
	return w.succeed(KindRollback, "Reverted edits by "+w.req.Edit.User.Name)
}

// handleRollbackError maps a rollback API error code to an outcome
func (w *Workflow) handleRollbackError(code, data string) TickResult {
	switch code {
	case "alreadyrolled":
		// Someone else got there first. The page is in the state this
		// revert wanted, so the attempt counts as a success.
		log.Info("edit was already reverted by someone else",
			log.Page(w.req.Edit.Page.Title),
			log.User(w.req.Edit.User.Name))
		return w.succeed(KindRollback, "Edit was reverted by someone else, nothing to do")
	case "onlyauthor":
		return w.fail("cannot rollback, the page only has one author")
	case "badtoken":
		if w.tokenRetried {
			return w.fail("rollback token rejected twice, giving up")
		}
		w.tokenRetried = true
		w.deps.Session.Invalidate()
		log.Warn("rollback token rejected, suspending until re-login",
			log.Page(w.req.Edit.Page.Title))
		w.suspend(StateReverting)
		return TickPending
	case "":
		return w.failData("rollback response carried an error without a code", data)
	default:
		return w.fail("rollback failed: in error (" + code + ")")
	}
}
