package revert

import (
	"fmt"
	"strings"
	"testing"

	"github.com/valksor/go-patrol/internal/mediawiki"
)

const fullHistoryXML = `<api><query><pages><page title="Sandbox"><revisions>
	<rev revid="5" user="Vandal" timestamp="2024-01-05T12:00:00Z"/>
	<rev revid="4" user="Vandal" timestamp="2024-01-05T11:00:00Z"/>
	<rev revid="3" user="Good" timestamp="2024-01-03T12:00:00Z"/>
	<rev revid="2" user="Vandal" timestamp="2024-01-02T12:00:00Z"/>
	</revisions></page></pages></query></api>`

func contentXML(revid int64, user, text string) string {
	return fmt.Sprintf(`<api><query><pages><page title="Sandbox"><revisions><rev revid="%d" user="%s">%s</rev></revisions></page></pages></query></api>`, revid, user, text)
}

const editOKXML = `<api><edit result="Success" newrevid="8"/></api>`

func TestManualRevertHappyPath(t *testing.T) {
	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: fullHistoryXML},
		fakeReply{xml: contentXML(3, "Good", "Old stable text")},
		fakeReply{xml: editOKXML},
	)
	env.cfg.Site.Rights = nil // no rollback right, must fall back
	w := env.workflow(t, defaultRequest())

	out := drive(t, w)

	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if out.History == nil || out.History.Kind != KindManualRevert {
		t.Fatalf("history = %+v, want manual-revert record", out.History)
	}
	if out.Status != "Restored revision 3 by Good" {
		t.Errorf("status = %q", out.Status)
	}

	if env.issuer.issuedCount() != 4 {
		t.Fatalf("issued %d queries, want 4", env.issuer.issuedCount())
	}
	edit := env.issuer.request(3)
	if edit.Action != mediawiki.ActionEdit || !edit.POST {
		t.Fatalf("final request = %+v, want POST edit", edit)
	}
	if edit.Params["text"] != "Old stable text" {
		t.Errorf("text = %q", edit.Params["text"])
	}
	if edit.Params["token"] != "edit-token" {
		t.Errorf("token = %q", edit.Params["token"])
	}
	if edit.Params["summary"] != "Reverted edits by Vandal, restored revision 3 by Good (patrol)" {
		t.Errorf("summary = %q", edit.Params["summary"])
	}
	if _, ok := edit.Params["minor"]; ok {
		t.Error("minor flag sent without being requested")
	}

	content := env.issuer.request(2)
	if content.Params["revids"] != "3" {
		t.Errorf("content query revids = %q, want 3", content.Params["revids"])
	}
}

func TestManualRevertMinorFlag(t *testing.T) {
	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: fullHistoryXML},
		fakeReply{xml: contentXML(3, "Good", "Old stable text")},
		fakeReply{xml: editOKXML},
	)
	env.cfg.Site.Rights = nil
	req := defaultRequest()
	req.Minor = true
	w := env.workflow(t, req)

	drive(t, w)

	if env.issuer.request(3).Params["minor"] != "1" {
		t.Error("minor flag not sent")
	}
}

func TestForceSoftwareSkipsRollback(t *testing.T) {
	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: fullHistoryXML},
		fakeReply{xml: contentXML(3, "Good", "Old stable text")},
		fakeReply{xml: editOKXML},
	)
	req := defaultRequest()
	req.ForceSoftware = true
	w := env.workflow(t, req)

	out := drive(t, w)

	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	for i := 0; i < env.issuer.issuedCount(); i++ {
		if env.issuer.request(i).Action == mediawiki.ActionRollback {
			t.Fatal("rollback issued despite ForceSoftware")
		}
	}
}

func TestOneEditOnlySkipsConflictChecks(t *testing.T) {
	env := newEnv(
		fakeReply{xml: fullHistoryXML},
		fakeReply{xml: contentXML(4, "Vandal", "Previous text")},
		fakeReply{xml: editOKXML},
	)
	env.cfg.User.AutoResolveConflicts = false
	req := defaultRequest()
	req.OneEditOnly = true
	w := env.workflow(t, req)

	out := drive(t, w)

	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	// No preflight query: the chain goes straight to the history fetch
	if env.issuer.issuedCount() != 3 {
		t.Fatalf("issued %d queries, want 3", env.issuer.issuedCount())
	}
	if env.prompter.calls != 0 {
		t.Errorf("prompter called %d times with OneEditOnly", env.prompter.calls)
	}
	// Only the newest edit is undone, even with same-author edits below it
	if out.Status != "Restored revision 4 by Vandal" {
		t.Errorf("status = %q", out.Status)
	}
}

func TestManualRevertRefusesToBlankPage(t *testing.T) {
	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: fullHistoryXML},
		fakeReply{xml: contentXML(3, "Good", "")},
	)
	env.cfg.Site.Rights = nil
	w := env.workflow(t, defaultRequest())

	out := drive(t, w)

	if out.Success || out.Cancelled {
		t.Fatalf("outcome = %+v, want failure", out)
	}
	if !strings.Contains(out.Status, "cowardly refusing to blank") {
		t.Errorf("status = %q", out.Status)
	}
	if env.issuer.issuedCount() != 3 {
		t.Errorf("issued %d queries, the edit must not be submitted", env.issuer.issuedCount())
	}
}

func TestManualRevertRevisionMismatch(t *testing.T) {
	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: fullHistoryXML},
		fakeReply{xml: contentXML(2, "Vandal", "Wrong revision")},
	)
	env.cfg.Site.Rights = nil
	w := env.workflow(t, defaultRequest())

	out := drive(t, w)

	if out.Success {
		t.Fatal("succeeded on mismatched content revision")
	}
	if !strings.Contains(out.Status, "different revision") {
		t.Errorf("status = %q", out.Status)
	}
}

func TestManualRevertNoTargetRevision(t *testing.T) {
	historyAllVandal := `<api><query><pages><page title="Sandbox"><revisions>
		<rev revid="5" user="Vandal"/>
		<rev revid="4" user="Vandal"/>
		</revisions></page></pages></query></api>`

	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: historyAllVandal},
	)
	env.cfg.Site.Rights = nil
	w := env.workflow(t, defaultRequest())

	out := drive(t, w)

	if out.Success {
		t.Fatal("succeeded with no restorable revision")
	}
	if !strings.Contains(out.Status, "no revision by another author") {
		t.Errorf("status = %q", out.Status)
	}
}

func TestManualRevertAcceptedConflictNotAskedTwice(t *testing.T) {
	// The history fetch sees the same newer edit the preflight pass did.
	// Having accepted it once, the user is not asked again; the selection
	// walk then fails because the top revision is someone else's.
	env := newEnv(
		fakeReply{xml: conflictedHistoryXML},
		fakeReply{xml: conflictedHistoryXML},
	)
	env.cfg.Site.Rights = nil
	env.cfg.User.AutoResolveConflicts = false
	env.prompter.answer = true
	w := env.workflow(t, defaultRequest())

	out := drive(t, w)

	if env.prompter.calls != 1 {
		t.Fatalf("prompter called %d times, want 1", env.prompter.calls)
	}
	if out.Success || out.Cancelled {
		t.Fatalf("outcome = %+v, want failure", out)
	}
	if !strings.Contains(out.Status, "changed meanwhile") {
		t.Errorf("status = %q", out.Status)
	}
}

func TestManualRevertEditError(t *testing.T) {
	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: fullHistoryXML},
		fakeReply{xml: contentXML(3, "Good", "Old stable text")},
		fakeReply{xml: `<api><error code="editconflict" info=""/></api>`},
	)
	env.cfg.Site.Rights = nil
	w := env.workflow(t, defaultRequest())

	out := drive(t, w)

	if out.Success {
		t.Fatal("succeeded on edit error")
	}
	if !strings.Contains(out.Status, "editconflict") {
		t.Errorf("status = %q", out.Status)
	}
}

func TestManualRevertCustomSummary(t *testing.T) {
	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: fullHistoryXML},
		fakeReply{xml: contentXML(3, "Good", "Old stable text")},
		fakeReply{xml: editOKXML},
	)
	env.cfg.Site.Rights = nil
	req := defaultRequest()
	req.Summary = "undid $3 edits by $1"
	w := env.workflow(t, req)

	drive(t, w)

	if got := env.issuer.request(3).Params["summary"]; got != "undid 2 edits by Vandal (patrol)" {
		t.Errorf("summary = %q", got)
	}
}

func TestSelectTarget(t *testing.T) {
	revs := []mediawiki.Revision{
		historyRev(5, "A"),
		historyRev(4, "A"),
		historyRev(3, "B"),
		historyRev(2, "A"),
	}

	target, depth, err := selectTarget(revs, "A", false)
	if err != nil {
		t.Fatal(err)
	}
	if target.ID != 3 || depth != 2 {
		t.Errorf("target = %d depth = %d, want 3 and 2", target.ID, depth)
	}

	// OneEditOnly stops after one revision even inside a same-author run
	target, depth, err = selectTarget(revs, "A", true)
	if err != nil {
		t.Fatal(err)
	}
	if target.ID != 4 || depth != 1 {
		t.Errorf("one-edit target = %d depth = %d, want 4 and 1", target.ID, depth)
	}

	// Top revision by another author means the page changed meanwhile
	if _, _, err := selectTarget([]mediawiki.Revision{historyRev(6, "B")}, "A", false); err == nil {
		t.Error("no error for a page whose top revision is someone else's")
	}

	// Entire window authored by the same user
	if _, _, err := selectTarget(revs[:2], "A", false); err == nil {
		t.Error("no error when no other author appears")
	}

	// Unattributed revision in the walk is a data inconsistency
	broken := []mediawiki.Revision{
		historyRev(5, "A"),
		{ID: 4, HasID: true},
	}
	if _, _, err := selectTarget(broken, "A", false); err == nil {
		t.Error("no error for revision without author")
	}

	if _, _, err := selectTarget(nil, "A", false); err == nil {
		t.Error("no error for empty history")
	}
}
