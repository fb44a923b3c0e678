package revert

import (
	"time"

	"github.com/valksor/go-patrol/internal/mediawiki"
	"github.com/valksor/go-patrol/internal/wiki"
)

// Authorship classifies who made the newer edits found on a page
type Authorship int

const (
	// AuthorshipNone means no newer edits were found
	AuthorshipNone Authorship = iota
	// AuthorshipSame means every newer edit is by the reverted author
	AuthorshipSame
	// AuthorshipMixed means at least one newer edit is by someone else.
	// Unattributed revisions count as Mixed: when authorship cannot be
	// proven the detector assumes the unsafe case.
	AuthorshipMixed
)

// Finding is the outcome of one conflict-detection pass
type Finding struct {
	// HasNewer is true when edits newer than the reverted one exist
	HasNewer bool
	// Authorship classifies the newer edits
	Authorship Authorship
	// NewerCount is how many newer edits were seen
	NewerCount int
	// MultipleBySame is true when the same author made more than one
	// newer edit, which some sites require separate confirmation for
	MultipleBySame bool
}

// DetectRegistry scans the local edit registry for edits newer than the
// one being reverted. This is the cheap early filter; only edits whose
// metadata is fully resolved participate, so a clean pass here is never
// authoritative.
func DetectRegistry(target *wiki.Edit, edits []*wiki.Edit) Finding {
	f := Finding{Authorship: AuthorshipNone}
	sameOnly := true

	for _, e := range edits {
		if !e.PostProcessed {
			continue
		}
		// The edit under revert excludes itself by identity; revid
		// equality alone would also drop distinct edits that share the
		// unknown-revid sentinel.
		if e == target {
			continue
		}
		if e.RevID != wiki.UnknownRevID && e.RevID == target.RevID {
			continue
		}
		if !e.Page.EqualTo(target.Page) {
			continue
		}
		if !e.Time.After(target.Time) {
			continue
		}
		f.NewerCount++
		if !e.User.EqualTo(target.User) {
			sameOnly = false
		}
	}

	if f.NewerCount > 0 {
		f.HasNewer = true
		if sameOnly {
			f.Authorship = AuthorshipSame
		} else {
			f.Authorship = AuthorshipMixed
		}
		f.MultipleBySame = sameOnly && f.NewerCount > 1
	}
	return f
}

// DetectHistory scans a server-reported revision list for revisions newer
// than the reverted one. This pass is the source of truth: it compares by
// revision id, which the server orders totally, falling back to timestamps
// when the target revid is unknown.
func DetectHistory(target *wiki.Edit, revs []mediawiki.Revision) Finding {
	f := Finding{Authorship: AuthorshipNone}
	author := wiki.SanitizeUser(target.User.Name)
	sameOnly := true

	for _, r := range revs {
		if !r.HasID {
			continue
		}
		if !newerThan(r, target) {
			continue
		}
		f.NewerCount++
		if !r.HasUser || wiki.SanitizeUser(r.User) != author {
			sameOnly = false
		}
	}

	if f.NewerCount > 0 {
		f.HasNewer = true
		if sameOnly {
			f.Authorship = AuthorshipSame
		} else {
			f.Authorship = AuthorshipMixed
		}
		f.MultipleBySame = sameOnly && f.NewerCount > 1
	}
	return f
}

// newerThan reports whether a server revision postdates the target edit.
// Revision ids carry the server's total order; without a known target
// revid the comparison falls back to the revision timestamps, so a page
// whose history simply predates the edit never reads as conflicted.
func newerThan(r mediawiki.Revision, target *wiki.Edit) bool {
	if target.RevID != wiki.UnknownRevID {
		return r.ID > target.RevID
	}
	if target.Time.IsZero() {
		return false
	}
	ts, err := time.Parse(time.RFC3339, r.Time)
	return err == nil && ts.After(target.Time)
}
