// Package wiki holds the domain model shared by the revert engine:
// pages, users, edits, the process-wide edit registry, and the
// user-reputation store.
package wiki

import "time"

// UnknownRevID is the sentinel for a revision id that has not been observed.
const UnknownRevID int64 = -1

// Page identifies a wiki page on a site
type Page struct {
	Title string
	Site  string
}

// EqualTo reports whether two pages refer to the same document
func (p Page) EqualTo(other Page) bool {
	return p.Site == other.Site && SanitizeTitle(p.Title) == SanitizeTitle(other.Title)
}

// User identifies an author
type User struct {
	Name string
}

// EqualTo compares users by sanitized name
func (u User) EqualTo(other User) bool {
	return SanitizeUser(u.Name) == SanitizeUser(other.Name)
}

// Edit is one known recent edit to a page
type Edit struct {
	Page    Page
	User    User
	RevID   int64
	Time    time.Time
	Summary string
	Minor   bool

	// PostProcessed marks edits whose metadata has been fully resolved;
	// only these participate in conflict detection.
	PostProcessed bool
}
