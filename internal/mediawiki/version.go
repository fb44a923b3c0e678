package mediawiki

import (
	"strings"

	"golang.org/x/mod/semver"
)

// SupportsChangeTags reports whether a MediaWiki version accepts the
// tags parameter on write actions (introduced in 1.28).
func SupportsChangeTags(version string) bool {
	v := "v" + strings.TrimPrefix(version, "v")
	mm := semver.MajorMinor(v)
	if mm == "" {
		return false
	}
	return semver.Compare(mm, "v1.28") >= 0
}
