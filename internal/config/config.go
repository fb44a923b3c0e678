// Package config holds the explicit configuration value handed to the
// revert workflow at construction. Nothing in here is process-global.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	User UserConfig `yaml:"user"`
	Site SiteConfig `yaml:"site"`
}

// UserConfig holds per-user conflict-resolution policy
type UserConfig struct {
	// AutoResolveConflicts decides conflicts without prompting
	AutoResolveConflicts bool `yaml:"auto_resolve_conflicts"`
	// RevertNewBySame also reverts newer edits made by the same author
	RevertNewBySame bool `yaml:"revert_new_by_same"`
	// RevertOnMultipleEdits proceeds when the same author made several newer edits
	RevertOnMultipleEdits bool `yaml:"revert_on_multiple_edits"`
	// Watchlist is passed through to write actions (watch, unwatch, preferences, nochange)
	Watchlist string `yaml:"watchlist"`
	// MinorEdit marks manual reverts as minor by default
	MinorEdit bool `yaml:"minor_edit"`
}

// SiteConfig holds per-site capabilities and templates
type SiteConfig struct {
	Name   string `yaml:"name"`
	APIURL string `yaml:"api_url"`

	// Rights granted to the current session on this site
	Rights []string `yaml:"rights"`
	// RollbackToken authorizes the privileged rollback action
	RollbackToken string `yaml:"rollback_token"`
	// EditToken authorizes ordinary write actions (manual reverts)
	EditToken string `yaml:"edit_token"`
	// OAuthToken is the bearer token for API transport authentication
	OAuthToken string `yaml:"oauth_token"`
	// ChangeTag is attached to reverts on sites that support change tags
	ChangeTag string `yaml:"change_tag"`
	// Version is the MediaWiki version reported by the site
	Version string `yaml:"version"`

	// RollbackSummary is the edit summary for rollbacks; $1 = reverted author
	RollbackSummary string `yaml:"rollback_summary"`
	// SoftwareRevertSummary is the summary template for manual reverts;
	// $1 = reverted author, $2 = restored-to author, $3 = depth, $4 = target revid
	SoftwareRevertSummary string `yaml:"software_revert_summary"`
	// SummarySuffix is appended to every revert summary
	SummarySuffix string `yaml:"summary_suffix"`

	// ConfirmMultipleEdits requires confirmation when the same author made
	// several newer edits to the page
	ConfirmMultipleEdits bool `yaml:"confirm_multiple_edits"`

	// WriteTimeout bounds a single remote write
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// TickInterval is the workflow polling period
	TickInterval time.Duration `yaml:"tick_interval"`
}

// NewDefault creates a Config with default values
func NewDefault() *Config {
	return &Config{
		User: UserConfig{
			Watchlist: "nochange",
		},
		Site: SiteConfig{
			Name:                  "enwiki",
			APIURL:                "https://en.wikipedia.org/w/api.php",
			Version:               "1.28",
			RollbackSummary:       "Reverted edits by $1",
			SoftwareRevertSummary: "Reverted edits by $1, restored revision $4 by $2",
			SummarySuffix:         "(patrol)",
			WriteTimeout:          60 * time.Second,
			TickInterval:          100 * time.Millisecond,
		},
	}
}

// HasRight reports whether the session holds the named right on this site
func (s SiteConfig) HasRight(right string) bool {
	for _, r := range s.Rights {
		if r == right {
			return true
		}
	}
	return false
}

// GenerateSuffix appends the site's summary suffix unless already present
func GenerateSuffix(summary string, site SiteConfig) string {
	if site.SummarySuffix == "" || strings.HasSuffix(summary, site.SummarySuffix) {
		return summary
	}
	return summary + " " + site.SummarySuffix
}

// Validate performs additional validation beyond struct tags
func (c *Config) Validate() error {
	if c.Site.APIURL == "" {
		return fmt.Errorf("site api_url is required")
	}

	switch c.User.Watchlist {
	case "watch", "unwatch", "preferences", "nochange":
		// OK
	default:
		return fmt.Errorf("invalid watchlist option: %s (must be watch, unwatch, preferences, or nochange)", c.User.Watchlist)
	}

	if c.Site.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if c.Site.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}

	return nil
}
