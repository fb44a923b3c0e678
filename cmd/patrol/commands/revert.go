package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valksor/go-patrol/internal/events"
	"github.com/valksor/go-patrol/internal/log"
	"github.com/valksor/go-patrol/internal/mediawiki"
	"github.com/valksor/go-patrol/internal/revert"
	"github.com/valksor/go-patrol/internal/wiki"
)

var (
	revertPage     string
	revertUser     string
	revertRevID    int64
	revertSummary  string
	revertOneEdit  bool
	revertMinor    bool
	revertSoftware bool
	revertYes      bool
)

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Revert an edit on the configured site",
	Long: `Reverts the given edit and any trailing edits by the same author.

The workflow first checks the page for newer edits by someone else and
stops (or asks) before destroying their work. With the rollback right
and token configured, the server-side rollback action is used; otherwise
the previous good revision is fetched and resubmitted.

Examples:
  patrol revert --page "Sandbox" --user BadUser --revid 12345
  patrol revert --page "Sandbox" --user BadUser --one-edit
  patrol revert --page "Sandbox" --user BadUser --software --summary "rv spam"`,
	RunE: runRevert,
}

func init() {
	rootCmd.AddCommand(revertCmd)

	revertCmd.Flags().StringVarP(&revertPage, "page", "p", "", "Title of the page to revert")
	revertCmd.Flags().StringVarP(&revertUser, "user", "u", "", "Author whose edits are reverted")
	revertCmd.Flags().Int64VarP(&revertRevID, "revid", "r", wiki.UnknownRevID, "Revision id of the edit to revert")
	revertCmd.Flags().StringVarP(&revertSummary, "summary", "s", "", "Override the summary template")
	revertCmd.Flags().BoolVar(&revertOneEdit, "one-edit", false, "Undo only this single edit")
	revertCmd.Flags().BoolVar(&revertMinor, "minor", false, "Mark the revert as a minor edit")
	revertCmd.Flags().BoolVar(&revertSoftware, "software", false, "Skip rollback, restore content with a regular edit")
	revertCmd.Flags().BoolVarP(&revertYes, "yes", "y", false, "Answer yes to all conflict prompts")

	_ = revertCmd.MarkFlagRequired("page")
	_ = revertCmd.MarkFlagRequired("user")
}

func runRevert(cmd *cobra.Command, args []string) error {
	client := mediawiki.NewClient(cfg.Site, cfg.Site.OAuthToken)

	bus := events.NewBus()
	bus.Subscribe(events.TypeStateChanged, func(e events.Event) {
		log.Debug("workflow", "from", e.Data["from"], "to", e.Data["to"])
	})

	var prompter revert.Prompter
	if revertYes {
		prompter = acceptAll{}
	} else {
		prompter = &terminalPrompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	}

	req := &revert.Request{
		Edit: &wiki.Edit{
			Page:          wiki.Page{Title: revertPage, Site: cfg.Site.Name},
			User:          wiki.User{Name: revertUser},
			RevID:         revertRevID,
			Time:          time.Now(),
			PostProcessed: true,
		},
		Summary:       revertSummary,
		OneEditOnly:   revertOneEdit,
		Minor:         revertMinor,
		ForceSoftware: revertSoftware,
	}

	w, err := revert.New(req, revert.Deps{
		Config:     cfg,
		Issuer:     client,
		Session:    client.Session(),
		Registry:   wiki.NewRegistry(),
		Prompter:   prompter,
		Reputation: wiki.NewReputationStore(),
		Bus:        bus,
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	out := revert.RunUntilDone(cmd.Context(), w, cfg.Site.TickInterval)

	switch {
	case out == nil:
		return fmt.Errorf("revert finished without an outcome")
	case out.Success:
		fmt.Fprintln(cmd.OutOrStdout(), out.Status)
		return nil
	case out.Cancelled:
		fmt.Fprintln(cmd.OutOrStdout(), out.Status)
		return nil
	default:
		return fmt.Errorf("%s", out.Status)
	}
}

// terminalPrompter asks conflict questions on the terminal
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *terminalPrompter) AskYesNo(title, question string) bool {
	fmt.Fprintf(p.out, "%s: %s [y/N] ", title, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// acceptAll answers yes to every prompt, for --yes
type acceptAll struct{}

func (acceptAll) AskYesNo(string, string) bool { return true }
