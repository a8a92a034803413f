package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/meigma/signet"
	"github.com/meigma/signet/internal/audit"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent signing outcomes",
	Long: `Audit lists recent entries from the local signing audit trail, newest
first. One entry is recorded per sign attempt, successful or not.

The database lives in the signet data directory unless audit.path is
configured.

Examples:
  signet audit
  signet audit --limit 50`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum entries to show")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	path, err := auditDBPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Println("No audit entries recorded yet.")
		return nil
	}

	store, err := audit.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), auditLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No audit entries recorded yet.")
		return nil
	}

	renderAudit(entries)
	return nil
}

func renderAudit(entries []signet.AuditEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"When", "File", "Keypair", "Signed", "Verified", "Detail"})
	for _, entry := range entries {
		t.AppendRow(table.Row{
			humanize.Time(entry.CreatedAt),
			entry.Path,
			entry.KeypairAlias,
			yesNo(entry.Signed),
			yesNo(entry.Verified),
			entry.Detail,
		})
	}

	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
