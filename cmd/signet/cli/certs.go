package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/meigma/signet"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "List certificates known to the signing service",
	Long: `Certs lists the certificates the signing service reports, with their
identifiers, aliases, and lifecycle status. Signing uses the first ACTIVE
certificate in this order.`,
	Args: cobra.NoArgs,
	RunE: runCerts,
}

func init() {
	rootCmd.AddCommand(certsCmd)
}

func runCerts(_ *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.EnsureTool(ctx); err != nil {
		return err
	}
	certs, err := client.Certificates(ctx)
	if err != nil {
		return err
	}

	renderCerts(certs)
	return nil
}

func renderCerts(certs []signet.CertificateRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Alias", "Status"})
	for _, cert := range certs {
		t.AppendRow(table.Row{cert.ID, cert.Alias, cert.Status})
	}

	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}
