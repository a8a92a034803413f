package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/meigma/signet"
)

var keypairsCmd = &cobra.Command{
	Use:   "keypairs",
	Short: "List keypairs known to the signing service",
	Long: `Keypairs lists the keypair aliases the signing service reports and the
certificate each one belongs to. Signing uses the first keypair associated
with the selected certificate.`,
	Args: cobra.NoArgs,
	RunE: runKeypairs,
}

func init() {
	rootCmd.AddCommand(keypairsCmd)
}

func runKeypairs(_ *cobra.Command, _ []string) error {
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
	pairs, err := client.Keypairs(ctx)
	if err != nil {
		return err
	}

	renderKeypairs(pairs)
	return nil
}

func renderKeypairs(pairs []signet.KeypairRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Alias", "Certificate ID"})
	for _, pair := range pairs {
		t.AppendRow(table.Row{pair.Alias, pair.CertificateID})
	}

	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}
