package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/signet"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the signing tool without signing anything",
	Long: `Setup provisions the DigiCert signing tool.

If the tool binary already exists inside SM_INSTALL_DIR (or on PATH),
nothing is downloaded. Otherwise the platform package is fetched from the
signing service and installed.

Examples:
  signet setup
  signet setup --strict`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	progress, finish := newDownloadProgress()
	opts := []signet.ClientOption{}
	if progress != nil {
		opts = append(opts, signet.WithProgress(progress))
	}

	client, err := newClient(opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	status, err := client.EnsureTool(ctx)
	finish()
	if err != nil {
		return err
	}

	if status.Installed {
		fmt.Printf("Installed signing tool: %s (installer exit code %d)\n", status.Path, status.InstallerExitCode)
	} else {
		fmt.Printf("Signing tool already present: %s\n", status.Path)
	}
	return nil
}
