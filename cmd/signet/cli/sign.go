package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/signet"
)

var signDelimiter string

var signCmd = &cobra.Command{
	Use:   "sign <file-list>",
	Short: "Sign a list of files and verify each signature",
	Long: `Sign runs the full pipeline for a delimiter-separated file list:
the signing tool is provisioned when missing, an active certificate and its
keypair are selected, then every file is signed and its signature verified.

By default individual file failures are reported but do not fail the run;
use --strict to abort on the first failure.

Examples:
  signet sign 'C:\dist\app.exe;C:\dist\helper.exe'
  signet sign 'dist/app.exe,dist/helper.exe' --delimiter ,
  signet sign dist/app.exe --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

func init() {
	signCmd.Flags().StringVar(&signDelimiter, "delimiter", signet.DefaultDelimiter, "File list delimiter")
	rootCmd.AddCommand(signCmd)
}

func runSign(_ *cobra.Command, args []string) error {
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

	files := signet.SplitFileList(args[0], signDelimiter)
	report, err := client.RunFiles(ctx, files)
	finish()
	if err != nil {
		return err
	}

	for _, result := range report.Results {
		switch {
		case result.Err != nil:
			fmt.Printf("FAIL  %s  (%v)\n", result.Path, result.Err)
		default:
			fmt.Printf("OK    %s\n", result.Path)
		}
	}

	failed := report.Failed()
	fmt.Printf("Signed %d of %d files with keypair %s\n",
		len(report.Results)-len(failed), len(report.Results), report.Selection.KeypairAlias)
	return nil
}
