package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/signet/internal/execx"
	"github.com/meigma/signet/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Verify file signatures without signing",
	Long: `Verify checks each file's signature with the platform verification tool
(signtool on Windows, osslsigncode elsewhere; override with the
verify.command config key).

No signing service credentials are needed. Unlike the signing loop, an
invalid signature here always fails the command.

Examples:
  signet verify dist/app.exe
  signet verify dist/app.exe dist/helper.exe`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	opts := []verify.Option{verify.WithLogger(logger)}
	if command := viper.GetString("verify.command"); command != "" {
		opts = append(opts, verify.WithCommand(command))
	}
	verifier := verify.New(execx.New(logger), opts...)

	var failed error
	for _, path := range args {
		if err := verifier.Verify(ctx, path); err != nil {
			fmt.Printf("FAIL  %s  (%v)\n", path, err)
			failed = errors.Join(failed, err)
			continue
		}
		fmt.Printf("OK    %s\n", path)
	}
	return failed
}
