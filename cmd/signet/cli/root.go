// Package cli implements the signet command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meigma/signet"
	"github.com/meigma/signet/cmd/signet/cli/config"
)

// Build information set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	strict  bool
	verbose bool
)

// envKeyReplacer maps config keys like audit.enabled to SIGNET_AUDIT_ENABLED.
var envKeyReplacer = strings.NewReplacer(".", "_")

var rootCmd = &cobra.Command{
	Use:   "signet",
	Short: "Sign executables through DigiCert Signing Manager",
	Long: `Signet automates code signing with DigiCert Signing Manager.

It provisions the vendor signing CLI when missing, selects an active
certificate and its keypair, signs each file in a list, and verifies every
signature. Credentials come from the SM_* environment variables used by
DigiCert's own tooling.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Fail fast on any subprocess failure")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug logging")
	rootCmd.Version = version
}

// initConfig loads .env, the config file, and SIGNET_* env bindings.
func initConfig() {
	// A missing .env file is the normal case outside CI.
	_ = godotenv.Load()

	viper.SetDefault("progress", "auto")
	viper.SetDefault("audit.enabled", true)
	viper.SetDefault("audit.path", "")
	viper.SetDefault("verify.command", "")

	if configDir, err := config.Dir(); err == nil {
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		_ = viper.ReadInConfig()
	}

	viper.SetEnvPrefix("SIGNET")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
	}
	return err
}

// newClient creates a signet client with configured options.
func newClient(extra ...signet.ClientOption) (*signet.Client, error) {
	opts := []signet.ClientOption{
		signet.WithStrict(strict),
	}
	if verbose {
		opts = append(opts, signet.WithLogger(
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
		))
	}
	if !viper.GetBool("audit.enabled") {
		opts = append(opts, signet.WithAuditDisabled())
	} else if path, err := auditDBPath(); err == nil {
		opts = append(opts, signet.WithAuditPath(path))
	}
	if command := viper.GetString("verify.command"); command != "" {
		opts = append(opts, signet.WithVerifyCommand(command))
	}
	return signet.NewClient(append(opts, extra...)...)
}

// auditDBPath resolves the audit database path: the configured one, or
// audit.db inside the signet data directory.
func auditDBPath() (string, error) {
	if path := viper.GetString("audit.path"); path != "" {
		return path, nil
	}
	dataDir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "audit.db"), nil
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// formatError converts signet errors to user-friendly messages.
func formatError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, signet.ErrMissingCredentials):
		return fmt.Sprintf("Error: %v", err)
	case errors.Is(err, signet.ErrNoFiles):
		return "Error: no files to sign (empty file list)"
	case errors.Is(err, signet.ErrInvalidCertificate):
		return fmt.Sprintf("Error: invalid client certificate: %v", err)
	case errors.Is(err, signet.ErrToolNotFound):
		return fmt.Sprintf("Error: signing tool unavailable: %v", err)
	case errors.Is(err, signet.ErrChecksumMismatch):
		return fmt.Sprintf("Error: installer checksum mismatch: %v", err)
	case errors.Is(err, signet.ErrNoActiveCertificate):
		return "Error: no ACTIVE certificate available for signing"
	case errors.Is(err, signet.ErrNoKeypair):
		return fmt.Sprintf("Error: no keypair matches the selected certificate: %v", err)
	case errors.Is(err, signet.ErrTimeout):
		return fmt.Sprintf("Error: %v", err)
	case errors.Is(err, context.Canceled):
		return "Error: operation canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
