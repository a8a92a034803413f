// Package provision downloads and installs the vendor signing tools.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/meigma/signet/core"
	"github.com/meigma/signet/internal/progress"
)

// Installer provisions the signing tool package for the current platform.
type Installer struct {
	runner     core.CommandRunner
	httpClient *http.Client
	logger     *slog.Logger

	host       string
	apiKey     string
	installDir string
	checksum   string
	logPath    string
	goos       string
	timeouts   core.Timeouts
	progress   progress.Callback
}

// Compile-time interface implementation check.
var _ core.ToolProvisioner = (*Installer)(nil)

// Option configures an Installer.
type Option func(*Installer)

// WithHTTPClient sets the HTTP client used for the installer download.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Installer) {
		i.httpClient = client
	}
}

// WithLogger sets a logger. By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Installer) {
		i.logger = logger
	}
}

// WithChecksum pins the expected sha256 of the installer package.
// Accepts bare hex or a sha256: prefixed digest string.
func WithChecksum(checksum string) Option {
	return func(i *Installer) {
		i.checksum = checksum
	}
}

// WithLogPath sets the installer log file path.
func WithLogPath(path string) Option {
	return func(i *Installer) {
		i.logPath = path
	}
}

// WithTimeouts sets the download and install timeouts.
func WithTimeouts(t core.Timeouts) Option {
	return func(i *Installer) {
		i.timeouts = t
	}
}

// WithProgress sets a callback receiving download progress.
func WithProgress(callback progress.Callback) Option {
	return func(i *Installer) {
		i.progress = callback
	}
}

// WithPlatform overrides the platform the package is selected for.
// Used by tests; defaults to runtime.GOOS.
func WithPlatform(goos string) Option {
	return func(i *Installer) {
		i.goos = goos
	}
}

// New creates an installer that provisions the signing tool into installDir,
// downloading the platform package from host with apiKey when needed.
func New(runner core.CommandRunner, host, apiKey, installDir string, opts ...Option) *Installer {
	i := &Installer{
		runner:     runner,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		host:       host,
		apiKey:     apiKey,
		installDir: installDir,
		goos:       runtime.GOOS,
		timeouts:   core.Timeouts{}.Normalize(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.logPath == "" {
		i.logPath = filepath.Join(installDir, "smtools-install.log")
	}
	return i
}

// ToolPath returns the expected signing tool binary inside the install dir.
func (i *Installer) ToolPath() string {
	name := "smctl"
	if i.goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(i.installDir, name)
}

// Ensure returns the signing tool path, downloading and installing the
// platform package first if the binary is not already present.
//
// A binary already at the install path short-circuits provisioning. A binary
// elsewhere on PATH is accepted next, so hosts with a preinstalled tool never
// trigger a download. The installer's own exit code is carried in the
// returned status and is not treated as an error here.
func (i *Installer) Ensure(ctx context.Context) (core.ToolStatus, error) {
	toolPath := i.ToolPath()
	if _, err := os.Stat(toolPath); err == nil {
		i.logger.Debug("signing tool present", "path", toolPath)
		return core.ToolStatus{Path: toolPath}, nil
	}

	name := filepath.Base(toolPath)
	if path, err := i.runner.LookPath(name); err == nil {
		i.logger.Debug("signing tool found on PATH", "path", path)
		return core.ToolStatus{Path: path}, nil
	}

	if err := os.MkdirAll(i.installDir, 0o750); err != nil {
		return core.ToolStatus{}, fmt.Errorf("create install dir: %w", err)
	}

	pkgPath, err := i.download(ctx)
	if err != nil {
		return core.ToolStatus{}, err
	}
	defer os.Remove(pkgPath)

	code, err := i.install(ctx, pkgPath)
	if err != nil {
		return core.ToolStatus{}, err
	}

	status := core.ToolStatus{Path: toolPath, Installed: true, InstallerExitCode: code}
	if _, err := os.Stat(toolPath); err != nil {
		return status, fmt.Errorf("%w: %s missing after install", core.ErrToolNotFound, toolPath)
	}

	i.logger.Info("signing tool installed", "path", toolPath, "installer_exit_code", code)
	return status, nil
}

// install runs the platform install step for the downloaded package.
// On windows this is a silent msiexec run whose exit code is reported, not
// enforced; elsewhere the package is a tar.gz extracted into the install dir.
func (i *Installer) install(ctx context.Context, pkgPath string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeouts.Install)
	defer cancel()

	if i.goos != "windows" {
		return 0, i.extract(ctx, pkgPath)
	}

	_, err := i.runner.Run(ctx, nil, "msiexec", "/i", pkgPath, "/qn", "/le", i.logPath)
	if err != nil {
		var cmdErr *core.CommandError
		if errors.As(err, &cmdErr) {
			i.logger.Warn("installer exited non-zero", "code", cmdErr.ExitCode, "log", i.logPath)
			return cmdErr.ExitCode, nil
		}
		return 0, fmt.Errorf("run installer: %w", err)
	}
	return 0, nil
}
