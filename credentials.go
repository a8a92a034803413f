package signet

import (
	"fmt"
	"os"
	"strings"

	"github.com/meigma/signet/core"
)

// Environment variables consumed by CredentialsFromEnv. The names match
// the ones DigiCert's own tooling reads.
const (
	EnvAPIKey             = "SM_API_KEY"
	EnvClientCertB64      = "SM_CLIENT_CERT_FILE_B64"
	EnvClientCertPassword = "SM_CLIENT_CERT_PASSWORD"
	EnvInstallDir         = "SM_INSTALL_DIR"
	EnvHost               = "SM_HOST"

	// EnvClientCertFile is exported to the signing tool and points at the
	// staged certificate file. It is never read by this package.
	EnvClientCertFile = "SM_CLIENT_CERT_FILE"

	// EnvInstallerChecksum optionally pins the installer package digest.
	EnvInstallerChecksum = "SM_INSTALLER_SHA256"
)

// DefaultHost is the Signing Manager endpoint used when no host is configured.
const DefaultHost = "https://clientauth.one.digicert.com"

// Credentials holds the Signing Manager connection settings.
type Credentials struct {
	// APIKey authenticates requests to the signing service (SM_API_KEY).
	APIKey string
	// ClientCertificate is the base64-encoded client authentication
	// certificate (SM_CLIENT_CERT_FILE_B64).
	ClientCertificate string
	// ClientCertificatePassword unlocks the client certificate
	// (SM_CLIENT_CERT_PASSWORD).
	ClientCertificatePassword string
	// InstallDir is the directory holding the signing tool (SM_INSTALL_DIR).
	InstallDir string
	// Host is the signing service endpoint (SM_HOST).
	// Empty selects DefaultHost.
	Host string
}

// CredentialsFromEnv reads credentials from the SM_* environment variables.
// Nothing is validated here; Validate reports everything that is missing
// in one pass.
func CredentialsFromEnv() Credentials {
	return Credentials{
		APIKey:                    os.Getenv(EnvAPIKey),
		ClientCertificate:         os.Getenv(EnvClientCertB64),
		ClientCertificatePassword: os.Getenv(EnvClientCertPassword),
		InstallDir:                os.Getenv(EnvInstallDir),
		Host:                      os.Getenv(EnvHost),
	}
}

// Validate checks that every required field is set. All missing fields are
// collected into a single error, named by their environment variable in the
// order above, so one failed run reports the full fix.
func (c Credentials) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if c.ClientCertificate == "" {
		missing = append(missing, EnvClientCertB64)
	}
	if c.ClientCertificatePassword == "" {
		missing = append(missing, EnvClientCertPassword)
	}
	if c.InstallDir == "" {
		missing = append(missing, EnvInstallDir)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", core.ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// hostOrDefault returns the configured host, falling back to DefaultHost.
func (c Credentials) hostOrDefault() string {
	if c.Host == "" {
		return DefaultHost
	}
	return c.Host
}

// environ builds the environment assignments handed to the signing tool.
// certFile is the staged client certificate path.
func (c Credentials) environ(certFile string) []string {
	return []string{
		EnvAPIKey + "=" + c.APIKey,
		EnvClientCertFile + "=" + certFile,
		EnvClientCertPassword + "=" + c.ClientCertificatePassword,
		EnvInstallDir + "=" + c.InstallDir,
		EnvHost + "=" + c.hostOrDefault(),
	}
}
