// Package signet automates code signing through DigiCert Signing Manager.
//
// Signet stages the client certificate, provisions the vendor signing CLI
// (downloading and installing it when missing), selects an active
// certificate and its keypair, signs each file in a list, and verifies
// every signature with the platform's verification tool.
//
// # Basic Usage
//
// Create a client and sign a list of files:
//
//	client, err := signet.NewClient()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	report, err := client.Run(ctx, `C:\dist\app.exe;C:\dist\helper.exe`)
//
// # Credentials
//
// By default, credentials are resolved from the SM_* environment variables
// used by DigiCert's own tooling (SM_API_KEY, SM_CLIENT_CERT_FILE_B64,
// SM_CLIENT_CERT_PASSWORD, SM_INSTALL_DIR, and optionally SM_HOST).
// Override with WithCredentials.
//
// # Failure Policy
//
// A run completes even when individual files fail to sign or verify; the
// per-file outcomes are collected in the returned Report. WithStrict makes
// the client abort on the first failure instead, including non-zero
// installer exit codes during provisioning.
package signet
