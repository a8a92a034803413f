// Command signet signs executables through DigiCert Signing Manager.
package main

import (
	"os"

	"github.com/meigma/signet/cmd/signet/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
