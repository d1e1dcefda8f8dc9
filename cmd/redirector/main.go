// Command redirector writes nginx language redirect snippets for a
// multi-store Magento installation.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/redirector/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own errors; cobra-level failures (unknown
		// flag, bad arg count) arrive here unprinted.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
