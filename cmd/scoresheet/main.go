// Command scoresheet derives volleyball scoresheets from match files.
package main

import (
	"fmt"
	"os"

	"github.com/openvolley/scoresheet/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
