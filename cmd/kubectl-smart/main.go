// Command kubectl-smart diagnoses, graphs, and forecasts Kubernetes
// resource health (see internal/cli, internal/orchestrator).
package main

import (
	"fmt"
	"os"

	"github.com/srijanshukla18/kubectl-smart/internal/cli"
)

func main() {
	cmd, exitCode := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kubectl-smart:", err)
		os.Exit(2)
	}
	os.Exit(exitCode())
}
