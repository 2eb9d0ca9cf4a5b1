package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/srijanshukla18/kubectl-smart/internal/orchestrator"
	"github.com/srijanshukla18/kubectl-smart/internal/render"
)

func newDiagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag <kind> <name>",
		Short: "Score the likely root cause behind an unhealthy resource",
		Example: "  kubectl-smart diag pod failing-app-xyz -n production\n  kubectl-smart diag deployment checkout --watch --interval 15s",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiag(a, cmd, args[0], args[1])
		},
	}
	return cmd
}

func runDiag(a *app, cmd *cobra.Command, kind, name string) error {
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	req := orchestrator.DiagRequest{Kind: kind, Namespace: namespaceOrDefault(a.namespace), Name: name}

	if !a.watch {
		start := time.Now()
		res := orch.Diag(cmd.Context(), req)
		a.exitCode = res.ExitCode
		return a.writeDiag(cmd, res, time.Since(start))
	}
	return a.watchDiag(cmd, orch, req)
}

func (a *app) writeDiag(cmd *cobra.Command, res orchestrator.Result, elapsed time.Duration) error {
	diagResult, _ := res.Payload.(render.DiagResult)
	if a.jsonOutput() {
		env := render.Envelope{
			SchemaVersion: render.SchemaVersion,
			Command:       "diag",
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			Subject:       res.Subject,
			Result:        diagResult,
			Notes:         res.Notes,
		}
		return render.WriteJSON(cmd.OutOrStdout(), env)
	}
	render.DiagText(cmd.OutOrStdout(), res.Subject, diagResult, elapsed, res.Notes, a.capabilities())
	return nil
}

func (a *app) watchDiag(cmd *cobra.Command, orch *orchestrator.Orchestrator, req orchestrator.DiagRequest) error {
	interval := a.interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	var previous []render.DiagResult
	iteration := 0
	for {
		iteration++
		if a.weights != nil {
			orch.Engine.Weights = a.weights.Weights()
		}
		start := time.Now()
		res := orch.Diag(cmd.Context(), req)
		diagResult, _ := res.Payload.(render.DiagResult)
		a.exitCode = res.ExitCode

		fmt.Fprint(cmd.OutOrStdout(), "\033[2J\033[H")
		fmt.Fprintf(cmd.OutOrStdout(), "watching %s (interval %s, Ctrl+C to stop)\n\n", res.Subject, interval)
		if err := a.writeDiag(cmd, res, time.Since(start)); err != nil {
			return err
		}
		if len(previous) > 0 {
			diff := orchestrator.DiffIssues(previous[len(previous)-1].AllIssues, diagResult.AllIssues)
			if len(diff.Added) > 0 || len(diff.Removed) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nchanges: +%d issues, -%d issues\n", len(diff.Added), len(diff.Removed))
			}
		}
		previous = append(previous, diagResult)

		select {
		case <-time.After(interval):
		case <-cmd.Context().Done():
			fmt.Fprintln(cmd.OutOrStdout(), "\nstopped watching.")
			return nil
		}
	}
}
