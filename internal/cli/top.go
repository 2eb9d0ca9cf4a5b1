package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/srijanshukla18/kubectl-smart/internal/forecast"
	"github.com/srijanshukla18/kubectl-smart/internal/orchestrator"
	"github.com/srijanshukla18/kubectl-smart/internal/render"
)

func newTopCmd(a *app) *cobra.Command {
	var horizon int
	cmd := &cobra.Command{
		Use:     "top <namespace>",
		Short:   "Forecast capacity and certificate exhaustion for a namespace",
		Example: "  kubectl-smart top production --horizon 72",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			req := orchestrator.TopRequest{Namespace: args[0], HorizonHours: horizon}
			res := orch.Top(cmd.Context(), req)
			a.exitCode = res.ExitCode
			return a.writeTop(cmd, res)
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", a.cfg.Forecast.DefaultHorizonHours, "forecast horizon in hours [1,168]")
	return cmd
}

func (a *app) writeTop(cmd *cobra.Command, res orchestrator.Result) error {
	payload, _ := res.Payload.(render.TopResult)
	if a.jsonOutput() {
		env := render.Envelope{
			SchemaVersion: render.SchemaVersion,
			Command:       "top",
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			Subject:       res.Subject,
			Result:        payload,
			Notes:         res.Notes,
		}
		return render.WriteJSON(cmd.OutOrStdout(), env)
	}
	fullResult := forecast.Result{
		HorizonHours: payload.HorizonHours,
		Capacity:     payload.Capacity,
		Certificates: payload.Certificates,
	}
	render.TopText(cmd.OutOrStdout(), fullResult, res.Notes)
	return nil
}
