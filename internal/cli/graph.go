package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/srijanshukla18/kubectl-smart/internal/orchestrator"
	"github.com/srijanshukla18/kubectl-smart/internal/render"
)

func newGraphCmd(a *app) *cobra.Command {
	var upstream, downstream bool
	cmd := &cobra.Command{
		Use:     "graph <kind> <name>",
		Short:   "Render the dependency graph around a resource",
		Example: "  kubectl-smart graph service checkout -n production --downstream",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			req := orchestrator.GraphRequest{
				Kind:       args[0],
				Namespace:  namespaceOrDefault(a.namespace),
				Name:       args[1],
				Upstream:   upstream,
				Downstream: downstream,
			}
			res := orch.Graph(cmd.Context(), req)
			a.exitCode = res.ExitCode
			return a.writeGraph(cmd, res)
		},
	}
	cmd.Flags().BoolVar(&upstream, "upstream", false, "show only what this resource depends on")
	cmd.Flags().BoolVar(&downstream, "downstream", false, "show only what depends on this resource")
	return cmd
}

func (a *app) writeGraph(cmd *cobra.Command, res orchestrator.Result) error {
	payload, _ := res.Payload.(orchestrator.GraphPayload)
	if a.jsonOutput() {
		env := render.Envelope{
			SchemaVersion: render.SchemaVersion,
			Command:       "graph",
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			Subject:       res.Subject,
			Result:        payload.Result,
			Notes:         res.Notes,
		}
		return render.WriteJSON(cmd.OutOrStdout(), env)
	}
	if payload.Graph == nil {
		return nil
	}
	caps := a.capabilities()
	render.GraphText(cmd.OutOrStdout(), payload.Graph, payload.Subject, payload.Direction, payload.Severities, payload.Stats, caps)
	return nil
}
