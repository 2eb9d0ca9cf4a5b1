// Package cli wires kubectl-smart's cobra surface: global flags
// (--context, --namespace, --kubeconfig, --debug, --output, --watch
// --interval) onto the diag/graph/top subcommands, each of which drives
// internal/orchestrator and renders through internal/render.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
	"github.com/srijanshukla18/kubectl-smart/internal/config"
	"github.com/srijanshukla18/kubectl-smart/internal/k8sclient"
	"github.com/srijanshukla18/kubectl-smart/internal/log"
	"github.com/srijanshukla18/kubectl-smart/internal/orchestrator"
	"github.com/srijanshukla18/kubectl-smart/internal/render"
	"github.com/srijanshukla18/kubectl-smart/internal/version"
)

// app holds the global flag values and lazily-built cluster connection
// shared by every subcommand (spec §4.8, §6 CLI surface).
type app struct {
	contextName string
	namespace   string
	kubeconfig  string
	debug       bool
	output      string
	watch       bool
	interval    time.Duration

	cfg    *config.Config
	cfgErr error

	stdout io.Writer
	stderr io.Writer

	cc    clusterclient.ClusterClient
	ccErr error

	weights    *weightsSource
	weightsErr error

	exitCode int
}

// NewRootCommand returns kubectl-smart's cobra root wired to os.Stdout/Stderr,
// plus an accessor for the exit code the executed subcommand chose
// (spec §6). Call the accessor only after cmd.Execute() returns.
func NewRootCommand() (*cobra.Command, func() int) {
	return newRootCommand(os.Stdout, os.Stderr)
}

// NewRootCommandWithIO is NewRootCommand with explicit writers, for tests.
func NewRootCommandWithIO(out, errOut io.Writer) (*cobra.Command, func() int) {
	return newRootCommand(out, errOut)
}

func newRootCommand(out, errOut io.Writer) (*cobra.Command, func() int) {
	cfg, cfgErr := config.Load()
	if cfg == nil {
		cfg = config.Default()
	}
	a := &app{
		output: cfg.Output.DefaultFormat,
		cfg:    cfg,
		cfgErr: cfgErr,
		stdout: out,
		stderr: errOut,
	}

	cmd := &cobra.Command{
		Use:           "kubectl-smart",
		Short:         "Diagnose, graph, and forecast Kubernetes resource health",
		Long:          "kubectl-smart scores the likely root cause of an unhealthy resource, renders its dependency graph, and forecasts capacity/certificate exhaustion. It is read-only: every cluster call it makes is non-mutating.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	cmd.PersistentFlags().StringVar(&a.contextName, "context", "", "kubeconfig context to use")
	cmd.PersistentFlags().StringVarP(&a.namespace, "namespace", "n", "", "namespace to operate in")
	cmd.PersistentFlags().StringVar(&a.kubeconfig, "kubeconfig", "", "path to the kubeconfig file")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "include error kind/source detail in output")
	cmd.PersistentFlags().StringVar(&a.output, "output", a.output, "output format: text|json")
	cmd.PersistentFlags().BoolVar(&a.watch, "watch", false, "re-run the pipeline on --interval and report issue diffs")
	cmd.PersistentFlags().DurationVar(&a.interval, "interval", 10*time.Second, "refresh interval for --watch")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if a.cfgErr != nil {
			fmt.Fprintf(a.stderr, "warning: invalid config (%v); using defaults\n", a.cfgErr)
		}
		log.Configure(a.cfg.Logging.Level, a.debug)
		return nil
	}
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if a.weights != nil {
			a.weights.Close()
		}
	}

	cmd.AddCommand(
		newDiagCmd(a),
		newGraphCmd(a),
		newTopCmd(a),
	)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetErrPrefix("kubectl-smart: ")
	return cmd, func() int { return a.exitCode }
}

// clusterClient lazily builds the ClusterClient for this invocation's
// --context/--kubeconfig, caching the result for the process lifetime
// (spec §4.1: a single ClusterClient per run).
func (a *app) clusterClient() (clusterclient.ClusterClient, error) {
	if a.cc != nil || a.ccErr != nil {
		return a.cc, a.ccErr
	}
	bundle, err := k8sclient.NewBundle(a.kubeconfig, a.contextName)
	if err != nil {
		a.ccErr = err
		return nil, err
	}
	if a.debug {
		methods := k8sclient.DetectAuthMethods(bundle.RawConfig, bundle.EffectiveContext)
		log.S().Debugf("using context %q (auth: %s)", bundle.EffectiveContext, strings.Join(methods, ","))
	}
	if err := k8sclient.TestConnection(context.Background(), bundle); err != nil {
		a.ccErr = err
		return nil, err
	}
	a.cc = clusterclient.New(bundle)
	return a.cc, nil
}

// orchestrator builds an Orchestrator over this invocation's ClusterClient
// and the weights file named in config, if one is set (spec §6). Under
// --watch, the weights table is hot-reloaded from disk between iterations
// via weightsSource rather than re-read once per process.
func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	cc, err := a.clusterClient()
	if err != nil {
		return nil, err
	}
	if a.weights == nil && a.weightsErr == nil {
		a.weights, a.weightsErr = newWeightsSource(a.cfg.Scoring.WeightsFile)
	}
	if a.weightsErr != nil {
		return nil, fmt.Errorf("loading weights file %s: %w", a.cfg.Scoring.WeightsFile, a.weightsErr)
	}
	return orchestrator.New(cc, a.cfg, a.weights.Weights()), nil
}

// capabilities detects terminal capabilities for the human renderer when
// stdout is an *os.File; any other writer gets the plain defaults (no color,
// no unicode, LineWidth columns).
func (a *app) capabilities() render.Capabilities {
	if f, ok := a.stdout.(*os.File); ok {
		return render.Detect(f)
	}
	return render.Capabilities{Width: render.LineWidth}
}

func (a *app) jsonOutput() bool {
	return strings.EqualFold(strings.TrimSpace(a.output), "json")
}

func namespaceOrDefault(ns string) string {
	if strings.TrimSpace(ns) != "" {
		return ns
	}
	return "default"
}
