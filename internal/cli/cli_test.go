package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_MissingArgsIsUsageError(t *testing.T) {
	cmd, _ := NewRootCommandWithIO(&bytes.Buffer{}, &bytes.Buffer{})
	cmd.SetArgs([]string{"diag", "pod"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestRootCommand_UnknownKubeconfigFailsCleanly(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd, exitCode := NewRootCommandWithIO(&stdout, &stderr)
	cmd.SetArgs([]string{"diag", "pod", "checkout-abc", "--kubeconfig", "/nonexistent/kubeconfig"})

	err := cmd.Execute()
	require.Error(t, err, "building a cluster client from a missing kubeconfig must surface as a command error, not a panic")
	assert.NotPanics(t, func() { _ = exitCode() })
}

func TestRootCommand_OutputFlagDefaultsFromConfig(t *testing.T) {
	cmd, _ := NewRootCommandWithIO(&bytes.Buffer{}, &bytes.Buffer{})
	flag := cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, flag)
	assert.Equal(t, "text", flag.DefValue)
}

func TestRootCommand_RegistersAllSubcommands(t *testing.T) {
	cmd, _ := NewRootCommandWithIO(&bytes.Buffer{}, &bytes.Buffer{})
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"diag", "graph", "top"}, names)
}

func TestNamespaceOrDefault(t *testing.T) {
	assert.Equal(t, "default", namespaceOrDefault(""))
	assert.Equal(t, "default", namespaceOrDefault("   "))
	assert.Equal(t, "production", namespaceOrDefault("production"))
}
