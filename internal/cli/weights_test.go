package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srijanshukla18/kubectl-smart/internal/scoring"
)

func TestNewWeightsSource_EmptyPathUsesDefaults(t *testing.T) {
	s, err := newWeightsSource("")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, scoring.DefaultWeights(), s.Weights())
}

func TestNewWeightsSource_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("CrashLoopBackOff: 70\n"), 0o644))

	s, err := newWeightsSource(path)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, 70, s.Weights()["CrashLoopBackOff"])

	require.NoError(t, os.WriteFile(path, []byte("CrashLoopBackOff: 99\n"), 0o644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Weights()["CrashLoopBackOff"] == 99 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 99, s.Weights()["CrashLoopBackOff"])
}

func TestNewWeightsSource_BadFileIsFatalAtLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("CrashLoopBackOff: 90\nCrashLoopBackOff: 50\n"), 0o644))

	_, err := newWeightsSource(path)
	require.Error(t, err)
}
