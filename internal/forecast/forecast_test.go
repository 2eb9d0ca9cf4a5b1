package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampHorizon_Bounds(t *testing.T) {
	assert.Equal(t, 1, ClampHorizon(0))
	assert.Equal(t, 1, ClampHorizon(-5))
	assert.Equal(t, 168, ClampHorizon(500))
	assert.Equal(t, 48, ClampHorizon(48))
}

func TestProject_InsufficientData(t *testing.T) {
	_, ok, _ := Project(nil, time.Hour)
	assert.False(t, ok)

	_, ok, _ = Project([]Sample{{Timestamp: time.Now(), Value: 1}}, time.Hour)
	assert.False(t, ok)
}

func TestProject_LinearRegressionUsedBelowSevenSamples(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Timestamp: base, Value: 10},
		{Timestamp: base.Add(time.Hour), Value: 20},
		{Timestamp: base.Add(2 * time.Hour), Value: 30},
	}
	projected, ok, method := Project(samples, time.Hour)
	assert.True(t, ok)
	assert.Equal(t, "linear-regression", method)
	assert.InDelta(t, 40, projected, 0.01)
}

func TestProject_HoltWintersUsedAtSevenSamples(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var samples []Sample
	for i := 0; i < 7; i++ {
		samples = append(samples, Sample{Timestamp: base.Add(time.Duration(i) * time.Hour), Value: float64(10 * (i + 1))})
	}
	_, ok, method := Project(samples, time.Hour)
	assert.True(t, ok)
	assert.Equal(t, "holt-winters", method)
}

// TestDaysUntil covers invariant 7 (§8): days_left = floor((notAfter-now)/1day).
func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, daysUntil(now.Add(10*24*time.Hour), now))
	assert.Equal(t, 9, daysUntil(now.Add(9*24*time.Hour+23*time.Hour), now))
	assert.Equal(t, -1, daysUntil(now.Add(-1*time.Hour), now))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 50.0, percent(50, 100))
	assert.Equal(t, 0.0, percent(50, 0))
	assert.Equal(t, 100.0, percent(150, 100), "clamped to 100")
}

func TestNewAnalyzer_EmptyURLHasNoPrometheusSource(t *testing.T) {
	a := NewAnalyzer(t.TempDir(), "test", "")
	assert.Nil(t, a.prom)
	assert.Empty(t, a.promNote)
}

func TestNewAnalyzer_ValidURLWiresPrometheusSource(t *testing.T) {
	a := NewAnalyzer(t.TempDir(), "test", "http://localhost:9090")
	assert.NotNil(t, a.prom)
	assert.Empty(t, a.promNote)
}

func TestNewAnalyzer_BadURLFallsBackWithNote(t *testing.T) {
	a := NewAnalyzer(t.TempDir(), "test", "://not-a-url")
	assert.Nil(t, a.prom)
	assert.NotEmpty(t, a.promNote)
}

func TestPromQueryForResource_CoversKnownKinds(t *testing.T) {
	assert.Contains(t, promQueryForResource("Node", "node-1", "cpu"), "node-1")
	assert.Contains(t, promQueryForResource("Node", "node-1", "memory"), "MemAvailable")
	assert.Contains(t, promQueryForResource("PersistentVolumeClaim", "data", ""), "kubelet_volume_stats_used_bytes")
	assert.Empty(t, promQueryForResource("Service", "x", ""))
}
