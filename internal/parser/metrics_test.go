package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKubeletMetrics = `# HELP kubelet_volume_stats_used_bytes Number of used bytes in the volume
# TYPE kubelet_volume_stats_used_bytes gauge
kubelet_volume_stats_used_bytes{namespace="prod",persistentvolumeclaim="checkout-data"} 8.589934592e+09
# HELP kubelet_volume_stats_capacity_bytes Capacity in bytes of the volume
# TYPE kubelet_volume_stats_capacity_bytes gauge
kubelet_volume_stats_capacity_bytes{namespace="prod",persistentvolumeclaim="checkout-data"} 1.073741824e+10
`

func TestParseKubeletVolumeMetrics(t *testing.T) {
	stats, err := ParseKubeletVolumeMetrics([]byte(sampleKubeletMetrics))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "prod", stats[0].Namespace)
	assert.Equal(t, "checkout-data", stats[0].PVCName)
	assert.InDelta(t, 8.589934592e+09, stats[0].UsedBytes, 1)
	assert.InDelta(t, 1.073741824e+10, stats[0].CapBytes, 1)
}

func TestParseKubeletVolumeMetrics_MalformedInput(t *testing.T) {
	_, err := ParseKubeletVolumeMetrics([]byte("kubelet_volume_stats_used_bytes{namespace=\"prod\" not_a_number\n"))
	assert.Error(t, err)
}
