package forecast

import (
	"context"
	"fmt"
	"time"

	promapi "github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	prommodel "github.com/prometheus/common/model"
)

// promSource supplements the on-disk sample cache with a Prometheus
// server's own history (spec §4.6), used when forecast.prometheus_url is
// configured so Holt-Winters projection has more than this run's single
// point to work from, even on a freshly-cleared cache.
type promSource struct {
	api promv1.API
}

func newPromSource(url string) (*promSource, error) {
	client, err := promapi.NewClient(promapi.Config{Address: url})
	if err != nil {
		return nil, fmt.Errorf("prometheus client: %w", err)
	}
	return &promSource{api: promv1.NewAPI(client)}, nil
}

// rangeSamples runs an instant-percent PromQL query over [now-lookback, now]
// and returns each point as a Sample, oldest first.
func (p *promSource) rangeSamples(ctx context.Context, query string, now time.Time, lookback time.Duration) ([]Sample, error) {
	step := lookback / 30
	if step <= 0 {
		step = time.Minute
	}
	val, _, err := p.api.QueryRange(ctx, query, promv1.Range{Start: now.Add(-lookback), End: now, Step: step})
	if err != nil {
		return nil, err
	}
	matrix, ok := val.(prommodel.Matrix)
	if !ok || len(matrix) == 0 {
		return nil, nil
	}
	series := matrix[0]
	out := make([]Sample, 0, len(series.Values))
	for _, sp := range series.Values {
		out = append(out, Sample{Timestamp: sp.Timestamp.Time(), Value: float64(sp.Value)})
	}
	return out, nil
}

// promQueryForResource builds the PromQL expression for a node or PVC
// utilization percentage, the same shape Analyzer already computes from
// TopNodes/kubelet metrics but sourced from Prometheus history instead of a
// single live sample.
func promQueryForResource(kind, name, resource string) string {
	switch kind {
	case "Node":
		if resource == "cpu" {
			return fmt.Sprintf(`100 * (1 - avg(rate(node_cpu_seconds_total{mode="idle",node=%q}[5m])))`, name)
		}
		return fmt.Sprintf(`100 * (1 - node_memory_MemAvailable_bytes{node=%q} / node_memory_MemTotal_bytes{node=%q})`, name, name)
	case "PersistentVolumeClaim":
		return fmt.Sprintf(`100 * kubelet_volume_stats_used_bytes{persistentvolumeclaim=%q} / kubelet_volume_stats_capacity_bytes{persistentvolumeclaim=%q}`, name, name)
	default:
		return ""
	}
}
