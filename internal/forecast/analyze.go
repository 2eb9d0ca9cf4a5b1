package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
	"github.com/srijanshukla18/kubectl-smart/internal/parser"
)

// Analyzer runs the two independent analyses spec §4.6 names: capacity and
// certificates, over a namespace's collected artifacts.
type Analyzer struct {
	Cache   *Cache
	Context string
	Now     func() time.Time

	// prom is non-nil when forecast.prometheus_url is configured; it
	// supplements the on-disk cache with real historical series.
	prom     *promSource
	promNote string
}

// NewAnalyzer wires a persistent sample cache rooted at cacheDir, plus an
// optional Prometheus-backed trend source when prometheusURL is non-empty
// (spec §4.6, §13.2). A bad Prometheus URL is not fatal: the Analyzer falls
// back to the on-disk cache and surfaces a note instead.
func NewAnalyzer(cacheDir, clusterContext, prometheusURL string) *Analyzer {
	a := &Analyzer{Cache: NewCache(cacheDir, clusterContext), Context: clusterContext, Now: time.Now}
	if prometheusURL == "" {
		return a
	}
	src, err := newPromSource(prometheusURL)
	if err != nil {
		a.promNote = "prometheus trend source disabled: " + err.Error()
		return a
	}
	a.prom = src
	return a
}

// AnalyzeCapacity implements spec §4.6's capacity analysis: pod/node
// CPU/memory from TopPods/TopNodes, PVC utilization from kubelet volume
// metrics when available, node pressure is always Critical immediately.
func (a *Analyzer) AnalyzeCapacity(ctx context.Context, cc clusterclient.ClusterClient, namespace string, pvcs []*model.ResourceRecord, nodes []*model.ResourceRecord, horizon time.Duration) ([]CapacityWarning, []string) {
	now := a.now()
	var warnings []CapacityWarning
	var notes []string
	if a.promNote != "" {
		notes = append(notes, a.promNote)
	}

	nodeSamples, err := cc.TopNodes(ctx)
	if err != nil {
		notes = append(notes, "limited signals: node metrics unavailable ("+err.Error()+")")
	} else {
		for _, s := range nodeSamples {
			node := findNode(nodes, s.Name)
			if node == nil {
				continue
			}
			capCPU, _ := node.Properties["cpuCapacityMillis"].(int64)
			if capCPU > 0 {
				warnings = append(warnings, a.capacityWarning(ctx, "Node/"+s.Name+"/cpu", promQueryForResource("Node", s.Name, "cpu"), float64(s.CPUMillicores), float64(capCPU), now, horizon)...)
			}
			capMem, _ := node.Properties["memCapacityBytes"].(int64)
			if capMem > 0 {
				warnings = append(warnings, a.capacityWarning(ctx, "Node/"+s.Name+"/memory", promQueryForResource("Node", s.Name, "memory"), float64(s.MemoryBytes), float64(capMem), now, horizon)...)
			}
		}
	}

	for _, n := range nodes {
		for _, c := range n.Status.Conditions {
			if (c.Type == "DiskPressure" || c.Type == "MemoryPressure" || c.Type == "PIDPressure") && c.Status == "True" {
				warnings = append(warnings, CapacityWarning{
					Resource: n.FullName() + " (" + c.Type + ")", CurrentPercent: 100, ProjectedPercent: 100,
					Severity: "Critical", Action: "cordon/drain or free up " + c.Type + " on " + n.Name,
				})
			}
		}
	}

	pvcStats, pvcErr := a.fetchPVCVolumeStats(ctx, cc, nodes)
	if pvcErr != nil {
		notes = append(notes, "limited signals: kubelet volume metrics unavailable ("+pvcErr.Error()+")")
	} else {
		for _, pvc := range pvcs {
			key := pvc.Namespace + "/" + pvc.Name
			stat, ok := pvcStats[key]
			if !ok || stat.CapBytes <= 0 {
				continue // Open Question 1: no placeholder when the real metric is unavailable
			}
			warnings = append(warnings, a.capacityWarning(ctx, "PersistentVolumeClaim/"+pvc.Namespace+"/"+pvc.Name, promQueryForResource("PersistentVolumeClaim", pvc.Name, ""), stat.UsedBytes, stat.CapBytes, now, horizon)...)
		}
	}

	return warnings, notes
}

func findNode(nodes []*model.ResourceRecord, name string) *model.ResourceRecord {
	for _, n := range nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// fetchPVCVolumeStats pulls kubelet Prometheus text exposition per node via
// RawGet and returns volume stats keyed by (namespace, pvcName). Any node
// proxy failure is reported but does not abort the run.
func (a *Analyzer) fetchPVCVolumeStats(ctx context.Context, cc clusterclient.ClusterClient, nodes []*model.ResourceRecord) (map[string]parser.VolumeStat, error) {
	out := map[string]parser.VolumeStat{}
	var lastErr error
	found := false
	for _, n := range nodes {
		raw, err := cc.RawGet(ctx, fmt.Sprintf("/api/v1/nodes/%s/proxy/metrics", n.Name))
		if err != nil {
			lastErr = err
			continue
		}
		stats, err := parser.ParseKubeletVolumeMetrics(raw)
		if err != nil {
			lastErr = err
			continue
		}
		found = true
		for _, s := range stats {
			out[s.Namespace+"/"+s.PVCName] = s
		}
	}
	if !found && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// capacityWarning implements spec §4.6's threshold rule: "emit ... when the
// projected utilization within H crosses 90% OR when current utilization
// already >= 90%." Persists the current sample to the cache for future-run
// trend analysis.
func (a *Analyzer) capacityWarning(ctx context.Context, metricKey, promQuery string, used, total float64, now time.Time, horizon time.Duration) []CapacityWarning {
	current := percent(used, total)
	_ = a.Cache.Append(metricKey, Sample{Timestamp: now, Value: current})

	samples, _ := a.Cache.Read(metricKey)
	if a.prom != nil && promQuery != "" {
		if promSamples, err := a.prom.rangeSamples(ctx, promQuery, now, horizon*4); err == nil && len(promSamples) > len(samples) {
			samples = promSamples
		}
	}
	projected, ok, _ := Project(samples, horizon)
	if !ok {
		projected = current
	}

	if current < 90 && projected < 90 {
		return nil
	}
	// current >= 90 is already over threshold: Critical, right now. Only a
	// projection crossing 90% while current is still below it is a Warning
	// (spec §4.6: "already >= 90%" vs. "projected ... crosses 90% within H").
	sev := "Warning"
	if current >= 90 {
		sev = "Critical"
	}
	return []CapacityWarning{{
		Resource:         metricKey,
		CurrentPercent:   current,
		ProjectedPercent: projected,
		HoursToThreshold: hoursToThreshold(current, projected, horizon),
		Severity:         sev,
		Action:           "scale up or expand capacity for " + metricKey,
	}}
}

// hoursToThreshold estimates when the metric crosses 90% (spec §6
// capacity_warnings[].hours_to_threshold): 0 if already over threshold,
// otherwise linear interpolation between the current sample and the
// projected value at horizon.
func hoursToThreshold(current, projected float64, horizon time.Duration) float64 {
	if current >= 90 {
		return 0
	}
	hours := horizon.Hours()
	rate := (projected - current) / hours
	if rate <= 0 {
		return hours
	}
	toThreshold := (90 - current) / rate
	if toThreshold < 0 {
		return 0
	}
	if toThreshold > hours {
		return hours
	}
	return toThreshold
}

// AnalyzeCertificates implements spec §4.6's certificate analysis.
func (a *Analyzer) AnalyzeCertificates(secrets []*model.ResourceRecord, ingresses []*model.ResourceRecord) []CertificateWarning {
	now := a.now()
	var out []CertificateWarning
	for _, s := range secrets {
		certPEM, ok := s.Properties["tlsCertPEM"].([]byte)
		if !ok || len(certPEM) == 0 {
			continue
		}
		info, err := parser.ParseTLSCert(certPEM)
		if err != nil {
			continue
		}
		days := daysUntil(info.NotAfter, now)
		if days > 14 {
			continue
		}
		sev := "Warning"
		if days <= 3 {
			sev = "Critical"
		}
		out = append(out, CertificateWarning{
			Secret:       s.FullName(),
			Expires:      info.NotAfter,
			DaysLeft:     days,
			ReferencedBy: referringIngresses(s, ingresses),
			Severity:     sev,
			Action:       "renew or rotate TLS secret " + s.Name + " before it expires",
		})
	}
	return out
}

func referringIngresses(secret *model.ResourceRecord, ingresses []*model.ResourceRecord) []string {
	var out []string
	for _, ing := range ingresses {
		if ing.Namespace != secret.Namespace {
			continue
		}
		names, _ := ing.Properties["tlsSecrets"].([]string)
		for _, n := range names {
			if n == secret.Name {
				out = append(out, ing.FullName())
			}
		}
	}
	return out
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
