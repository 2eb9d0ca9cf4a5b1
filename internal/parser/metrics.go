package parser

import (
	"bytes"

	"github.com/prometheus/common/expfmt"
)

// VolumeStat is one PVC's kubelet-reported usage sample (spec §4.3/§4.6).
type VolumeStat struct {
	Namespace string
	PVCName   string
	UsedBytes float64
	CapBytes  float64
}

// ParseKubeletVolumeMetrics decodes a kubelet Prometheus text-exposition
// payload (fetched via ClusterClient.RawGet against a node-proxy /metrics
// endpoint) and extracts kubelet_volume_stats_used_bytes/_capacity_bytes
// keyed by (namespace, persistentvolumeclaim), per spec §4.3. Tolerant of
// any other metric families present in the payload.
func ParseKubeletVolumeMetrics(raw []byte) ([]VolumeStat, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	byKey := map[string]*VolumeStat{}
	order := []string{}

	collect := func(name string, assign func(*VolumeStat, float64)) {
		fam, ok := families[name]
		if !ok {
			return
		}
		for _, m := range fam.GetMetric() {
			ns, pvc := "", ""
			for _, lbl := range m.GetLabel() {
				switch lbl.GetName() {
				case "namespace":
					ns = lbl.GetValue()
				case "persistentvolumeclaim":
					pvc = lbl.GetValue()
				}
			}
			if ns == "" || pvc == "" {
				continue
			}
			key := ns + "/" + pvc
			stat, ok := byKey[key]
			if !ok {
				stat = &VolumeStat{Namespace: ns, PVCName: pvc}
				byKey[key] = stat
				order = append(order, key)
			}
			assign(stat, m.GetGauge().GetValue())
		}
	}

	collect("kubelet_volume_stats_used_bytes", func(s *VolumeStat, v float64) { s.UsedBytes = v })
	collect("kubelet_volume_stats_capacity_bytes", func(s *VolumeStat, v float64) { s.CapBytes = v })

	out := make([]VolumeStat, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out, nil
}
