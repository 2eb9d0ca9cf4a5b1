package clusterclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	memory "k8s.io/client-go/discovery/cached"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/restmapper"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/srijanshukla18/kubectl-smart/internal/clustererr"
	"github.com/srijanshukla18/kubectl-smart/internal/k8sclient"
)

// liveClient is the client-go-backed ClusterClient (spec §4.1). It knows
// how to route a known ResourceKind to the typed clientset and falls back
// to the dynamic client plus a cached discovery RESTMapper for Generic/CRD
// kinds — the idiomatic approach this ecosystem uses (kubectl, helm,
// controller-runtime all resolve GVKs the same way).
type liveClient struct {
	bundle *k8sclient.Bundle

	mapperOnce sync.Once
	mapper     meta.RESTMapper
	mapperErr  error
}

// New wraps an already-constructed client bundle (internal/k8sclient) as a
// ClusterClient.
func New(bundle *k8sclient.Bundle) ClusterClient {
	return &liveClient{bundle: bundle}
}

func (c *liveClient) CurrentContext() string {
	if c.bundle == nil {
		return ""
	}
	return c.bundle.EffectiveContext
}

func (c *liveClient) CanI(ctx context.Context, verb, resource, namespace string) (bool, error) {
	return k8sclient.CanI(ctx, c.bundle, verb, resource, namespace)
}

func (c *liveClient) restMapper() (meta.RESTMapper, error) {
	c.mapperOnce.Do(func() {
		disco := c.bundle.Clientset.Discovery()
		cached := memory.NewMemCacheClient(disco)
		c.mapper = restmapper.NewDeferredDiscoveryRESTMapper(cached)
	})
	return c.mapper, c.mapperErr
}

// gvrFor resolves a kind string (as used throughout the pipeline, e.g.
// "Deployment", "MyCustomResource") to a GroupVersionResource via the
// cached discovery RESTMapper. Used only for the Generic/CRD path; known
// kinds are routed directly to typed clientset calls below.
func (c *liveClient) gvrFor(kind string) (schema.GroupVersionResource, error) {
	mapper, err := c.restMapper()
	if err != nil {
		return schema.GroupVersionResource{}, err
	}
	mapping, err := mapper.RESTMapping(schema.GroupKind{Kind: kind})
	if err != nil {
		return schema.GroupVersionResource{}, clustererr.New(clustererr.KindNotFound, "discovery", err)
	}
	return mapping.Resource, nil
}

func (c *liveClient) dynamicResource(ctx context.Context, kind, namespace string) (dynamic.ResourceInterface, error) {
	gvr, err := c.gvrFor(kind)
	if err != nil {
		return nil, err
	}
	ri := c.bundle.Dynamic.Resource(gvr)
	if namespace != "" {
		return ri.Namespace(namespace), nil
	}
	return ri, nil
}

// ListNamespaced implements spec §4.1 for both known and Generic kinds.
func (c *liveClient) ListNamespaced(ctx context.Context, kind, namespace string) ([]Artifact, error) {
	cs := c.bundle.Clientset
	opts := metav1.ListOptions{}

	switch kind {
	case "Pod":
		list, err := cs.CoreV1().Pods(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "ReplicaSet":
		list, err := cs.AppsV1().ReplicaSets(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "Deployment":
		list, err := cs.AppsV1().Deployments(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "StatefulSet":
		list, err := cs.AppsV1().StatefulSets(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "DaemonSet":
		list, err := cs.AppsV1().DaemonSets(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "Job":
		list, err := cs.BatchV1().Jobs(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "Service":
		list, err := cs.CoreV1().Services(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "Ingress":
		list, err := cs.NetworkingV1().Ingresses(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "ConfigMap":
		list, err := cs.CoreV1().ConfigMaps(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "Secret":
		list, err := cs.CoreV1().Secrets(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "PersistentVolumeClaim":
		list, err := cs.CoreV1().PersistentVolumeClaims(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "PersistentVolume":
		list, err := cs.CoreV1().PersistentVolumes().List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "Node":
		list, err := cs.CoreV1().Nodes().List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "HorizontalPodAutoscaler":
		list, err := cs.AutoscalingV2().HorizontalPodAutoscalers(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "NetworkPolicy":
		list, err := cs.NetworkingV1().NetworkPolicies(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	case "Endpoints":
		list, err := cs.CoreV1().Endpoints(namespace).List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, len(list.Items))
		for i := range list.Items {
			out[i] = Artifact{Kind: kind, Namespace: list.Items[i].Namespace, Name: list.Items[i].Name, Object: &list.Items[i]}
		}
		return out, nil
	default:
		ri, err := c.dynamicResource(ctx, kind, namespace)
		if err != nil {
			return nil, err
		}
		list, err := ri.List(ctx, opts)
		if err != nil {
			return nil, clustererr.Wrap("cluster-api", err)
		}
		out := make([]Artifact, 0, len(list.Items))
		for i := range list.Items {
			item := list.Items[i]
			out = append(out, Artifact{Kind: kind, Namespace: item.GetNamespace(), Name: item.GetName(), Object: &item})
		}
		return out, nil
	}
}

// Get implements spec §4.1 for both known and Generic kinds.
func (c *liveClient) Get(ctx context.Context, kind, namespace, name string) (Artifact, error) {
	cs := c.bundle.Clientset
	opts := metav1.GetOptions{}

	switch kind {
	case "Pod":
		obj, err := cs.CoreV1().Pods(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "ReplicaSet":
		obj, err := cs.AppsV1().ReplicaSets(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "Deployment":
		obj, err := cs.AppsV1().Deployments(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "StatefulSet":
		obj, err := cs.AppsV1().StatefulSets(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "DaemonSet":
		obj, err := cs.AppsV1().DaemonSets(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "Job":
		obj, err := cs.BatchV1().Jobs(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "Service":
		obj, err := cs.CoreV1().Services(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "Ingress":
		obj, err := cs.NetworkingV1().Ingresses(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "ConfigMap":
		obj, err := cs.CoreV1().ConfigMaps(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "Secret":
		obj, err := cs.CoreV1().Secrets(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "PersistentVolumeClaim":
		obj, err := cs.CoreV1().PersistentVolumeClaims(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "PersistentVolume":
		obj, err := cs.CoreV1().PersistentVolumes().Get(ctx, name, opts)
		return artifact(kind, "", name, obj, err)
	case "Node":
		obj, err := cs.CoreV1().Nodes().Get(ctx, name, opts)
		return artifact(kind, "", name, obj, err)
	case "HorizontalPodAutoscaler":
		obj, err := cs.AutoscalingV2().HorizontalPodAutoscalers(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "NetworkPolicy":
		obj, err := cs.NetworkingV1().NetworkPolicies(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	case "Endpoints":
		obj, err := cs.CoreV1().Endpoints(namespace).Get(ctx, name, opts)
		return artifact(kind, namespace, name, obj, err)
	default:
		ri, err := c.dynamicResource(ctx, kind, namespace)
		if err != nil {
			return Artifact{}, err
		}
		obj, err := ri.Get(ctx, name, opts)
		if err != nil {
			return Artifact{}, clustererr.Wrap("cluster-api", err)
		}
		return Artifact{Kind: kind, Namespace: obj.GetNamespace(), Name: obj.GetName(), Object: obj}, nil
	}
}

// Describe renders a short human text summary, the way `kubectl describe`
// does, but sourced straight from the already-fetched object plus its
// events rather than shelling out — the core never has a dependency on the
// kubectl binary being on PATH.
func (c *liveClient) Describe(ctx context.Context, kind, namespace, name string) (string, error) {
	art, err := c.Get(ctx, kind, namespace, name)
	if err != nil {
		return "", err
	}
	events, err := c.Events(ctx, namespace, map[string]string{"involvedObject.name": name, "involvedObject.kind": kind})
	if err != nil {
		events = nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:\t%s\nNamespace:\t%s\nKind:\t%s\n", name, namespace, kind)
	for _, e := range events {
		if unstr, ok := e.Object.(*corev1.Event); ok {
			fmt.Fprintf(&sb, "Event:\t%s\t%s\t%s\n", unstr.Type, unstr.Reason, unstr.Message)
		}
	}
	_ = art
	return sb.String(), nil
}

// Events implements spec §4.1/§4.2: events filtered to an involvedObject
// family, capped at 200 per spec §5.
func (c *liveClient) Events(ctx context.Context, namespace string, involvedObjectFilter map[string]string) ([]Artifact, error) {
	const maxEvents = 200
	fs := fields(involvedObjectFilter)
	list, err := c.bundle.Clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{FieldSelector: fs})
	if err != nil {
		return nil, clustererr.Wrap("events", err)
	}
	n := len(list.Items)
	if n > maxEvents {
		n = maxEvents
	}
	out := make([]Artifact, 0, n)
	for i := 0; i < n; i++ {
		item := list.Items[i]
		out = append(out, Artifact{Kind: "Event", Namespace: item.Namespace, Name: item.Name, Object: &item})
	}
	return out, nil
}

func fields(filter map[string]string) string {
	if len(filter) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filter))
	for k, v := range filter {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

// Logs implements spec §4.1/§5: tail capped at 100 lines (enforced by the
// caller clamping tail before invoking this), previous-container logs when
// requested.
func (c *liveClient) Logs(ctx context.Context, namespace, pod, container string, tail int, previous bool) (string, error) {
	tailLines := int64(tail)
	req := c.bundle.Clientset.CoreV1().Pods(namespace).GetLogs(pod, &corev1.PodLogOptions{
		Container: container,
		TailLines: &tailLines,
		Previous:  previous,
	})
	stream, err := req.Stream(ctx)
	if err != nil {
		return "", clustererr.Wrap("logs", err)
	}
	defer stream.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return "", clustererr.Wrap("logs", err)
	}
	return buf.String(), nil
}

// TopPods/TopNodes implement spec §4.1 via the typed metrics clientset
// (k8s.io/metrics) instead of parsing `kubectl top` plain text — see
// SPEC_FULL.md §11.
func (c *liveClient) TopPods(ctx context.Context, namespace string) ([]TopSample, error) {
	var (
		list *metricsv1beta1.PodMetricsList
		err  error
	)
	if namespace == "" {
		list, err = c.bundle.Metrics.MetricsV1beta1().PodMetricses(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	} else {
		list, err = c.bundle.Metrics.MetricsV1beta1().PodMetricses(namespace).List(ctx, metav1.ListOptions{})
	}
	if err != nil {
		return nil, clustererr.Wrap("metrics-server", err)
	}
	out := make([]TopSample, 0, len(list.Items))
	for _, pm := range list.Items {
		var cpu, mem int64
		for _, c := range pm.Containers {
			cpu += c.Usage.Cpu().MilliValue()
			mem += c.Usage.Memory().Value()
		}
		out = append(out, TopSample{Namespace: pm.Namespace, Name: pm.Name, CPUMillicores: cpu, MemoryBytes: mem})
	}
	return out, nil
}

func (c *liveClient) TopNodes(ctx context.Context) ([]TopSample, error) {
	list, err := c.bundle.Metrics.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, clustererr.Wrap("metrics-server", err)
	}
	out := make([]TopSample, 0, len(list.Items))
	for _, nm := range list.Items {
		out = append(out, TopSample{
			Name:          nm.Name,
			CPUMillicores: nm.Usage.Cpu().MilliValue(),
			MemoryBytes:   nm.Usage.Memory().Value(),
		})
	}
	return out, nil
}

// RawGet implements spec §4.1's node-proxy passthrough, used by the
// Forecaster to reach a kubelet's Prometheus metrics endpoint
// (spec §4.3, §4.6).
func (c *liveClient) RawGet(ctx context.Context, path string) ([]byte, error) {
	data, err := c.bundle.REST.Get().AbsPath(path).DoRaw(ctx)
	if err != nil {
		return nil, clustererr.Wrap("node-proxy", err)
	}
	return data, nil
}

func artifact(kind, namespace, name string, obj any, err error) (Artifact, error) {
	if err != nil {
		return Artifact{}, clustererr.Wrap("cluster-api", err)
	}
	return Artifact{Kind: kind, Namespace: namespace, Name: name, Object: obj}, nil
}
