// Package collector implements the fan-out retrieval layer named in
// spec §4.2: thin, per-command artifact gatherers that know *what* to fetch
// for a subject, bounded by per-call and per-run deadlines, tolerant of
// partial failure. Grounded on kubilitics-backend's
// internal/addon/rbac.PermissionChecker.CheckPermissions, which runs a
// bounded-concurrency fan-out over a semaphore channel with
// golang.org/x/sync/errgroup — the same shape this package generalizes to
// artifact collection.
package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"

	"golang.org/x/sync/errgroup"

	"github.com/srijanshukla18/kubectl-smart/internal/clustererr"
	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
)

// Subject identifies the resource anchoring a run (spec GLOSSARY: "Subject").
type Subject struct {
	Kind      string
	Namespace string
	Name      string
}

// PartialError is a non-fatal collection failure, attached to the run's
// notes[] channel (spec §7) instead of aborting the pipeline.
type PartialError struct {
	Source string
	Kind   clustererr.Kind
	Err    error
}

func (p PartialError) String() string {
	return fmt.Sprintf("%s: %s: %v", p.Source, p.Kind, p.Err)
}

// Result is everything a Collect call gathered for a subject: raw artifacts
// grouped by a caller-defined tag (e.g. "subject", "children", "events"),
// plus any partial errors encountered along the way.
type Result struct {
	Artifacts map[string][]clusterclient.Artifact
	Partial   []PartialError
}

func newResult() *Result {
	return &Result{Artifacts: map[string][]clusterclient.Artifact{}}
}

func (r *Result) add(tag string, arts []clusterclient.Artifact) {
	r.Artifacts[tag] = append(r.Artifacts[tag], arts...)
}

func (r *Result) note(source string, err error) {
	if err == nil {
		return
	}
	r.Partial = append(r.Partial, PartialError{Source: source, Kind: clustererr.KindOf(err), Err: err})
}

// Deadlines bundles the per-call and per-run deadlines (spec §4.2, §5).
type Deadlines struct {
	PerCall    time.Duration
	PerRun     time.Duration
	Concurrency int
}

// DefaultDeadlines matches spec §6's documented defaults.
func DefaultDeadlines() Deadlines {
	return Deadlines{PerCall: time.Second, PerRun: 3 * time.Second, Concurrency: 5}
}

// task is one bounded unit of work submitted to the semaphore-gated pool.
type task struct {
	tag string
	run func(ctx context.Context) ([]clusterclient.Artifact, error)
}

// run executes tasks concurrently, capped at dl.Concurrency in flight,
// each bounded by dl.PerCall, the whole batch bounded by dl.PerRun. Forbidden
// is downgraded to a partial error and the source skipped (spec §4.2); every
// other error is also collected as partial — only the caller decides whether
// a specific tag's absence is fatal (e.g. the subject's own Get).
func run(ctx context.Context, dl Deadlines, tasks []task, result *Result) {
	runCtx, cancel := context.WithTimeout(ctx, dl.PerRun)
	defer cancel()

	sem := make(chan struct{}, maxInt(1, dl.Concurrency))
	g, gctx := errgroup.WithContext(runCtx)

	type outcome struct {
		tag  string
		arts []clusterclient.Artifact
		err  error
	}
	outcomes := make(chan outcome, len(tasks))

	for _, t := range tasks {
		t := t
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				outcomes <- outcome{tag: t.tag, err: gctx.Err()}
				return nil
			}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(gctx, dl.PerCall)
			defer cancel()
			arts, err := t.run(callCtx)
			outcomes <- outcome{tag: t.tag, arts: arts, err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.err != nil {
			result.note(o.tag, o.err)
			continue
		}
		result.add(o.tag, o.arts)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// tailForRestarts applies spec §4.2's "previous-container logs when
// restartCount > 0" policy per container.
func tailForRestarts(restartCount int32) bool { return restartCount > 0 }

// DiagCollect implements spec §4.2's diag collector set: Get, Describe,
// Events (filtered to the involvedObject family), Logs per container
// (tail=100; previous when restarted). For controller kinds it also lists
// every Pod in the subject's namespace as candidate children; owner
// references and label selectors are not used to narrow that list.
func DiagCollect(ctx context.Context, cc clusterclient.ClusterClient, subj Subject, dl Deadlines) *Result {
	result := newResult()

	if err := preflightGet(ctx, cc, subj.Kind, subj.Namespace); err != nil {
		result.note("subject", err)
		return result
	}

	art, err := cc.Get(ctx, subj.Kind, subj.Namespace, subj.Name)
	if err != nil {
		result.note("subject", err)
		return result
	}
	result.add("subject", []clusterclient.Artifact{art})

	tasks := []task{
		{tag: "describe", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
			text, err := cc.Describe(ctx, subj.Kind, subj.Namespace, subj.Name)
			if err != nil {
				return nil, err
			}
			return []clusterclient.Artifact{{Kind: "Describe", Namespace: subj.Namespace, Name: subj.Name, Object: text}}, nil
		}},
		{tag: "events", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
			return cc.Events(ctx, subj.Namespace, map[string]string{
				"involvedObject.name": subj.Name,
				"involvedObject.kind": subj.Kind,
			})
		}},
	}

	if isController(subj.Kind) {
		tasks = append(tasks, task{tag: "children", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
			return cc.ListNamespaced(ctx, "Pod", subj.Namespace)
		}})
	}

	if subj.Kind == "Pod" {
		tasks = append(tasks, logTasksForPod(cc, subj.Namespace, subj.Name, art)...)
	}

	run(ctx, dl, tasks, result)

	if isController(subj.Kind) {
		for _, pod := range childPods(result, subj) {
			tasks := logTasksForPod(cc, pod.Namespace, pod.Name, pod)
			tasks = append(tasks, task{tag: "pod-events", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
				return cc.Events(ctx, pod.Namespace, map[string]string{
					"involvedObject.name": pod.Name,
					"involvedObject.kind": "Pod",
				})
			}})
			run(ctx, dl, tasks, result)
		}
	}

	return result
}

// logTasksForPod builds one Logs task per container named in the pod
// artifact, respecting the tail=100/previous-on-restart rule.
func logTasksForPod(cc clusterclient.ClusterClient, namespace, name string, podArtifact clusterclient.Artifact) []task {
	containers, restarts := containerNamesAndRestarts(podArtifact)
	if len(containers) == 0 {
		containers = []string{""}
		restarts = map[string]int32{"": 0}
	}
	tasks := make([]task, 0, len(containers))
	for _, c := range containers {
		c := c
		previous := tailForRestarts(restarts[c])
		tasks = append(tasks, task{tag: "logs", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
			text, err := cc.Logs(ctx, namespace, name, c, 100, previous)
			if err != nil {
				return nil, err
			}
			return []clusterclient.Artifact{{Kind: "Log", Namespace: namespace, Name: name + "/" + c, Object: text}}, nil
		}})
	}
	return tasks
}

// containerNamesAndRestarts reads a Pod artifact's spec/status directly
// (the typed *corev1.Pod client-go already gave us) rather than waiting for
// the parser stage — collectors need this to decide which logs to fetch.
func containerNamesAndRestarts(art clusterclient.Artifact) ([]string, map[string]int32) {
	pod, ok := art.Object.(*corev1.Pod)
	if !ok || pod == nil {
		return nil, nil
	}
	var names []string
	restarts := map[string]int32{}
	for _, c := range pod.Spec.Containers {
		names = append(names, c.Name)
	}
	for _, cs := range pod.Status.ContainerStatuses {
		restarts[cs.Name] = cs.RestartCount
	}
	return names, restarts
}

func childPods(result *Result, subj Subject) []clusterclient.Artifact {
	var out []clusterclient.Artifact
	for _, a := range result.Artifacts["children"] {
		if a.Namespace == subj.Namespace {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GraphCollect implements spec §4.2's graph collector set: the subject plus
// candidate neighbors in the namespace sufficient to resolve every edge rule
// in spec §4.4.
func GraphCollect(ctx context.Context, cc clusterclient.ClusterClient, subj Subject, dl Deadlines) *Result {
	result := newResult()

	if err := preflightGet(ctx, cc, subj.Kind, subj.Namespace); err != nil {
		result.note("subject", err)
		return result
	}

	art, err := cc.Get(ctx, subj.Kind, subj.Namespace, subj.Name)
	if err != nil {
		result.note("subject", err)
		return result
	}
	result.add("subject", []clusterclient.Artifact{art})

	kinds := []string{
		"Pod", "ReplicaSet", "Deployment", "StatefulSet", "DaemonSet", "Job",
		"Service", "Ingress", "ConfigMap", "Secret", "PersistentVolumeClaim",
		"PersistentVolume", "Node", "HorizontalPodAutoscaler", "NetworkPolicy",
		"Endpoints",
	}
	tasks := make([]task, 0, len(kinds))
	for _, k := range kinds {
		k := k
		tasks = append(tasks, task{tag: "neighbors", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
			ns := subj.Namespace
			if k == "Node" || k == "PersistentVolume" {
				ns = ""
			}
			return cc.ListNamespaced(ctx, k, ns)
		}})
	}
	run(ctx, dl, tasks, result)
	return result
}

// TopCollect implements spec §4.2's top collector set: every Pod/PVC/
// Service/Ingress/Secret in the namespace, Node status, and metrics.
func TopCollect(ctx context.Context, cc clusterclient.ClusterClient, namespace string, dl Deadlines) *Result {
	result := newResult()

	kinds := []string{"Pod", "PersistentVolumeClaim", "Service", "Ingress", "Secret"}
	tasks := make([]task, 0, len(kinds)+3)
	for _, k := range kinds {
		k := k
		tasks = append(tasks, task{tag: k, run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
			return cc.ListNamespaced(ctx, k, namespace)
		}})
	}
	tasks = append(tasks, task{tag: "Node", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
		return cc.ListNamespaced(ctx, "Node", "")
	}})
	tasks = append(tasks, task{tag: "top-pods", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
		samples, err := cc.TopPods(ctx, namespace)
		if err != nil {
			return nil, err
		}
		return topSamplesToArtifacts("Pod", samples), nil
	}})
	tasks = append(tasks, task{tag: "top-nodes", run: func(ctx context.Context) ([]clusterclient.Artifact, error) {
		samples, err := cc.TopNodes(ctx)
		if err != nil {
			return nil, err
		}
		return topSamplesToArtifacts("Node", samples), nil
	}})

	run(ctx, dl, tasks, result)
	return result
}

func topSamplesToArtifacts(kind string, samples []clusterclient.TopSample) []clusterclient.Artifact {
	out := make([]clusterclient.Artifact, 0, len(samples))
	for _, s := range samples {
		out = append(out, clusterclient.Artifact{Kind: "TopSample:" + kind, Namespace: s.Namespace, Name: s.Name, Object: s})
	}
	return out
}

func isController(kind string) bool {
	switch kind {
	case "Deployment", "StatefulSet", "DaemonSet", "Job", "ReplicaSet":
		return true
	default:
		return false
	}
}

// preflightGet runs spec §7's "kubectl auth can-i" pre-flight before the
// subject fetch: a confirmed RBAC denial turns into a Forbidden partial
// error without spending a round trip on the Get call that would only
// fail the same way. CanI itself erroring (older clusters, disabled
// SelfSubjectAccessReview) is not fatal — the real Get call still runs and
// reports its own outcome.
func preflightGet(ctx context.Context, cc clusterclient.ClusterClient, kind, namespace string) error {
	allowed, err := cc.CanI(ctx, "get", resourceNameForKind(kind), namespace)
	if err != nil || allowed {
		return nil
	}
	return clustererr.New(clustererr.KindForbidden, "preflight", fmt.Errorf("RBAC denies get on %s in namespace %q", resourceNameForKind(kind), namespace))
}

var irregularResourceNames = map[string]string{
	"Ingress":       "ingresses",
	"NetworkPolicy": "networkpolicies",
}

// resourceNameForKind approximates a kind's plural API resource name for
// CanI/remediation text. It does not need to be authoritative — it is only
// ever used as the "resource" argument of a human-facing can-i check/hint,
// never for routing an actual API call.
func resourceNameForKind(kind string) string {
	if plural, ok := irregularResourceNames[kind]; ok {
		return plural
	}
	return strings.ToLower(kind) + "s"
}
