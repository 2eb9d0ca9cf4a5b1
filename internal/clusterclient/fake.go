package clusterclient

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/srijanshukla18/kubectl-smart/internal/clustererr"
)

// Fake is an in-memory ClusterClient used by package tests throughout the
// core (collector, orchestrator, scoring, forecast) so they never need a
// live cluster or the fake clientset's full typed surface.
type Fake struct {
	mu sync.Mutex

	Context string

	Objects  map[string][]Artifact // key: kind
	EventsFn func(namespace string, filter map[string]string) ([]Artifact, error)
	LogsFn   func(namespace, pod, container string, tail int, previous bool) (string, error)
	TopPodsFn  func(namespace string) ([]TopSample, error)
	TopNodesFn func() ([]TopSample, error)
	RawGetFn   func(path string) ([]byte, error)
	CanIFn     func(verb, resource, namespace string) (bool, error)

	// Errs lets a test force a specific kind's List/Get to fail, keyed by
	// kind, to exercise the collector's failure-policy branches.
	Errs map[string]error
}

// NewFake returns an empty Fake ready for Objects to be populated directly.
func NewFake(context string) *Fake {
	return &Fake{Context: context, Objects: map[string][]Artifact{}, Errs: map[string]error{}}
}

func (f *Fake) Add(a Artifact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[a.Kind] = append(f.Objects[a.Kind], a)
}

func (f *Fake) CurrentContext() string { return f.Context }

func (f *Fake) ListNamespaced(ctx context.Context, kind, namespace string) ([]Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.Errs[kind]; ok && err != nil {
		return nil, err
	}
	var out []Artifact
	for _, a := range f.Objects[kind] {
		if namespace == "" || a.Namespace == namespace {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *Fake) Get(ctx context.Context, kind, namespace, name string) (Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.Errs[kind]; ok && err != nil {
		return Artifact{}, err
	}
	for _, a := range f.Objects[kind] {
		if a.Namespace == namespace && a.Name == name {
			return a, nil
		}
	}
	return Artifact{}, clustererr.New(clustererr.KindNotFound, "fake", fmt.Errorf("%s %q not found", kind, name))
}

func (f *Fake) Describe(ctx context.Context, kind, namespace, name string) (string, error) {
	a, err := f.Get(ctx, kind, namespace, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Name:\t%s\nNamespace:\t%s\nKind:\t%s\n", a.Name, a.Namespace, a.Kind), nil
}

func (f *Fake) Events(ctx context.Context, namespace string, filter map[string]string) ([]Artifact, error) {
	if f.EventsFn != nil {
		return f.EventsFn(namespace, filter)
	}
	return f.ListNamespaced(ctx, "Event", namespace)
}

func (f *Fake) Logs(ctx context.Context, namespace, pod, container string, tail int, previous bool) (string, error) {
	if f.LogsFn != nil {
		return f.LogsFn(namespace, pod, container, tail, previous)
	}
	return "", nil
}

func (f *Fake) TopPods(ctx context.Context, namespace string) ([]TopSample, error) {
	if f.TopPodsFn != nil {
		return f.TopPodsFn(namespace)
	}
	return nil, nil
}

func (f *Fake) TopNodes(ctx context.Context) ([]TopSample, error) {
	if f.TopNodesFn != nil {
		return f.TopNodesFn()
	}
	return nil, nil
}

func (f *Fake) RawGet(ctx context.Context, path string) ([]byte, error) {
	if f.RawGetFn != nil {
		return f.RawGetFn(path)
	}
	return nil, clustererr.New(clustererr.KindUnavailable, "fake", fmt.Errorf("no RawGet handler registered for %s", path))
}

func (f *Fake) CanI(ctx context.Context, verb, resource, namespace string) (bool, error) {
	if f.CanIFn != nil {
		return f.CanIFn(verb, resource, namespace)
	}
	return true, nil
}

var _ ClusterClient = (*Fake)(nil)
