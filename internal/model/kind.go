// Package model defines the data types the diagnostic pipeline operates on:
// ResourceKind, ResourceRecord, EventRecord and Issue (spec §3).
package model

// Kind is the closed enumeration of resource kinds the pipeline understands
// natively, plus Generic for everything else (CRDs and unrecognized kinds).
type Kind string

const (
	KindPod                     Kind = "Pod"
	KindReplicaSet              Kind = "ReplicaSet"
	KindDeployment              Kind = "Deployment"
	KindStatefulSet             Kind = "StatefulSet"
	KindDaemonSet               Kind = "DaemonSet"
	KindJob                     Kind = "Job"
	KindService                 Kind = "Service"
	KindIngress                 Kind = "Ingress"
	KindConfigMap               Kind = "ConfigMap"
	KindSecret                  Kind = "Secret"
	KindPersistentVolumeClaim   Kind = "PersistentVolumeClaim"
	KindPersistentVolume        Kind = "PersistentVolume"
	KindNode                    Kind = "Node"
	KindHorizontalPodAutoscaler Kind = "HorizontalPodAutoscaler"
	KindNetworkPolicy           Kind = "NetworkPolicy"
	KindEndpoints               Kind = "Endpoints"
	KindEndpointSlice           Kind = "EndpointSlice"
	KindServiceAccount          Kind = "ServiceAccount"
	KindGeneric                 Kind = "Generic"
)

var knownKinds = map[string]Kind{
	"pod":                     KindPod,
	"replicaset":              KindReplicaSet,
	"deployment":              KindDeployment,
	"statefulset":             KindStatefulSet,
	"daemonset":               KindDaemonSet,
	"job":                     KindJob,
	"service":                 KindService,
	"ingress":                 KindIngress,
	"configmap":               KindConfigMap,
	"secret":                  KindSecret,
	"persistentvolumeclaim":   KindPersistentVolumeClaim,
	"persistentvolume":        KindPersistentVolume,
	"node":                    KindNode,
	"horizontalpodautoscaler": KindHorizontalPodAutoscaler,
	"networkpolicy":           KindNetworkPolicy,
	"endpoints":               KindEndpoints,
	"endpointslice":           KindEndpointSlice,
	"serviceaccount":          KindServiceAccount,
}

// NormalizeKind maps an arbitrary kind string (as it appears in a manifest's
// `kind` field, case-insensitively) to a known Kind, or KindGeneric when it
// isn't recognized. The original string is never lost by the caller: parsers
// store it in ResourceRecord.Properties["kind"] for the Generic case.
func NormalizeKind(raw string) Kind {
	if k, ok := knownKinds[lower(raw)]; ok {
		return k
	}
	return KindGeneric
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// IsController reports whether kind is one of the workload-controller kinds
// the ScoringEngine applies the "scope" modifier to (spec §4.5).
func IsController(k Kind) bool {
	switch k {
	case KindDeployment, KindStatefulSet, KindDaemonSet, KindReplicaSet, KindJob:
		return true
	default:
		return false
	}
}
