// Package parser implements spec §4.3: deterministic, pure functions from
// raw cluster artifacts to typed model.ResourceRecord/model.EventRecord
// values. Parsers never touch the network; they are tolerant of unknown
// fields and missing optional sections.
package parser

import (
	"fmt"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

// ParseArtifact converts one raw Artifact into a ResourceRecord. Unknown
// kinds become model.KindGeneric and keep the original string in
// Properties["kind"] (spec §4.3).
func ParseArtifact(art clusterclient.Artifact) *model.ResourceRecord {
	kind := model.NormalizeKind(art.Kind)

	switch obj := art.Object.(type) {
	case *corev1.Pod:
		return parsePod(obj)
	case *appsv1.ReplicaSet:
		return parseReplicaSet(obj)
	case *appsv1.Deployment:
		return parseDeployment(obj)
	case *appsv1.StatefulSet:
		return parseStatefulSet(obj)
	case *appsv1.DaemonSet:
		return parseDaemonSet(obj)
	case *batchv1.Job:
		return parseJob(obj)
	case *corev1.Service:
		return parseService(obj)
	case *networkingv1.Ingress:
		return parseIngress(obj)
	case *corev1.ConfigMap:
		r := model.NewResourceRecord(model.KindConfigMap, obj.Namespace, obj.Name)
		r.Labels, r.Annotations = obj.Labels, obj.Annotations
		return r
	case *corev1.Secret:
		return parseSecret(obj)
	case *corev1.PersistentVolumeClaim:
		return parsePVC(obj)
	case *corev1.PersistentVolume:
		return parsePV(obj)
	case *corev1.Node:
		return parseNode(obj)
	case *autoscalingv2.HorizontalPodAutoscaler:
		return parseHPA(obj)
	case *networkingv1.NetworkPolicy:
		return parseNetworkPolicy(obj)
	case *corev1.Endpoints:
		r := model.NewResourceRecord(model.KindEndpoints, obj.Namespace, obj.Name)
		r.Labels, r.Annotations = obj.Labels, obj.Annotations
		return r
	case *unstructured.Unstructured:
		return parseGeneric(obj)
	default:
		r := model.NewResourceRecord(kind, art.Namespace, art.Name)
		return r
	}
}

func baseRecord(kind model.Kind, obj interface {
	GetNamespace() string
	GetName() string
}) *model.ResourceRecord {
	return model.NewResourceRecord(kind, obj.GetNamespace(), obj.GetName())
}

func conditionsFromPod(conds []corev1.PodCondition) []model.Condition {
	out := make([]model.Condition, 0, len(conds))
	for _, c := range conds {
		out = append(out, model.Condition{Type: string(c.Type), Status: string(c.Status), Reason: c.Reason, Message: c.Message})
	}
	return out
}

func parsePod(p *corev1.Pod) *model.ResourceRecord {
	r := model.NewResourceRecord(model.KindPod, p.Namespace, p.Name)
	r.Labels, r.Annotations = p.Labels, p.Annotations

	ready := false
	for _, c := range p.Status.Conditions {
		if c.Type == corev1.PodReady {
			ready = c.Status == corev1.ConditionTrue
		}
	}
	r.Status = model.StatusSummary{Phase: string(p.Status.Phase), Ready: ready, Conditions: conditionsFromPod(p.Status.Conditions)}

	statuses := make([]model.ContainerStatus, 0, len(p.Status.ContainerStatuses))
	for _, cs := range p.Status.ContainerStatuses {
		s := model.ContainerStatus{Name: cs.Name, Ready: cs.Ready, RestartCount: cs.RestartCount, Image: cs.Image}
		if cs.State.Waiting != nil {
			s.WaitingReason, s.WaitingMessage = cs.State.Waiting.Reason, cs.State.Waiting.Message
		}
		if cs.State.Terminated != nil {
			s.TerminatedReason, s.TerminatedExitCode = cs.State.Terminated.Reason, cs.State.Terminated.ExitCode
		}
		if cs.LastTerminationState.Terminated != nil {
			s.LastTerminatedReason = cs.LastTerminationState.Terminated.Reason
		}
		statuses = append(statuses, s)
	}
	r.Properties["containerStatuses"] = statuses
	r.Properties["nodeName"] = p.Spec.NodeName
	r.Properties["serviceAccount"] = p.Spec.ServiceAccountName
	r.Properties["ownerReferences"] = ownerRefNames(p.OwnerReferences)

	var configMaps, secrets, pvcs []string
	for _, v := range p.Spec.Volumes {
		if v.ConfigMap != nil {
			configMaps = append(configMaps, v.ConfigMap.Name)
		}
		if v.Secret != nil {
			secrets = append(secrets, v.Secret.SecretName)
		}
		if v.PersistentVolumeClaim != nil {
			pvcs = append(pvcs, v.PersistentVolumeClaim.ClaimName)
		}
	}
	for _, c := range p.Spec.Containers {
		for _, ef := range c.EnvFrom {
			if ef.ConfigMapRef != nil {
				configMaps = append(configMaps, ef.ConfigMapRef.Name)
			}
			if ef.SecretRef != nil {
				secrets = append(secrets, ef.SecretRef.Name)
			}
		}
		for _, e := range c.Env {
			if e.ValueFrom == nil {
				continue
			}
			if e.ValueFrom.ConfigMapKeyRef != nil {
				configMaps = append(configMaps, e.ValueFrom.ConfigMapKeyRef.Name)
			}
			if e.ValueFrom.SecretKeyRef != nil {
				secrets = append(secrets, e.ValueFrom.SecretKeyRef.Name)
			}
		}
	}
	r.Properties["mountsConfigMaps"] = dedupeStrings(configMaps)
	r.Properties["mountsSecrets"] = dedupeStrings(secrets)
	r.Properties["mountsPVCs"] = dedupeStrings(pvcs)
	return r
}

func parseReplicaSet(o *appsv1.ReplicaSet) *model.ResourceRecord {
	r := baseRecord(model.KindReplicaSet, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["ownerReferences"] = ownerRefNames(o.OwnerReferences)
	r.Properties["selector"] = selectorMap(o.Spec.Selector)
	r.Properties["replicas"] = o.Status.Replicas
	r.Properties["readyReplicas"] = o.Status.ReadyReplicas
	return r
}

func parseDeployment(o *appsv1.Deployment) *model.ResourceRecord {
	r := baseRecord(model.KindDeployment, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["selector"] = selectorMap(o.Spec.Selector)
	r.Properties["replicas"] = o.Status.Replicas
	r.Properties["readyReplicas"] = o.Status.ReadyReplicas
	r.Status.Conditions = deploymentConditions(o.Status.Conditions)
	return r
}

func deploymentConditions(conds []appsv1.DeploymentCondition) []model.Condition {
	out := make([]model.Condition, 0, len(conds))
	for _, c := range conds {
		out = append(out, model.Condition{Type: string(c.Type), Status: string(c.Status), Reason: c.Reason, Message: c.Message})
	}
	return out
}

func parseStatefulSet(o *appsv1.StatefulSet) *model.ResourceRecord {
	r := baseRecord(model.KindStatefulSet, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["selector"] = selectorMap(o.Spec.Selector)
	r.Properties["replicas"] = o.Status.Replicas
	r.Properties["readyReplicas"] = o.Status.ReadyReplicas
	return r
}

func parseDaemonSet(o *appsv1.DaemonSet) *model.ResourceRecord {
	r := baseRecord(model.KindDaemonSet, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["selector"] = selectorMap(o.Spec.Selector)
	r.Properties["desiredNumberScheduled"] = o.Status.DesiredNumberScheduled
	r.Properties["numberReady"] = o.Status.NumberReady
	return r
}

func parseJob(o *batchv1.Job) *model.ResourceRecord {
	r := baseRecord(model.KindJob, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	if o.Spec.Selector != nil {
		r.Properties["selector"] = selectorMap(o.Spec.Selector)
	}
	r.Properties["active"] = o.Status.Active
	r.Properties["failed"] = o.Status.Failed
	r.Properties["succeeded"] = o.Status.Succeeded
	return r
}

func parseService(o *corev1.Service) *model.ResourceRecord {
	r := baseRecord(model.KindService, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["selector"] = o.Spec.Selector
	return r
}

func parseIngress(o *networkingv1.Ingress) *model.ResourceRecord {
	r := baseRecord(model.KindIngress, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	var backends []string
	if o.Spec.DefaultBackend != nil && o.Spec.DefaultBackend.Service != nil {
		backends = append(backends, o.Spec.DefaultBackend.Service.Name)
	}
	for _, rule := range o.Spec.Rules {
		if rule.HTTP == nil {
			continue
		}
		for _, p := range rule.HTTP.Paths {
			if p.Backend.Service != nil {
				backends = append(backends, p.Backend.Service.Name)
			}
		}
	}
	r.Properties["backendServices"] = dedupeStrings(backends)
	var tlsSecrets []string
	for _, t := range o.Spec.TLS {
		if t.SecretName != "" {
			tlsSecrets = append(tlsSecrets, t.SecretName)
		}
	}
	r.Properties["tlsSecrets"] = dedupeStrings(tlsSecrets)
	return r
}

func parseSecret(o *corev1.Secret) *model.ResourceRecord {
	r := baseRecord(model.KindSecret, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["type"] = string(o.Type)
	if o.Type == corev1.SecretTypeTLS {
		if crt, ok := o.Data[corev1.TLSCertKey]; ok {
			r.Properties["tlsCertPEM"] = crt
		}
	}
	return r
}

func parsePVC(o *corev1.PersistentVolumeClaim) *model.ResourceRecord {
	r := baseRecord(model.KindPersistentVolumeClaim, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["volumeName"] = o.Spec.VolumeName
	r.Status = model.StatusSummary{Phase: string(o.Status.Phase)}
	if cap, ok := o.Status.Capacity[corev1.ResourceStorage]; ok {
		r.Properties["capacityBytes"] = cap.Value()
	}
	return r
}

func parsePV(o *corev1.PersistentVolume) *model.ResourceRecord {
	r := baseRecord(model.KindPersistentVolume, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Status = model.StatusSummary{Phase: string(o.Status.Phase)}
	if o.Spec.ClaimRef != nil {
		r.Properties["claimRef"] = o.Spec.ClaimRef.Name
	}
	return r
}

func parseNode(o *corev1.Node) *model.ResourceRecord {
	r := baseRecord(model.KindNode, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	conds := make([]model.Condition, 0, len(o.Status.Conditions))
	ready := false
	for _, c := range o.Status.Conditions {
		conds = append(conds, model.Condition{Type: string(c.Type), Status: string(c.Status), Reason: c.Reason, Message: c.Message})
		if c.Type == corev1.NodeReady {
			ready = c.Status == corev1.ConditionTrue
		}
	}
	r.Status = model.StatusSummary{Ready: ready, Conditions: conds}
	if cpu, ok := o.Status.Capacity[corev1.ResourceCPU]; ok {
		r.Properties["cpuCapacityMillis"] = cpu.MilliValue()
	}
	if mem, ok := o.Status.Capacity[corev1.ResourceMemory]; ok {
		r.Properties["memCapacityBytes"] = mem.Value()
	}
	return r
}

func parseHPA(o *autoscalingv2.HorizontalPodAutoscaler) *model.ResourceRecord {
	r := baseRecord(model.KindHorizontalPodAutoscaler, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["scaleTargetRefKind"] = o.Spec.ScaleTargetRef.Kind
	r.Properties["scaleTargetRefName"] = o.Spec.ScaleTargetRef.Name
	return r
}

func parseNetworkPolicy(o *networkingv1.NetworkPolicy) *model.ResourceRecord {
	r := baseRecord(model.KindNetworkPolicy, o)
	r.Labels, r.Annotations = o.Labels, o.Annotations
	r.Properties["podSelector"] = o.Spec.PodSelector.MatchLabels
	return r
}

// parseGeneric implements spec §4.3/§4.5's Generic/CRD fallback: kind is
// preserved verbatim and only status.conditions are extracted.
func parseGeneric(u *unstructured.Unstructured) *model.ResourceRecord {
	r := model.NewResourceRecord(model.KindGeneric, u.GetNamespace(), u.GetName())
	r.Labels, r.Annotations = u.GetLabels(), u.GetAnnotations()
	r.Properties["kind"] = u.GetKind()

	conds, _, _ := unstructured.NestedSlice(u.Object, "status", "conditions")
	out := make([]model.Condition, 0, len(conds))
	for _, raw := range conds {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, model.Condition{
			Type:    str(m["type"]),
			Status:  str(m["status"]),
			Reason:  str(m["reason"]),
			Message: str(m["message"]),
		})
	}
	r.Status = model.StatusSummary{Conditions: out}
	return r
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func ownerRefNames(refs []metav1.OwnerReference) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, fmt.Sprintf("%s/%s", ref.Kind, ref.Name))
	}
	return out
}

func selectorMap(sel *metav1.LabelSelector) map[string]string {
	if sel == nil {
		return nil
	}
	return sel.MatchLabels
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
