package scoring

import "strings"

// playbooks maps a known reason to its fixed suggested-actions template
// (spec §4.5: "a short, fixed playbook of 1-4 action strings ... MUST NOT
// fabricate resource-specific commands beyond templated parameters").
var playbooks = map[string][]string{
	"CrashLoopBackOff": {
		"inspect previous-container logs for ${name}/${container} in ${namespace}",
		"check entrypoint and readiness of ${name}'s dependencies",
		"check the container's last exit code",
	},
	"ImagePullBackOff": {
		"verify image reference and registry credentials for ${name}/${container}",
		"confirm the image tag exists and is reachable from the cluster's network",
	},
	"ErrImagePull": {
		"verify image reference and registry credentials for ${name}/${container}",
		"confirm the image tag exists and is reachable from the cluster's network",
	},
	"OOMKilled": {
		"raise the memory limit for ${name}/${container} or investigate a memory leak",
		"check recent memory usage trend for ${name}",
	},
	"FailedScheduling": {
		"check node capacity and resource requests for ${name}",
		"check for taints/tolerations and affinity rules blocking scheduling",
	},
	"FailedMount": {
		"verify the referenced ConfigMap/Secret/PVC exists in ${namespace}",
		"check volume permissions and storage class provisioning for ${name}",
	},
	"Unhealthy": {
		"inspect the readiness/liveness probe configuration for ${name}/${container}",
		"check probe target port and path are reachable",
	},
	"BackOff": {
		"inspect recent events and logs for ${name}",
	},
	"Evicted": {
		"check node pressure conditions at eviction time",
		"raise resource requests/limits for ${name} or adjust eviction thresholds",
	},
	"NodeNotReady": {
		"check kubelet health and node conditions for ${name}",
	},
	"NetworkNotReady": {
		"check CNI plugin health and node network configuration for ${name}",
	},
}

// SuggestedActions returns the playbook for reason with templated
// parameters substituted, or nil if reason is unknown.
func SuggestedActions(reason, namespace, name, container string) []string {
	actions, ok := playbooks[reason]
	if !ok {
		return nil
	}
	out := make([]string, len(actions))
	r := strings.NewReplacer("${namespace}", namespace, "${name}", name, "${container}", container)
	for i, a := range actions {
		out[i] = r.Replace(a)
	}
	return out
}
