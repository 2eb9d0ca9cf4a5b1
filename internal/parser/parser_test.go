package parser

import (
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

func TestParseArtifact_Pod(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "prod", Name: "checkout-abc"},
		Spec: corev1.PodSpec{
			NodeName:           "node-1",
			ServiceAccountName: "checkout-sa",
			Volumes: []corev1.Volume{
				{VolumeSource: corev1.VolumeSource{ConfigMap: &corev1.ConfigMapVolumeSource{LocalObjectReference: corev1.LocalObjectReference{Name: "app-config"}}}},
				{VolumeSource: corev1.VolumeSource{Secret: &corev1.SecretVolumeSource{SecretName: "app-tls"}}},
			},
		},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: corev1.ConditionFalse},
			},
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Name: "app",
					State: corev1.ContainerState{
						Waiting: &corev1.ContainerStateWaiting{Reason: "CrashLoopBackOff", Message: "back-off restarting failed container"},
					},
					RestartCount: 4,
				},
			},
		},
	}

	r := ParseArtifact(clusterclient.Artifact{Kind: "Pod", Namespace: "prod", Name: "checkout-abc", Object: pod})

	require.NotNil(t, r)
	assert.Equal(t, model.KindPod, r.Kind)
	assert.Equal(t, "node-1", r.Properties["nodeName"])
	assert.Equal(t, "checkout-sa", r.Properties["serviceAccount"])
	assert.Equal(t, []string{"app-config"}, r.Properties["mountsConfigMaps"])
	assert.Equal(t, []string{"app-tls"}, r.Properties["mountsSecrets"])
	assert.False(t, r.Status.Ready)

	statuses := r.ContainerStatuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, "CrashLoopBackOff", statuses[0].WaitingReason)
	assert.Equal(t, int32(4), statuses[0].RestartCount)
}

func TestParseArtifact_UnknownKindBecomesGeneric(t *testing.T) {
	u := &unstructured.Unstructured{Object: map[string]interface{}{
		"kind": "WidgetCRD",
		"metadata": map[string]interface{}{
			"namespace": "prod",
			"name":      "my-widget",
		},
		"status": map[string]interface{}{
			"conditions": []interface{}{
				map[string]interface{}{"type": "Ready", "status": "False", "reason": "Pending"},
			},
		},
	}}

	r := ParseArtifact(clusterclient.Artifact{Kind: "WidgetCRD", Namespace: "prod", Name: "my-widget", Object: u})

	require.NotNil(t, r)
	assert.Equal(t, model.KindGeneric, r.Kind)
	assert.Equal(t, "WidgetCRD", r.Properties["kind"])
	require.Len(t, r.Status.Conditions, 1)
	assert.Equal(t, "Pending", r.Status.Conditions[0].Reason)
}

func TestParseArtifact_SecretExtractsTLSCertOnlyForTLSType(t *testing.T) {
	tlsSecret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: "prod", Name: "checkout-tls"},
		Type:       corev1.SecretTypeTLS,
		Data:       map[string][]byte{corev1.TLSCertKey: []byte("cert-bytes")},
	}
	opaqueSecret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: "prod", Name: "checkout-opaque"},
		Type:       corev1.SecretTypeOpaque,
		Data:       map[string][]byte{"password": []byte("hunter2")},
	}

	rTLS := ParseArtifact(clusterclient.Artifact{Kind: "Secret", Object: tlsSecret})
	rOpaque := ParseArtifact(clusterclient.Artifact{Kind: "Secret", Object: opaqueSecret})

	assert.Equal(t, []byte("cert-bytes"), rTLS.Properties["tlsCertPEM"])
	assert.Nil(t, rOpaque.Properties["tlsCertPEM"])
}
