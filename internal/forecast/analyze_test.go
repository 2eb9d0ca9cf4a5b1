package forecast

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srijanshukla18/kubectl-smart/internal/clusterclient"
	"github.com/srijanshukla18/kubectl-smart/internal/model"
)

func selfSignedCertPEM(t *testing.T, notAfter time.Time) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func TestAnalyzeCertificates_WarnsWithinWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Analyzer{Cache: NewCache(t.TempDir(), "test"), Now: func() time.Time { return now }}

	secret := model.NewResourceRecord(model.KindSecret, "prod", "checkout-tls")
	secret.Properties["tlsCertPEM"] = selfSignedCertPEM(t, now.Add(3*24*time.Hour))

	ingress := model.NewResourceRecord(model.KindIngress, "prod", "checkout-ing")
	ingress.Properties["tlsSecrets"] = []string{"checkout-tls"}

	warnings := a.AnalyzeCertificates([]*model.ResourceRecord{secret}, []*model.ResourceRecord{ingress})
	require.Len(t, warnings, 1)
	assert.Equal(t, "Critical", warnings[0].Severity) // <=3 days left
	assert.Equal(t, []string{"Ingress/prod/checkout-ing"}, warnings[0].ReferencedBy)
}

func TestAnalyzeCertificates_OutsideWindowIsSkipped(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Analyzer{Cache: NewCache(t.TempDir(), "test"), Now: func() time.Time { return now }}

	secret := model.NewResourceRecord(model.KindSecret, "prod", "checkout-tls")
	secret.Properties["tlsCertPEM"] = selfSignedCertPEM(t, now.Add(90*24*time.Hour))

	warnings := a.AnalyzeCertificates([]*model.ResourceRecord{secret}, nil)
	assert.Empty(t, warnings)
}

func TestAnalyzeCapacity_NodePressureIsAlwaysCritical(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Analyzer{Cache: NewCache(t.TempDir(), "test"), Now: func() time.Time { return now }}

	node := model.NewResourceRecord(model.KindNode, "", "node-1")
	node.Status.Conditions = []model.Condition{{Type: "DiskPressure", Status: "True"}}

	fake := clusterclient.NewFake("test")
	warnings, _ := a.AnalyzeCapacity(context.Background(), fake, "prod", nil, []*model.ResourceRecord{node}, time.Hour)

	require.Len(t, warnings, 1)
	assert.Equal(t, "Critical", warnings[0].Severity)
}

func TestAnalyzeCapacity_NoWarningWhenBelowThreshold(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Analyzer{Cache: NewCache(t.TempDir(), "test"), Now: func() time.Time { return now }}

	node := model.NewResourceRecord(model.KindNode, "", "node-1")
	node.Properties["cpuCapacityMillis"] = int64(4000)
	node.Properties["memCapacityBytes"] = int64(8 << 30)

	fake := clusterclient.NewFake("test")
	fake.TopNodesFn = func() ([]clusterclient.TopSample, error) {
		return []clusterclient.TopSample{{Name: "node-1", CPUMillicores: 400, MemoryBytes: 1 << 30}}, nil
	}

	warnings, notes := a.AnalyzeCapacity(context.Background(), fake, "prod", nil, []*model.ResourceRecord{node}, time.Hour)
	assert.Empty(t, warnings)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "limited signals")
}

func TestAnalyzeCapacity_WarnsAboveNinetyPercent(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Analyzer{Cache: NewCache(t.TempDir(), "test"), Now: func() time.Time { return now }}

	node := model.NewResourceRecord(model.KindNode, "", "node-1")
	node.Properties["cpuCapacityMillis"] = int64(1000)

	fake := clusterclient.NewFake("test")
	fake.TopNodesFn = func() ([]clusterclient.TopSample, error) {
		return []clusterclient.TopSample{{Name: "node-1", CPUMillicores: 950}}, nil
	}

	warnings, _ := a.AnalyzeCapacity(context.Background(), fake, "prod", nil, []*model.ResourceRecord{node}, time.Hour)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Critical", warnings[0].Severity)
	assert.Equal(t, "Node/node-1/cpu", warnings[0].Resource)
}

// TestAnalyzeCapacity_PVCAtNinetyThreePercentIsCritical reproduces seed
// scenario E: a PVC at used=950Mi, capacity=1Gi (~93%) must be Critical, not
// Warning, since current utilization is already over the 90% threshold.
func TestAnalyzeCapacity_PVCAtNinetyThreePercentIsCritical(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Analyzer{Cache: NewCache(t.TempDir(), "test"), Now: func() time.Time { return now }}

	node := model.NewResourceRecord(model.KindNode, "", "node-1")
	pvc := model.NewResourceRecord(model.KindPersistentVolumeClaim, "prod", "fillpvc")

	const metrics = `# HELP kubelet_volume_stats_used_bytes Number of used bytes in the volume
# TYPE kubelet_volume_stats_used_bytes gauge
kubelet_volume_stats_used_bytes{namespace="prod",persistentvolumeclaim="fillpvc"} 996147200
# HELP kubelet_volume_stats_capacity_bytes Capacity in bytes of the volume
# TYPE kubelet_volume_stats_capacity_bytes gauge
kubelet_volume_stats_capacity_bytes{namespace="prod",persistentvolumeclaim="fillpvc"} 1073741824
`
	fake := clusterclient.NewFake("test")
	fake.RawGetFn = func(path string) ([]byte, error) {
		return []byte(metrics), nil
	}

	warnings, _ := a.AnalyzeCapacity(context.Background(), fake, "prod", []*model.ResourceRecord{pvc}, []*model.ResourceRecord{node}, time.Hour)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Critical", warnings[0].Severity)
	assert.InDelta(t, 92.77, warnings[0].CurrentPercent, 0.1)
	assert.Equal(t, float64(0), warnings[0].HoursToThreshold, "already over threshold")
	assert.Equal(t, "PersistentVolumeClaim/prod/fillpvc", warnings[0].Resource)
}
