package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/srijanshukla18/kubectl-smart/internal/forecast"
)

func TestBuildTopResult_CarriesNotes(t *testing.T) {
	r := forecast.Result{HorizonHours: 24}
	out := BuildTopResult(r, []string{"limited signals: node metrics unavailable"})
	assert.Equal(t, 24, out.HorizonHours)
	assert.Equal(t, []string{"limited signals: node metrics unavailable"}, out.Notes)
}

func TestTopText_NoPredictionsNotice(t *testing.T) {
	var buf bytes.Buffer
	TopText(&buf, forecast.Result{HorizonHours: 24}, nil)

	out := buf.String()
	assert.Contains(t, out, "no predictions: no resource crossed the capacity threshold")
	assert.Contains(t, out, "no predictions: no TLS secret expires within the warning window")
}

func TestTopText_RendersWarningsAndNotes(t *testing.T) {
	r := forecast.Result{
		HorizonHours: 24,
		Capacity: []forecast.CapacityWarning{
			{Resource: "Node/node-1/cpu", CurrentPercent: 95, ProjectedPercent: 97, Severity: "Critical", Action: "scale up"},
		},
		Certificates: []forecast.CertificateWarning{
			{Secret: "Secret/prod/checkout-tls", Expires: time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC), DaysLeft: 3, Severity: "Critical", Action: "renew"},
		},
	}

	var buf bytes.Buffer
	TopText(&buf, r, []string{"limited signals: kubelet metrics unavailable"})

	out := buf.String()
	assert.Contains(t, out, "Node/node-1/cpu")
	assert.Contains(t, out, "checkout-tls")
	assert.Contains(t, out, "note: limited signals: kubelet metrics unavailable")
}
