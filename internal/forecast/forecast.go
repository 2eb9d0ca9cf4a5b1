// Package forecast implements spec §4.6's Forecaster: capacity trend
// analysis and certificate-expiry scanning over a configurable horizon.
package forecast

import (
	"math"
	"time"
)

// CapacityWarning is one row of the top command's capacity table
// (spec §4.6, §6).
type CapacityWarning struct {
	Resource        string
	CurrentPercent  float64
	ProjectedPercent float64
	HoursToThreshold float64
	Severity        string
	Action          string
}

// CertificateWarning is one row of the top command's certificate table.
type CertificateWarning struct {
	Secret        string
	Expires       time.Time
	DaysLeft      int
	ReferencedBy  []string
	Severity      string
	Action        string
}

// Result is the Forecaster's output for one `top` run.
type Result struct {
	HorizonHours int
	Capacity     []CapacityWarning
	Certificates []CertificateWarning
	Notes        []string
}

// Sample is one (timestamp, value) observation used by the trend methods
// (spec §4.6).
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// ClampHorizon enforces spec §6's [1,168] bound.
func ClampHorizon(hours int) int {
	if hours < 1 {
		return 1
	}
	if hours > 168 {
		return 168
	}
	return hours
}

// Project selects the trend method: ≥7 samples uses Holt's double
// exponential smoothing (level and trend; no seasonal component, so not
// triple smoothing); ≥2 uses linear regression;
// fewer than 2 yields "insufficient data" (ok=false).
func Project(samples []Sample, horizon time.Duration) (projected float64, ok bool, method string) {
	if len(samples) >= 7 {
		return holtWinters(samples, horizon), true, "holt-winters"
	}
	if len(samples) >= 2 {
		return linearRegression(samples, horizon), true, "linear-regression"
	}
	return 0, false, ""
}

// linearRegression fits value = a + b*t (t in seconds since the first
// sample) and projects forward by horizon.
func linearRegression(samples []Sample, horizon time.Duration) float64 {
	t0 := samples[0].Timestamp
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		x := s.Timestamp.Sub(t0).Seconds()
		y := s.Value
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return samples[len(samples)-1].Value
	}
	b := (n*sumXY - sumX*sumY) / denom
	a := (sumY - b*sumX) / n
	lastX := samples[len(samples)-1].Timestamp.Sub(t0).Seconds() + horizon.Seconds()
	return a + b*lastX
}

// holtWinters implements a simple additive-trend Holt exponential
// smoothing (double exponential smoothing) over the sample sequence,
// projected horizon forward, with fixed smoothing constants. Seasonality is
// not estimated: there is no seasonal term, so despite the function's name
// this is not triple (Holt-Winters) exponential smoothing.
func holtWinters(samples []Sample, horizon time.Duration) float64 {
	const alpha, beta = 0.5, 0.3
	level := samples[0].Value
	trend := samples[1].Value - samples[0].Value
	for i := 1; i < len(samples); i++ {
		prevLevel := level
		level = alpha*samples[i].Value + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}
	stepSeconds := averageStepSeconds(samples)
	if stepSeconds <= 0 {
		return level
	}
	steps := horizon.Seconds() / stepSeconds
	return level + trend*steps
}

func averageStepSeconds(samples []Sample) float64 {
	if len(samples) < 2 {
		return 0
	}
	total := samples[len(samples)-1].Timestamp.Sub(samples[0].Timestamp).Seconds()
	return total / float64(len(samples)-1)
}

// percent is a small helper shared by capacity analysis call sites.
func percent(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Min(100, 100*used/total)
}

// daysUntil implements spec §8 invariant 7: days_left =
// floor((notAfter - now) / 1 day).
func daysUntil(notAfter, now time.Time) int {
	return int(math.Floor(notAfter.Sub(now).Hours() / 24))
}
