package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/srijanshukla18/kubectl-smart/internal/forecast"
)

// TopResult is the top command's structured output payload (spec §6):
// `result = { horizon_hours, capacity_warnings[], certificate_warnings[],
// notes[] }`.
type TopResult struct {
	HorizonHours int                            `json:"horizon_hours"`
	Capacity     []forecast.CapacityWarning     `json:"capacity_warnings"`
	Certificates []forecast.CertificateWarning  `json:"certificate_warnings"`
	Notes        []string                       `json:"notes"`
}

// BuildTopResult wraps a forecast.Result and its degradation notes as the
// structured top payload.
func BuildTopResult(r forecast.Result, notes []string) TopResult {
	return TopResult{HorizonHours: r.HorizonHours, Capacity: r.Capacity, Certificates: r.Certificates, Notes: notes}
}

// TopText renders spec §4.6/§4.7's capacity and certificate tables, with an
// explicit "no predictions" notice when neither analysis produced a row.
func TopText(w io.Writer, r forecast.Result, notes []string) {
	fmt.Fprintf(w, "Capacity forecast (horizon: %dh)\n", r.HorizonHours)
	if len(r.Capacity) == 0 {
		fmt.Fprintln(w, "  no predictions: no resource crossed the capacity threshold")
	} else {
		tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "  RESOURCE\tCURRENT\tPROJECTED\tSEVERITY\tACTION")
		for _, c := range r.Capacity {
			fmt.Fprintf(tw, "  %s\t%.1f%%\t%.1f%%\t%s\t%s\n", c.Resource, c.CurrentPercent, c.ProjectedPercent, c.Severity, c.Action)
		}
		tw.Flush()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Certificate expirations")
	if len(r.Certificates) == 0 {
		fmt.Fprintln(w, "  no predictions: no TLS secret expires within the warning window")
	} else {
		tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "  SECRET\tEXPIRES\tDAYS LEFT\tSEVERITY\tREFERENCED BY")
		for _, c := range r.Certificates {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\t%s\n", c.Secret, c.Expires.Format(time.RFC3339), c.DaysLeft, c.Severity, joinOrDash(c.ReferencedBy))
		}
		tw.Flush()
	}

	for _, n := range notes {
		fmt.Fprintf(w, "\nnote: %s\n", n)
	}
}

func joinOrDash(ss []string) string {
	if len(ss) == 0 {
		return "-"
	}
	out := ss[0]
	for _, s := range ss[1:] {
		out += ", " + s
	}
	return out
}
