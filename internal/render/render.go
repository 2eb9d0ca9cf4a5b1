// Package render implements spec §4.7's Renderer: human (text/tree/table)
// and machine (versioned JSON envelope) output. Terminal capability
// detection is adapted from kcli's internal/terminal and internal/cli/ansi.go
// (golang.org/x/term + github.com/mattn/go-isatty for width/unicode/color
// detection).
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/srijanshukla18/kubectl-smart/internal/model"
	"github.com/srijanshukla18/kubectl-smart/internal/terminal"
)

// LineWidth is spec §4.7's default wrapping width.
const LineWidth = 100

// SchemaVersion is the structured-output envelope's schema_version
// (spec §6): "Field names are snake_case and additive across minor
// versions; removals are breaking."
const SchemaVersion = "1.0"

// Capabilities describes what the current terminal supports, grounded on
// kcli's terminal.ColorDisabled()/isatty checks.
type Capabilities struct {
	Unicode bool
	Color   bool
	Width   int
}

// Detect inspects the given file descriptor (normally os.Stdout) the way
// kcli's internal/terminal package does: isatty for color, term.GetSize for
// width, and a NO_COLOR/TERM=dumb check for explicit opt-out.
func Detect(f *os.File) Capabilities {
	fd := f.Fd()
	isTerminal := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	caps := Capabilities{Width: LineWidth}
	if !isTerminal {
		return caps
	}
	if !terminal.ColorDisabled() && os.Getenv("TERM") != "dumb" {
		caps.Color = true
	}
	caps.Unicode = os.Getenv("TERM") != "dumb" && os.Getenv("LANG") != "C"
	if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
		caps.Width = w
	}
	return caps
}

// Envelope is spec §6's versioned top-level structured output.
type Envelope struct {
	SchemaVersion string `json:"schema_version"`
	Command       string `json:"command"`
	GeneratedAt   string `json:"generated_at"`
	Subject       string `json:"subject"`
	Result        any    `json:"result"`
	Notes         []string `json:"notes"`
}

// WriteJSON marshals env as indented JSON to w.
func WriteJSON(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// WrapText performs column-aware wrapping at caps.Width (spec §4.7).
func WrapText(s string, width int) []string {
	if width <= 0 {
		width = LineWidth
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return lines
}

// SeverityGlyph renders a fixed ASCII/unicode marker for a severity, shared
// by the diag and graph human renderers.
func SeverityGlyph(sev model.Severity, caps Capabilities) string {
	if caps.Unicode {
		switch sev {
		case model.SeverityCritical:
			return "✖"
		case model.SeverityWarning:
			return "▲"
		default:
			return "✓"
		}
	}
	switch sev {
	case model.SeverityCritical:
		return "[CRIT]"
	case model.SeverityWarning:
		return "[WARN]"
	default:
		return "[ok]"
	}
}
