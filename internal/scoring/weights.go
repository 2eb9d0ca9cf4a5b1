// Package scoring implements spec §4.5's ScoringEngine: a heuristic,
// configuration-driven, deterministic classifier that turns records+events
// into Issues, applies modifiers, and selects a root cause.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultWeights are spec §4.5's illustrative default base scores, used
// when no weights file is configured or the file is absent.
func DefaultWeights() map[string]int {
	return map[string]int{
		"CrashLoopBackOff": 90,
		"ImagePullBackOff": 85,
		"ErrImagePull":     85,
		"OOMKilled":        90,
		"FailedScheduling": 80,
		"FailedMount":      75,
		"Unhealthy":        60,
		"BackOff":          55,
		"Evicted":          85,
		"NodeNotReady":     85,
		"NetworkNotReady":  85,
	}
}

// weightsFile is the on-disk schema for scoring.weights_file (spec §6):
// "Keyed by reason string, value is integer score in [0,100]."
type weightsFile struct {
	Weights yaml.Node `yaml:"weights"`
}

// LoadWeights reads a YAML weights table from path, validating spec §6's
// "duplicate keys on load are a fatal configuration error" and out-of-range
// rejection (§4.5, §9). An empty path returns DefaultWeights.
func LoadWeights(path string) (map[string]int, error) {
	if path == "" {
		return DefaultWeights(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultWeights(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading weights file: %w", err)
	}

	var doc weightsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing weights file: %w", err)
	}
	return decodeWeightsNode(doc.Weights)
}

// decodeWeightsNode walks the raw yaml.Node mapping directly (rather than
// unmarshaling into a map[string]int) because Go's yaml.v3 map decoding
// silently lets a later duplicate key overwrite an earlier one — the
// schema-validation requirement in spec §6/§9 needs to see and reject the
// duplicate, so the table is parsed from the Node's Content pairs.
func decodeWeightsNode(node yaml.Node) (map[string]int, error) {
	if node.Kind == 0 {
		return map[string]int{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("weights file: \"weights\" must be a mapping of reason to score")
	}

	out := map[string]int{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("weights file: duplicate key %q", key)
		}
		var score int
		if err := valNode.Decode(&score); err != nil {
			return nil, fmt.Errorf("weights file: key %q: %w", key, err)
		}
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("weights file: key %q: score %d out of range [0,100]", key, score)
		}
		out[key] = score
	}
	return out, nil
}
