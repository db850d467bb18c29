// Package codec converts boundary and weight stores to and from portable
// payloads. A payload is a mapping from metric identifier to value, written
// as JSON or YAML. Decoding accepts either form and is best effort: every
// entry is validated on its own, valid entries are kept and the rest are
// listed in a Report.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"gopkg.in/yaml.v3"
)

// ErrMalformedPayload is returned when a payload is not a mapping at all.
// Nothing of such a payload is applied.
var ErrMalformedPayload = errors.New("malformed payload")

// Format selects the encoding of an exported payload.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. "yml" is accepted as an alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q: must be json or yaml", s)
	}
}

// Report describes the outcome of decoding a payload.
type Report struct {
	Applied  []models.MetricID  `json:"applied"`
	Rejected []rating.Rejection `json:"rejected"`
}

// Err returns a *rating.ConfigValidationError listing the malformed entries
// of the payload, or nil. Unknown identifiers are reported but do not count
// as failures.
func (r Report) Err() error {
	var bad []rating.Rejection
	for _, rej := range r.Rejected {
		if !rej.Unknown {
			bad = append(bad, rej)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return &rating.ConfigValidationError{Rejected: bad}
}

func (r *Report) reject(key, reason string, unknown bool) {
	r.Rejected = append(r.Rejected, rating.Rejection{Metric: key, Reason: reason, Unknown: unknown})
	if unknown {
		slog.Warn("Dropping unknown metric from payload", "metric", key)
	} else {
		slog.Warn("Rejecting payload entry", "metric", key, "reason", reason)
	}
}

type entry struct {
	key   string
	value any
}

// parseEntries reads the top-level mapping of a payload, keeping the order
// in which entries appear.
func parseEntries(data []byte) ([]entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedPayload)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		if trimmed[0] == '{' {
			return parseJSONEntries(trimmed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping of metric identifiers", ErrMalformedPayload)
	}

	entries := make([]entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		var value any
		if err := root.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrMalformedPayload, root.Content[i].Value, err)
		}
		entries = append(entries, entry{key: root.Content[i].Value, value: value})
	}
	return entries, nil
}

// parseJSONEntries handles JSON documents the YAML parser refuses, such as
// tab-indented ones. Key order is not preserved, so entries are sorted.
func parseJSONEntries(data []byte) ([]entry, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, entry{key: k, value: m[k]})
	}
	return entries, nil
}

// lookup resolves the metric of an entry, rejecting unknown and repeated
// identifiers.
func lookup(r *Report, seen map[models.MetricID]bool, key string) (models.MetricID, bool) {
	id, err := models.ParseMetricID(key)
	if err != nil {
		r.reject(key, "unknown metric identifier", true)
		return 0, false
	}
	if seen[id] {
		r.reject(key, "duplicate entry", false)
		return 0, false
	}
	seen[id] = true
	return id, true
}

// encode writes values in catalog order. JSON output is indented with
// spaces so that it stays valid YAML.
func encode(ids []models.MetricID, value func(models.MetricID) any, format Format, flow bool) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		m := make(map[string]any, len(ids))
		for _, id := range ids {
			m[id.String()] = value(id)
		}
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		root := &yaml.Node{Kind: yaml.MappingNode}
		for _, id := range ids {
			var v yaml.Node
			if err := v.Encode(value(id)); err != nil {
				return nil, fmt.Errorf("encoding %s: %w", id, err)
			}
			if flow {
				v.Style = yaml.FlowStyle
			}
			root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: id.String()}, &v)
		}
		if len(root.Content) == 0 {
			root.Style = yaml.FlowStyle
		}
		return yaml.Marshal(root)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
