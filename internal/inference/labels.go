package inference

import "strings"

// Labels holds the fields of a labeled-line model answer ("Label: value" per
// line). Older prompt revisions used this convention instead of JSON output;
// it survives as the tolerant fallback when a model ignores the JSON
// instruction. Lookups are case-insensitive and missing labels are simply
// absent — parsing never fails.
type Labels map[string]string

// ParseLabels scans text for "Label: value" lines. Lines without a colon are
// ignored; repeated labels keep the first occurrence.
func ParseLabels(text string) Labels {
	labels := make(Labels)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, seen := labels[key]; seen {
			continue
		}
		labels[key] = strings.TrimSpace(value)
	}
	return labels
}

// Get returns the value for label, or "" when absent.
func (l Labels) Get(label string) string {
	return l[strings.ToLower(label)]
}

// GetBool interprets the label's value as a yes/no answer.
func (l Labels) GetBool(label string) bool {
	switch strings.ToLower(l.Get(label)) {
	case "yes", "true", "y":
		return true
	}
	return false
}

// GetList splits a comma-separated value into trimmed, non-empty items.
// An absent label yields an empty list, never nil-panics downstream.
func (l Labels) GetList(label string) []string {
	raw := l.Get(label)
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
