package common

import "strings"

// Event is a single normalised event record. It names the entities that took
// part in the event and the classification labels the event carries.
//
// An Event is constructed once per input record via NewEvent and is never
// mutated afterwards:
//   - Entities: trimmed, deduplicated, non-empty names in first-seen order
//   - Labels: classification labels in the order they were declared
type Event struct {
	Title    string   `json:"title"`
	Entities []string `json:"entities"`
	Labels   []string `json:"labels"`
}

// NewEvent builds an Event from raw values. Entity names are trimmed and
// deduplicated; empty names are dropped. Labels are trimmed and empty labels
// dropped, but duplicates are kept so that repeated classification is
// reflected in sentiment averaging.
func NewEvent(title string, entities []string, labels []string) Event {
	seen := make(map[string]struct{}, len(entities))
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		name := strings.TrimSpace(e)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	cleanLabels := make([]string, 0, len(labels))
	for _, l := range labels {
		label := strings.TrimSpace(l)
		if label == "" {
			continue
		}
		cleanLabels = append(cleanLabels, label)
	}

	return Event{
		Title:    strings.TrimSpace(title),
		Entities: names,
		Labels:   cleanLabels,
	}
}

// Taxonomy maps classification labels to sentiment metadata. It keeps the
// declaration order of categories and labels so that lookups built from it
// are deterministic: when the same label is declared in several categories,
// the last declaration wins.
type Taxonomy struct {
	Categories []TaxonomyCategory `json:"categories"`
}

// TaxonomyCategory is a top-level taxonomy category and its labels.
type TaxonomyCategory struct {
	Name   string          `json:"name"`
	Labels []TaxonomyLabel `json:"labels"`
}

// TaxonomyLabel is a single classification label. Sentiment is nil when the
// label's metadata has no numeric sentiment field.
type TaxonomyLabel struct {
	Name      string   `json:"name"`
	Sentiment *float64 `json:"sentiment,omitempty"`
}

// LabelCount returns the number of labels declared across all categories.
func (t Taxonomy) LabelCount() int {
	n := 0
	for _, c := range t.Categories {
		n += len(c.Labels)
	}
	return n
}
