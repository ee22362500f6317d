package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyInput is returned for blank documents.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidShape is returned when a document parses as JSON but has
	// the wrong top-level type.
	ErrInvalidShape = errors.New("unexpected document shape")
	// ErrInvalidJSON is returned when a document cannot be repaired into
	// valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON document")
)

// IsInvalidDocument reports whether err comes from the content of a
// document rather than from reading it. Loading the same document again
// fails the same way.
func IsInvalidDocument(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrInvalidShape) ||
		errors.Is(err, ErrInvalidJSON)
}

// entity names in flat records are joined with this separator
const flatEntitySeparator = ";"

// normalizeJSON returns a valid JSON document, repairing it when needed.
func normalizeJSON(data []byte) (string, error) {
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", ErrEmptyInput
	}
	if gjson.Valid(input) {
		return input, nil
	}

	repaired, err := jsonrepair.JSONRepair(stripDuplicateLeadingBrace(input))
	if err != nil {
		return "", fmt.Errorf("%w: repair failed: %v", ErrInvalidJSON, err)
	}
	if !gjson.Valid(repaired) {
		return "", fmt.Errorf("%w: still invalid after repair", ErrInvalidJSON)
	}
	logger.Debug("[Loader] Repaired malformed JSON input", "bytes", len(input))
	return repaired, nil
}

func stripDuplicateLeadingBrace(s string) string {
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// ParseEvents decodes a raw event collection. The document is a list whose
// items are event objects or lists of event objects (event groups), or a
// single event object. Records are read leniently:
//
//   - title from "event_title" or "title"
//   - entities from "entities" (objects with "name", or plain strings), or
//     from "entities_names" split on ';'
//   - labels from "event_classifications" (or "classifications"), a mapping
//     of category to a list of labels or to an object whose keys are labels,
//     or from a flat "labels" list
//
// Items that are not objects are skipped. A document that is not an array or
// object yields ErrInvalidShape.
func ParseEvents(data []byte) ([]common.Event, error) {
	doc, err := normalizeJSON(data)
	if err != nil {
		return nil, err
	}

	root := gjson.Parse(doc)
	var events []common.Event
	skipped := 0

	switch {
	case root.IsArray():
		root.ForEach(func(_, item gjson.Result) bool {
			switch {
			case item.IsObject():
				events = append(events, parseEvent(item))
			case item.IsArray():
				item.ForEach(func(_, inner gjson.Result) bool {
					if inner.IsObject() {
						events = append(events, parseEvent(inner))
					} else {
						skipped++
					}
					return true
				})
			default:
				skipped++
			}
			return true
		})
	case root.IsObject():
		events = append(events, parseEvent(root))
	default:
		return nil, fmt.Errorf("%w: events must be a list or an object", ErrInvalidShape)
	}

	if skipped > 0 {
		logger.Warn("[Loader] Skipped non-object event records", "skipped", skipped)
	}

	return events, nil
}

func parseEvent(rec gjson.Result) common.Event {
	title := rec.Get("event_title")
	if !title.Exists() {
		title = rec.Get("title")
	}

	var entities []string
	if list := rec.Get("entities"); list.IsArray() {
		list.ForEach(func(_, ent gjson.Result) bool {
			switch {
			case ent.IsObject():
				if name := ent.Get("name"); name.Type == gjson.String {
					entities = append(entities, name.String())
				}
			case ent.Type == gjson.String:
				entities = append(entities, ent.String())
			}
			return true
		})
	} else if flat := rec.Get("entities_names"); flat.Type == gjson.String {
		entities = strings.Split(flat.String(), flatEntitySeparator)
	}

	var labels []string
	classifications := rec.Get("event_classifications")
	if !classifications.Exists() {
		classifications = rec.Get("classifications")
	}
	if classifications.IsObject() {
		classifications.ForEach(func(_, types gjson.Result) bool {
			labels = append(labels, labelsOf(types)...)
			return true
		})
	}
	if flat := rec.Get("labels"); flat.IsArray() {
		labels = append(labels, labelsOf(flat)...)
	}

	return common.NewEvent(title.String(), entities, labels)
}

// labelsOf reads a list of label strings or the keys of a label mapping.
func labelsOf(v gjson.Result) []string {
	var out []string
	switch {
	case v.IsArray():
		v.ForEach(func(_, l gjson.Result) bool {
			if l.Type == gjson.String {
				out = append(out, l.String())
			}
			return true
		})
	case v.IsObject():
		v.ForEach(func(key, _ gjson.Result) bool {
			out = append(out, key.String())
			return true
		})
	case v.Type == gjson.String:
		out = append(out, v.String())
	}
	return out
}

// ParseTaxonomy decodes a taxonomy document: an object mapping each
// top-level category to an object that maps labels to metadata. Metadata
// with a numeric "sentiment" field gives the label a sentiment; other
// metadata keeps the label without one. Document order is preserved.
func ParseTaxonomy(data []byte) (common.Taxonomy, error) {
	doc, err := normalizeJSON(data)
	if err != nil {
		return common.Taxonomy{}, err
	}

	root := gjson.Parse(doc)
	if !root.IsObject() {
		return common.Taxonomy{}, fmt.Errorf("%w: taxonomy must be an object", ErrInvalidShape)
	}

	var taxonomy common.Taxonomy
	root.ForEach(func(category, sub gjson.Result) bool {
		cat := common.TaxonomyCategory{Name: category.String()}
		if sub.IsObject() {
			sub.ForEach(func(label, meta gjson.Result) bool {
				l := common.TaxonomyLabel{Name: label.String()}
				if s := meta.Get("sentiment"); meta.IsObject() && s.Type == gjson.Number {
					v := s.Float()
					l.Sentiment = &v
				}
				cat.Labels = append(cat.Labels, l)
				return true
			})
		}
		taxonomy.Categories = append(taxonomy.Categories, cat)
		return true
	})

	return taxonomy, nil
}
