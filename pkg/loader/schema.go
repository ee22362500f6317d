package loader

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// EventEntity is a participant of an event record.
type EventEntity struct {
	Name string `json:"name" jsonschema:"required,minLength=1"`
}

// EventRecord documents the event record shape accepted by ParseEvents.
// Either Entities or EntitiesNames should be set.
type EventRecord struct {
	EventTitle           string         `json:"event_title,omitempty"`
	Entities             []EventEntity  `json:"entities,omitempty"`
	EntitiesNames        string         `json:"entities_names,omitempty" jsonschema:"description=Entity names separated by ';'"`
	EventClassifications map[string]any `json:"event_classifications,omitempty" jsonschema:"description=Category to a list of labels or to an object keyed by label"`
	Labels               []string       `json:"labels,omitempty"`
}

// TaxonomyLabelMeta is the metadata attached to one taxonomy label.
type TaxonomyLabelMeta struct {
	Sentiment *float64 `json:"sentiment,omitempty" jsonschema:"minimum=-10,maximum=10"`
}

// TaxonomyDocument documents the taxonomy shape accepted by ParseTaxonomy:
// category → label → metadata.
type TaxonomyDocument map[string]map[string]TaxonomyLabelMeta

// GenerateSchema creates a JSON Schema from the given Go type.
func GenerateSchema(value any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// EventsSchema returns the schema of an events document.
func EventsSchema() *jsonschema.Schema {
	return GenerateSchema([]EventRecord{})
}

// TaxonomySchema returns the schema of a taxonomy document.
func TaxonomySchema() *jsonschema.Schema {
	return GenerateSchema(TaxonomyDocument{})
}
