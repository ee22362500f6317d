package routes

import "github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"

var (
	eventsSchema   = loader.EventsSchema()
	taxonomySchema = loader.TaxonomySchema()
)
