package loader

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
)

type GraphFileType string

const (
	GraphFileTypeEvents   GraphFileType = "events"
	GraphFileTypeTaxonomy GraphFileType = "taxonomy"
)

// GraphFile represents an input document for a graph build: either the raw
// event collection or the label taxonomy.
//
// The actual file content is retrieved via the associated GraphFileLoader.
type GraphFile struct {
	ID       string
	FilePath string
	FileType GraphFileType
	Loader   GraphFileLoader
}

// NewGraphFileParams defines the input parameters for creating a new GraphFile
// instance.
type NewGraphFileParams struct {
	ID       string
	FilePath string
	Loader   GraphFileLoader
}

// NewGraphEventsFile creates a new GraphFile of type GraphFileTypeEvents.
func NewGraphEventsFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeEvents,
		Loader:   params.Loader,
	}
}

// NewGraphTaxonomyFile creates a new GraphFile of type GraphFileTypeTaxonomy.
func NewGraphTaxonomyFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: GraphFileTypeTaxonomy,
		Loader:   params.Loader,
	}
}

// GetContent retrieves the raw bytes of the file using its Loader.
//
// Example:
//
//	raw, err := file.GetContent(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	events, err := loader.ParseEvents(raw)
func (f *GraphFile) GetContent(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, fmt.Errorf("no loader configured for %s", f.FilePath)
	}
	return f.Loader.GetFileContent(ctx, *f)
}

// GraphFileLoader defines the interface for loading the contents of a GraphFile.
// Implementations may load files from disk, cloud storage, or other sources.
type GraphFileLoader interface {
	GetFileContent(ctx context.Context, file GraphFile) ([]byte, error)
}

// CacheKey returns the key loaders use to cache file content.
func CacheKey(file GraphFile) string {
	return fmt.Sprintf("%s:%s:%s", file.FileType, file.ID, file.FilePath)
}

// LoadEvents fetches and parses an events file.
func LoadEvents(ctx context.Context, file GraphFile) ([]common.Event, error) {
	raw, err := file.GetContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events %s: %w", file.FilePath, err)
	}
	events, err := ParseEvents(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events %s: %w", file.FilePath, err)
	}
	return events, nil
}

// LoadTaxonomy fetches and parses a taxonomy file.
func LoadTaxonomy(ctx context.Context, file GraphFile) (common.Taxonomy, error) {
	raw, err := file.GetContent(ctx)
	if err != nil {
		return common.Taxonomy{}, fmt.Errorf("failed to load taxonomy %s: %w", file.FilePath, err)
	}
	taxonomy, err := ParseTaxonomy(raw)
	if err != nil {
		return common.Taxonomy{}, fmt.Errorf("failed to parse taxonomy %s: %w", file.FilePath, err)
	}
	return taxonomy, nil
}
