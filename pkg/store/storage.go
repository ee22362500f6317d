package store

import (
	"context"
	"errors"
	"time"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
)

// ErrNotFound is returned when no snapshot has the requested ID.
var ErrNotFound = errors.New("graph snapshot not found")

// Snapshot is a built and scored graph kept for later views.
//
// Graph always carries centrality scores; Warnings lists the component
// failures reported while computing them.
type Snapshot struct {
	ID         string
	Source     string
	CreatedAt  time.Time
	EventCount int
	Graph      *graph.Graph
	Warnings   []string
}

// Summary is the listing view of a snapshot.
type Summary struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	EventCount int       `json:"event_count"`
	Nodes      int       `json:"nodes"`
	Edges      int       `json:"edges"`
	Warnings   int       `json:"warnings"`
}

// Summary returns the listing view of s.
func (s Snapshot) Summary() Summary {
	out := Summary{
		ID:         s.ID,
		Source:     s.Source,
		CreatedAt:  s.CreatedAt,
		EventCount: s.EventCount,
		Warnings:   len(s.Warnings),
	}
	if s.Graph != nil {
		out.Nodes = s.Graph.NodeCount()
		out.Edges = s.Graph.EdgeCount()
	}
	return out
}

// GraphStorage keeps graph snapshots between requests. Implementations must
// be safe for concurrent use. Stored graphs are treated as read-only: views
// are derived with graph.Filter and graph.ComputeCentrality, which copy.
type GraphStorage interface {
	// SaveGraph stores s, assigning ID and CreatedAt when empty, and
	// returns the stored snapshot.
	SaveGraph(ctx context.Context, s Snapshot) (Snapshot, error)
	GetGraph(ctx context.Context, id string) (Snapshot, error)
	ListGraphs(ctx context.Context) ([]Summary, error)
	DeleteGraph(ctx context.Context, id string) error
}
