package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/metrics"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/timing"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/store"
)

// Origin labels where a build request came from.
type Origin string

const (
	OriginHTTP  Origin = "http"
	OriginS3    Origin = "s3"
	OriginQueue Origin = "queue"
	OriginFile  Origin = "file"
)

const (
	statusOK      = "ok"
	statusPartial = "partial"
	statusError   = "error"
)

// Pipeline runs load, build and centrality for one input pair and keeps the
// result in a GraphStorage when one is configured.
type Pipeline struct {
	client *graph.GraphClient
	store  store.GraphStorage
}

// New creates a Pipeline. storage may be nil, in which case snapshots are
// returned without being stored.
func New(client *graph.GraphClient, storage store.GraphStorage) *Pipeline {
	return &Pipeline{client: client, store: storage}
}

// Client returns the graph client used for builds.
func (p *Pipeline) Client() *graph.GraphClient {
	return p.client
}

// LoadInputs fetches and parses the events and taxonomy files concurrently.
func (p *Pipeline) LoadInputs(ctx context.Context, eventsFile, taxonomyFile loader.GraphFile) ([]common.Event, common.Taxonomy, error) {
	done := timing.Track(timing.StageLoad)
	defer done()

	var (
		events   []common.Event
		taxonomy common.Taxonomy
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = loader.LoadEvents(gCtx, eventsFile)
		return err
	})
	g.Go(func() error {
		var err error
		taxonomy, err = loader.LoadTaxonomy(gCtx, taxonomyFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, common.Taxonomy{}, err
	}

	return events, taxonomy, nil
}

// RunFiles loads both inputs and runs the build on them.
func (p *Pipeline) RunFiles(ctx context.Context, origin Origin, source string, eventsFile, taxonomyFile loader.GraphFile) (store.Snapshot, error) {
	events, taxonomy, err := p.LoadInputs(ctx, eventsFile, taxonomyFile)
	if err != nil {
		metrics.GraphBuildsTotal.WithLabelValues(string(origin), statusError).Inc()
		return store.Snapshot{}, err
	}
	return p.Run(ctx, origin, source, events, taxonomy)
}

// Run builds the co-occurrence graph, computes its centrality and stores the
// snapshot. Eigenvector failures of single components are not fatal: they
// are returned as snapshot warnings and the affected nodes stay tagged.
func (p *Pipeline) Run(ctx context.Context, origin Origin, source string, events []common.Event, taxonomy common.Taxonomy) (store.Snapshot, error) {
	doneBuild := timing.Track(timing.StageBuild)
	g := p.client.BuildGraph(events, taxonomy)
	doneBuild()

	doneCentrality := timing.Track(timing.StageCentrality)
	scored, centralityErr := p.client.ComputeCentrality(g)
	doneCentrality()

	warnings := Warnings(centralityErr)
	observeGraph(scored)

	snap := store.Snapshot{
		Source:     source,
		EventCount: len(events),
		Graph:      scored,
		Warnings:   warnings,
	}

	if p.store != nil {
		saved, err := p.store.SaveGraph(ctx, snap)
		if err != nil {
			metrics.GraphBuildsTotal.WithLabelValues(string(origin), statusError).Inc()
			return store.Snapshot{}, fmt.Errorf("failed to store graph: %w", err)
		}
		snap = saved
		if list, err := p.store.ListGraphs(ctx); err == nil {
			metrics.StoredSnapshots.Set(float64(len(list)))
		}
	}

	status := statusOK
	if len(warnings) > 0 {
		status = statusPartial
	}
	metrics.GraphBuildsTotal.WithLabelValues(string(origin), status).Inc()

	logger.Info(
		"[Pipeline] Graph build finished",
		"id", snap.ID,
		"origin", origin,
		"source", source,
		"status", status,
	)

	return snap, nil
}

// Recompute scores an existing view again. It is only ever called on
// explicit request; filtering alone never recomputes centrality.
func (p *Pipeline) Recompute(g *graph.Graph) (*graph.Graph, []string) {
	done := timing.Track(timing.StageCentrality)
	scored, err := p.client.ComputeCentrality(g)
	done()
	return scored, Warnings(err)
}

func observeGraph(g *graph.Graph) {
	metrics.GraphNodes.Observe(float64(g.NodeCount()))
	metrics.GraphEdges.Observe(float64(g.EdgeCount()))
	for _, c := range g.Components() {
		metrics.EigenvectorComponents.WithLabelValues(string(c.Method)).Inc()
	}
}

// Warnings flattens a centrality error into one message per failed
// component.
func Warnings(err error) []string {
	if err == nil {
		return nil
	}

	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	out := make([]string, 0, len(errs))
	for _, e := range errs {
		var ce *graph.ComponentError
		if errors.As(e, &ce) {
			out = append(out, fmt.Sprintf("eigenvector centrality unavailable for %s", ce.Error()))
			continue
		}
		out = append(out, e.Error())
	}
	return out
}
