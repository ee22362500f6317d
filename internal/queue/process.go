package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/metrics"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/pipeline"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/timing"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/util"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/report"
)

// ErrInvalidMessage marks messages that can never succeed.
var ErrInvalidMessage = errors.New("invalid build message")

const (
	uploadTries   = 3
	uploadBackoff = 500 * time.Millisecond
	resultTopN    = 10
)

// BuildMessage requests a graph build from two objects in the bucket.
type BuildMessage struct {
	CorrelationID string              `json:"correlation_id" validate:"required"`
	EventsKey     string              `json:"events_key" validate:"required"`
	TaxonomyKey   string              `json:"taxonomy_key" validate:"required"`
	Filter        *graph.FilterParams `json:"filter,omitempty"`
}

// BuildResult is published on ResultTopic after a successful build.
type BuildResult struct {
	CorrelationID string             `json:"correlation_id"`
	Status        string             `json:"status"`
	Nodes         int                `json:"nodes"`
	Edges         int                `json:"edges"`
	Components    int                `json:"components"`
	Warnings      []string           `json:"warnings,omitempty"`
	ExportKey     string             `json:"export_key"`
	DownloadURL   string             `json:"download_url,omitempty"`
	Top           []report.EntityRow `json:"top"`
}

// Worker processes build messages.
//
// NewSources returns the loader for one message; loaders cache what they
// read, so each message gets a fresh one. DownloadLink presigns the export
// key and is optional.
type Worker struct {
	Pipeline     *pipeline.Pipeline
	NewSources   func() loader.GraphFileLoader
	Exports      storage.ObjectPutter
	Bucket       string
	ExportPrefix string
	Results      Channel
	DownloadLink func(ctx context.Context, key string) (string, error)

	validate *validator.Validate
}

// DecodeBuildMessage parses and validates a message body.
func (w *Worker) DecodeBuildMessage(body []byte) (BuildMessage, error) {
	var msg BuildMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return BuildMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if w.validate == nil {
		w.validate = validator.New()
	}
	if err := w.validate.Struct(msg); err != nil {
		return BuildMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return msg, nil
}

// ProcessBuildMessage loads both inputs, builds and scores the graph, uploads
// the centrality CSV and publishes a BuildResult. Any returned error leaves
// the message unacknowledged by this function; the caller routes it.
func (w *Worker) ProcessBuildMessage(ctx context.Context, body []byte) error {
	msg, err := w.DecodeBuildMessage(body)
	if err != nil {
		return err
	}

	logger.Info("[Queue] Processing build", "correlation_id", msg.CorrelationID)

	sources := w.NewSources()
	eventsFile := loader.NewGraphEventsFile(loader.NewGraphFileParams{
		ID:       msg.CorrelationID,
		FilePath: msg.EventsKey,
		Loader:   sources,
	})
	taxonomyFile := loader.NewGraphTaxonomyFile(loader.NewGraphFileParams{
		ID:       msg.CorrelationID,
		FilePath: msg.TaxonomyKey,
		Loader:   sources,
	})

	snap, err := w.Pipeline.RunFiles(ctx, pipeline.OriginQueue, msg.EventsKey, eventsFile, taxonomyFile)
	if err != nil {
		if loader.IsInvalidDocument(err) {
			return fmt.Errorf("%w: build %s: %w", ErrInvalidMessage, msg.CorrelationID, err)
		}
		return fmt.Errorf("build %s: %w", msg.CorrelationID, err)
	}

	g, warnings := snap.Graph, snap.Warnings
	if msg.Filter != nil {
		g, warnings = w.Pipeline.Recompute(graph.Filter(g, *msg.Filter))
	}

	key := storage.ExportKey(w.ExportPrefix, msg.CorrelationID)
	if err := w.upload(ctx, key, g); err != nil {
		return err
	}

	result := BuildResult{
		CorrelationID: msg.CorrelationID,
		Status:        "ok",
		Nodes:         g.NodeCount(),
		Edges:         g.EdgeCount(),
		Components:    len(g.Components()),
		Warnings:      warnings,
		ExportKey:     key,
		Top:           report.TopEntities(g, report.MeasureDegree, resultTopN),
	}
	if len(warnings) > 0 {
		result.Status = "partial"
	}
	if w.DownloadLink != nil {
		link, err := w.DownloadLink(ctx, key)
		if err != nil {
			logger.Warn("[Queue] Failed to generate download link", "key", key, "err", err)
		} else {
			result.DownloadURL = link
		}
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode build result: %w", err)
	}
	if err := util.RetryErrWithContext(ctx, uploadTries, uploadBackoff, func(ctx context.Context) error {
		return PublishTopic(w.Results, ResultTopic, data)
	}); err != nil {
		return fmt.Errorf("failed to publish build result: %w", err)
	}

	logger.Info(
		"[Queue] Build published",
		"correlation_id", msg.CorrelationID,
		"nodes", result.Nodes,
		"edges", result.Edges,
		"status", result.Status,
	)
	return nil
}

func (w *Worker) upload(ctx context.Context, key string, g *graph.Graph) error {
	done := timing.Track(timing.StageExport)
	defer done()

	var buf bytes.Buffer
	if err := report.WriteCentralityCSV(&buf, g); err != nil {
		return fmt.Errorf("failed to write centrality csv: %w", err)
	}
	raw := buf.Bytes()

	return util.RetryErrWithContext(ctx, uploadTries, uploadBackoff, func(ctx context.Context) error {
		return storage.PutExport(ctx, w.Exports, w.Bucket, key, bytes.NewReader(raw))
	})
}

// Ack acknowledges a processed message and counts it.
func Ack(msg interface{ Ack(multiple bool) error }, queueName string) {
	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
		return
	}
	metrics.QueueMessagesTotal.WithLabelValues(queueName, string(OutcomeAck)).Inc()
}
