package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/report"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/store"
)

type messageResponse struct {
	Message string `json:"message"`
}

type graphResponse struct {
	ID         string                  `json:"id"`
	Source     string                  `json:"source,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	EventCount int                     `json:"event_count"`
	Nodes      []graph.Node            `json:"nodes"`
	Edges      []report.ColoredEdge    `json:"edges"`
	Components []graph.ComponentResult `json:"components,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
	Filter     *graph.FilterParams     `json:"filter,omitempty"`
}

func newGraphResponse(snap store.Snapshot, g *graph.Graph, warnings []string) graphResponse {
	return graphResponse{
		ID:         snap.ID,
		Source:     snap.Source,
		CreatedAt:  snap.CreatedAt,
		EventCount: snap.EventCount,
		Nodes:      g.Nodes(),
		Edges:      report.DecorateEdges(g),
		Components: g.Components(),
		Warnings:   warnings,
	}
}

func appFrom(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

// loadSnapshot resolves the :id path parameter. On failure the response has
// already been written and ok is false.
func loadSnapshot(c echo.Context) (snap store.Snapshot, ok bool, err error) {
	id := c.Param("id")
	snap, err = appFrom(c).Store.GetGraph(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Snapshot{}, false, c.JSON(http.StatusNotFound, messageResponse{
			Message: "Graph not found",
		})
	}
	if err != nil {
		logger.Error("[Server] Failed to load graph", "id", id, "err", err)
		return store.Snapshot{}, false, c.JSON(http.StatusInternalServerError, messageResponse{
			Message: "Internal server error",
		})
	}
	return snap, true, nil
}

// filterParams reads min_weight, sentiment_low and sentiment_high from the
// query string on top of the defaults that keep every edge.
func filterParams(c echo.Context) (graph.FilterParams, error) {
	p := graph.DefaultFilterParams()
	err := echo.QueryParamsBinder(c).
		Int("min_weight", &p.MinWeight).
		Float64("sentiment_low", &p.SentimentLow).
		Float64("sentiment_high", &p.SentimentHigh).
		BindError()
	return p, err
}
