package routes

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/report"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/store"
)

func ListGraphsHandler(c echo.Context) error {
	type listGraphsResponse struct {
		Graphs []store.Summary `json:"graphs"`
	}

	graphs, err := appFrom(c).Store.ListGraphs(c.Request().Context())
	if err != nil {
		logger.Error("[Server] Failed to list graphs", "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, listGraphsResponse{Graphs: graphs})
}

// GetGraphHandler returns the filtered view of a stored graph. Node scores
// are those of the full graph; use RecomputeCentralityHandler to score the
// view itself.
func GetGraphHandler(c echo.Context) error {
	params, err := filterParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid filter parameters"})
	}

	snap, ok, err := loadSnapshot(c)
	if !ok {
		return err
	}

	view := graph.Filter(snap.Graph, params)
	resp := newGraphResponse(snap, view, snap.Warnings)
	resp.Components = snap.Graph.Components()
	resp.Filter = &params

	return c.JSON(http.StatusOK, resp)
}

// GetTopEntitiesHandler ranks the nodes of a stored graph by one measure.
func GetTopEntitiesHandler(c echo.Context) error {
	type topEntitiesResponse struct {
		Measure  report.Measure     `json:"measure"`
		Entities []report.EntityRow `json:"entities"`
	}

	measure, err := report.ParseMeasure(c.QueryParam("by"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	limit := report.DefaultTopLimit
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid limit"})
	}

	snap, ok, err := loadSnapshot(c)
	if !ok {
		return err
	}

	return c.JSON(http.StatusOK, topEntitiesResponse{
		Measure:  measure,
		Entities: report.TopEntities(snap.Graph, measure, limit),
	})
}

// GetCentralityCSVHandler streams the centrality table of a stored graph.
func GetCentralityCSVHandler(c echo.Context) error {
	snap, ok, err := loadSnapshot(c)
	if !ok {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", snap.ID+"_node_centralities.csv"))
	res.WriteHeader(http.StatusOK)

	return report.WriteCentralityCSV(res, snap.Graph)
}

// GetEventsSchemaHandler publishes the JSON Schema of accepted event records.
func GetEventsSchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, eventsSchema)
}

// GetTaxonomySchemaHandler publishes the JSON Schema of taxonomy documents.
func GetTaxonomySchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, taxonomySchema)
}
