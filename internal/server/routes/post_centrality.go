package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
)

// RecomputeCentralityHandler scores the filtered view of a stored graph from
// scratch. The filter is read from the query string like GetGraphHandler;
// fields of an optional JSON body override it. The stored snapshot keeps its
// own scores.
func RecomputeCentralityHandler(c echo.Context) error {
	params, err := filterParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid filter parameters"})
	}
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid filter parameters"})
	}

	snap, ok, err := loadSnapshot(c)
	if !ok {
		return err
	}

	scored, warnings := appFrom(c).Pipeline.Recompute(graph.Filter(snap.Graph, params))
	resp := newGraphResponse(snap, scored, warnings)
	resp.Filter = &params

	return c.JSON(http.StatusOK, resp)
}
