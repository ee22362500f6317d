package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/metrics"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/store"
)

func DeleteGraphHandler(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	s := appFrom(c).Store

	err := s.DeleteGraph(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Graph not found"})
	}
	if err != nil {
		logger.Error("[Server] Failed to delete graph", "id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
	if list, err := s.ListGraphs(ctx); err == nil {
		metrics.StoredSnapshots.Set(float64(len(list)))
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Graph deleted"})
}
