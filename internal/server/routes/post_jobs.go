package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
)

// EnqueueBuildHandler hands a build over to the worker. The result is
// published on the result topic under the returned correlation id.
func EnqueueBuildHandler(c echo.Context) error {
	type enqueueResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	data := new(queue.BuildMessage)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, enqueueResponse{Message: "Invalid request body"})
	}
	if data.CorrelationID == "" {
		id, err := gonanoid.New()
		if err != nil {
			logger.Error("[Server] Failed to generate correlation id", "err", err)
			return c.JSON(http.StatusInternalServerError, enqueueResponse{Message: "Internal server error"})
		}
		data.CorrelationID = id
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, enqueueResponse{Message: "Invalid request body"})
	}

	ch := appFrom(c).Queue
	if ch == nil {
		return c.JSON(http.StatusServiceUnavailable, enqueueResponse{Message: "Queue is not configured"})
	}

	body, err := json.Marshal(data)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, enqueueResponse{Message: "Internal server error"})
	}
	if err := queue.PublishFIFO(ch, queue.BuildQueue, body); err != nil {
		logger.Error("[Server] Failed to enqueue build", "err", err)
		return c.JSON(http.StatusServiceUnavailable, enqueueResponse{Message: "Failed to enqueue build"})
	}

	return c.JSON(http.StatusAccepted, enqueueResponse{
		Message:       "Build queued",
		CorrelationID: data.CorrelationID,
	})
}
