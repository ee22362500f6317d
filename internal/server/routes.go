package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api")

	// Input schemas
	apiRoutes.GET("/schema/events", routes.GetEventsSchemaHandler)
	apiRoutes.GET("/schema/taxonomy", routes.GetTaxonomySchemaHandler)

	// Graph routes
	apiRoutes.GET("/graphs", routes.ListGraphsHandler)
	apiRoutes.POST("/graphs", routes.CreateGraphHandler)
	apiRoutes.POST("/graphs/s3", routes.CreateGraphFromS3Handler)
	apiRoutes.GET("/graphs/:id", routes.GetGraphHandler)
	apiRoutes.DELETE("/graphs/:id", routes.DeleteGraphHandler)
	apiRoutes.POST("/graphs/:id/centrality", routes.RecomputeCentralityHandler)
	apiRoutes.GET("/graphs/:id/top", routes.GetTopEntitiesHandler)
	apiRoutes.GET("/graphs/:id/centrality.csv", routes.GetCentralityCSVHandler)

	// Worker jobs
	apiRoutes.POST("/jobs", routes.EnqueueBuildHandler)
}
