package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/pipeline"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/store"
)

// App holds the dependencies shared by all handlers.
//
// NewSources returns a fresh object storage loader per request. NewSources
// and Queue are optional: routes that need them answer 503 when they are not
// configured.
type App struct {
	Store      store.GraphStorage
	Pipeline   *pipeline.Pipeline
	NewSources func() loader.GraphFileLoader
	Queue      queue.Channel
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
