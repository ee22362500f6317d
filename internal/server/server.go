package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/pipeline"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/queue"
	mid "github.com/OFFIS-RIT/eventgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/util"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	s3loader "github.com/OFFIS-RIT/eventgraph/backend/pkg/loader/s3"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/store/memory"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New builds the echo instance with all middleware and routes.
func New(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(util.GetEnvString("BODY_LIMIT", "64M")))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := pipeline.NewGraphClientFromEnv()
	if err != nil {
		logger.Fatal("[Server] Invalid graph configuration", "err", err)
	}

	graphStore := memory.NewGraphStorage(util.GetEnvInt("GRAPH_STORE_CAPACITY", memory.DefaultCapacity))
	app := &mid.App{
		Store:    graphStore,
		Pipeline: pipeline.New(client, graphStore),
	}

	if bucket := storage.Bucket(); bucket != "" {
		s3, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("[Server] Failed to create S3 client", "err", err)
		}
		app.NewSources = func() loader.GraphFileLoader {
			return s3loader.NewS3GraphFileLoaderWithClient(bucket, s3)
		}
	} else {
		logger.Warn("[Server] AWS_BUCKET not set, S3 routes disabled")
	}

	if util.GetEnv("RABBITMQ_HOST") != "" {
		que, err := queue.Init()
		if err != nil {
			logger.Fatal("[Server] Failed to connect to queue", "err", err)
		}
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("[Server] Failed to open channel", "err", err)
		}
		defer ch.Close()
		if err := queue.SetupQueues(ch, []string{queue.BuildQueue}); err != nil {
			logger.Fatal("[Server] Failed to set up queues", "err", err)
		}
		app.Queue = ch
	} else {
		logger.Warn("[Server] RABBITMQ_HOST not set, job routes disabled")
	}

	e := New(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("[Server] Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Server] Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), util.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second))
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("[Server] Failed to shutdown server", "err", err)
	}
}
