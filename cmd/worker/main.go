package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/pipeline"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/eventgraph/backend/internal/util"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	s3loader "github.com/OFFIS-RIT/eventgraph/backend/pkg/loader/s3"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	// Init s3 client
	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("[Worker] Failed to create S3 client", "err", err)
	}
	bucket := storage.Bucket()

	client, err := pipeline.NewGraphClientFromEnv()
	if err != nil {
		logger.Fatal("[Worker] Invalid graph configuration", "err", err)
	}

	// Init rabbitmq
	conn, err := queue.Init()
	if err != nil {
		logger.Fatal("[Worker] Failed to connect to queue", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("[Worker] Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.BuildQueue}); err != nil {
		logger.Fatal("[Worker] Failed to set up queues", "err", err)
	}

	newSources := func() loader.GraphFileLoader {
		return s3loader.NewS3GraphFileLoaderWithClient(bucket, s3Client)
	}
	worker := &queue.Worker{
		Pipeline:     pipeline.New(client, nil),
		NewSources:   newSources,
		Exports:      s3Client,
		Bucket:       bucket,
		ExportPrefix: util.GetEnvString("EXPORT_PREFIX", "exports"),
		Results:      ch,
	}
	if util.GetEnv("AWS_PUBLIC_ENDPOINT") != "" {
		worker.DownloadLink = func(ctx context.Context, key string) (string, error) {
			return storage.GenerateDownloadLink(ctx, s3Client, bucket, key)
		}
	}
	maxRetries := util.GetEnvInt("WORKER_MAX_RETRIES", queue.DefaultMaxRetries)

	// Separate consumer channel with prefetch=1 so only one build runs at a time
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("[Worker] Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, false); err != nil {
		logger.Fatal("[Worker] Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.BuildQueue,
		queue.BuildQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("[Worker] Failed to start consuming", "queue", queue.BuildQueue, "err", err)
	}

	logger.Info("[Worker] Listening for messages", "queue", queue.BuildQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("[Worker] Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("[Worker] Message channel closed", "queue", queue.BuildQueue)
					stop()
					return
				}
				startTime := time.Now()
				logger.Info("[Worker] Received message", "queue", queue.BuildQueue)

				if err := worker.ProcessBuildMessage(ctx, msg.Body); err != nil {
					logger.Error("[Worker] Error processing message", "queue", queue.BuildQueue, "err", err)
					queue.HandleProcessingError(consumerCh, msg, queue.BuildQueue, maxRetries, err)
				} else {
					queue.Ack(msg, queue.BuildQueue)
					logger.Info("[Worker] Message processed successfully", "queue", queue.BuildQueue)
				}

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"[Worker] Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
			}
		}
	}()

	<-ctx.Done()
	logger.Info("[Worker] Shutdown signal received, exiting...")
}
