package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/pipeline"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/loader"
	ioloader "github.com/OFFIS-RIT/eventgraph/backend/pkg/loader/io"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	queues     []string
	exchanges  []string
	published  []published
	publishErr error
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.exchanges = append(f.exchanges, name)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error) {
	f.queues = append(f.queues, name)
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

type fakeAcknowledger struct {
	acks     int
	nacks    int
	requeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacks++
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error { return nil }

type fakeBucket struct {
	objects map[string]string
	err     error
}

func (f *fakeBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = string(raw)
	return &s3.PutObjectOutput{}, nil
}

func TestSetupQueues(t *testing.T) {
	ch := &fakeChannel{}
	require.NoError(t, SetupQueues(ch, []string{BuildQueue}))
	assert.Equal(t, []string{Exchange}, ch.exchanges)
	assert.Equal(t, []string{"graph_build_queue", "graph_build_queue_dlq", "graph_build_queue_retry"}, ch.queues)
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name    string
		cause   error
		retries int
		want    Outcome
	}{
		{name: "first failure", cause: errors.New("s3 down"), retries: 0, want: OutcomeRetry},
		{name: "below limit", cause: errors.New("s3 down"), retries: 9, want: OutcomeRetry},
		{name: "limit reached", cause: errors.New("s3 down"), retries: 10, want: OutcomeDLQ},
		{name: "invalid message", cause: ErrInvalidMessage, retries: 0, want: OutcomeDLQ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.cause, tt.retries, DefaultMaxRetries))
		})
	}
}

func TestRetryCount(t *testing.T) {
	assert.Equal(t, 0, retryCount(nil))
	assert.Equal(t, 3, retryCount(amqp091.Table{"x-retries": int32(3)}))
	assert.Equal(t, 4, retryCount(amqp091.Table{"x-retries": int64(4)}))
	assert.Equal(t, 0, retryCount(amqp091.Table{"x-retries": "5"}))
}

func TestHandleProcessingError(t *testing.T) {
	ch := &fakeChannel{}
	ack := &fakeAcknowledger{}
	msg := amqp091.Delivery{Acknowledger: ack, Body: []byte("{}"), Headers: amqp091.Table{"x-retries": int32(2)}}

	outcome := HandleProcessingError(ch, msg, BuildQueue, 3, errors.New("boom"))
	assert.Equal(t, OutcomeRetry, outcome)
	require.Len(t, ch.published, 1)
	assert.Equal(t, "graph_build_queue_retry", ch.published[0].key)
	assert.Equal(t, int32(3), ch.published[0].msg.Headers["x-retries"])
	assert.Equal(t, 1, ack.acks)

	msg.Headers = amqp091.Table{"x-retries": int32(3)}
	outcome = HandleProcessingError(ch, msg, BuildQueue, 3, errors.New("boom"))
	assert.Equal(t, OutcomeDLQ, outcome)
	assert.Equal(t, "graph_build_queue_dlq", ch.published[1].key)

	ch.publishErr = errors.New("closed")
	outcome = HandleProcessingError(ch, msg, BuildQueue, 3, errors.New("boom"))
	assert.Equal(t, OutcomeRetry, outcome)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeued)
}

func newTestWorker(t *testing.T) (*Worker, *fakeBucket, *fakeChannel, string) {
	t.Helper()
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.json"), []byte(`[
		{"event_title": "E1", "entities": ["A", "B", "C"], "event_classifications": {"Tone": ["conflict"]}},
		{"event_title": "E2", "entities": ["A", "B"], "event_classifications": {"Tone": ["coop"]}}
	]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taxonomy.json"), []byte(
		`{"Tone": {"conflict": {"sentiment": -5}, "coop": {"sentiment": 5}}}`,
	), 0o600))

	bucket := &fakeBucket{objects: map[string]string{}}
	ch := &fakeChannel{}
	w := &Worker{
		Pipeline:     pipeline.New(client, nil),
		NewSources:   func() loader.GraphFileLoader { return ioloader.NewIOGraphFileLoader() },
		Exports:      bucket,
		Bucket:       "bucket",
		ExportPrefix: "exports",
		Results:      ch,
	}
	return w, bucket, ch, dir
}

func TestProcessBuildMessage(t *testing.T) {
	w, bucket, ch, dir := newTestWorker(t)
	body, err := json.Marshal(BuildMessage{
		CorrelationID: "job-1",
		EventsKey:     filepath.Join(dir, "events.json"),
		TaxonomyKey:   filepath.Join(dir, "taxonomy.json"),
	})
	require.NoError(t, err)

	require.NoError(t, w.ProcessBuildMessage(context.Background(), body))

	csv, ok := bucket.objects["exports/job-1/node_centralities.csv"]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(csv, "Entity,Degree,Betweenness,Eigenvector\n"))

	require.Len(t, ch.published, 1)
	assert.Equal(t, Exchange, ch.published[0].exchange)
	assert.Equal(t, ResultTopic, ch.published[0].key)

	var result BuildResult
	require.NoError(t, json.Unmarshal(ch.published[0].msg.Body, &result))
	assert.Equal(t, "job-1", result.CorrelationID)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, 3, result.Nodes)
	assert.Equal(t, 3, result.Edges)
	assert.Equal(t, 1, result.Components)
	require.NotEmpty(t, result.Top)
	assert.Equal(t, "A", result.Top[0].Entity)
}

func TestProcessBuildMessageWithFilter(t *testing.T) {
	w, _, ch, dir := newTestWorker(t)
	body, err := json.Marshal(BuildMessage{
		CorrelationID: "job-2",
		EventsKey:     filepath.Join(dir, "events.json"),
		TaxonomyKey:   filepath.Join(dir, "taxonomy.json"),
		Filter:        &graph.FilterParams{MinWeight: 2, SentimentLow: -10, SentimentHigh: 10},
	})
	require.NoError(t, err)

	require.NoError(t, w.ProcessBuildMessage(context.Background(), body))

	var result BuildResult
	require.NoError(t, json.Unmarshal(ch.published[0].msg.Body, &result))
	assert.Equal(t, 2, result.Nodes)
	assert.Equal(t, 1, result.Edges)
	require.Len(t, result.Top, 2)
	assert.Equal(t, 2.0, result.Top[0].Degree)
}

func TestProcessBuildMessageInvalid(t *testing.T) {
	w, _, ch, _ := newTestWorker(t)

	err := w.ProcessBuildMessage(context.Background(), []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	err = w.ProcessBuildMessage(context.Background(), []byte(`{"correlation_id": "x"}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.Empty(t, ch.published)
}

func TestProcessBuildMessageInvalidDocuments(t *testing.T) {
	tests := []struct {
		name     string
		events   string
		taxonomy string
	}{
		{name: "empty events", events: "  ", taxonomy: `{}`},
		{name: "taxonomy is a list", events: `[]`, taxonomy: `[1, 2]`},
		{name: "events are a string", events: `"nothing"`, taxonomy: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, bucket, ch, dir := newTestWorker(t)
			eventsPath := filepath.Join(dir, "bad_events.json")
			taxonomyPath := filepath.Join(dir, "bad_taxonomy.json")
			require.NoError(t, os.WriteFile(eventsPath, []byte(tt.events), 0o600))
			require.NoError(t, os.WriteFile(taxonomyPath, []byte(tt.taxonomy), 0o600))
			body, err := json.Marshal(BuildMessage{
				CorrelationID: "job-bad",
				EventsKey:     eventsPath,
				TaxonomyKey:   taxonomyPath,
			})
			require.NoError(t, err)

			err = w.ProcessBuildMessage(context.Background(), body)
			require.ErrorIs(t, err, ErrInvalidMessage)
			assert.Equal(t, OutcomeDLQ, Route(err, 0, DefaultMaxRetries))
			assert.Empty(t, bucket.objects)
			assert.Empty(t, ch.published)
		})
	}
}

func TestProcessBuildMessageMissingInputIsRetried(t *testing.T) {
	w, _, _, dir := newTestWorker(t)
	body, err := json.Marshal(BuildMessage{
		CorrelationID: "job-missing",
		EventsKey:     filepath.Join(dir, "missing.json"),
		TaxonomyKey:   filepath.Join(dir, "taxonomy.json"),
	})
	require.NoError(t, err)

	err = w.ProcessBuildMessage(context.Background(), body)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidMessage)
	assert.Equal(t, OutcomeRetry, Route(err, 0, DefaultMaxRetries))
}

func TestProcessBuildMessageUploadFailure(t *testing.T) {
	w, bucket, ch, dir := newTestWorker(t)
	bucket.err = errors.New("access denied")
	body, err := json.Marshal(BuildMessage{
		CorrelationID: "job-3",
		EventsKey:     filepath.Join(dir, "events.json"),
		TaxonomyKey:   filepath.Join(dir, "taxonomy.json"),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = w.ProcessBuildMessage(ctx, body)
	assert.ErrorContains(t, err, "access denied")
	assert.NotErrorIs(t, err, ErrInvalidMessage)
	// nothing is published before the export exists
	assert.Empty(t, ch.published)
}
