package queue

import (
	"errors"

	"github.com/rabbitmq/amqp091-go"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/metrics"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
)

// DefaultMaxRetries is used when WORKER_MAX_RETRIES is unset.
const DefaultMaxRetries = 10

const retriesHeader = "x-retries"

// Outcome is what happened to a delivered message.
type Outcome string

const (
	OutcomeAck   Outcome = "ack"
	OutcomeRetry Outcome = "retry"
	OutcomeDLQ   Outcome = "dlq"
)

// retryCount reads the retry counter. Integer headers come back from the
// broker with varying widths.
func retryCount(headers amqp091.Table) int {
	switch v := headers[retriesHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int16:
		return int(v)
	case int8:
		return int(v)
	default:
		return 0
	}
}

// Route decides where a failed message goes: invalid messages and messages
// that exhausted maxRetries go to the dead letter queue, everything else to
// the retry queue.
func Route(cause error, retries, maxRetries int) Outcome {
	if errors.Is(cause, ErrInvalidMessage) || retries >= maxRetries {
		return OutcomeDLQ
	}
	return OutcomeRetry
}

// HandleProcessingError republishes a failed message to the retry or dead
// letter queue of queueName and acks the original. If republishing fails
// the original is requeued.
func HandleProcessingError(ch Channel, msg amqp091.Delivery, queueName string, maxRetries int, cause error) Outcome {
	retries := retryCount(msg.Headers)
	outcome := Route(cause, retries, maxRetries)

	target := RetryQueue(queueName)
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	if outcome == OutcomeDLQ {
		target = DeadLetterQueue(queueName)
		logger.Warn("[Queue] Sending message to DLQ", "dlq", target, "retries", retries, "err", cause)
	} else {
		headers[retriesHeader] = int32(retries + 1)
	}

	pubErr := ch.Publish(
		"",
		target,
		false,
		false,
		amqp091.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", pubErr)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("[Queue] Failed to nack message", "err", err)
		}
		return OutcomeRetry
	}
	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}

	metrics.QueueMessagesTotal.WithLabelValues(queueName, string(outcome)).Inc()
	return outcome
}
