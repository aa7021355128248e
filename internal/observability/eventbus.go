package observability

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EventBus implements the domain EventPublisher interface.
// Every event is logged and counted; events carrying a task and a
// duration also feed the per-task latency timer.
type EventBus struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewEventBus creates a new event bus.
func NewEventBus(logger *zap.Logger, metrics *Metrics) *EventBus {
	return &EventBus{
		logger:  logger,
		metrics: metrics,
	}
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if e.metrics != nil {
		e.metrics.Inc("events." + eventType)

		task, hasTask := data["task"].(string)
		durationMs, hasDuration := data["duration_ms"].(uint64)
		if hasTask && hasDuration {
			//nolint:gosec // durations are bounded by request lifetime
			e.metrics.ObserveDuration(task+".duration", time.Duration(durationMs)*time.Millisecond)
		}
	}

	if e.logger == nil {
		return
	}

	fields := make([]zap.Field, 0, len(data)+2)
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}

	e.logger.Info(eventType, fields...)
}
