package codeium

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("llmlsp.codeium")
	meter  = otel.Meter("llmlsp.codeium")
)

// Outcome classifies how a completion call ended.
type Outcome string

const (
	OutcomeSuggestions   Outcome = "suggestions"
	OutcomeEmpty         Outcome = "empty"
	OutcomeTransport     Outcome = "transport_error"
	OutcomeMalformed     Outcome = "malformed"
	OutcomeProviderError Outcome = "provider_error"
	OutcomeUnknownError  Outcome = "unknown_error"
)

var (
	completionTotal    metric.Int64Counter
	completionDuration metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics registers the instruments on the global meter. Safe to call
// multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		completionTotal, err = meter.Int64Counter(
			"codeium_completions_total",
			metric.WithDescription("Completion calls by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		completionDuration, err = meter.Float64Histogram(
			"codeium_completion_duration_seconds",
			metric.WithDescription("Duration of completion calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordCompletion(ctx context.Context, outcome Outcome, elapsed time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", string(outcome)))
	completionTotal.Add(ctx, 1, attrs)
	completionDuration.Record(ctx, elapsed.Seconds(), attrs)
}
