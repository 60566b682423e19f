package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for eventbook's OTel instruments
const MeterName = "github.com/platinummonkey/eventbook"

// OTelMetrics mirrors the auth and booking counters as OpenTelemetry
// instruments so they reach the OTLP collector alongside traces.
type OTelMetrics struct {
	authRejections metric.Int64Counter
	logins         metric.Int64Counter
	bookings       metric.Int64Counter
}

// NewOTelMetrics creates the instruments on meter
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	m.authRejections, err = meter.Int64Counter(
		"eventbook.auth.rejections",
		metric.WithDescription("Requests rejected by an auth gate"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth rejections counter: %w", err)
	}

	m.logins, err = meter.Int64Counter(
		"eventbook.auth.logins",
		metric.WithDescription("Login and registration attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create logins counter: %w", err)
	}

	m.bookings, err = meter.Int64Counter(
		"eventbook.bookings",
		metric.WithDescription("Booking operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bookings counter: %w", err)
	}

	return m, nil
}

func (m *OTelMetrics) recordAuthRejection(gate, reason string) {
	m.authRejections.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("gate", gate),
		attribute.String("reason", reason),
	))
}

func (m *OTelMetrics) recordLogin(provider, outcome string) {
	m.logins.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}

func (m *OTelMetrics) recordBooking(operation, outcome string) {
	m.bookings.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
