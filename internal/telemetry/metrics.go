package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds every counter/histogram instrument this package defines;
// middleware.MetricsMiddleware records the HTTP request metrics.
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	PagesAudited        metric.Int64Counter
	PageAuditDuration    metric.Float64Histogram
	IssuesFound         metric.Int64Counter
	CircuitBreakerState metric.Int64Counter
	DatabaseOperations  metric.Int64Counter
}

// InitMetrics initializes every metric instrument.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/nishaddevendra/webauditor")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	pagesAudited, err := meter.Int64Counter(
		"audit.pages.total",
		metric.WithDescription("Total pages audited"),
	)
	if err != nil {
		return nil, err
	}

	pageAuditDuration, err := meter.Float64Histogram(
		"audit.page.duration",
		metric.WithDescription("Per-page audit duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	issuesFound, err := meter.Int64Counter(
		"audit.issues.total",
		metric.WithDescription("Total layout issues found, by type and severity"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerState, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	databaseOperations, err := meter.Int64Counter(
		"database.operations.total",
		metric.WithDescription("Total database operations"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:      requestCounter,
		RequestDuration:     requestDuration,
		PagesAudited:        pagesAudited,
		PageAuditDuration:   pageAuditDuration,
		IssuesFound:         issuesFound,
		CircuitBreakerState: circuitBreakerState,
		DatabaseOperations:  databaseOperations,
	}, nil
}

// RecordRequest records HTTP request metrics.
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordPageAudit records one completed page audit.
func (m *Metrics) RecordPageAudit(duration float64, status string) {
	attrs := []attribute.KeyValue{
		attribute.String("audit.status", status),
	}
	m.PagesAudited.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.PageAuditDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordIssue records one detected issue by type and severity.
func (m *Metrics) RecordIssue(issueType, severity string) {
	attrs := []attribute.KeyValue{
		attribute.String("issue.type", issueType),
		attribute.String("issue.severity", severity),
	}
	m.IssuesFound.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordCircuitBreakerState records circuit breaker state changes.
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	attrs := []attribute.KeyValue{
		attribute.String("service", service),
		attribute.String("state", state),
	}

	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordDatabaseOperation records database operation metrics.
func (m *Metrics) RecordDatabaseOperation(operation, collection string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.collection", collection),
		attribute.Bool("db.success", success),
	}

	m.DatabaseOperations.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
