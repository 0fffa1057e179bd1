// Package instrumentation provides OpenTelemetry metrics for schedbot.
//
// Metrics cover tool invocations, calendar API operations and meeting log
// writes. The Prometheus exporter is the default; a stdout exporter is
// available for development. All recorders are nil-safe so callers never
// need to guard against a disabled provider.
package instrumentation
