// Package tracing wraps OpenTelemetry so the channel, pipeline and script
// engines can open spans without importing the SDK directly. Applications
// that never call Init get no-op spans.
package tracing
