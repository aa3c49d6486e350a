// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// It lives under `internal` because callers should not rely on its exact
// format – command, node and session identifiers are opaque strings.
package idgen
