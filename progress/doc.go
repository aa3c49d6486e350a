// Package progress keeps aggregated operation counters for one script or
// pipeline run. The tracker lives in the context, so any component receiving
// the context can update it without a global registry.
package progress
