// Package tree defines the document node model shared by the host executor,
// the serializer and the orchestrator: node kinds, typed properties, the
// per-kind property schema and the portable snapshot form.
package tree
