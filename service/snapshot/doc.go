// Package snapshot captures a document subtree as a portable SerializedNode
// and rebuilds a subtree from one.
package snapshot
