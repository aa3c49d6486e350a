// Package host implements the document executor: the single writer of a
// node arena that services create, update, delete, reparent, export,
// serialize and replaceSubtree commands one at a time.
package host
