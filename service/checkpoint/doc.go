// Package checkpoint keeps labeled subtree snapshots for manual rollback.
// The registry lives for one session and is never persisted.
package checkpoint
