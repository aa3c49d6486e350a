// Package pipeline runs an ordered list of named operations with cross-step
// variable references.
//
// Every step is validated before the first one executes. After the first step
// the pipeline saves an automatic checkpoint of the root it produced; when a
// later step fails the checkpoint is restored and the result reports the
// rollback outcome next to the failing step.
package pipeline
