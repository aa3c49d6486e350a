// Package command defines the wire contract between the orchestrator and the
// document host: commands, responses, notifications and typed payloads.
package command
