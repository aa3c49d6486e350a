// Package docbridge lets an orchestrator mutate a document tree owned by a
// separate host across an asynchronous command channel.
//
// The root package wires the pieces together: a host executor (in-process by
// default, or remote over a websocket transport), the correlated command
// channel, the typed client, the checkpoint registry, and the two batch
// engines (scripts and pipelines).
//
//	srv := docbridge.New()
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	defer rt.Shutdown(ctx)
//	result, err := rt.RunScript(ctx, `card = FRAME(none, {name: "Card"})`)
//
// Pipelines are rolled back to an automatic checkpoint when a step fails;
// scripts never are, callers choose RunScriptWithCheckpoint and restore
// explicitly when they want that.
package docbridge
