// Package client exposes the host primitives as typed calls over a command
// channel.
package client

import (
	"context"

	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/model/tree"
)

// Caller sends one command and decodes its response.
type Caller interface {
	Call(ctx context.Context, kind command.Kind, payload interface{}, output interface{}) error
}

// Client is the orchestrator view of the document.
type Client struct {
	caller Caller
}

func New(caller Caller) *Client {
	return &Client{caller: caller}
}

// Create adds a node and returns its id; parentID "" or "none" is the page.
func (c *Client) Create(ctx context.Context, kind tree.Kind, parentID string, props map[string]interface{}) (string, error) {
	output := &command.CreateOutput{}
	err := c.caller.Call(ctx, command.KindCreate, &command.CreateInput{Kind: kind, ParentID: parentID, Properties: props}, output)
	return output.NodeID, err
}

func (c *Client) Update(ctx context.Context, id string, props map[string]interface{}) error {
	return c.caller.Call(ctx, command.KindUpdate, &command.UpdateInput{NodeID: id, Properties: props}, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.caller.Call(ctx, command.KindDelete, &command.DeleteInput{NodeID: id}, nil)
}

func (c *Client) Reparent(ctx context.Context, id, parentID string, index *int) error {
	return c.caller.Call(ctx, command.KindReparent, &command.ReparentInput{NodeID: id, ParentID: parentID, Index: index}, nil)
}

func (c *Client) Export(ctx context.Context, id, format string) (*command.ExportOutput, error) {
	output := &command.ExportOutput{}
	if err := c.caller.Call(ctx, command.KindExport, &command.ExportInput{NodeID: id, Format: format}, output); err != nil {
		return nil, err
	}
	return output, nil
}

// Serialize captures id; a negative depth is unbounded.
func (c *Client) Serialize(ctx context.Context, id string, depth int) (*tree.SerializedNode, error) {
	output := &tree.SerializedNode{}
	if err := c.caller.Call(ctx, command.KindSerialize, &command.SerializeInput{NodeID: id, Depth: depth}, output); err != nil {
		return nil, err
	}
	return output, nil
}

func (c *Client) ReplaceSubtree(ctx context.Context, id string, snapshot *tree.SerializedNode) (int, error) {
	output := &command.ReplaceSubtreeOutput{}
	err := c.caller.Call(ctx, command.KindReplaceSubtree, &command.ReplaceSubtreeInput{NodeID: id, Snapshot: snapshot}, output)
	return output.Created, err
}

// Ping returns the host page root and session.
func (c *Client) Ping(ctx context.Context) (*command.PingOutput, error) {
	output := &command.PingOutput{}
	if err := c.caller.Call(ctx, command.KindPing, nil, output); err != nil {
		return nil, err
	}
	return output, nil
}
