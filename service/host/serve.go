package host

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/service/transport"
)

// Serve reads commands from endpoint and answers each with exactly one
// response carrying its id. Commands are handled one at a time in arrival
// order. Serve returns when the endpoint closes or ctx is done.
func (e *Executor) Serve(ctx context.Context, endpoint transport.Endpoint) error {
	for {
		cmd, err := endpoint.Receive(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		resp, change := e.Handle(ctx, cmd)
		if err = endpoint.Reply(ctx, &command.Envelope{Response: resp}); err != nil {
			if errors.Is(err, transport.ErrClosed) {
				return nil
			}
			return err
		}
		if change == nil {
			continue
		}
		data, _ := json.Marshal(change)
		notification := &command.Notification{Event: command.EventDocumentChange, Data: data}
		if err = endpoint.Reply(ctx, &command.Envelope{Notification: notification}); err != nil {
			log.Printf("failed to send %v notification: %v", notification.Event, err)
		}
	}
}

// Handle executes one command. The change is non-nil after a successful
// mutation.
func (e *Executor) Handle(ctx context.Context, cmd *command.Command) (*command.Response, *command.DocumentChange) {
	output, nodeID, err := e.dispatch(ctx, cmd)
	resp := command.NewResponse(cmd.ID, output, err)
	if err != nil || !cmd.Kind.Mutating() {
		return resp, nil
	}
	return resp, &command.DocumentChange{Kind: cmd.Kind, NodeID: nodeID}
}

func decode(cmd *command.Command, input interface{}) error {
	if len(cmd.Payload) == 0 {
		return types.NewValidationError("%v command %v has no payload", cmd.Kind, cmd.ID)
	}
	if err := json.Unmarshal(cmd.Payload, input); err != nil {
		return types.NewValidationError("invalid %v payload: %v", cmd.Kind, err)
	}
	return nil
}

func (e *Executor) dispatch(ctx context.Context, cmd *command.Command) (interface{}, string, error) {
	switch cmd.Kind {
	case command.KindPing:
		return &command.PingOutput{RootID: e.RootID(), Session: e.session}, "", nil
	case command.KindCreate:
		input := &command.CreateInput{}
		if err := decode(cmd, input); err != nil {
			return nil, "", err
		}
		id, err := e.Create(ctx, input.Kind, input.ParentID, input.Properties)
		return &command.CreateOutput{NodeID: id}, id, err
	case command.KindUpdate:
		input := &command.UpdateInput{}
		if err := decode(cmd, input); err != nil {
			return nil, "", err
		}
		return nil, input.NodeID, e.Update(ctx, input.NodeID, input.Properties)
	case command.KindDelete:
		input := &command.DeleteInput{}
		if err := decode(cmd, input); err != nil {
			return nil, "", err
		}
		_, err := e.Delete(ctx, input.NodeID)
		return nil, input.NodeID, err
	case command.KindReparent:
		input := &command.ReparentInput{}
		if err := decode(cmd, input); err != nil {
			return nil, "", err
		}
		return nil, input.NodeID, e.Reparent(ctx, input.NodeID, input.ParentID, input.Index)
	case command.KindExport:
		input := &command.ExportInput{}
		if err := decode(cmd, input); err != nil {
			return nil, "", err
		}
		data, err := e.Export(ctx, input.NodeID, input.Format)
		if err != nil {
			return nil, "", err
		}
		format := input.Format
		if format == "" {
			format = command.FormatJSON
		}
		return &command.ExportOutput{Format: format, Data: data}, "", nil
	case command.KindSerialize:
		input := &command.SerializeInput{}
		if err := decode(cmd, input); err != nil {
			return nil, "", err
		}
		node, err := e.Serialize(ctx, input.NodeID, input.Depth)
		return node, "", err
	case command.KindReplaceSubtree:
		input := &command.ReplaceSubtreeInput{}
		if err := decode(cmd, input); err != nil {
			return nil, "", err
		}
		created, err := e.ReplaceSubtree(ctx, input.NodeID, input.Snapshot)
		return &command.ReplaceSubtreeOutput{NodeID: input.NodeID, Created: created}, input.NodeID, err
	}
	return nil, "", types.NewValidationError("unsupported command kind %q", cmd.Kind)
}
