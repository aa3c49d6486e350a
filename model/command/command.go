package command

import (
	"encoding/json"
	"fmt"

	"github.com/viant/docbridge/model/types"
)

// Kind discriminates a command.
type Kind string

const (
	KindCreate         Kind = "create"
	KindUpdate         Kind = "update"
	KindDelete         Kind = "delete"
	KindReparent       Kind = "reparent"
	KindExport         Kind = "export"
	KindSerialize      Kind = "serialize"
	KindReplaceSubtree Kind = "replaceSubtree"
	KindPing           Kind = "ping"
)

// Mutating returns true for kinds that change the document.
func (k Kind) Mutating() bool {
	switch k {
	case KindCreate, KindUpdate, KindDelete, KindReparent, KindReplaceSubtree:
		return true
	}
	return false
}

// Command is a single request sent to the host.
type Command struct {
	ID      string          `json:"id"`
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the host answer for exactly one command.
type Response struct {
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// Err returns the rehydrated error of a failed response.
func (r *Response) Err() error {
	if r.OK {
		return nil
	}
	return types.ErrorOf(r.Code, r.Error)
}

// Decode unmarshals the success payload into output.
func (r *Response) Decode(output interface{}) error {
	if output == nil || len(r.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Payload, output); err != nil {
		return fmt.Errorf("failed to decode %v response: %w", r.ID, err)
	}
	return nil
}

// NewResponse builds a response for id from an output or an error.
func NewResponse(id string, output interface{}, err error) *Response {
	if err != nil {
		return &Response{ID: id, Error: err.Error(), Code: types.CodeOf(err)}
	}
	ret := &Response{ID: id, OK: true}
	if output != nil {
		data, mErr := json.Marshal(output)
		if mErr != nil {
			return &Response{ID: id, Error: mErr.Error(), Code: types.CodeExecution}
		}
		ret.Payload = data
	}
	return ret
}

// Events published as notifications.
const (
	EventDocumentChange = "documentChange"
)

// Notification is an out-of-band host event; it never completes a command.
type Notification struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DocumentChange is the data of a documentChange notification.
type DocumentChange struct {
	Kind   Kind   `json:"kind"`
	NodeID string `json:"nodeId,omitempty"`
}

// Envelope is one inbound frame on the orchestrator side.
type Envelope struct {
	Response     *Response     `json:"response,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}
