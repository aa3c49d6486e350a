package event

import (
	"time"

	"github.com/viant/docbridge/internal/clock"
)

// Context identifies where an event came from.
type Context struct {
	Session   string `json:"session,omitempty"`
	EventType string `json:"eventType"`
	Source    string `json:"source,omitempty"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
