package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/service/transport"
)

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws        *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{ws: ws, closed: make(chan struct{})}
}

func (c *conn) write(ctx context.Context, v interface{}) error {
	select {
	case <-c.closed:
		return transport.ErrClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetWriteDeadline(deadline)
	} else {
		_ = c.ws.SetWriteDeadline(time.Time{})
	}
	return c.ws.WriteJSON(v)
}

func (c *conn) read(ctx context.Context, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.ws.ReadJSON(v); err != nil {
		select {
		case <-c.closed:
			return transport.ErrClosed
		default:
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return transport.ErrClosed
		}
		return err
	}
	return nil
}

func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

// Client is a Transport over a websocket connection to a host.
type Client struct {
	*conn
}

// Dial connects to a host endpoint, for example ws://localhost:8787/host.
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: newConn(ws)}, nil
}

func (c *Client) Send(ctx context.Context, cmd *command.Command) error {
	return c.write(ctx, cmd)
}

func (c *Client) Receive(ctx context.Context) (*command.Envelope, error) {
	envelope := &command.Envelope{}
	if err := c.read(ctx, envelope); err != nil {
		return nil, err
	}
	return envelope, nil
}

// Endpoint is the host side of an upgraded websocket connection.
type Endpoint struct {
	*conn
}

func (e *Endpoint) Receive(ctx context.Context) (*command.Command, error) {
	cmd := &command.Command{}
	if err := e.read(ctx, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (e *Endpoint) Reply(ctx context.Context, envelope *command.Envelope) error {
	return e.write(ctx, envelope)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades each request and hands the endpoint to serve, which owns
// the connection until it returns.
func Handler(serve func(ctx context.Context, endpoint transport.Endpoint)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		endpoint := &Endpoint{conn: newConn(ws)}
		defer endpoint.Close()
		serve(r.Context(), endpoint)
	})
}

var (
	_ transport.Transport = (*Client)(nil)
	_ transport.Endpoint  = (*Endpoint)(nil)
)
