package channel

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/docbridge/metrics"
	"github.com/viant/docbridge/model/command"
	"github.com/viant/docbridge/model/types"
	"github.com/viant/docbridge/service/event"
	"github.com/viant/docbridge/service/messaging"
	"github.com/viant/docbridge/service/messaging/memory"
	"github.com/viant/docbridge/service/transport"
)

type echo struct {
	Value string `json:"value"`
}

func newTestChannel(t *testing.T, opts ...Option) (*Channel, transport.Endpoint) {
	orchestrator, host := transport.NewPipe(memory.DefaultConfig())
	ch := New(orchestrator, opts...)
	ch.Start(context.Background())
	t.Cleanup(func() { _ = ch.Close() })
	return ch, host
}

func reply(t *testing.T, host transport.Endpoint, resp *command.Response) {
	require.NoError(t, host.Reply(context.Background(), &command.Envelope{Response: resp}))
}

func receive(t *testing.T, host transport.Endpoint) *command.Command {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cmd, err := host.Receive(ctx)
	require.NoError(t, err)
	return cmd
}

func TestChannel_Call(t *testing.T) {
	var testCases = []struct {
		name      string
		respond   func(cmd *command.Command) *command.Response
		expect    string
		expectErr error
	}{
		{
			name: "resolved",
			respond: func(cmd *command.Command) *command.Response {
				return command.NewResponse(cmd.ID, echo{Value: string(cmd.Kind)}, nil)
			},
			expect: "ping",
		},
		{
			name: "host validation error",
			respond: func(cmd *command.Command) *command.Response {
				return command.NewResponse(cmd.ID, nil, types.NewValidationError("bad props"))
			},
			expectErr: types.ErrValidation,
		},
		{
			name: "host not found",
			respond: func(cmd *command.Command) *command.Response {
				return command.NewResponse(cmd.ID, nil, types.NewNotFoundError("node n:1"))
			},
			expectErr: types.ErrNotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ch, host := newTestChannel(t)
			go func() {
				ctx := context.Background()
				cmd, err := host.Receive(ctx)
				if err != nil {
					return
				}
				_ = host.Reply(ctx, &command.Envelope{Response: tc.respond(cmd)})
			}()
			out := &echo{}
			err := ch.Call(context.Background(), command.KindPing, nil, out)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, out.Value)
			assert.Equal(t, 0, ch.Pending())
		})
	}
}

func TestChannel_Timeout(t *testing.T) {
	ch, host := newTestChannel(t, WithTimeout(20*time.Millisecond))
	future, err := ch.Send(context.Background(), command.KindPing, nil)
	require.NoError(t, err)
	cmd := receive(t, host)
	assert.Equal(t, future.ID(), cmd.ID)

	_, err = future.Wait(context.Background())
	assert.ErrorIs(t, err, types.ErrTimeout)
	assert.Equal(t, 0, ch.Pending())

	assert.False(t, ch.OnResponse(&command.Response{ID: cmd.ID, OK: true}))
	_, err = future.Wait(context.Background())
	assert.ErrorIs(t, err, types.ErrTimeout)
}

func TestChannel_Close(t *testing.T) {
	ch, _ := newTestChannel(t)
	var futures []*Future
	for i := 0; i < 3; i++ {
		future, err := ch.Send(context.Background(), command.KindPing, nil)
		require.NoError(t, err)
		futures = append(futures, future)
	}
	assert.Equal(t, 3, ch.Pending())
	require.NoError(t, ch.Close())
	for _, future := range futures {
		_, err := future.Wait(context.Background())
		assert.ErrorIs(t, err, types.ErrConnectionClosed)
	}
	assert.Equal(t, 0, ch.Pending())

	_, err := ch.Send(context.Background(), command.KindPing, nil)
	assert.ErrorIs(t, err, types.ErrConnectionClosed)
}

func TestChannel_HostDisconnect(t *testing.T) {
	ch, host := newTestChannel(t)
	future, err := ch.Send(context.Background(), command.KindPing, nil)
	require.NoError(t, err)
	require.NoError(t, host.Close())
	_, err = future.Wait(context.Background())
	assert.ErrorIs(t, err, types.ErrConnectionClosed)
	select {
	case <-ch.Closed():
	case <-time.After(time.Second):
		t.Fatal("channel not torn down")
	}
}

func TestChannel_MatchesByID(t *testing.T) {
	ch, host := newTestChannel(t)
	var futures []*Future
	var commands []*command.Command
	for i := 0; i < 3; i++ {
		future, err := ch.Send(context.Background(), command.KindSerialize, nil)
		require.NoError(t, err)
		futures = append(futures, future)
		commands = append(commands, receive(t, host))
	}
	for i := len(commands) - 1; i >= 0; i-- {
		reply(t, host, command.NewResponse(commands[i].ID, echo{Value: commands[i].ID}, nil))
	}
	for _, future := range futures {
		out := &echo{}
		require.NoError(t, future.Decode(context.Background(), out))
		assert.Equal(t, future.ID(), out.Value)
	}
}

func TestChannel_ExactlyOnce(t *testing.T) {
	m := metrics.New()
	ch, host := newTestChannel(t, WithTimeout(30*time.Millisecond), WithMetrics(m))
	const total = 40
	go func() {
		ctx := context.Background()
		for i := 0; ; i++ {
			cmd, err := host.Receive(ctx)
			if err != nil {
				return
			}
			switch i % 4 {
			case 0:
				_ = host.Reply(ctx, &command.Envelope{Response: command.NewResponse(cmd.ID, nil, nil)})
			case 1:
				_ = host.Reply(ctx, &command.Envelope{Response: command.NewResponse(cmd.ID, nil, types.NewExecutionError("rejected"))})
			case 2:
				_ = host.Reply(ctx, &command.Envelope{Response: command.NewResponse(cmd.ID, nil, nil)})
				_ = host.Reply(ctx, &command.Envelope{Response: command.NewResponse(cmd.ID, nil, nil)})
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			future, err := ch.Send(context.Background(), command.KindPing, nil)
			if err != nil {
				return
			}
			<-future.Done()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, ch.Pending())

	sum := 0.0
	for _, outcome := range []string{metrics.OutcomeResolved, metrics.OutcomeRejected, metrics.OutcomeTimeout, metrics.OutcomeClosed} {
		sum += testutil.ToFloat64(m.CommandOutcomes.WithLabelValues(string(command.KindPing), outcome))
	}
	assert.Equal(t, float64(total), sum)
	assert.Equal(t, float64(total), testutil.ToFloat64(m.CommandsSent.WithLabelValues(string(command.KindPing))))
}

func TestChannel_Subscribe(t *testing.T) {
	events, err := event.New(messaging.VendorMemory)
	require.NoError(t, err)
	defer events.Close()
	ch, host := newTestChannel(t, WithEvents(events))

	received := make(chan string, 1)
	require.NoError(t, ch.Subscribe(func(n *command.Notification) {
		received <- n.Event
	}))
	data, _ := json.Marshal(command.DocumentChange{Kind: command.KindCreate, NodeID: "n:1"})
	require.NoError(t, host.Reply(context.Background(), &command.Envelope{
		Notification: &command.Notification{Event: command.EventDocumentChange, Data: data},
	}))
	select {
	case name := <-received:
		assert.Equal(t, command.EventDocumentChange, name)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
	assert.Equal(t, 0, ch.Pending())
}
