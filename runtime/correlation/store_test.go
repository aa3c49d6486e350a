package correlation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/docbridge/model/command"
)

func TestStore(t *testing.T) {
	store := NewStore()
	p := NewPending("c1", command.KindCreate)
	require.NoError(t, store.Register(p))
	assert.Error(t, store.Register(NewPending("c1", command.KindUpdate)))
	assert.Equal(t, 1, store.Len())

	taken, ok := store.Take("c1")
	assert.True(t, ok)
	assert.Same(t, p, taken)
	_, ok = store.Take("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_TakeExactlyOnce(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Register(NewPending("c1", command.KindPing)))

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.Take("c1"); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestStore_Drain(t *testing.T) {
	store := NewStore()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Register(NewPending(id, command.KindPing)))
	}
	assert.Equal(t, []string{"a", "b", "c"}, store.IDs())
	drained := store.Drain()
	assert.Len(t, drained, 3)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Drain())
	assert.Empty(t, store.IDs())
}

type fakeTimer struct{ stopped bool }

func (f *fakeTimer) Stop() bool {
	f.stopped = true
	return true
}

func TestPending(t *testing.T) {
	var testCases = []struct {
		name     string
		response *command.Response
		err      error
	}{
		{name: "resolved", response: &command.Response{ID: "x", OK: true}},
		{name: "rejected", err: errors.New("boom")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore()
			p := NewPending("x", command.KindPing)
			timer := &fakeTimer{}
			p.SetTimer(timer)
			require.NoError(t, store.Register(p))

			taken, ok := store.Take("x")
			require.True(t, ok)
			assert.True(t, timer.stopped)
			taken.Complete(tc.response, tc.err)
			taken.Complete(&command.Response{ID: "late"}, nil)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			resp, err := p.Wait(ctx)
			assert.Equal(t, tc.response, resp)
			assert.Equal(t, tc.err, err)
		})
	}
}
