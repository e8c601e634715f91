package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hyperkit/pkg/broadcast"
)

func receive(t *testing.T, ch <-chan broadcast.Message[string]) (string, bool) {
	t.Helper()
	select {
	case msg, ok := <-ch:
		return msg.Data, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return "", false
	}
}

func TestMemoryBroadcaster(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every subscriber", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](4)
		defer b.Close()

		ctx := context.Background()
		s1 := b.Subscribe(ctx)
		s2 := b.Subscribe(ctx)
		assert.Equal(t, 2, b.Len())

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "hi"}))

		got, ok := receive(t, s1.Receive(ctx))
		assert.True(t, ok)
		assert.Equal(t, "hi", got)
		got, _ = receive(t, s2.Receive(ctx))
		assert.Equal(t, "hi", got)
	})

	t.Run("full buffers drop messages", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](1)
		defer b.Close()

		ctx := context.Background()
		s := b.Subscribe(ctx)
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "first"}))
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "second"}))

		got, _ := receive(t, s.Receive(ctx))
		assert.Equal(t, "first", got)
		select {
		case msg := <-s.Receive(ctx):
			t.Fatalf("unexpected message %q", msg.Data)
		default:
		}
	})

	t.Run("context cancel unsubscribes", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](1)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		s := b.Subscribe(ctx)
		cancel()

		_, ok := receive(t, s.Receive(context.Background()))
		assert.False(t, ok)
		assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		b := broadcast.NewMemoryBroadcaster[string](1)
		s := b.Subscribe(context.Background())
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())
		require.NoError(t, s.Close())

		_, ok := receive(t, s.Receive(context.Background()))
		assert.False(t, ok)
		assert.NoError(t, b.Broadcast(context.Background(), broadcast.Message[string]{Data: "x"}))

		late := b.Subscribe(context.Background())
		_, ok = receive(t, late.Receive(context.Background()))
		assert.False(t, ok)
	})
}
