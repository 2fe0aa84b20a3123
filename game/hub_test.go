package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain empties a subscriber's channel without blocking.
func drain(sub *Subscriber) []any {
	var msgs []any
	for {
		select {
		case msg, ok := <-sub.C():
			if !ok {
				return msgs
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestHubBroadcast(t *testing.T) {
	t.Parallel()

	t.Run("Delivers In Emission Order", func(t *testing.T) {
		t.Parallel()
		hub := NewHub()
		sub := hub.Subscribe("room", "p1")

		for i := 0; i < 10; i++ {
			hub.Broadcast("room", i)
		}

		msgs := drain(sub)
		require.Len(t, msgs, 10)
		for i, msg := range msgs {
			assert.Equal(t, i, msg)
		}
	})

	t.Run("Rooms Are Isolated", func(t *testing.T) {
		t.Parallel()
		hub := NewHub()
		a := hub.Subscribe("a", "p1")
		b := hub.Subscribe("b", "p1")

		hub.Broadcast("a", "hello")

		assert.Len(t, drain(a), 1)
		assert.Empty(t, drain(b))
	})

	t.Run("Slow Subscribers Are Dropped Not Waited On", func(t *testing.T) {
		t.Parallel()
		hub := NewHub()
		slow := hub.Subscribe("room", "p1")
		fast := hub.Subscribe("room", "p2")

		// One past the buffer forces the drop.
		for i := 0; i <= sendBuffer; i++ {
			hub.Broadcast("room", i)
			drain(fast)
		}

		msgs := drain(slow)
		assert.Len(t, msgs, sendBuffer)

		_, open := <-slow.C()
		assert.False(t, open, "dropped subscriber's channel should be closed")

		// The surviving subscriber still receives.
		hub.Broadcast("room", "after")
		assert.Equal(t, []any{"after"}, drain(fast))
	})
}

func TestHubTargeting(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	alice := hub.Subscribe("room", "alice")
	bob := hub.Subscribe("room", "bob")
	bobPhone := hub.Subscribe("room", "bob")

	t.Run("SendTo Reaches Every Connection Of One Player", func(t *testing.T) {
		hub.SendTo("room", "bob", "secret")

		assert.Empty(t, drain(alice))
		assert.Equal(t, []any{"secret"}, drain(bob))
		assert.Equal(t, []any{"secret"}, drain(bobPhone))
	})

	t.Run("BroadcastExcept Skips One Player", func(t *testing.T) {
		hub.BroadcastExcept("room", "bob", "stroke")

		assert.Equal(t, []any{"stroke"}, drain(alice))
		assert.Empty(t, drain(bob))
		assert.Empty(t, drain(bobPhone))
	})
}

func TestHubUnsubscribe(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	sub := hub.Subscribe("room", "p1")

	hub.Unsubscribe(sub)
	_, open := <-sub.C()
	assert.False(t, open)

	// Double unsubscribe must not panic on the closed channel.
	hub.Unsubscribe(sub)

	hub.Broadcast("room", "late")
}

func TestHubDropRoom(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	subs := make([]*Subscriber, 0, 3)
	for i := 0; i < 3; i++ {
		subs = append(subs, hub.Subscribe("room", fmt.Sprintf("p%d", i)))
	}

	hub.DropRoom("room")

	for _, sub := range subs {
		_, open := <-sub.C()
		assert.False(t, open)
	}

	// Broadcasting to a dropped room is a no-op.
	hub.Broadcast("room", "gone")
}
