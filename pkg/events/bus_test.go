package events_test

import (
	"testing"
	"time"

	"github.com/sherpas/supply/config"
	"github.com/sherpas/supply/pkg/events"
	"github.com/sherpas/supply/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestEventBusRoutesByChain(t *testing.T) {
	bus := events.NewEventBus(&config.EventBusConfig{BufferSize: 4})
	sepolia := bus.Subscribe("sepolia")
	all := bus.Subscribe(events.ALL_CHAINS)

	bus.BroadcastEvent(events.NewReadEnvelope(types.Success("base", 8453, []string{"1"})))
	bus.BroadcastEvent(events.NewReadEnvelope(types.Success("sepolia", 11155111, []string{"2"})))

	event := receive(t, sepolia)
	require.Equal(t, events.EVENT_SUPPLY_READ, event.EventType)
	require.Equal(t, "2", event.Data.Value)
	require.Empty(t, sepolia)

	require.Equal(t, "base", receive(t, all).Chain)
	require.Equal(t, "sepolia", receive(t, all).Chain)
}

func TestEventBusFailureEnvelope(t *testing.T) {
	envelope := events.NewReadEnvelope(types.Failure("base", 8453, nil))
	require.Equal(t, events.EVENT_SUPPLY_FAILURE, envelope.EventType)
}

func TestEventBusDropsWhenFull(t *testing.T) {
	bus := events.NewEventBus(&config.EventBusConfig{BufferSize: 1})
	receiver := bus.Subscribe("base")

	bus.BroadcastEvent(events.NewReadEnvelope(types.Success("base", 8453, []string{"1"})))
	bus.BroadcastEvent(events.NewReadEnvelope(types.Success("base", 8453, []string{"2"})))

	require.Equal(t, "1", receive(t, receiver).Data.Value)
	require.Empty(t, receiver)
}

func TestEventBusClose(t *testing.T) {
	bus := events.NewEventBus(nil)
	receiver := bus.Subscribe(events.ALL_CHAINS)
	bus.Close()
	bus.Close()

	_, ok := <-receiver
	require.False(t, ok)

	bus.BroadcastEvent(events.NewReadEnvelope(types.Success("base", 8453, []string{"1"})))
	_, ok = <-bus.Subscribe("base")
	require.False(t, ok)
}

func receive(t *testing.T, ch <-chan *events.EventEnvelope) *events.EventEnvelope {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return nil
	}
}
