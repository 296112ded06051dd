package events

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sherpas/supply/config"
)

type Channels []chan *EventEnvelope

// Store array of channels by chain
type EventBus struct {
	mutex      sync.RWMutex
	channels   map[string]Channels
	bufferSize int
	closed     bool
}

func NewEventBus(config *config.EventBusConfig) *EventBus {
	bufferSize := 0
	if config != nil {
		bufferSize = config.BufferSize
	}
	return &EventBus{
		channels:   make(map[string]Channels),
		bufferSize: bufferSize,
	}
}

// filterChannels must be called with the mutex held
func (eb *EventBus) filterChannels(chain string) Channels {
	channels := make(Channels, 0, len(eb.channels[chain])+len(eb.channels[ALL_CHAINS]))
	channels = append(channels, eb.channels[chain]...)
	if chain != ALL_CHAINS {
		channels = append(channels, eb.channels[ALL_CHAINS]...)
	}
	return channels
}

// BroadcastEvent never blocks: a subscriber whose buffer is full misses the event.
func (eb *EventBus) BroadcastEvent(event *EventEnvelope) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	if eb.closed {
		return
	}
	for _, channel := range eb.filterChannels(event.Chain) {
		select {
		case channel <- event:
		default:
			log.Warn().Str("chain", event.Chain).Str("event", event.EventType).Msg("[EventBus] [BroadcastEvent] subscriber is full, event dropped")
		}
	}
}

// Subscribe returns a channel receiving events of chain, or of every chain for ALL_CHAINS.
func (eb *EventBus) Subscribe(chain string) <-chan *EventEnvelope {
	receiver := make(chan *EventEnvelope, eb.bufferSize)
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	if eb.closed {
		close(receiver)
		return receiver
	}
	eb.channels[chain] = append(eb.channels[chain], receiver)
	return receiver
}

// Close closes every subscriber channel. Later broadcasts are ignored.
func (eb *EventBus) Close() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	for _, channels := range eb.channels {
		for _, channel := range channels {
			close(channel)
		}
	}
	eb.channels = make(map[string]Channels)
}
