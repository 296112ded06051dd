package events

import "github.com/sherpas/supply/pkg/types"

const (
	EVENT_SUPPLY_READ    = "Supply.Read"
	EVENT_SUPPLY_FAILURE = "Supply.ReadFailed"
)

// ALL_CHAINS subscribes to events of every chain.
const ALL_CHAINS = "*"

type EventEnvelope struct {
	EventType string
	Chain     string
	Data      *types.ReadResult
}

func NewReadEnvelope(result *types.ReadResult) *EventEnvelope {
	eventType := EVENT_SUPPLY_READ
	if result.IsError() {
		eventType = EVENT_SUPPLY_FAILURE
	}
	return &EventEnvelope{
		EventType: eventType,
		Chain:     result.Chain,
		Data:      result,
	}
}
