// Package service carries the event plumbing between the canvas, the detail
// panel, and the SSE hub.
package service

// EventType defines the type of event.
type EventType string

const (
	EventTopologyLoaded EventType = "topology_loaded"
	EventLayoutTick     EventType = "layout_tick"
	EventLayoutSettled  EventType = "layout_settled"
	EventNodeSelected   EventType = "node_selected"
	EventSelectionClear EventType = "selection_cleared"
	EventPanelChanged   EventType = "panel_changed"
	EventTooltipChanged EventType = "tooltip_changed"
	EventViewChanged    EventType = "view_changed"
)

// Event represents a state change pushed to connected clients.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events.
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events. Subscriptions happen at
// wiring time, before publishing starts.
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers.
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
