package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventCollisionBegin = "CollisionBegin"
	EventCollisionEnd   = "CollisionEnd"
)

// CollisionEvent is the payload of EventCollisionBegin and EventCollisionEnd.
type CollisionEvent struct {
	A Entity
	B Entity
}

// EventQueue is a FIFO queue. Subscribers are invoked when the owning world
// flushes the queue at the end of an update.
type EventQueue struct {
	items       []Event
	subscribers map[string][]func(Event)
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Subscribe registers fn for events of the given type.
func (q *EventQueue) Subscribe(eventType string, fn func(Event)) {
	if q == nil || fn == nil {
		return
	}
	if q.subscribers == nil {
		q.subscribers = make(map[string][]func(Event))
	}
	q.subscribers[eventType] = append(q.subscribers[eventType], fn)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue without dispatching.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// flush dispatches queued events in order. Events pushed by a subscriber
// are delivered on the next flush.
func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	for _, evt := range q.Drain() {
		for _, fn := range q.subscribers[evt.Type] {
			fn(evt)
		}
	}
}
