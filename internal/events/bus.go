// Package events is the in-process change-notification primitive: writers
// publish insert/update/delete events for a table, console subscribers
// receive them asynchronously and re-fetch.
package events

import (
	"sync"
	"time"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Change describes one row-level change.
type Change struct {
	Table    string    `json:"table"`
	Type     EventType `json:"type"`
	RecordID string    `json:"recordId"`
	At       time.Time `json:"at"`
}

// Bus fans out changes to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event (consumers re-fetch on
// every event, so a dropped event at worst delays one refresh).
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Subscribe registers a listener. The returned cancel function releases the
// subscription and must always be paired with the acquisition.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Change, 16)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers a change to every subscriber.
func (b *Bus) Publish(table string, typ EventType, recordID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	change := Change{Table: table, Type: typ, RecordID: recordID, At: time.Now().UTC()}
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// Close tears down the bus and all remaining subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
