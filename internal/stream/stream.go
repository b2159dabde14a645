// Package stream fans chat messages out to the WebSocket clients
// attached to a room. Delivery is best-effort: history is the durable
// record, the broker only relays live traffic.
package stream

import (
	"context"
	"sync"

	"ideora.org/internal/platform"
)

type subscriber struct {
	roomID string
	ch     chan platform.ChatMessage
}

// Broker fan-outs messages per chat room.
type Broker struct {
	mu   sync.RWMutex
	subs map[int]*subscriber
	next int
}

// NewBroker initialises an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*subscriber)}
}

// Subscribe registers a subscriber for one room and returns a channel
// which will receive messages. The channel is closed when the provided
// context ends.
func (b *Broker) Subscribe(ctx context.Context, roomID string) <-chan platform.ChatMessage {
	sub := &subscriber{roomID: roomID, ch: make(chan platform.ChatMessage, 16)}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(sub.ch)
		b.mu.Unlock()
	}()

	return sub.ch
}

// Publish fan-outs the message to every subscriber of its room.
func (b *Broker) Publish(msg platform.ChatMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.roomID != msg.RoomID {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// Subscribers reports the number of live subscribers in a room.
func (b *Broker) Subscribers(roomID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, sub := range b.subs {
		if sub.roomID == roomID {
			n++
		}
	}
	return n
}
