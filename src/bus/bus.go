// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package bus dispatches notifications to the listeners of a channel.
package bus

import (
	"context"
	"sync"

	"github.com/hexya-erp/quickboard/src/tools/logging"
)

var log logging.Logger

// subscriberBuffer is the number of messages a subscriber may lag behind
const subscriberBuffer = 16

// A Message is a notification published on a channel
type Message struct {
	Channel string      `json:"channel"`
	Payload interface{} `json:"payload"`
}

// A Publisher sends payloads to the listeners of a channel
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

type subscriber struct {
	ch chan Message
}

// A Bus delivers messages to the in-process subscribers of a channel.
//
// Delivery never blocks the publisher: a message is dropped for a
// subscriber whose buffer is full.
type Bus struct {
	sync.RWMutex
	subscribers map[string]map[*subscriber]bool
}

// New returns a new Bus without subscribers
func New() *Bus {
	return &Bus{
		subscribers: make(map[string]map[*subscriber]bool),
	}
}

// Subscribe returns a channel receiving the messages published on the given
// channel name, and a function to unsubscribe. The returned channel is closed
// when unsubscribing.
func (b *Bus) Subscribe(channel string) (<-chan Message, func()) {
	sub := &subscriber{ch: make(chan Message, subscriberBuffer)}
	b.Lock()
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[*subscriber]bool)
	}
	b.subscribers[channel][sub] = true
	b.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.Lock()
			delete(b.subscribers[channel], sub)
			if len(b.subscribers[channel]) == 0 {
				delete(b.subscribers, channel)
			}
			b.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish sends the given payload to all the subscribers of channel
func (b *Bus) Publish(_ context.Context, channel string, payload interface{}) error {
	msg := Message{Channel: channel, Payload: payload}
	b.RLock()
	defer b.RUnlock()
	for sub := range b.subscribers[channel] {
		select {
		case sub.ch <- msg:
		default:
			log.Warn("Dropping message for slow subscriber", "channel", channel)
		}
	}
	return nil
}

// SubscribersCount returns the number of subscribers of the given channel
func (b *Bus) SubscribersCount(channel string) int {
	b.RLock()
	defer b.RUnlock()
	return len(b.subscribers[channel])
}

// A Fanout publishes to several publishers.
// All publishers are called, the first error is returned.
type Fanout []Publisher

// Publish sends the given payload to all the publishers of this Fanout
func (f Fanout) Publish(ctx context.Context, channel string, payload interface{}) error {
	var firstErr error
	for _, p := range f {
		if err := p.Publish(ctx, channel, payload); err != nil {
			log.Warn("Publisher failed", "channel", channel, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func init() {
	log = logging.GetLogger("bus")
}
