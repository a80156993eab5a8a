/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"github.com/sasha-s/go-deadlock"
)

// Topic fans values out to every subscriber without blocking the publisher.
// A subscriber whose buffer is full misses that value.
type Topic[T any] struct {
	subscribers map[chan T]struct{}
	buffer      int
	closed      bool
	mutex       deadlock.Mutex
}

func NewTopic[T any](buffer int) *Topic[T] {
	return &Topic[T]{
		subscribers: make(map[chan T]struct{}),
		buffer:      buffer,
	}
}

func (t *Topic[T]) Publish(value T) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for subscriber := range t.subscribers {
		select {
		case subscriber <- value:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscribers receive an
// already-closed channel.
func (t *Topic[T]) Close() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return
	}
	t.closed = true

	for subscriber := range t.subscribers {
		close(subscriber)
		delete(t.subscribers, subscriber)
	}
}

func (t *Topic[T]) Len() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return len(t.subscribers)
}

type Subscriber[T any] struct {
	channel chan T
	topic   *Topic[T]
}

func (t *Topic[T]) Subscribe() *Subscriber[T] {
	channel := make(chan T, t.buffer)

	t.mutex.Lock()
	if t.closed {
		close(channel)
	} else {
		t.subscribers[channel] = struct{}{}
	}
	t.mutex.Unlock()

	return &Subscriber[T]{channel, t}
}

func (s *Subscriber[T]) Recv() <-chan T {
	return s.channel
}

func (s *Subscriber[T]) Done() {
	topic := s.topic
	topic.mutex.Lock()
	delete(topic.subscribers, s.channel)
	topic.mutex.Unlock()
}
