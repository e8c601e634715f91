package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster is an in-process Broadcaster. Delivery never blocks: a
// subscriber whose buffer is full misses the message.
type MemoryBroadcaster[T any] struct {
	mu     sync.RWMutex
	subs   map[*memorySubscriber[T]]struct{}
	buffer int
	closed bool
}

// NewMemoryBroadcaster creates a broadcaster with bufferSize slots per subscriber.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &MemoryBroadcaster[T]{
		subs:   make(map[*memorySubscriber[T]]struct{}),
		buffer: bufferSize,
	}
}

// Subscribe registers a subscriber. It is removed when ctx is done or Close is
// called on it. Subscribing to a closed broadcaster yields a closed subscriber.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	sub := &memorySubscriber[T]{
		ch:     make(chan Message[T], b.buffer),
		parent: b,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.closeChannel()
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done():
		}
	}()

	return sub
}

// Broadcast delivers msg to every subscriber with room in its buffer.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}
	for sub := range b.subs {
		sub.deliver(msg)
	}
	return nil
}

// Len returns the number of active subscribers.
func (b *MemoryBroadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber. Further broadcasts are dropped.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[*memorySubscriber[T]]struct{})
	b.mu.Unlock()

	for sub := range subs {
		sub.closeChannel()
	}
	return nil
}

func (b *MemoryBroadcaster[T]) remove(sub *memorySubscriber[T]) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

type memorySubscriber[T any] struct {
	mu     sync.Mutex
	ch     chan Message[T]
	stop   chan struct{}
	once   sync.Once
	closed bool
	parent *MemoryBroadcaster[T]
}

func (s *memorySubscriber[T]) done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		s.stop = make(chan struct{})
		if s.closed {
			close(s.stop)
		}
	}
	return s.stop
}

func (s *memorySubscriber[T]) deliver(msg Message[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- msg:
	default:
	}
}

// Receive returns the message channel. It is closed with the subscriber.
func (s *memorySubscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

// Close unsubscribes and closes the message channel.
func (s *memorySubscriber[T]) Close() error {
	s.parent.remove(s)
	s.closeChannel()
	return nil
}

func (s *memorySubscriber[T]) closeChannel() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		close(s.ch)
		if s.stop != nil {
			close(s.stop)
		}
	})
}
