package stream

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrAlreadyAttached = goerr.New("channel is already attached to a producer")
	ErrChannelClosed   = goerr.New("channel closed")
)

// Stamped is a payload annotated with the wall-clock time at which the
// channel observed it. It is immutable once created.
type Stamped[T any] struct {
	Payload    T
	CapturedAt time.Time
}

// Channel observes exactly one producer, stamps every item with its capture
// time, and fans items out to any number of subscribers. Each subscriber
// owns an unbounded queue, so a slow consumer never backpressures the
// producer or the other consumers. The producer channel itself is never
// paused or closed by this type.
type Channel[T any] struct {
	mu       sync.Mutex
	attached bool
	stop     chan struct{}
	subs     map[uint64]*Subscription[T]
	nextID   uint64
}

// New creates a detached channel. Subscribers may join before a producer
// is attached; they simply receive nothing until items flow.
func New[T any]() *Channel[T] {
	return &Channel[T]{
		subs: make(map[uint64]*Subscription[T]),
	}
}

// Attach starts consuming the producer. It fails with ErrAlreadyAttached
// if a producer is still attached. When the producer channel is closed,
// the Channel detaches itself and terminates all subscriptions after
// their queues drain.
func (c *Channel[T]) Attach(producer <-chan T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attached {
		return goerr.Wrap(ErrAlreadyAttached, "attach rejected")
	}

	c.attached = true
	c.stop = make(chan struct{})
	go c.pump(producer, c.stop)

	return nil
}

// Detach stops consuming the producer. Items already queued to subscribers
// are still delivered; afterwards each subscription ends with
// ErrChannelClosed. Calling Detach on a detached channel is a no-op.
func (c *Channel[T]) Detach() {
	c.terminate(nil)
}

// Fail propagates a producer-side error to every subscriber as a terminal
// event and implicitly detaches the channel.
func (c *Channel[T]) Fail(err error) {
	c.terminate(err)
}

// Subscribe registers a new consumer. The subscription yields only items
// emitted after this call; there is no backfill.
func (c *Channel[T]) Subscribe() *Subscription[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++

	sub := &Subscription[T]{
		signal: make(chan struct{}, 1),
		cancel: func() { c.unsubscribe(id) },
	}
	c.subs[id] = sub

	return sub
}

func (c *Channel[T]) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, id)
}

func (c *Channel[T]) pump(producer <-chan T, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case v, ok := <-producer:
			if !ok {
				c.terminate(nil)
				return
			}
			c.broadcast(Stamped[T]{Payload: v, CapturedAt: time.Now()})
		}
	}
}

// broadcast delivers one item to all current subscribers. The attached
// check and the delivery happen under the channel lock so that no item is
// emitted after Detach returns.
func (c *Channel[T]) broadcast(item Stamped[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached {
		return
	}
	for _, sub := range c.subs {
		sub.push(item)
	}
}

func (c *Channel[T]) terminate(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attached {
		c.attached = false
		close(c.stop)
	}

	for id, sub := range c.subs {
		sub.finish(cause)
		delete(c.subs, id)
	}
}

// Subscription is one consumer's view of a Channel. It buffers without
// bound and preserves emission order.
type Subscription[T any] struct {
	mu     sync.Mutex
	queue  []Stamped[T]
	done   bool
	err    error
	signal chan struct{}
	cancel func()
}

// Next returns the next item. It blocks until an item arrives, the context
// is done, or the subscription terminates. After the channel detaches, the
// remaining queued items are still returned before the terminal error
// (ErrChannelClosed, or the producer error passed to Fail).
func (s *Subscription[T]) Next(ctx context.Context) (Stamped[T], error) {
	var zero Stamped[T]

	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			item := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return item, nil
		}
		if s.done {
			err := s.err
			s.mu.Unlock()
			if err == nil {
				err = ErrChannelClosed
			}
			return zero, err
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-s.signal:
		}
	}
}

// Close unsubscribes from the channel and discards queued items.
func (s *Subscription[T]) Close() {
	if s.cancel != nil {
		s.cancel()
	}

	s.mu.Lock()
	s.queue = nil
	s.done = true
	s.mu.Unlock()
	s.kick()
}

func (s *Subscription[T]) push(item Stamped[T]) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, item)
	s.mu.Unlock()
	s.kick()
}

func (s *Subscription[T]) finish(cause error) {
	s.mu.Lock()
	if !s.done {
		s.done = true
		s.err = cause
	}
	s.mu.Unlock()
	s.kick()
}

func (s *Subscription[T]) kick() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}
