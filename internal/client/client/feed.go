package client

import (
	"context"
	"sync"
)

const feedBuffer = 16

// feed fans identity events out to any number of subscribers. New
// subscribers immediately receive the latest event, if any. Delivery never
// blocks the publisher: when a subscriber's buffer is full its oldest
// pending event is dropped.
type feed struct {
	mu      sync.Mutex
	subs    map[chan IdentityEvent]struct{}
	current IdentityEvent
	ready   bool
	closed  bool
	done    chan struct{}
}

func newFeed() *feed {
	return &feed{
		subs: make(map[chan IdentityEvent]struct{}),
		done: make(chan struct{}),
	}
}

func (f *feed) subscribe(ctx context.Context) <-chan IdentityEvent {
	ch := make(chan IdentityEvent, feedBuffer)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(ch)
		return ch
	}
	f.subs[ch] = struct{}{}
	if f.ready {
		ch <- f.current
	}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			f.unsubscribe(ch)
		case <-f.done:
		}
	}()

	return ch
}

func (f *feed) unsubscribe(ch chan IdentityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[ch]; ok {
		delete(f.subs, ch)
		close(ch)
	}
}

func (f *feed) publish(ev IdentityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.current = ev
	f.ready = true
	for ch := range f.subs {
		deliver(ch, ev)
	}
}

func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.done)
	for ch := range f.subs {
		delete(f.subs, ch)
		close(ch)
	}
}

// deliver must be called with the feed lock held; the feed is the only
// sender, so after dropping one event there is room for the new one.
func deliver(ch chan IdentityEvent, ev IdentityEvent) {
	select {
	case ch <- ev:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}
