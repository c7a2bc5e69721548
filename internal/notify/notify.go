package notify

import (
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// Origin tells a listener where a change came from.
type Origin int

const (
	// OriginLocal is a change made by this process. Local events carry no key.
	OriginLocal Origin = iota
	// OriginRemote is a change made by another process sharing the state directory.
	OriginRemote
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners whenever watched state may have changed.
// Listeners re-read the state they care about; the event itself is only a hint.
type Event struct {
	Origin Origin
	Key    string
}

type Listener func(Event)

// Subscription releases a listener. Unsubscribe is safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// Source is anything a listener can subscribe to.
type Source interface {
	Subscribe(fn Listener) Subscription
}

// Handle identifies a listener inside a Bus.
type Handle uint64

// Bus is an in-process publish/subscribe channel. Listeners are kept in an
// arena keyed by handle and called synchronously, in subscription order,
// from Publish.
type Bus struct {
	mu        sync.Mutex
	next      Handle
	listeners map[Handle]Listener
}

func NewBus() *Bus {
	return &Bus{
		listeners: make(map[Handle]Listener),
	}
}

func (b *Bus) Subscribe(fn Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.listeners == nil {
		b.listeners = make(map[Handle]Listener)
	}

	b.next++
	handle := b.next
	b.listeners[handle] = fn

	return &busSubscription{bus: b, handle: handle}
}

func (b *Bus) remove(handle Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, handle)
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Publish delivers the event to every listener subscribed at the time of the
// call. The lock is not held while listeners run, so a listener may
// subscribe, unsubscribe or publish again.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	handles := make([]Handle, 0, len(b.listeners))
	for handle := range b.listeners {
		handles = append(handles, handle)
	}
	slices.Sort(handles)
	listeners := make([]Listener, 0, len(handles))
	for _, handle := range handles {
		listeners = append(listeners, b.listeners[handle])
	}
	b.mu.Unlock()

	for i, fn := range listeners {
		deliver(handles[i], fn, event)
	}
}

// deliver runs one listener. Delivery is best effort: a failing listener is
// logged and the remaining listeners still run.
func deliver(handle Handle, fn Listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"handle": handle,
				"origin": event.Origin.String(),
				"key":    event.Key,
				"panic":  r,
			}).Debugln("Change listener failed")
		}
	}()
	fn(event)
}

type busSubscription struct {
	once   sync.Once
	bus    *Bus
	handle Handle
}

func (s *busSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.handle)
	})
}
