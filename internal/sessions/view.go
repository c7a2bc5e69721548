package sessions

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/notify"
)

// Projection is what a view renders from the session. An empty DisplayName
// means there is none.
type Projection struct {
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	DisplayName   string `json:"displayName" yaml:"display_name"`
}

// View is a session-aware surface. It derives its projection from the store
// when mounted and again on every change notification, until unmounted.
type View struct {
	store    Store
	onChange func(Projection)

	// Serializes read and delivery so onChange sees projections in read order.
	deliverMu sync.Mutex

	mu      sync.Mutex
	state   Projection
	mounted bool
	sub     notify.Subscription
}

// Mount reads the store, reports the initial projection through onChange and
// subscribes to both local and cross-process changes. onChange may be nil and
// must not change the session itself.
func Mount(store Store, onChange func(Projection)) *View {
	v := &View{
		store:    store,
		onChange: onChange,
		mounted:  true,
	}

	v.mu.Lock()
	v.sub = store.Subscribe(v.handle)
	v.mu.Unlock()

	v.refresh()

	return v
}

func (v *View) handle(event notify.Event) {
	logrus.WithFields(logrus.Fields{
		"origin": event.Origin.String(),
		"key":    event.Key,
	}).Debugln("Session change received")

	v.refresh()
}

func (v *View) refresh() {
	v.deliverMu.Lock()
	defer v.deliverMu.Unlock()

	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	state := v.store.Read().Projection()
	v.state = state
	onChange := v.onChange
	v.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
}

// State returns the projection derived at the last mount or notification.
func (v *View) State() Projection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Unmount stops listening. Notifications arriving afterwards are ignored.
func (v *View) Unmount() {
	v.mu.Lock()
	sub := v.sub
	v.mounted = false
	v.sub = nil
	v.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
