package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()

	var calls []string
	bus.Subscribe(func(Event) { calls = append(calls, "first") })
	bus.Subscribe(func(Event) { calls = append(calls, "second") })
	bus.Subscribe(func(Event) { calls = append(calls, "third") })

	bus.Publish(Event{Origin: OriginLocal})

	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	count := 0
	sub := bus.Subscribe(func(Event) { count++ })

	bus.Publish(Event{})
	sub.Unsubscribe()
	sub.Unsubscribe()
	bus.Publish(Event{})

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.Len())
}

func TestBus_PanickingListenerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	delivered := false
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) { delivered = true })

	require.NotPanics(t, func() {
		bus.Publish(Event{})
	})
	assert.True(t, delivered)
}

func TestBus_ListenerMayUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()

	var sub Subscription
	count := 0
	sub = bus.Subscribe(func(Event) {
		count++
		sub.Unsubscribe()
	})

	bus.Publish(Event{})
	bus.Publish(Event{})

	assert.Equal(t, 1, count)
}

func TestBus_ZeroValueIsUsable(t *testing.T) {
	var bus Bus

	got := 0
	bus.Subscribe(func(Event) { got++ })
	bus.Publish(Event{})

	assert.Equal(t, 1, got)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		deliver bool
	}{
		{"local events always pass", Event{Origin: OriginLocal}, true},
		{"remote event on watched key", Event{Origin: OriginRemote, Key: "token"}, true},
		{"remote event on other key", Event{Origin: OriginRemote, Key: "darkMode"}, false},
		{"remote event without key", Event{Origin: OriginRemote}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewBus()
			got := false

			sub := Filter(bus, "user", "token").Subscribe(func(Event) { got = true })
			defer sub.Unsubscribe()

			bus.Publish(tt.event)

			assert.Equal(t, tt.deliver, got)
		})
	}
}

func TestMerge_SubscribesToEverySource(t *testing.T) {
	a, b := NewBus(), NewBus()

	var origins []Origin
	sub := Merge(a, nil, b).Subscribe(func(e Event) { origins = append(origins, e.Origin) })

	a.Publish(Event{Origin: OriginLocal})
	b.Publish(Event{Origin: OriginRemote, Key: "user"})

	assert.Equal(t, []Origin{OriginLocal, OriginRemote}, origins)

	sub.Unsubscribe()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, b.Len())
}

func TestOrigin_String(t *testing.T) {
	assert.Equal(t, "local", OriginLocal.String())
	assert.Equal(t, "remote", OriginRemote.String())
	assert.Equal(t, "unknown", Origin(42).String())
}
