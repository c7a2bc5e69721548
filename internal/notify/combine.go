package notify

import (
	"slices"
)

// Filter passes local events through untouched and remote events only when
// their key is one of keys.
func Filter(src Source, keys ...string) Source {
	return &filtered{src: src, keys: slices.Clone(keys)}
}

type filtered struct {
	src  Source
	keys []string
}

func (f *filtered) Subscribe(fn Listener) Subscription {
	return f.src.Subscribe(func(event Event) {
		if event.Origin == OriginRemote && !slices.Contains(f.keys, event.Key) {
			return
		}
		fn(event)
	})
}

// Merge joins several sources into one. Nil sources are skipped.
func Merge(sources ...Source) Source {
	return merged(sources)
}

type merged []Source

func (m merged) Subscribe(fn Listener) Subscription {
	subs := make(multiSubscription, 0, len(m))
	for _, src := range m {
		if src == nil {
			continue
		}
		subs = append(subs, src.Subscribe(fn))
	}
	return &subs
}

type multiSubscription []Subscription

func (s *multiSubscription) Unsubscribe() {
	for _, sub := range *s {
		sub.Unsubscribe()
	}
}
