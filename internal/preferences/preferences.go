package preferences

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/notify"
	"github.com/thinkpad-online/notes/internal/storage"
)

const KeyDarkMode = "darkMode"

// Preferences holds display settings. They are stored apart from the session
// and outlive login and logout.
type Preferences struct {
	kv     storage.KV
	local  *notify.Bus
	remote notify.Source
}

func New(kv storage.KV, remote notify.Source) *Preferences {
	return &Preferences{
		kv:     kv,
		local:  notify.NewBus(),
		remote: remote,
	}
}

// DarkMode defaults to false when unset or unreadable.
func (p *Preferences) DarkMode() bool {
	data, ok, err := p.kv.Get(KeyDarkMode)
	if err != nil {
		logrus.WithError(err).Warnln("Failed to read dark mode preference")
		return false
	}
	if !ok {
		return false
	}

	var dark bool
	if err := json.Unmarshal(data, &dark); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"value": string(data),
		}).Warnln("Ignoring malformed dark mode preference")
		return false
	}
	return dark
}

func (p *Preferences) SetDarkMode(dark bool) error {
	data, err := json.Marshal(dark)
	if err != nil {
		return err
	}

	if err := p.kv.Set(KeyDarkMode, data); err != nil {
		return fmt.Errorf("failed to store dark mode preference: %w", err)
	}

	p.local.Publish(notify.Event{Origin: notify.OriginLocal, Key: KeyDarkMode})
	return nil
}

// Toggle flips dark mode and returns the new value.
func (p *Preferences) Toggle() (bool, error) {
	dark := !p.DarkMode()
	if err := p.SetDarkMode(dark); err != nil {
		return !dark, err
	}
	return dark, nil
}

func (p *Preferences) Subscribe(fn notify.Listener) notify.Subscription {
	sources := []notify.Source{p.local}
	if p.remote != nil {
		sources = append(sources, notify.Filter(p.remote, KeyDarkMode))
	}
	return notify.Merge(sources...).Subscribe(fn)
}
