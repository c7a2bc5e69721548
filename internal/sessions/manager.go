package sessions

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/notify"
	"github.com/thinkpad-online/notes/internal/storage"
)

// Storage keys holding the session pair.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// Store is the persisted session: a user record and its bearer credential,
// always written and cleared together.
type Store interface {
	Read() Snapshot
	Write(record models.User, credential string) error
	Clear() error
	Subscribe(fn notify.Listener) notify.Subscription
}

// Snapshot is the result of a Read. Record and Credential are either both set
// or both empty.
type Snapshot struct {
	Record     *models.User
	Credential string
}

func (s Snapshot) Present() bool {
	return s.Record != nil && len(s.Credential) > 0
}

func (s Snapshot) Projection() Projection {
	if !s.Present() {
		return Projection{}
	}
	return Projection{
		Authenticated: true,
		DisplayName:   s.Record.GetName(),
	}
}

// SessionManager implements Store on top of a key/value store. Writes and
// clears are announced on a local bus; changes made by other processes arrive
// through the optional remote source.
type SessionManager struct {
	kv     storage.KV
	local  *notify.Bus
	remote notify.Source
}

var _ Store = (*SessionManager)(nil)

func NewSessionManager(kv storage.KV, remote notify.Source) *SessionManager {
	return &SessionManager{
		kv:     kv,
		local:  notify.NewBus(),
		remote: remote,
	}
}

// Read never fails: anything that cannot be trusted is reported as logged out.
func (m *SessionManager) Read() Snapshot {

	userData, hasUser, err := m.kv.Get(KeyUser)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to read session record, treating as logged out")
		return Snapshot{}
	}

	tokenData, hasToken, err := m.kv.Get(KeyToken)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to read session credential, treating as logged out")
		return Snapshot{}
	}

	credential := string(tokenData)
	hasToken = hasToken && len(credential) > 0

	if !hasUser && !hasToken {
		return Snapshot{}
	}

	if hasUser != hasToken {
		logrus.WithFields(logrus.Fields{
			"hasRecord":     hasUser,
			"hasCredential": hasToken,
		}).Warnln("Incomplete session found, treating as logged out")
		return Snapshot{}
	}

	var record models.User
	if err := json.Unmarshal(userData, &record); err != nil {
		logrus.WithError(&SerializationError{Key: KeyUser, Err: err}).
			Errorln("Stored session record is malformed, treating as logged out")
		return Snapshot{}
	}

	return Snapshot{
		Record:     &record,
		Credential: credential,
	}
}

// Write replaces the stored session. The record is encoded before anything is
// touched, so an encoding failure leaves the previous session in place.
func (m *SessionManager) Write(record models.User, credential string) error {

	if len(credential) == 0 {
		return ErrMissingCredential
	}

	data, err := json.Marshal(record)
	if err != nil {
		return &SerializationError{Key: KeyUser, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"user": record.ID,
		"name": record.GetName(),
	}).Debugln("Writing session")

	if err := m.kv.Set(KeyToken, []byte(credential)); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	if err := m.kv.Set(KeyUser, data); err != nil {
		// Keep the pair consistent: a credential without its record reads as
		// logged out anyway, but do not leave it lying around.
		if rmErr := m.kv.Remove(KeyToken); rmErr != nil {
			logrus.WithError(rmErr).Warnln("Failed to roll back credential")
		}
		m.publish()
		return fmt.Errorf("failed to store session record: %w", err)
	}

	m.publish()
	return nil
}

// Clear removes the stored session. Clearing an empty store is a no-op apart
// from the notification.
func (m *SessionManager) Clear() error {

	logrus.Debugln("Clearing session")

	var firstErr error
	for _, key := range []string{KeyUser, KeyToken} {
		if err := m.kv.Remove(key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}

	m.publish()
	return firstErr
}

// Subscribe delivers every local change and remote changes to the session keys.
func (m *SessionManager) Subscribe(fn notify.Listener) notify.Subscription {
	sources := []notify.Source{m.local}
	if m.remote != nil {
		sources = append(sources, notify.Filter(m.remote, KeyUser, KeyToken))
	}
	return notify.Merge(sources...).Subscribe(fn)
}

func (m *SessionManager) publish() {
	m.local.Publish(notify.Event{Origin: notify.OriginLocal})
}
