package sessions

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/notify"
	"github.com/thinkpad-online/notes/internal/router"
	"github.com/thinkpad-online/notes/internal/storage"
)

func TestView_MountOnEmptyStore(t *testing.T) {
	m, _ := newTestManager(t)

	var rendered []Projection
	v := Mount(m, func(p Projection) { rendered = append(rendered, p) })
	defer v.Unmount()

	assert.Equal(t, Projection{Authenticated: false, DisplayName: ""}, v.State())
	assert.Equal(t, []Projection{{}}, rendered)
}

func TestView_UpdatesOnWrite(t *testing.T) {
	m, _ := newTestManager(t)
	v := Mount(m, nil)
	defer v.Unmount()

	require.NoError(t, m.Write(models.User{ID: "u1", Name: "Ana"}, "tok123"))

	assert.Equal(t, Projection{Authenticated: true, DisplayName: "Ana"}, v.State())
}

func TestView_EveryMountedViewMatchesFreshRead(t *testing.T) {
	m, _ := newTestManager(t)

	views := []*View{Mount(m, nil), Mount(m, nil), Mount(m, nil)}
	defer func() {
		for _, v := range views {
			v.Unmount()
		}
	}()

	steps := []func() error{
		func() error { return m.Write(models.User{ID: "u1", Name: "Ana"}, "tok1") },
		func() error { return m.Write(models.User{ID: "u2", Username: "bo"}, "tok2") },
		m.Clear,
		m.Clear,
		func() error { return m.Write(models.User{ID: "u3", Name: "Cy"}, "tok3") },
	}

	for i, step := range steps {
		require.NoError(t, step())
		fresh := m.Read().Projection()
		for _, v := range views {
			assert.Equal(t, fresh, v.State(), "step %d", i)
		}
	}
}

func TestView_UnmountReleasesSubscriptions(t *testing.T) {
	bus := notify.NewBus()
	m := NewSessionManager(storage.NewMemory(), bus)

	renders := 0
	v := Mount(m, func(Projection) { renders++ })
	assert.Equal(t, 1, m.local.Len())
	assert.Equal(t, 1, bus.Len())

	v.Unmount()
	v.Unmount()

	assert.False(t, v.Mounted())
	assert.Equal(t, 0, m.local.Len())
	assert.Equal(t, 0, bus.Len())

	require.NoError(t, m.Write(models.User{ID: "u1", Name: "Ana"}, "tok"))
	assert.Equal(t, 1, renders)
	assert.False(t, v.State().Authenticated)
}

func TestView_RefreshesOnRemoteSessionKeysOnly(t *testing.T) {
	remote := notify.NewBus()
	kv := storage.NewMemory()
	m := NewSessionManager(kv, remote)

	renders := 0
	v := Mount(m, func(Projection) { renders++ })
	defer v.Unmount()

	// Another process logs in: the files change underneath us.
	require.NoError(t, kv.Set(KeyToken, []byte("tok123")))
	require.NoError(t, kv.Set(KeyUser, []byte(`{"_id":"u1","name":"Ana"}`)))

	remote.Publish(notify.Event{Origin: notify.OriginRemote, Key: "darkMode"})
	assert.Equal(t, 1, renders)
	assert.False(t, v.State().Authenticated)

	remote.Publish(notify.Event{Origin: notify.OriginRemote, Key: KeyUser})
	assert.Equal(t, 2, renders)
	assert.Equal(t, Projection{Authenticated: true, DisplayName: "Ana"}, v.State())
}

func TestView_RecordWithoutCredentialIsNotAuthenticated(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(KeyUser, []byte(`{"id":"u1","name":"Ana"}`)))

	v := Mount(NewSessionManager(kv, nil), nil)
	defer v.Unmount()

	assert.Equal(t, Projection{}, v.State())
}

type recordingNavigator struct {
	paths []string
	err   error
}

func (n *recordingNavigator) Navigate(path string) error {
	n.paths = append(n.paths, path)
	return n.err
}

func TestLogin_WritesNotifiesAndNavigates(t *testing.T) {
	m, _ := newTestManager(t)
	v := Mount(m, nil)
	defer v.Unmount()

	nav := &recordingNavigator{}
	err := Login(m, nav, &models.AuthResponse{User: models.User{ID: "u1", Name: "Ana"}, Token: "tok123"})
	require.NoError(t, err)

	assert.Equal(t, Projection{Authenticated: true, DisplayName: "Ana"}, v.State())
	assert.Equal(t, []string{"/dashboard"}, nav.paths)
}

func TestLogin_RejectsResponseWithoutToken(t *testing.T) {
	m, _ := newTestManager(t)
	nav := &recordingNavigator{}

	assert.ErrorIs(t, Login(m, nav, &models.AuthResponse{User: models.User{ID: "u1"}}), ErrMissingCredential)
	assert.ErrorIs(t, Login(m, nav, nil), ErrMissingCredential)
	assert.Empty(t, nav.paths)
	assert.False(t, m.Read().Present())
}

func TestLogout_ClearsNotifiesAndNavigates(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Write(models.User{ID: "u1", Name: "Ana"}, "tok123"))

	var rendered []Projection
	v := Mount(m, func(p Projection) { rendered = append(rendered, p) })
	defer v.Unmount()

	r := router.New(func() bool { return v.State().Authenticated })
	require.NoError(t, r.Navigate("/dashboard"))
	require.Equal(t, router.Dashboard, r.Current().Route)

	require.NoError(t, Logout(m, r))

	assert.False(t, m.Read().Present())
	assert.Equal(t, Projection{}, v.State())
	assert.Equal(t, Projection{}, rendered[len(rendered)-1])
	assert.Equal(t, router.Home, r.Current().Route)
}

func TestLogout_PropagatesNavigationErrors(t *testing.T) {
	m, _ := newTestManager(t)
	nav := &recordingNavigator{err: errors.New("no route")}

	assert.Error(t, Logout(m, nav))
	assert.Equal(t, []string{"/"}, nav.paths)
}

// countingStore hands out a new display name on every read.
type countingStore struct {
	bus   *notify.Bus
	reads atomic.Int64
}

func (s *countingStore) Read() Snapshot {
	n := s.reads.Add(1)
	return Snapshot{Record: &models.User{ID: "u1", Name: fmt.Sprintf("%06d", n)}, Credential: "tok"}
}

func (s *countingStore) Write(models.User, string) error { return nil }
func (s *countingStore) Clear() error                    { return nil }

func (s *countingStore) Subscribe(fn notify.Listener) notify.Subscription {
	return s.bus.Subscribe(fn)
}

func TestView_ConcurrentRefreshesDeliverInReadOrder(t *testing.T) {
	store := &countingStore{bus: notify.NewBus()}

	var mu sync.Mutex
	var delivered []string
	v := Mount(store, func(p Projection) {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, p.DisplayName)
	})
	defer v.Unmount()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				store.bus.Publish(notify.Event{Origin: notify.OriginRemote, Key: KeyUser})
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, delivered, 201)
	for i := 1; i < len(delivered); i++ {
		assert.Less(t, delivered[i-1], delivered[i], "delivery %d", i)
	}
	assert.Equal(t, delivered[len(delivered)-1], v.State().DisplayName)
}
