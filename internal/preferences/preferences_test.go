package preferences

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/notify"
	"github.com/thinkpad-online/notes/internal/sessions"
	"github.com/thinkpad-online/notes/internal/storage"
)

func TestPreferences_DefaultsToLight(t *testing.T) {
	p := New(storage.NewMemory(), nil)
	assert.False(t, p.DarkMode())
}

func TestPreferences_Toggle(t *testing.T) {
	kv := storage.NewMemory()
	p := New(kv, nil)

	dark, err := p.Toggle()
	require.NoError(t, err)
	assert.True(t, dark)
	assert.True(t, p.DarkMode())

	stored, _, _ := kv.Get(KeyDarkMode)
	assert.Equal(t, "true", string(stored))

	dark, err = p.Toggle()
	require.NoError(t, err)
	assert.False(t, dark)
}

func TestPreferences_MalformedValueReadsLight(t *testing.T) {
	for _, value := range []string{"yes", "", "{", "1"} {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(KeyDarkMode, []byte(value)))
		assert.False(t, New(kv, nil).DarkMode(), value)
	}
}

func TestPreferences_SurviveLogout(t *testing.T) {
	kv := storage.NewMemory()
	p := New(kv, nil)
	store := sessions.NewSessionManager(kv, nil)

	require.NoError(t, p.SetDarkMode(true))
	require.NoError(t, store.Write(models.User{ID: "u1", Name: "Ana"}, "tok"))
	require.NoError(t, store.Clear())

	assert.True(t, p.DarkMode())
}

func TestPreferences_Subscribe(t *testing.T) {
	remote := notify.NewBus()
	p := New(storage.NewMemory(), remote)

	var keys []string
	sub := p.Subscribe(func(e notify.Event) { keys = append(keys, e.Key) })

	require.NoError(t, p.SetDarkMode(true))
	remote.Publish(notify.Event{Origin: notify.OriginRemote, Key: sessions.KeyUser})
	remote.Publish(notify.Event{Origin: notify.OriginRemote, Key: KeyDarkMode})

	sub.Unsubscribe()
	require.NoError(t, p.SetDarkMode(false))

	assert.Equal(t, []string{KeyDarkMode, KeyDarkMode}, keys)
}

func TestPreferences_RemoteToggleBackIsReported(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dirA, err := storage.NewDir(root)
	require.NoError(t, err)
	watchA, err := dirA.Watch(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	defer watchA.Close()

	dirB, err := storage.NewDir(root)
	require.NoError(t, err)

	a := New(dirA, watchA)
	b := New(dirB, nil)

	var mu sync.Mutex
	var remote int
	sub := a.Subscribe(func(e notify.Event) {
		if e.Origin == notify.OriginRemote {
			mu.Lock()
			remote++
			mu.Unlock()
		}
	})
	defer sub.Unsubscribe()

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return remote
	}

	require.NoError(t, a.SetDarkMode(true))

	require.NoError(t, b.SetDarkMode(false))
	require.Eventually(t, func() bool { return count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	seen := count()

	require.NoError(t, b.SetDarkMode(true))
	require.Eventually(t, func() bool { return count() > seen }, 2*time.Second, 10*time.Millisecond)

	assert.True(t, a.DarkMode())
}
