package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thinkpad-online/notes/internal/notify"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"user", true},
		{"token", true},
		{"darkMode", true},
		{"some_key-1", true},
		{"", false},
		{"../etc/passwd", false},
		{"a/b", false},
		{".hidden", false},
		{"with space", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidKey)
			}
		})
	}
}

func testKVs(t *testing.T) map[string]KV {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	return map[string]KV{
		"memory": NewMemory(),
		"dir":    dir,
	}
}

func TestKV_SetGetRemove(t *testing.T) {
	for name, kv := range testKVs(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get("token")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("token", []byte("tok123")))

			value, ok, err := kv.Get("token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("tok123"), value)

			require.NoError(t, kv.Set("token", []byte("tok456")))
			value, _, _ = kv.Get("token")
			assert.Equal(t, []byte("tok456"), value)

			require.NoError(t, kv.Remove("token"))
			require.NoError(t, kv.Remove("token"))

			_, ok, err = kv.Get("token")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestKV_RejectsInvalidKeys(t *testing.T) {
	for name, kv := range testKVs(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, kv.Set("../x", []byte("v")), ErrInvalidKey)
			assert.ErrorIs(t, kv.Remove("a/b"), ErrInvalidKey)
			_, _, err := kv.Get("")
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestDir_FilesAreOwnerOnly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "state", "nested")

	dir, err := NewDir(root)
	require.NoError(t, err)
	require.NoError(t, dir.Set("token", []byte("secret")))

	info, err := os.Stat(filepath.Join(root, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestNewDir_EmptyPath(t *testing.T) {
	_, err := NewDir("")
	assert.Error(t, err)
}

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) listen(e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.events))
	for _, e := range r.events {
		keys = append(keys, e.Key)
	}
	return keys
}

func TestWatcher_ReportsOtherWritersOnly(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer, err := NewDir(root)
	require.NoError(t, err)
	reader, err := NewDir(root)
	require.NoError(t, err)

	writerWatch, err := writer.Watch(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	defer writerWatch.Close()

	readerWatch, err := reader.Watch(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	defer readerWatch.Close()

	var own, other recorder
	writerWatch.Subscribe(own.listen)
	readerWatch.Subscribe(other.listen)

	require.NoError(t, writer.Set("token", []byte("tok123")))

	require.Eventually(t, func() bool {
		return len(other.keys()) >= 1
	}, 2*time.Second, 10*time.Millisecond)
	seen := len(other.keys())

	require.NoError(t, writer.Remove("token"))

	require.Eventually(t, func() bool {
		return len(other.keys()) > seen
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, own.keys(), "a writer must not hear its own changes")

	other.mu.Lock()
	defer other.mu.Unlock()
	for _, e := range other.events {
		assert.Equal(t, notify.OriginRemote, e.Origin)
		assert.Equal(t, "token", e.Key)
	}
}

func TestDir_OwnStateEndsWhenAnotherWriterChangesKey(t *testing.T) {
	root := t.TempDir()
	a, err := NewDir(root)
	require.NoError(t, err)
	b, err := NewDir(root)
	require.NoError(t, err)

	require.NoError(t, a.Remove("token"))
	assert.True(t, a.isOwnState("token"))

	require.NoError(t, b.Set("token", []byte("tok123")))
	assert.False(t, a.isOwnState("token"))

	require.NoError(t, b.Remove("token"))
	assert.False(t, a.isOwnState("token"), "the content matches a's old removal but b made it")

	require.NoError(t, a.Set("darkMode", []byte("true")))
	require.NoError(t, b.Set("darkMode", []byte("false")))
	assert.False(t, a.isOwnState("darkMode"))
	require.NoError(t, b.Set("darkMode", []byte("true")))
	assert.False(t, a.isOwnState("darkMode"))
}

func TestWatcher_ReportsRemoteChangeBackToOwnState(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := NewDir(root)
	require.NoError(t, err)
	b, err := NewDir(root)
	require.NoError(t, err)

	aWatch, err := a.Watch(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	defer aWatch.Close()

	var got recorder
	aWatch.Subscribe(got.listen)

	require.NoError(t, a.Set("token", []byte("tok123")))
	require.NoError(t, a.Remove("token"))
	time.Sleep(100 * time.Millisecond)
	require.Empty(t, got.keys())

	require.NoError(t, b.Set("token", []byte("tok456")))
	require.Eventually(t, func() bool {
		return len(got.keys()) >= 1
	}, 2*time.Second, 10*time.Millisecond)
	seen := len(got.keys())

	require.NoError(t, b.Remove("token"))
	require.Eventually(t, func() bool {
		return len(got.keys()) > seen
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresTempFiles(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir, err := NewDir(root)
	require.NoError(t, err)

	w, err := dir.Watch(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	var got recorder
	w.Subscribe(got.listen)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".user.123.tmp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "user"), []byte(`{"id":"u1"}`), 0o600))

	require.Eventually(t, func() bool {
		return len(got.keys()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	for _, key := range got.keys() {
		assert.Equal(t, "user", key)
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	w, err := dir.Watch(context.Background(), 0)
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatcher_StopsWithContext(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := dir.Watch(ctx, 0)
	require.NoError(t, err)

	cancel()

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after context cancellation")
	}
}
