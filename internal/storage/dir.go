package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Dir keeps every key in its own file inside a directory. Only the owner may
// read or write the files.
type Dir struct {
	path string

	// Last value this instance wrote per key, so a Watcher on the same Dir
	// can tell its own writes apart from other processes'.
	mu      sync.Mutex
	written map[string]writeMark
}

type writeMark struct {
	hash    string
	removed bool
}

func NewDir(path string) (*Dir, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("state directory path is empty")
	}

	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &Dir{
		path:    path,
		written: make(map[string]writeMark),
	}, nil
}

func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) file(key string) string {
	return filepath.Join(d.path, key)
}

func (d *Dir) Get(key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(d.file(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return data, true, nil
}

// Set replaces the value atomically: readers see either the old or the new
// content, never a partial file.
func (d *Dir) Set(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.path, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}

	if err := d.apply(key, writeMark{hash: contentHash(value)}, func() error {
		return os.Rename(tmpName, d.file(key))
	}); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}

	logrus.WithFields(logrus.Fields{
		"dir": d.path,
		"key": key,
	}).Debugln("Stored value")

	return nil
}

// Remove deletes the key. Removing a missing key is not an error.
func (d *Dir) Remove(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := d.apply(key, writeMark{removed: true}, func() error {
		if err := os.Remove(d.file(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	logrus.WithFields(logrus.Fields{
		"dir": d.path,
		"key": key,
	}).Debugln("Removed value")

	return nil
}

// apply records m for key and runs change while holding the mark lock, so
// the watcher never sees the change without its mark. The mark is left as it
// was when change fails.
func (d *Dir) apply(key string, m writeMark, change func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := change(); err != nil {
		return err
	}
	d.written[key] = m
	return nil
}

// isOwnState reports whether the current content of key is exactly what this
// instance last wrote (or removed). Once another process has changed the key
// the mark is dropped, so a later change back to the same content is reported.
func (d *Dir) isOwnState(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.written[key]
	if !ok {
		return false
	}

	data, exists, err := d.Get(key)
	if err != nil {
		return false
	}

	own := m.removed && !exists
	if exists {
		own = !m.removed && m.hash == contentHash(data)
	}

	if !own {
		delete(d.written, key)
	}
	return own
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
