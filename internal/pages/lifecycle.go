// Package pages holds the controllers behind each screen of the client. A
// page loads its data in the background and only keeps results that arrive
// while it is still mounted.
package pages

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/models"
)

// NotesAPI is the part of the API client the pages use.
type NotesAPI interface {
	ListNotes(ctx context.Context) ([]models.Note, error)
	PublicNotes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, input models.NoteInput) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, input models.NoteInput) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

type Lifecycle struct {
	mu         sync.Mutex
	mounted    bool
	generation uint64
}

func (l *Lifecycle) Mount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mounted = true
}

// Unmount drops every load still in flight.
func (l *Lifecycle) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mounted = false
	l.generation++
}

func (l *Lifecycle) Mounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}

// Load runs fetch on its own goroutine and passes the result to apply when
// the page is still mounted and no newer load has started. The returned
// channel yields whether apply ran and is then closed. Fetches are not
// cancelled on unmount, their results are discarded.
func Load[T any](l *Lifecycle, ctx context.Context, fetch func(context.Context) (T, error), apply func(T, error)) <-chan bool {
	l.mu.Lock()
	l.generation++
	generation := l.generation
	l.mu.Unlock()

	done := make(chan bool, 1)

	go func() {
		defer close(done)

		result, err := fetch(ctx)

		l.mu.Lock()
		defer l.mu.Unlock()

		if !l.mounted || l.generation != generation {
			logrus.WithFields(logrus.Fields{
				"mounted": l.mounted,
				"stale":   l.generation != generation,
			}).Debugln("Dropping late page load")
			done <- false
			return
		}

		apply(result, err)
		done <- true
	}()

	return done
}

// noteList is the state shared by pages that show a list of notes.
type noteList struct {
	Lifecycle

	mu      sync.RWMutex
	notes   []models.Note
	loading bool
	err     error
}

func (n *noteList) refresh(ctx context.Context, fetch func(context.Context) ([]models.Note, error)) <-chan bool {
	n.mu.Lock()
	n.loading = true
	n.mu.Unlock()

	return Load(&n.Lifecycle, ctx, fetch, func(notes []models.Note, err error) {
		n.mu.Lock()
		defer n.mu.Unlock()

		n.loading = false
		n.err = err
		if err == nil {
			n.notes = notes
		}
	})
}

// Notes returns a copy of the loaded notes.
func (n *noteList) Notes() []models.Note {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]models.Note(nil), n.notes...)
}

func (n *noteList) Loading() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.loading
}

// Err is the error of the most recent load, if any.
func (n *noteList) Err() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.err
}

func (n *noteList) remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	kept := n.notes[:0:0]
	for _, note := range n.notes {
		if note.ID != id {
			kept = append(kept, note)
		}
	}
	n.notes = kept
}
