package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/router"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrContentRequired = errors.New("content is required")
	ErrNoteNotFound    = errors.New("note not found")
)

func ValidateInput(input models.NoteInput) error {
	if len(strings.TrimSpace(input.Title)) == 0 {
		return ErrTitleRequired
	}
	if len(strings.TrimSpace(input.Content)) == 0 {
		return ErrContentRequired
	}
	return nil
}

// Editor creates a note, or updates the note with the given id.
type Editor struct {
	Lifecycle

	api NotesAPI
	id  string

	mu     sync.RWMutex
	input  models.NoteInput
	loaded bool
	err    error
}

func NewEditor(api NotesAPI, id string) *Editor {
	return &Editor{api: api, id: id}
}

func (e *Editor) IsUpdate() bool {
	return len(e.id) > 0
}

// Preload fetches the note being updated. It is a no-op for new notes.
func (e *Editor) Preload(ctx context.Context) <-chan bool {
	if !e.IsUpdate() {
		done := make(chan bool, 1)
		done <- true
		close(done)
		return done
	}

	return Load(&e.Lifecycle, ctx, e.findNote, func(note models.Note, err error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.err = err
		if err == nil {
			e.input = models.NoteInput{Title: note.Title, Content: note.Content, IsPublic: note.IsPublic}
			e.loaded = true
		}
	})
}

func (e *Editor) findNote(ctx context.Context) (models.Note, error) {
	notes, err := e.api.ListNotes(ctx)
	if err != nil {
		return models.Note{}, fmt.Errorf("could not load note: %w", err)
	}
	for _, note := range notes {
		if note.ID == e.id {
			return note, nil
		}
	}
	return models.Note{}, fmt.Errorf("could not load note %s: %w", e.id, ErrNoteNotFound)
}

func (e *Editor) Input() models.NoteInput {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.input
}

func (e *Editor) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

func (e *Editor) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// Submit validates and saves input, then navigates to the notes list.
func (e *Editor) Submit(ctx context.Context, nav router.Navigator, input models.NoteInput) (*models.Note, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	var note *models.Note
	var err error
	if e.IsUpdate() {
		note, err = e.api.UpdateNote(ctx, e.id, input)
	} else {
		note, err = e.api.CreateNote(ctx, input)
	}

	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"note":   e.id,
			"update": e.IsUpdate(),
		}).Errorln("Failed to save note")
		return nil, fmt.Errorf("could not save note: %w", err)
	}

	e.mu.Lock()
	e.input = input
	e.mu.Unlock()

	if nav != nil {
		if err := nav.Navigate(router.Path(router.Notes, nil)); err != nil {
			return note, err
		}
	}

	return note, nil
}
