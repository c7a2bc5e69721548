package pages

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/sessions"
)

const recentLimit = 4

type Stats struct {
	Total   int `json:"total" yaml:"total"`
	Public  int `json:"public" yaml:"public"`
	Private int `json:"private" yaml:"private"`
}

func CountNotes(notes []models.Note) Stats {
	stats := Stats{Total: len(notes)}
	for _, note := range notes {
		if note.IsPublic {
			stats.Public++
		} else {
			stats.Private++
		}
	}
	return stats
}

// Initials returns the first letters of the first and last word of name,
// upper-cased. An empty name gives "U".
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "U"
	}

	initials := []rune{firstRune(words[0])}
	if len(words) > 1 {
		initials = append(initials, firstRune(words[len(words)-1]))
	}
	return strings.ToUpper(string(initials))
}

func firstRune(s string) rune {
	for _, r := range s {
		return unicode.ToUpper(r)
	}
	return 'U'
}

type Dashboard struct {
	noteList

	api   NotesAPI
	store sessions.Store
}

func NewDashboard(api NotesAPI, store sessions.Store) *Dashboard {
	return &Dashboard{api: api, store: store}
}

func (d *Dashboard) Refresh(ctx context.Context) <-chan bool {
	return d.refresh(ctx, func(ctx context.Context) ([]models.Note, error) {
		notes, err := d.api.ListNotes(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not load notes: %w", err)
		}
		return notes, nil
	})
}

func (d *Dashboard) Stats() Stats {
	return CountNotes(d.Notes())
}

// Recent returns the first notes in the order the API listed them.
func (d *Dashboard) Recent() []models.Note {
	notes := d.Notes()
	if len(notes) > recentLimit {
		notes = notes[:recentLimit]
	}
	return notes
}

func (d *Dashboard) Initials() string {
	record := d.store.Read().Record
	if record == nil {
		return Initials("")
	}
	return Initials(record.GetName())
}

func (d *Dashboard) Delete(ctx context.Context, id string) error {
	if err := d.api.DeleteNote(ctx, id); err != nil {
		logrus.WithError(err).WithField("note", id).Errorln("Failed to delete note")
		return fmt.Errorf("failed to delete note: %w", err)
	}
	d.remove(id)
	return nil
}
