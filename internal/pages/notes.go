package pages

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/common"
	"github.com/thinkpad-online/notes/internal/models"
	"github.com/thinkpad-online/notes/internal/sessions"
)

type Filter string

const (
	FilterAll     Filter = "all"
	FilterPublic  Filter = "public"
	FilterPrivate Filter = "private"
)

func ParseFilter(value string) (Filter, error) {
	switch filter := Filter(strings.ToLower(value)); filter {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPublic, FilterPrivate:
		return filter, nil
	default:
		return "", fmt.Errorf("unknown filter %q: expected all, public or private", value)
	}
}

func (f Filter) matches(note models.Note) bool {
	switch f {
	case FilterPublic:
		return note.IsPublic
	case FilterPrivate:
		return !note.IsPublic
	default:
		return true
	}
}

type SortOrder string

const (
	SortNewest          SortOrder = "newest"
	SortOldest          SortOrder = "oldest"
	SortRecentlyUpdated SortOrder = "recently-updated"
	SortOldestUpdated   SortOrder = "oldest-updated"
	SortTitle           SortOrder = "title"
)

func SortOrders() []SortOrder {
	return []SortOrder{SortNewest, SortOldest, SortRecentlyUpdated, SortOldestUpdated, SortTitle}
}

func ParseSortOrder(value string) (SortOrder, error) {
	if len(value) == 0 {
		return SortNewest, nil
	}
	order := SortOrder(strings.ToLower(value))
	if !slices.Contains(SortOrders(), order) {
		return "", fmt.Errorf("unknown sort order %q", value)
	}
	return order, nil
}

func (s SortOrder) compare(a, b models.Note) int {
	switch s {
	case SortOldest:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortRecentlyUpdated:
		return b.UpdatedAt.Compare(a.UpdatedAt)
	case SortOldestUpdated:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return b.CreatedAt.Compare(a.CreatedAt)
	}
}

type Query struct {
	Search string
	Filter Filter
	Sort   SortOrder
}

// Apply returns the notes matching q in q's order. Search is case-insensitive
// over title and content.
func Apply(notes []models.Note, q Query) []models.Note {
	search := strings.TrimSpace(q.Search)

	result := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if !q.Filter.matches(note) {
			continue
		}
		if len(search) > 0 && !common.ContainsFold(note.Title, search) && !common.ContainsFold(note.Content, search) {
			continue
		}
		result = append(result, note)
	}

	slices.SortStableFunc(result, q.Sort.compare)
	return result
}

// AllNotes lists the notes owned by the logged in user.
type AllNotes struct {
	noteList

	api   NotesAPI
	store sessions.Store
}

func NewAllNotes(api NotesAPI, store sessions.Store) *AllNotes {
	return &AllNotes{api: api, store: store}
}

func (a *AllNotes) Refresh(ctx context.Context) <-chan bool {
	return a.refresh(ctx, func(ctx context.Context) ([]models.Note, error) {
		notes, err := a.api.ListNotes(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not load notes: %w", err)
		}
		return notes, nil
	})
}

// Mine keeps the loaded notes whose owner is the stored session record.
func (a *AllNotes) Mine() []models.Note {
	record := a.store.Read().Record
	if record == nil || len(record.ID) == 0 {
		return nil
	}

	var mine []models.Note
	for _, note := range a.Notes() {
		if note.Owner.ID == record.ID {
			mine = append(mine, note)
		}
	}
	return mine
}

func (a *AllNotes) Query(q Query) []models.Note {
	return Apply(a.Mine(), q)
}

func (a *AllNotes) Delete(ctx context.Context, id string) error {
	if err := a.api.DeleteNote(ctx, id); err != nil {
		logrus.WithError(err).WithField("note", id).Errorln("Failed to delete note")
		return fmt.Errorf("failed to delete note: %w", err)
	}
	a.remove(id)
	return nil
}
