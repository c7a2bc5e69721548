package pages

import (
	"context"
	"fmt"

	"github.com/thinkpad-online/notes/internal/models"
)

// Post is a public note as shown in the community feed.
type Post struct {
	Note   models.Note `json:"note" yaml:"note"`
	Author string      `json:"author" yaml:"author"`
}

// Initial is the avatar letter for the author.
func (p Post) Initial() string {
	return string(firstRune(p.Author))
}

type Community struct {
	noteList

	api NotesAPI
}

func NewCommunity(api NotesAPI) *Community {
	return &Community{api: api}
}

func (c *Community) Refresh(ctx context.Context) <-chan bool {
	return c.refresh(ctx, func(ctx context.Context) ([]models.Note, error) {
		notes, err := c.api.PublicNotes(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not load community notes: %w", err)
		}
		return notes, nil
	})
}

func (c *Community) Posts() []Post {
	notes := c.Notes()
	posts := make([]Post, 0, len(notes))
	for _, note := range notes {
		posts = append(posts, Post{Note: note, Author: note.Owner.DisplayName()})
	}
	return posts
}
