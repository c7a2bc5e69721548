package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type Note struct {
	ID        string    `json:"_id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	IsPublic  bool      `json:"isPublic" yaml:"public"`
	Owner     NoteOwner `json:"user,omitzero" yaml:"owner,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero" yaml:"updated_at,omitempty"`
}

// Visibility returns "Public" or "Private".
func (n *Note) Visibility() string {
	if n.IsPublic {
		return "Public"
	}
	return "Private"
}

// WasUpdated reports whether the note changed after it was created.
func (n *Note) WasUpdated() bool {
	return !n.UpdatedAt.IsZero() && n.UpdatedAt.After(n.CreatedAt)
}

// NoteOwner is the "user" field of a note. Owner-scoped endpoints return the
// bare owner id; the public feed embeds {_id, username}.
type NoteOwner struct {
	ID       string `json:"_id,omitempty" yaml:"id,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}

func (o NoteOwner) IsZero() bool {
	return len(o.ID) == 0 && len(o.Username) == 0
}

// DisplayName returns the author shown in the community feed.
func (o NoteOwner) DisplayName() string {
	if len(o.Username) > 0 {
		return o.Username
	}
	return "Anonymous"
}

func (o *NoteOwner) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*o = NoteOwner{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*o = NoteOwner{ID: id}
		return nil
	}

	type owner NoteOwner
	var decoded owner
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*o = NoteOwner(decoded)
	return nil
}

// NoteInput is the body of create and update requests.
type NoteInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPublic bool   `json:"isPublic"`
}
