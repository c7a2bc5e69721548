package models

import (
	"encoding/json"
	"fmt"
	"maps"
)

// User is the identity the API returns on login. Only the identifier and a
// display name matter to the client; every other field is carried in Extra so
// the record round-trips unchanged.
type User struct {
	ID       string         `json:"id,omitempty"`
	Username string         `json:"username,omitempty"`
	Email    string         `json:"email,omitempty"`
	Name     string         `json:"name,omitempty"`
	Extra    map[string]any `json:"-"`
}

var userFields = []string{"id", "_id", "username", "email", "name"}

func (u *User) GetName() string {
	if len(u.Name) > 0 {
		return u.Name
	}
	return u.Username
}

func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+4)
	maps.Copy(out, u.Extra)

	for _, field := range userFields {
		delete(out, field)
	}

	if len(u.ID) > 0 {
		out["id"] = u.ID
	}
	if len(u.Username) > 0 {
		out["username"] = u.Username
	}
	if len(u.Email) > 0 {
		out["email"] = u.Email
	}
	if len(u.Name) > 0 {
		out["name"] = u.Name
	}

	return json.Marshal(out)
}

// UnmarshalJSON accepts both "id" and the "_id" form the API uses.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("user record is null")
	}

	var user User
	var err error

	if user.ID, err = stringField(raw, "id"); err != nil {
		return err
	}
	if len(user.ID) == 0 {
		if user.ID, err = stringField(raw, "_id"); err != nil {
			return err
		}
	}
	if user.Username, err = stringField(raw, "username"); err != nil {
		return err
	}
	if user.Email, err = stringField(raw, "email"); err != nil {
		return err
	}
	if user.Name, err = stringField(raw, "name"); err != nil {
		return err
	}

	for _, field := range userFields {
		delete(raw, field)
	}
	if len(raw) > 0 {
		user.Extra = raw
	}

	*u = user
	return nil
}

func stringField(raw map[string]any, field string) (string, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("user field %q must be a string, got %T", field, value)
	}
	return s, nil
}
