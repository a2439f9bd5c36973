// Package models defines the client-side data shapes: the user identity,
// auth API payloads, and the annotated point dataset.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// User is the identity object the server returns from login, signup and
// session checks. The client treats it as an opaque blob and keeps the raw
// JSON; Profile decodes the handful of fields the CLI displays.
type User struct {
	raw json.RawMessage
}

// NewUser wraps raw JSON. It returns nil for empty input or a JSON null.
func NewUser(raw json.RawMessage) *User {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return &User{raw: append(json.RawMessage(nil), trimmed...)}
}

func (u *User) Raw() json.RawMessage {
	if u == nil {
		return nil
	}
	return u.raw
}

func (u *User) UnmarshalJSON(b []byte) error {
	u.raw = append(u.raw[:0], bytes.TrimSpace(b)...)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	if len(u.raw) == 0 {
		return []byte("null"), nil
	}
	return u.raw, nil
}

// UserProfile is the best-effort typed view of a User. The server spells the
// identifier both "id" and "ID"; encoding/json matches either.
type UserProfile struct {
	ID      any    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Created string `json:"created"`
}

// Profile decodes the known fields. Objects lacking them yield zero values.
func (u *User) Profile() (UserProfile, error) {
	var p UserProfile
	if u == nil {
		return p, nil
	}
	if err := json.Unmarshal(u.raw, &p); err != nil {
		return UserProfile{}, fmt.Errorf("decode user profile: %w", err)
	}
	return p, nil
}

// String renders a short human label.
func (u *User) String() string {
	if u == nil {
		return "anonymous"
	}
	p, err := u.Profile()
	if err != nil {
		return string(u.raw)
	}
	switch {
	case p.Name != "" && p.Email != "":
		return fmt.Sprintf("%s <%s>", p.Name, p.Email)
	case p.Email != "":
		return p.Email
	case p.Name != "":
		return p.Name
	case p.ID != nil:
		return fmt.Sprintf("user %v", p.ID)
	}
	return string(u.raw)
}
