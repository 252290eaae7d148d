package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AuthEvent is the webhook payload emitted by the identity provider when an
// auth user row changes. Only "INSERT" is acted on.
type AuthEvent struct {
	Event   string  `json:"event"`
	Session Session `json:"session"`
}

// Session wraps the user the event refers to. User is nil when the provider
// omitted it.
type Session struct {
	User *AuthUser `json:"user"`
}

// AuthUser is the subset of the auth user row needed to build a profile.
type AuthUser struct {
	ID           string       `json:"id"`
	Email        *Text        `json:"email"`
	UserMetadata UserMetadata `json:"raw_user_meta_data"`
}

// UserMetadata holds the sign-up form fields stored by the mobile client.
// Clients are loose about types here (a phone often arrives as a number).
type UserMetadata struct {
	Phone       *Text `json:"phone"`
	DisplayName *Text `json:"display_name"`
	UserType    *Text `json:"user_type"`
}

// Text is a free-form column value. JSON strings are taken as-is; numbers and
// booleans keep their literal spelling.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty text value")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		return fmt.Errorf("text value must be a scalar, got %s", b[:1])
	default:
		// number, true or false; null never reaches here for pointer fields
		if !json.Valid(b) {
			return fmt.Errorf("invalid text value %q", b)
		}
		*t = Text(b)
	}
	return nil
}

// Ptr returns the value as a *string, nil-safe.
func (t *Text) Ptr() *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}
