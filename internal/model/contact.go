// Package model defines the core contact data types.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an opaque contact identifier. It is either assigned by the remote
// API or generated locally when the API is unreachable.
type ID string

// UnmarshalJSON accepts both string and numeric ids.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Contact is a single entry of the contact list.
type Contact struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Candidate is a contact submitted for creation, before it has an id.
type Candidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Valid reports whether the candidate has a non-blank name.
// Email and phone are free text and never validated.
func (c Candidate) Valid() bool {
	return strings.TrimSpace(c.Name) != ""
}

// WithID builds the stored record for the candidate.
func (c Candidate) WithID(id ID) Contact {
	return Contact{ID: id, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// Candidate returns the submittable fields of the contact.
func (c Contact) Candidate() Candidate {
	return Candidate{Name: c.Name, Email: c.Email, Phone: c.Phone}
}
