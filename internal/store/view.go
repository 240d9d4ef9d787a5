package store

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rcliao/contacts/internal/model"
)

// Statistics holds counts derived from a contact list.
type Statistics struct {
	Total        int `json:"total"`
	WithEmail    int `json:"with_email"`
	WithoutEmail int `json:"without_email"`
	WithPhone    int `json:"with_phone"`
	WithoutPhone int `json:"without_phone"`
}

// Stats counts contacts with and without email and phone.
func Stats(contacts []model.Contact) Statistics {
	st := Statistics{Total: len(contacts)}
	for _, c := range contacts {
		if c.Email != "" {
			st.WithEmail++
		}
		if c.Phone != "" {
			st.WithPhone++
		}
	}
	st.WithoutEmail = st.Total - st.WithEmail
	st.WithoutPhone = st.Total - st.WithPhone
	return st
}

// Filter returns the contacts whose name or email contains text ignoring
// case, or whose phone contains text exactly. Order is preserved. Blank text
// returns the list unchanged.
func Filter(contacts []model.Contact, text string) []model.Contact {
	if strings.TrimSpace(text) == "" {
		return contacts
	}

	lower := cases.Lower(language.Und)
	q := lower.String(text)

	out := make([]model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if strings.Contains(lower.String(c.Name), q) ||
			strings.Contains(lower.String(c.Email), q) ||
			strings.Contains(c.Phone, text) {
			out = append(out, c)
		}
	}
	return out
}
