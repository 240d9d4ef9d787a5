// Package cache provides the local contact list cache and its SQLite implementation.
package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/rcliao/contacts/internal/model"
)

// ErrUnavailable wraps every storage failure reported by a Cache.
var ErrUnavailable = errors.New("contacts cache unavailable")

// DefaultKey is the slot holding the contact list snapshot.
const DefaultKey = "contacts"

// Cache holds the last known contact list.
type Cache interface {
	// Read returns the stored snapshot. ok is false when nothing was ever written.
	Read(ctx context.Context) (contacts []model.Contact, ok bool, err error)

	// Write replaces the stored snapshot.
	Write(ctx context.Context, contacts []model.Contact) error
}

// Memory is an in-process Cache.
type Memory struct {
	mu       sync.Mutex
	contacts []model.Contact
	ok       bool
}

// NewMemory returns a Memory cache, pre-filled when contacts is non-nil.
func NewMemory(contacts []model.Contact) *Memory {
	m := &Memory{}
	if contacts != nil {
		m.contacts = clone(contacts)
		m.ok = true
	}
	return m
}

func (m *Memory) Read(ctx context.Context) ([]model.Contact, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return nil, false, nil
	}
	return clone(m.contacts), true, nil
}

func (m *Memory) Write(ctx context.Context, contacts []model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = clone(contacts)
	m.ok = true
	return nil
}

func clone(in []model.Contact) []model.Contact {
	out := make([]model.Contact, len(in))
	copy(out, in)
	return out
}
