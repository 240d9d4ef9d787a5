package store

import (
	"context"

	"github.com/rcliao/contacts/internal/model"
)

// Export returns the current list, the same content the cache slot holds.
func (s *Store) Export() []model.Contact {
	return s.Contacts()
}

// Import adds each record through Add, in order, ignoring the incoming ids.
// Records without a name are skipped. Returns how many were appended.
func (s *Store) Import(ctx context.Context, contacts []model.Contact) (int, error) {
	imported := 0
	for _, c := range contacts {
		_, added, err := s.Add(ctx, c.Candidate())
		if added {
			imported++
		}
		if err != nil {
			return imported, err
		}
	}
	return imported, nil
}
