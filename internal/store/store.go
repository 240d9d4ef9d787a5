// Package store keeps the authoritative contact list and reconciles the
// remote API with the local cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/contacts/internal/cache"
	"github.com/rcliao/contacts/internal/gateway"
	"github.com/rcliao/contacts/internal/model"
)

var (
	// ErrNoContacts is reported by Load when the API failed and the cache
	// holds no snapshot.
	ErrNoContacts = errors.New("no contacts available from any source")

	// ErrAddFailed is returned by Add when the contact was appended but could
	// not be persisted.
	ErrAddFailed = errors.New("could not add contact")
)

// Status is the connectivity status decided by the last Load.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Snapshot is the renderable state of a Store.
type Snapshot struct {
	Contacts []model.Contact `json:"contacts"`
	Status   Status          `json:"status"`
	Loading  bool            `json:"loading"`
	LoadErr  error           `json:"-"`
}

// Store owns the contact list for one session.
//
// Operations are serialized: Load, Add and Remove each run to completion
// before the next one starts. Reads (Contacts, State, Filter, Statistics)
// never wait on an in-flight gateway call.
type Store struct {
	gw    gateway.Gateway
	cache cache.Cache
	log   *log.Logger
	newID func() model.ID

	op      sync.Mutex
	mu      sync.RWMutex
	loading atomic.Bool

	contacts []model.Contact
	status   Status
	loadErr  error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recovered gateway and cache failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDFunc replaces the local id generator.
func WithIDFunc(fn func() model.ID) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates an empty Store. Call Load to populate it.
func New(gw gateway.Gateway, c cache.Cache, opts ...Option) *Store {
	s := &Store{
		gw:       gw,
		cache:    c,
		log:      log.New(os.Stderr, "contacts: ", log.LstdFlags),
		newID:    ulidGenerator(),
		contacts: []model.Contact{},
		status:   StatusUnknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ulidGenerator returns time-ordered ids, monotonic within a millisecond.
// The returned func is not safe for concurrent use; Store calls it under op.
func ulidGenerator() func() model.ID {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return func() model.ID {
		return model.ID(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
	}
}

// Load fills the list from the API, falling back to the cache.
//
// On API success the response replaces the list and is written to the cache.
// On API failure the cached snapshot is used; the cache is not written. If
// there is no snapshot either, the list is emptied and ErrNoContacts is
// returned and kept in State().LoadErr.
func (s *Store) Load(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.loading.Store(true)
	defer s.loading.Store(false)

	remote, err := s.gw.List(ctx)
	if err == nil {
		contacts := s.sanitize(remote)
		s.set(contacts, StatusOnline, nil)
		if err := s.cache.Write(ctx, contacts); err != nil {
			s.log.Printf("cache write after load: %v", err)
		}
		return nil
	}

	s.log.Printf("api offline, loading from cache: %v", err)

	cached, ok, err := s.cache.Read(ctx)
	if err != nil {
		s.log.Printf("cache read: %v", err)
	}
	if err != nil || !ok {
		s.set([]model.Contact{}, StatusOffline, ErrNoContacts)
		return ErrNoContacts
	}

	s.set(s.sanitize(cached), StatusOffline, nil)
	return nil
}

// Add appends a contact built from c. A blank name is a silent no-op and
// reports added=false.
//
// The id comes from the API when it accepts the contact, otherwise a local
// id is generated. API failures are logged, never returned. The only error
// is ErrAddFailed when the updated list could not be cached; the contact is
// still appended in that case.
func (s *Store) Add(ctx context.Context, c model.Candidate) (rec model.Contact, added bool, err error) {
	if !c.Valid() {
		return model.Contact{}, false, nil
	}

	s.op.Lock()
	defer s.op.Unlock()

	created, gerr := s.gw.Create(ctx, c)
	switch {
	case gerr != nil:
		s.log.Printf("api offline, saving locally: %v", gerr)
		rec = c.WithID(s.localID())
	case created.ID == "" || s.has(created.ID):
		s.log.Printf("api returned unusable id %q, saving with a local id", created.ID)
		rec = c.WithID(s.localID())
	default:
		rec = c.WithID(created.ID)
	}

	s.mu.Lock()
	s.contacts = append(s.contacts, rec)
	contacts := clone(s.contacts)
	s.mu.Unlock()

	if err := s.cache.Write(ctx, contacts); err != nil {
		s.log.Printf("cache write after add: %v", err)
		return rec, true, fmt.Errorf("%w: %w", ErrAddFailed, err)
	}
	return rec, true, nil
}

// Remove drops the contact with the given id and reports whether it was
// present. Removing an unknown id changes nothing. The list is mirrored to
// the cache either way; cache failures are logged.
func (s *Store) Remove(ctx context.Context, id model.ID) bool {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	removed := false
	kept := make([]model.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.contacts = kept
	contacts := clone(kept)
	s.mu.Unlock()

	if err := s.cache.Write(ctx, contacts); err != nil {
		s.log.Printf("cache write after remove: %v", err)
	}
	return removed
}

// Contacts returns a copy of the current list.
func (s *Store) Contacts() []model.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.contacts)
}

// State returns everything a renderer needs.
func (s *Store) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Contacts: clone(s.contacts),
		Status:   s.status,
		Loading:  s.loading.Load(),
		LoadErr:  s.loadErr,
	}
}

// Status returns the connectivity status of the last Load.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Filter returns the contacts matching text. See the package func Filter.
func (s *Store) Filter(text string) []model.Contact {
	return Filter(s.Contacts(), text)
}

// Statistics returns counts over the current list.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats(s.contacts)
}

func (s *Store) set(contacts []model.Contact, status Status, loadErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = contacts
	s.status = status
	s.loadErr = loadErr
}

func (s *Store) has(id model.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contacts {
		if c.ID == id {
			return true
		}
	}
	return false
}

// localID returns a generated id not already in the list.
func (s *Store) localID() model.ID {
	for {
		id := s.newID()
		if id != "" && !s.has(id) {
			return id
		}
	}
}

// sanitize drops nameless records and repeated ids, keeping the first.
func (s *Store) sanitize(in []model.Contact) []model.Contact {
	out := make([]model.Contact, 0, len(in))
	seen := make(map[model.ID]bool, len(in))
	for _, c := range in {
		if !c.Candidate().Valid() {
			s.log.Printf("dropping contact %q without a name", c.ID)
			continue
		}
		if seen[c.ID] {
			s.log.Printf("dropping duplicate contact id %q", c.ID)
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

func clone(in []model.Contact) []model.Contact {
	out := make([]model.Contact, len(in))
	copy(out, in)
	return out
}
