package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/rcliao/contacts/internal/cache"
	"github.com/rcliao/contacts/internal/model"
)

var (
	ana = model.Contact{ID: "1", Name: "Ana", Email: "", Phone: "123"}
	bea = model.Contact{ID: "2", Name: "Bea", Email: "b@x.com", Phone: ""}
)

func TestNewStoreIsEmpty(t *testing.T) {
	s, _ := newTestStore(t, &fakeGateway{}, newRecordingCache(nil))

	st := s.State()
	be.Equal(t, len(st.Contacts), 0)
	be.Equal(t, st.Status, StatusUnknown)
	be.True(t, !st.Loading)
	be.Err(t, st.LoadErr, nil)
}

func TestLoadOnline(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{contacts: []model.Contact{ana, bea}}
	c := newRecordingCache([]model.Contact{{ID: "old", Name: "Stale"}})
	s, _ := newTestStore(t, gw, c)

	be.Err(t, s.Load(ctx), nil)

	be.Equal(t, s.Contacts(), []model.Contact{ana, bea})
	be.Equal(t, s.Status(), StatusOnline)
	be.Equal(t, c.lastWrite(t), []model.Contact{ana, bea})
	be.Err(t, s.State().LoadErr, nil)
}

func TestLoadOnlineCacheWriteFailureIsNotFatal(t *testing.T) {
	c := newRecordingCache(nil)
	c.failWrite = true
	s, logs := newTestStore(t, &fakeGateway{contacts: []model.Contact{ana}}, c)

	be.Err(t, s.Load(context.Background()), nil)
	be.Equal(t, s.Contacts(), []model.Contact{ana})
	be.Equal(t, s.Status(), StatusOnline)
	be.True(t, strings.Contains(logs.String(), "cache write after load"))
}

func TestLoadOfflineUsesCache(t *testing.T) {
	c := newRecordingCache([]model.Contact{ana})
	s, logs := newTestStore(t, &fakeGateway{down: true}, c)

	err := s.Load(context.Background())
	be.Err(t, err, nil)

	st := s.State()
	be.Equal(t, st.Contacts, []model.Contact{ana})
	be.Equal(t, st.Status, StatusOffline)
	be.Err(t, st.LoadErr, nil)
	be.Equal(t, len(c.writes), 0)
	be.True(t, strings.Contains(logs.String(), "api offline"))
}

func TestLoadOfflineEmptyCache(t *testing.T) {
	c := newRecordingCache(nil)
	s, _ := newTestStore(t, &fakeGateway{down: true}, c)

	err := s.Load(context.Background())
	be.Err(t, err, ErrNoContacts)

	st := s.State()
	be.Equal(t, len(st.Contacts), 0)
	be.Equal(t, st.Status, StatusOffline)
	be.Err(t, st.LoadErr, ErrNoContacts)
	be.Equal(t, len(c.writes), 0)
}

func TestLoadOfflineEmptySnapshotIsNotAnError(t *testing.T) {
	s, _ := newTestStore(t, &fakeGateway{down: true}, newRecordingCache([]model.Contact{}))

	be.Err(t, s.Load(context.Background()), nil)
	be.Equal(t, len(s.Contacts()), 0)
	be.Err(t, s.State().LoadErr, nil)
}

func TestLoadOfflineUnreadableCache(t *testing.T) {
	c := newRecordingCache([]model.Contact{ana})
	c.failRead = true
	s, logs := newTestStore(t, &fakeGateway{down: true}, c)

	be.Err(t, s.Load(context.Background()), ErrNoContacts)
	be.Equal(t, len(s.Contacts()), 0)
	be.True(t, strings.Contains(logs.String(), "cache read"))
}

func TestLoadRetryRecovers(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{down: true, contacts: []model.Contact{ana}}
	s, _ := newTestStore(t, gw, newRecordingCache(nil))

	be.Err(t, s.Load(ctx), ErrNoContacts)

	gw.down = false
	be.Err(t, s.Load(ctx), nil)
	be.Equal(t, s.Contacts(), []model.Contact{ana})
	be.Equal(t, s.Status(), StatusOnline)
	be.Err(t, s.State().LoadErr, nil)
}

func TestLoadDropsDuplicatesAndNameless(t *testing.T) {
	gw := &fakeGateway{contacts: []model.Contact{
		ana,
		{ID: "1", Name: "Ana again"},
		{ID: "3", Name: "   "},
		bea,
	}}
	s, _ := newTestStore(t, gw, newRecordingCache(nil))

	be.Err(t, s.Load(context.Background()), nil)
	be.Equal(t, s.Contacts(), []model.Contact{ana, bea})
}

func TestAddOnline(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{contacts: []model.Contact{ana}}
	c := newRecordingCache(nil)
	s, _ := newTestStore(t, gw, c)
	s.Load(ctx)

	rec, added, err := s.Add(ctx, model.Candidate{Name: "Bea", Email: "b@x.com"})
	be.Err(t, err, nil)
	be.True(t, added)
	be.Equal(t, rec, model.Contact{ID: "srv-1", Name: "Bea", Email: "b@x.com"})
	be.Equal(t, s.Contacts(), []model.Contact{ana, rec})
	be.Equal(t, c.lastWrite(t), []model.Contact{ana, rec})
	be.Equal(t, gw.created, []model.Candidate{{Name: "Bea", Email: "b@x.com"}})
}

func TestAddOfflineUsesLocalID(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache([]model.Contact{ana})
	s, logs := newTestStore(t, &fakeGateway{down: true}, c)
	s.Load(ctx)

	rec, added, err := s.Add(ctx, model.Candidate{Name: "Bea", Email: "b@x.com", Phone: ""})
	be.Err(t, err, nil)
	be.True(t, added)
	be.True(t, rec.ID != "")
	be.True(t, rec.ID != ana.ID)
	be.Equal(t, rec.Name, "Bea")
	be.Equal(t, len(s.Contacts()), 2)
	be.Equal(t, c.lastWrite(t), []model.Contact{ana, rec})
	be.True(t, strings.Contains(logs.String(), "saving locally"))
}

func TestAddDoesNotChangeStatus(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{contacts: []model.Contact{ana}}
	s, _ := newTestStore(t, gw, newRecordingCache(nil))
	s.Load(ctx)

	gw.down = true
	s.Add(ctx, model.Candidate{Name: "Bea"})
	be.Equal(t, s.Status(), StatusOnline)
}

func TestLocalIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, &fakeGateway{down: true}, newRecordingCache([]model.Contact{}))
	s.Load(ctx)

	seen := map[model.ID]bool{}
	for i := 0; i < 200; i++ {
		rec, _, err := s.Add(ctx, model.Candidate{Name: "X"})
		be.Err(t, err, nil)
		be.True(t, !seen[rec.ID])
		seen[rec.ID] = true
	}
	be.Equal(t, len(s.Contacts()), 200)
}

func TestLocalIDSkipsExisting(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache([]model.Contact{{ID: "L1", Name: "Ana"}})
	s, _ := newTestStore(t, &fakeGateway{down: true}, c, WithIDFunc(seqIDs("L")))
	s.Load(ctx)

	rec, _, _ := s.Add(ctx, model.Candidate{Name: "Bea"})
	be.Equal(t, rec.ID, model.ID("L2"))
}

func TestAddServerIDCollision(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{contacts: []model.Contact{{ID: "srv-1", Name: "Ana"}}}
	s, _ := newTestStore(t, gw, newRecordingCache(nil), WithIDFunc(seqIDs("local-")))
	s.Load(ctx)

	rec, added, err := s.Add(ctx, model.Candidate{Name: "Bea"})
	be.Err(t, err, nil)
	be.True(t, added)
	be.Equal(t, rec.ID, model.ID("local-1"))
	be.Equal(t, len(s.Contacts()), 2)
}

func TestAddBlankNameIsNoop(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{contacts: []model.Contact{ana}}
	c := newRecordingCache(nil)
	s, _ := newTestStore(t, gw, c)
	s.Load(ctx)
	writes := len(c.writes)

	for _, name := range []string{"", " ", "\t\n  "} {
		rec, added, err := s.Add(ctx, model.Candidate{Name: name, Email: "x@y.z", Phone: "1"})
		be.Err(t, err, nil)
		be.True(t, !added)
		be.Equal(t, rec, model.Contact{})
	}
	be.Equal(t, s.Contacts(), []model.Contact{ana})
	be.Equal(t, len(c.writes), writes)
	be.Equal(t, len(gw.created), 0)
}

func TestAddCacheFailure(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache(nil)
	s, _ := newTestStore(t, &fakeGateway{}, c)
	s.Load(ctx)
	c.failWrite = true

	rec, added, err := s.Add(ctx, model.Candidate{Name: "Bea"})
	be.True(t, added)
	be.Err(t, err, ErrAddFailed)
	be.True(t, errors.Is(err, cache.ErrUnavailable))
	be.Equal(t, s.Contacts(), []model.Contact{rec})
}

func TestAddLengthProperty(t *testing.T) {
	ctx := context.Background()
	names := []string{"Ana", "", "  ", "Bea", "x", "\t", "Çelik"}
	for _, down := range []bool{false, true} {
		s, _ := newTestStore(t, &fakeGateway{down: down}, newRecordingCache([]model.Contact{}))
		s.Load(ctx)
		for _, name := range names {
			before := len(s.Contacts())
			s.Add(ctx, model.Candidate{Name: name})
			want := before
			if strings.TrimSpace(name) != "" {
				want++
			}
			be.Equal(t, len(s.Contacts()), want)
		}
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache(nil)
	s, _ := newTestStore(t, &fakeGateway{contacts: []model.Contact{ana, bea}}, c)
	s.Load(ctx)

	be.True(t, s.Remove(ctx, bea.ID))
	be.Equal(t, s.Contacts(), []model.Contact{ana})
	be.Equal(t, c.lastWrite(t), []model.Contact{ana})

	be.True(t, !s.Remove(ctx, bea.ID))
	be.Equal(t, s.Contacts(), []model.Contact{ana})
	be.Equal(t, c.lastWrite(t), []model.Contact{ana})
}

func TestRemoveUnknownID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, &fakeGateway{contacts: []model.Contact{ana, bea}}, newRecordingCache(nil))
	s.Load(ctx)

	be.True(t, !s.Remove(ctx, "nope"))
	be.Equal(t, s.Contacts(), []model.Contact{ana, bea})
}

func TestRemoveLastContactMirrorsEmptyList(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache(nil)
	s, _ := newTestStore(t, &fakeGateway{contacts: []model.Contact{ana}}, c)
	s.Load(ctx)

	s.Remove(ctx, ana.ID)
	be.Equal(t, len(c.lastWrite(t)), 0)

	got, ok, _ := c.Memory.Read(ctx)
	be.True(t, ok)
	be.Equal(t, len(got), 0)
}

func TestRemoveCacheFailureKeepsRemoval(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache(nil)
	s, logs := newTestStore(t, &fakeGateway{contacts: []model.Contact{ana, bea}}, c)
	s.Load(ctx)
	c.failWrite = true

	be.True(t, s.Remove(ctx, ana.ID))
	be.Equal(t, s.Contacts(), []model.Contact{bea})
	be.True(t, strings.Contains(logs.String(), "cache write after remove"))
}

func TestRemoveThenAdd(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, &fakeGateway{down: true}, newRecordingCache([]model.Contact{ana, bea}))
	s.Load(ctx)

	s.Remove(ctx, ana.ID)
	rec, _, _ := s.Add(ctx, model.Candidate{Name: "Cid"})
	be.Equal(t, s.Contacts(), []model.Contact{bea, rec})
}

func TestOfflineSessionPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory([]model.Contact{ana})

	s1, _ := newTestStore(t, &fakeGateway{down: true}, c)
	s1.Load(ctx)
	rec, _, _ := s1.Add(ctx, model.Candidate{Name: "Bea"})

	s2, _ := newTestStore(t, &fakeGateway{down: true}, c)
	be.Err(t, s2.Load(ctx), nil)
	be.Equal(t, s2.Contacts(), []model.Contact{ana, rec})
}

func TestContactsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, &fakeGateway{contacts: []model.Contact{ana}}, newRecordingCache(nil))
	s.Load(ctx)

	got := s.Contacts()
	got[0].Name = "changed"
	be.Equal(t, s.Contacts()[0].Name, "Ana")
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	s, _ := newTestStore(t, gw, newRecordingCache(nil))
	s.Load(ctx)

	n, err := s.Import(ctx, []model.Contact{
		{ID: "x", Name: "Ana", Phone: "123"},
		{ID: "y", Name: ""},
		{ID: "z", Name: "Bea", Email: "b@x.com"},
	})
	be.Err(t, err, nil)
	be.Equal(t, n, 2)
	be.Equal(t, s.Export(), []model.Contact{
		{ID: "srv-1", Name: "Ana", Phone: "123"},
		{ID: "srv-2", Name: "Bea", Email: "b@x.com"},
	})
}

func TestImportStopsOnCacheFailure(t *testing.T) {
	ctx := context.Background()
	c := newRecordingCache(nil)
	s, _ := newTestStore(t, &fakeGateway{}, c)
	s.Load(ctx)
	c.failWrite = true

	n, err := s.Import(ctx, []model.Contact{{Name: "Ana"}, {Name: "Bea"}})
	be.Err(t, err, ErrAddFailed)
	be.Equal(t, n, 1)
}

// blockingGateway holds List until release is closed.
type blockingGateway struct {
	fakeGateway
	started chan struct{}
	release chan struct{}
}

func (g *blockingGateway) List(ctx context.Context) ([]model.Contact, error) {
	close(g.started)
	<-g.release
	return g.fakeGateway.List(ctx)
}

func TestLoadingFlag(t *testing.T) {
	gw := &blockingGateway{
		fakeGateway: fakeGateway{contacts: []model.Contact{ana}},
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	s, _ := newTestStore(t, gw, newRecordingCache(nil))

	done := make(chan error)
	go func() { done <- s.Load(context.Background()) }()

	<-gw.started
	be.True(t, s.State().Loading)

	close(gw.release)
	be.Err(t, <-done, nil)
	be.True(t, !s.State().Loading)
	be.Equal(t, s.Contacts(), []model.Contact{ana})
}
