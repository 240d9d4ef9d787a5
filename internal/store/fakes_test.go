package store

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"testing"

	"github.com/rcliao/contacts/internal/cache"
	"github.com/rcliao/contacts/internal/gateway"
	"github.com/rcliao/contacts/internal/model"
)

// fakeGateway serves a fixed list and hands out sequential server ids.
type fakeGateway struct {
	down     bool
	contacts []model.Contact
	nextID   int
	created  []model.Candidate
	listed   int
}

func (g *fakeGateway) List(ctx context.Context) ([]model.Contact, error) {
	g.listed++
	if g.down {
		return nil, &gateway.Error{Op: "list", Err: fmt.Errorf("connection refused")}
	}
	return append([]model.Contact(nil), g.contacts...), nil
}

func (g *fakeGateway) Create(ctx context.Context, c model.Candidate) (model.Contact, error) {
	if g.down {
		return model.Contact{}, &gateway.Error{Op: "create", Status: 503, Err: fmt.Errorf("unavailable")}
	}
	g.created = append(g.created, c)
	g.nextID++
	return c.WithID(model.ID(fmt.Sprintf("srv-%d", g.nextID))), nil
}

// recordingCache wraps a Memory cache, counting writes and optionally failing them.
type recordingCache struct {
	*cache.Memory
	writes    [][]model.Contact
	failWrite bool
	failRead  bool
}

func newRecordingCache(snapshot []model.Contact) *recordingCache {
	return &recordingCache{Memory: cache.NewMemory(snapshot)}
}

func (c *recordingCache) Read(ctx context.Context) ([]model.Contact, bool, error) {
	if c.failRead {
		return nil, false, fmt.Errorf("%w: disk error", cache.ErrUnavailable)
	}
	return c.Memory.Read(ctx)
}

func (c *recordingCache) Write(ctx context.Context, contacts []model.Contact) error {
	c.writes = append(c.writes, append([]model.Contact(nil), contacts...))
	if c.failWrite {
		return fmt.Errorf("%w: quota exceeded", cache.ErrUnavailable)
	}
	return c.Memory.Write(ctx, contacts)
}

func (c *recordingCache) lastWrite(t *testing.T) []model.Contact {
	t.Helper()
	if len(c.writes) == 0 {
		t.Fatal("expected a cache write")
	}
	return c.writes[len(c.writes)-1]
}

func newTestStore(t *testing.T, gw gateway.Gateway, c cache.Cache, opts ...Option) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]Option{WithLogger(log.New(&buf, "", 0))}, opts...)
	return New(gw, c, opts...), &buf
}

func seqIDs(prefix string) func() model.ID {
	n := 0
	return func() model.ID {
		n++
		return model.ID(fmt.Sprintf("%s%d", prefix, n))
	}
}
