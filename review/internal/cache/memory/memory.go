package memory

import (
	"context"
	"sync"

	"github.com/cinelogapp/cinelog/review/internal/cache"
	"github.com/cinelogapp/cinelog/review/pkg/model"
	"go.opentelemetry.io/otel"
)

const tracerID = "identity-cache-memory"

// Cache is a session-scoped memoizing identity store. Entries are created
// lazily on first reference and never evicted; racing puts for the same id
// are last-write-wins. Invalidate exists so staleness handling stays
// pluggable even though the aggregator never calls it.
type Cache struct {
	sync.RWMutex
	data map[model.UserID]*model.Identity
}

// New creates a new memory identity cache.
func New() *Cache {
	return &Cache{data: map[model.UserID]*model.Identity{}}
}

// Get retrieves the cached identity for a user id.
func (c *Cache) Get(ctx context.Context, id model.UserID) (*model.Identity, error) {
	c.RLock()
	defer c.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Cache/Get")
	defer span.End()

	ident, ok := c.data[id]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return ident, nil
}

// Put stores the identity for a user id.
func (c *Cache) Put(ctx context.Context, id model.UserID, ident *model.Identity) error {
	c.Lock()
	defer c.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Cache/Put")
	defer span.End()

	c.data[id] = ident
	return nil
}

// Invalidate drops the entry for a user id.
func (c *Cache) Invalidate(ctx context.Context, id model.UserID) error {
	c.Lock()
	defer c.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Cache/Invalidate")
	defer span.End()

	delete(c.data, id)
	return nil
}
