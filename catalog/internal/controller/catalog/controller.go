package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

var ErrUnknownFilter = errors.New("unknown filter")

// DefaultMaxPages is the pagination safety ceiling. Upstream catalogs do
// not reliably report total pages, so the engine stops on its own.
const DefaultMaxPages = 500

// Provider fetches one normalized catalog page. Each filter is bound to
// exactly one provider.
type Provider interface {
	FetchPage(ctx context.Context, page int) (*model.Page, error)
}

// Controller is the paginated catalog engine. It accumulates an ordered,
// deduplicated item list for the active filter and discards responses that
// arrive for a superseded filter generation.
type Controller struct {
	providers map[model.Filter]Provider
	maxPages  int
	logger    *zap.Logger
	scope     tally.Scope

	mu         sync.Mutex
	generation uint64
	filter     model.Filter
	items      []model.MovieSummary
	seen       map[model.MovieID]struct{}
	page       int // pages successfully accumulated under the current filter
	loading    bool
	done       bool
	lastErr    error
}

func New(providers map[model.Filter]Provider, maxPages int, logger *zap.Logger, scope tally.Scope) *Controller {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Controller{
		providers: providers,
		maxPages:  maxPages,
		logger:    logger,
		scope:     scope,
		seen:      map[model.MovieID]struct{}{},
	}
}

// SelectFilter switches the active filter, clears accumulated state and
// fetches page 1 for the new filter. A page fetch still in flight for the
// previous filter is left to complete; its result is dropped on arrival.
func (c *Controller) SelectFilter(ctx context.Context, f model.Filter) error {
	p, ok := c.providers[f]
	if !ok {
		return ErrUnknownFilter
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.filter = f
	c.items = nil
	c.seen = map[model.MovieID]struct{}{}
	c.page = 0
	c.done = false
	c.lastErr = nil
	c.loading = true
	c.mu.Unlock()

	c.logger.Info("Selected catalog filter", zap.String("filter", string(f)))
	return c.fetch(ctx, p, gen, 1)
}

// LoadNextPage fetches the page after the last successfully accumulated
// one. It is a no-op while a load is in flight or after pagination has
// terminated. A failed page is retried by calling LoadNextPage again.
func (c *Controller) LoadNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.loading || c.done || c.filter == "" {
		c.mu.Unlock()
		return nil
	}
	p := c.providers[c.filter]
	gen := c.generation
	page := c.page + 1
	c.loading = true
	c.mu.Unlock()

	return c.fetch(ctx, p, gen, page)
}

// fetch runs one page fetch without holding the lock and applies the
// result only if the engine is still on the same filter generation.
func (c *Controller) fetch(ctx context.Context, p Provider, gen uint64, page int) error {
	res, err := p.FetchPage(ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.scope.Counter("catalog_stale_responses").Inc(1)
		c.logger.Debug("Discarded stale page response",
			zap.Int("page", page), zap.Uint64("generation", gen))
		return nil
	}
	c.loading = false
	if err != nil {
		c.lastErr = err
		c.scope.Counter("catalog_page_errors").Inc(1)
		c.logger.Warn("Failed to fetch catalog page",
			zap.String("filter", string(c.filter)), zap.Int("page", page), zap.Error(err))
		return err
	}

	c.lastErr = nil
	appended := 0
	for _, it := range res.Items {
		if _, ok := c.seen[it.ID]; ok {
			continue
		}
		c.seen[it.ID] = struct{}{}
		c.items = append(c.items, it)
		appended++
	}
	c.page = page
	if len(res.Items) == 0 || res.IsLast || c.page >= c.maxPages {
		c.done = true
	}
	c.scope.Counter("catalog_pages_fetched").Inc(1)
	c.logger.Info("Accumulated catalog page",
		zap.String("filter", string(c.filter)), zap.Int("page", page),
		zap.Int("appended", appended), zap.Int("total", len(c.items)))
	return nil
}

// State returns a copy of the current catalog state.
func (c *Controller) State() model.CatalogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := model.CatalogState{
		ActiveFilter:  c.filter,
		Items:         append([]model.MovieSummary(nil), c.items...),
		CurrentPage:   c.page,
		IsLoadingMore: c.loading,
	}
	if s.CurrentPage < 1 {
		s.CurrentPage = 1
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}
