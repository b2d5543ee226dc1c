package feed

import (
	"context"
	"sync"

	"github.com/cinelogapp/cinelog/catalog/pkg/model"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// DefaultLowWatermark is the queue length below which the next page is
// prefetched in the background.
const DefaultLowWatermark = 5

// Provider fetches one normalized discovery page.
type Provider interface {
	FetchPage(ctx context.Context, page int) (*model.Page, error)
}

// Controller is the swipe discovery queue engine: an append-only queue
// consumed from the head, refilled by at most one outstanding background
// prefetch at a time.
type Controller struct {
	provider  Provider
	watermark int
	logger    *zap.Logger
	scope     tally.Scope

	mu         sync.Mutex
	generation uint64
	queue      []model.MovieSummary
	queued     map[model.MovieID]struct{}
	page       int // last successfully fetched page
	fetching   bool
	exhausted  bool
	lastErr    error
}

func New(provider Provider, watermark int, logger *zap.Logger, scope tally.Scope) *Controller {
	if watermark <= 0 {
		watermark = DefaultLowWatermark
	}
	return &Controller{
		provider:  provider,
		watermark: watermark,
		logger:    logger,
		scope:     scope,
		queued:    map[model.MovieID]struct{}{},
	}
}

// Start clears the queue and fetches page 1. A prefetch still in flight
// keeps running; its result is dropped on arrival.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.queue = nil
	c.queued = map[model.MovieID]struct{}{}
	c.page = 0
	c.fetching = false
	c.exhausted = false
	c.lastErr = nil
	c.mu.Unlock()

	res, err := c.provider.FetchPage(ctx, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil
	}
	if err != nil {
		c.lastErr = err
		return err
	}
	c.apply(res, 1)
	return nil
}

// Reset restarts the feed from page 1, clearing the exhausted latch.
func (c *Controller) Reset(ctx context.Context) error {
	return c.Start(ctx)
}

// ConsumeNext pops the head of the queue. Both swipe directions consume
// identically. When the remaining buffer drops below the low-watermark and
// no prefetch is outstanding, exactly one background prefetch starts; the
// pop itself never blocks on the network.
func (c *Controller) ConsumeNext(ctx context.Context) (model.MovieSummary, bool) {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.maybePrefetchLocked(ctx)
		c.mu.Unlock()
		return model.MovieSummary{}, false
	}
	head := c.queue[0]
	c.queue = c.queue[1:]
	delete(c.queued, head.ID)
	c.maybePrefetchLocked(ctx)
	c.mu.Unlock()

	c.scope.Counter("feed_consumed").Inc(1)
	return head, true
}

// maybePrefetchLocked starts one background fetch of the next page when
// the buffer is below the watermark. Callers must hold c.mu.
func (c *Controller) maybePrefetchLocked(ctx context.Context) {
	if c.fetching || c.exhausted || len(c.queue) >= c.watermark {
		return
	}
	c.fetching = true
	gen := c.generation
	page := c.page + 1
	c.scope.Counter("feed_prefetches").Inc(1)
	// The prefetch outlives the swipe request that triggered it.
	go c.prefetch(context.WithoutCancel(ctx), gen, page)
}

func (c *Controller) prefetch(ctx context.Context, gen uint64, page int) {
	res, err := c.provider.FetchPage(ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.scope.Counter("feed_stale_responses").Inc(1)
		return
	}
	c.fetching = false
	if err != nil {
		c.lastErr = err
		c.logger.Warn("Discovery prefetch failed", zap.Int("page", page), zap.Error(err))
		return
	}
	c.lastErr = nil
	c.apply(res, page)
}

// apply appends a fetched page, skipping ids already queued. A zero-item
// page latches exhaustion until Reset. Callers must hold c.mu.
func (c *Controller) apply(res *model.Page, page int) {
	if len(res.Items) == 0 {
		c.exhausted = true
		c.logger.Info("Discovery feed exhausted", zap.Int("page", page))
		return
	}
	for _, it := range res.Items {
		if _, ok := c.queued[it.ID]; ok {
			continue
		}
		c.queued[it.ID] = struct{}{}
		c.queue = append(c.queue, it)
	}
	c.page = page
	if res.IsLast {
		c.exhausted = true
	}
	c.logger.Info("Appended discovery page",
		zap.Int("page", page), zap.Int("queued", len(c.queue)))
}

// State returns a copy of the current feed state.
func (c *Controller) State() model.FeedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := model.FeedState{
		Queue:     append([]model.MovieSummary(nil), c.queue...),
		NextPage:  c.page + 1,
		IsLoading: c.fetching,
		Exhausted: c.exhausted,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}
