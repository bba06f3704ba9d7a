package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"elite-decor-web/internal/metrics"
	"elite-decor-web/internal/models"
)

// DefaultSearchDebounce is how long typing must pause before a search runs.
const DefaultSearchDebounce = 500 * time.Millisecond

// SearchResult is delivered once per applied dispatch.
type SearchResult struct {
	RequestID  string               `json:"requestId"`
	Generation uint64               `json:"generation"`
	Filter     models.ServiceFilter `json:"filter"`
	Services   []models.Service     `json:"services"`
	Err        error                `json:"-"`
}

// SearchController runs the live catalog search of one session. Text
// changes are debounced; category and sort changes dispatch at once. Each
// dispatch takes a new generation and only the latest generation's result
// is delivered.
type SearchController struct {
	catalog  *CatalogService
	debounce time.Duration
	deliver  func(SearchResult)
	logger   zerolog.Logger

	// delivering serializes the final check and delivery; take it before mu.
	delivering sync.Mutex

	mu         sync.Mutex
	filter     models.ServiceFilter
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	closed     bool
}

func NewSearchController(catalog *CatalogService, debounce time.Duration, deliver func(SearchResult), logger zerolog.Logger) *SearchController {
	return &SearchController{
		catalog:  catalog,
		debounce: debounce,
		deliver:  deliver,
		logger:   logger,
	}
}

// Filter returns the filter as last set.
func (c *SearchController) Filter() models.ServiceFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *SearchController) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.filter.SearchText = text
	c.stopTimerLocked()
	if c.debounce <= 0 {
		c.dispatchLocked()
		return
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		c.timer = nil
		c.dispatchLocked()
	})
}

func (c *SearchController) SetCategory(category models.Category) {
	c.update(func(f *models.ServiceFilter) { f.Category = category })
}

func (c *SearchController) SetSort(order models.SortOrder) {
	c.update(func(f *models.ServiceFilter) { f.Sort = order })
}

// Apply replaces the whole filter. Only a text change is debounced.
func (c *SearchController) Apply(filter models.ServiceFilter) {
	current := c.Filter()
	if current.Category != filter.Category || current.Sort != filter.Sort {
		c.update(func(f *models.ServiceFilter) { *f = filter })
		return
	}
	if current.SearchText != filter.SearchText {
		c.SetSearchText(filter.SearchText)
	}
}

func (c *SearchController) update(change func(*models.ServiceFilter)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	change(&c.filter)
	c.stopTimerLocked()
	c.dispatchLocked()
}

// Close stops pending and in-flight searches; nothing is delivered after.
// A delivery already under way finishes first.
func (c *SearchController) Close() error {
	c.delivering.Lock()
	defer c.delivering.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimerLocked()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

func (c *SearchController) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// dispatchLocked expects c.mu held.
func (c *SearchController) dispatchLocked() {
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	filter := c.filter
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go c.run(ctx, gen, filter)
}

func (c *SearchController) run(ctx context.Context, gen uint64, filter models.ServiceFilter) {
	requestID := uuid.NewString()
	services, err := c.catalog.ListServices(ctx, filter)

	c.delivering.Lock()
	defer c.delivering.Unlock()

	c.mu.Lock()
	stale := c.closed || gen != c.generation
	c.mu.Unlock()
	if stale {
		metrics.SearchDispatchesTotal.WithLabelValues("discarded").Inc()
		c.logger.Debug().Str("request_id", requestID).Uint64("generation", gen).Msg("discarding stale search result")
		return
	}

	metrics.SearchDispatchesTotal.WithLabelValues("applied").Inc()
	if err != nil {
		c.logger.Warn().Err(err).Str("request_id", requestID).Msg("live search failed")
	}
	if c.deliver != nil {
		c.deliver(SearchResult{
			RequestID:  requestID,
			Generation: gen,
			Filter:     filter,
			Services:   services,
			Err:        err,
		})
	}
}
