package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/csheth/cardstudio/internal/api"
)

// DefaultStaleTime is how long a successful result is served without a new request.
const DefaultStaleTime = 5 * time.Minute

// Fetcher is the remote call the cache wraps; *api.Client satisfies it.
type Fetcher interface {
	Generate(ctx context.Context, topic string, rng api.Range) api.Envelope
}

// Options tune a Cache. Zero values select the defaults.
type Options struct {
	StaleTime time.Duration
	Range     api.Range
	Logger    *zap.Logger
	Now       func() time.Time
}

// Result is the view-facing state of one topic.
//
// IsPending means no data was ever loaded for the topic, IsFetching means a
// request for it is in flight (possibly while stale data is shown). When the
// topic is pending and has not failed, Data holds the previously displayed
// topic's payload and IsPlaceholderData is set.
type Result struct {
	Topic             string
	Data              *api.Payload
	IsPending         bool
	IsFetching        bool
	IsError           bool
	Error             string
	IsPlaceholderData bool
	PlaceholderTopic  string
	UpdatedAt         time.Time
}

// Enabled reports whether the result belongs to a non-empty topic.
func (r Result) Enabled() bool {
	return r.Topic != ""
}

type entry struct {
	data      *api.Payload
	hasData   bool
	updatedAt time.Time
	fetching  bool
	failed    bool
	err       string
}

// Cache de-duplicates generate calls per topic and keeps results fresh for
// a fixed window. It is safe for concurrent use.
type Cache struct {
	fetcher   Fetcher
	staleTime time.Duration
	rng       api.Range
	now       func() time.Time
	logger    *zap.Logger

	group singleflight.Group

	mu        sync.Mutex
	entries   map[string]*entry
	displayed string
}

// New constructs a cache around fetcher.
func New(fetcher Fetcher, opts Options) *Cache {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache{
		fetcher:   fetcher,
		staleTime: opts.StaleTime,
		rng:       opts.Range,
		now:       opts.Now,
		logger:    opts.Logger,
		entries:   map[string]*entry{},
	}
}

// Key normalizes a topic into the cache key.
func Key(topic string) string {
	return strings.TrimSpace(topic)
}

// NeedsFetch reports whether Fetch would issue a request for topic: the topic
// is non-empty, not already failed, and has no fresh data.
func (c *Cache) NeedsFetch(topic string) bool {
	key := Key(topic)
	if key == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsFetchLocked(key)
}

func (c *Cache) needsFetchLocked(key string) bool {
	e := c.entries[key]
	if e == nil {
		return true
	}
	if e.failed {
		return false
	}
	if !e.hasData {
		return !e.fetching
	}
	return c.now().Sub(e.updatedAt) >= c.staleTime
}

// Fetch returns the state of topic, issuing a request first when the cached
// data is missing or stale. Concurrent calls for one topic share a request.
// A topic whose last request failed is not re-requested; use Retry.
func (c *Cache) Fetch(ctx context.Context, topic string) Result {
	key := Key(topic)
	if key == "" {
		return Result{}
	}
	c.mu.Lock()
	needed := c.needsFetchLocked(key) || c.entries[key].fetching
	c.mu.Unlock()
	if !needed {
		return c.Observe(key)
	}
	return c.run(ctx, key)
}

// Retry forces a new request for topic regardless of freshness or failure.
func (c *Cache) Retry(ctx context.Context, topic string) Result {
	key := Key(topic)
	if key == "" {
		return Result{}
	}
	return c.run(ctx, key)
}

func (c *Cache) run(ctx context.Context, key string) Result {
	c.mu.Lock()
	e := c.entries[key]
	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}
	e.fetching = true
	c.mu.Unlock()

	// Results reach callers through store; Do only collapses duplicate requests.
	_, _, shared := c.group.Do(key, func() (any, error) {
		env := c.fetcher.Generate(ctx, key, c.rng)
		c.store(key, env)
		return nil, nil
	})
	if shared {
		c.logger.Debug("shared in-flight request", zap.String("topic", key))
	}
	return c.Observe(key)
}

func (c *Cache) store(key string, env api.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key]
	if e == nil {
		// Reset ran while the request was in flight.
		return
	}
	e.fetching = false
	if env.Success {
		e.data = env.Data
		e.hasData = true
		e.updatedAt = c.now()
		e.failed = false
		e.err = ""
		return
	}
	e.failed = true
	e.err = env.Error
	c.logger.Warn("query failed", zap.String("topic", key), zap.String("error", env.Error))
}

// Observe returns the current state of topic without issuing requests.
func (c *Cache) Observe(topic string) Result {
	key := Key(topic)
	if key == "" {
		return Result{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	result := Result{Topic: key, IsPending: true}
	if e := c.entries[key]; e != nil {
		result.IsFetching = e.fetching
		result.IsError = e.failed
		result.Error = e.err
		if e.hasData {
			result.Data = e.data
			result.IsPending = false
			result.UpdatedAt = e.updatedAt
		}
	}
	switch {
	case !result.IsPending:
		if !result.IsError {
			c.displayed = key
		}
	case !result.IsError && c.displayed != "" && c.displayed != key:
		if prev := c.entries[c.displayed]; prev != nil && prev.hasData {
			result.Data = prev.data
			result.IsPlaceholderData = true
			result.PlaceholderTopic = c.displayed
		}
	}
	return result
}

// Invalidate marks topic stale so the next Fetch re-requests it.
func (c *Cache) Invalidate(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entries[Key(topic)]; e != nil && e.hasData {
		e.updatedAt = time.Time{}
	}
}

// Reset drops every entry and the previously displayed topic.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*entry{}
	c.displayed = ""
}
