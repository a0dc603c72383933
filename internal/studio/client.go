package studio

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	studiootel "github.com/timvw/agent-studio/internal/otel"
)

var apiTracer = otel.Tracer("agent-studio/studio")

// Client serves the catalog as if it were a remote API.
type Client struct {
	mu       sync.RWMutex
	catalog  *Catalog
	revision uint64

	latency  time.Duration
	cache    *ResponseCache
	activity *ActivityLog
	metrics  *studiootel.Metrics
	tracer   trace.Tracer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLatency sets the artificial delay of every uncached call.
func WithLatency(d time.Duration) Option {
	return func(c *Client) { c.latency = d }
}

// WithCacheTTL enables the response cache. Zero disables it.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = NewResponseCache(ttl) }
}

// WithCatalog replaces the embedded seed catalog.
func WithCatalog(cat *Catalog) Option {
	return func(c *Client) { c.catalog = cat }
}

// WithActivity uses log instead of a fresh activity log.
func WithActivity(log *ActivityLog) Option {
	return func(c *Client) { c.activity = log }
}

// WithMetrics records call metrics on m.
func WithMetrics(m *studiootel.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides time.Now for timestamps and metric series.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient returns a client over the embedded catalog unless WithCatalog
// is given. Seed activity is recorded relative to the client's clock.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		tracer: apiTracer,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalog == nil {
		cat, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		c.catalog = cat
	}
	if c.cache == nil {
		c.cache = NewResponseCache(0)
	}
	if c.activity == nil {
		c.activity = NewActivityLog(0)
	}
	if err := c.activity.Seed(c.catalog.Activity, c.now()); err != nil {
		return nil, err
	}
	return c, nil
}

// call runs fn against the catalog the way a remote request would: inside
// a span, after the configured latency, and through the cache when key is
// not empty. The catalog is read-locked while fn runs.
func call[T any](ctx context.Context, c *Client, op, key string, fn func(*Catalog) (T, error)) (T, error) {
	var zero T
	ctx, span := c.tracer.Start(ctx, "studio "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("studio.operation", op),
			attribute.String("studio.key", key),
		),
	)
	defer span.End()
	start := time.Now()

	if key != "" {
		c.mu.RLock()
		rev := c.revision
		c.mu.RUnlock()
		if v, ok := c.cache.Lookup(op+":"+key, rev); ok {
			span.SetAttributes(attribute.Bool("studio.cache_hit", true))
			c.metrics.RecordCacheHit(ctx)
			c.metrics.RecordAPICall(ctx, op, time.Since(start), nil)
			return v.(T), nil
		}
		if c.cache.ttl > 0 {
			c.metrics.RecordCacheMiss(ctx)
		}
	}

	if err := c.wait(ctx); err != nil {
		span.SetAttributes(attribute.String("error.type", "canceled"))
		c.metrics.RecordAPICall(ctx, op, time.Since(start), err)
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	c.mu.RLock()
	rev := c.revision
	v, err := fn(c.catalog)
	c.mu.RUnlock()

	c.metrics.RecordAPICall(ctx, op, time.Since(start), err)
	if err != nil {
		span.SetAttributes(attribute.String("error.type", errorType(err)))
		c.logger.Debug("studio call failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	if key != "" {
		c.cache.Store(op+":"+key, rev, v)
	}
	c.logger.Debug("studio call", zap.String("op", op), zap.String("key", key), zap.Duration("took", time.Since(start)))
	return v, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	}
	return "internal"
}

func (c *Client) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Revision increments on every catalog change.
func (c *Client) Revision() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// ListAgents returns all agents, most recently updated first.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	return call(ctx, c, "ListAgents", "all", func(cat *Catalog) ([]Agent, error) {
		return newestFirst(cat.Agents), nil
	})
}

// GetAgent returns one agent.
func (c *Client) GetAgent(ctx context.Context, id string) (Agent, error) {
	return call(ctx, c, "GetAgent", id, func(cat *Catalog) (Agent, error) {
		return findAs[Agent](cat, id)
	})
}

// ListPrompts returns all prompts, most recently updated first.
func (c *Client) ListPrompts(ctx context.Context) ([]Prompt, error) {
	return call(ctx, c, "ListPrompts", "all", func(cat *Catalog) ([]Prompt, error) {
		return newestFirst(cat.Prompts), nil
	})
}

// GetPrompt returns one prompt.
func (c *Client) GetPrompt(ctx context.Context, id string) (Prompt, error) {
	return call(ctx, c, "GetPrompt", id, func(cat *Catalog) (Prompt, error) {
		return findAs[Prompt](cat, id)
	})
}

// ListLLMs returns all models.
func (c *Client) ListLLMs(ctx context.Context) ([]LLM, error) {
	return call(ctx, c, "ListLLMs", "all", func(cat *Catalog) ([]LLM, error) {
		return newestFirst(cat.LLMs), nil
	})
}

// ListKnowledgeBases returns all knowledge bases.
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	return call(ctx, c, "ListKnowledgeBases", "all", func(cat *Catalog) ([]KnowledgeBase, error) {
		return newestFirst(cat.KnowledgeBases), nil
	})
}

// ListFeatures returns all feature-store entries.
func (c *Client) ListFeatures(ctx context.Context) ([]Feature, error) {
	return call(ctx, c, "ListFeatures", "all", func(cat *Catalog) ([]Feature, error) {
		return newestFirst(cat.Features), nil
	})
}

// ListGuardrails returns all guardrails.
func (c *Client) ListGuardrails(ctx context.Context) ([]Guardrail, error) {
	return call(ctx, c, "ListGuardrails", "all", func(cat *Catalog) ([]Guardrail, error) {
		return newestFirst(cat.Guardrails), nil
	})
}

// List returns the summaries of one kind.
func (c *Client) List(ctx context.Context, kind Kind) ([]Summary, error) {
	return call(ctx, c, "List", string(kind), func(cat *Catalog) ([]Summary, error) {
		if !knownKind(kind) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		return cat.summaries(kind), nil
	})
}

// Get returns any entity by id.
func (c *Client) Get(ctx context.Context, id string) (Entity, error) {
	return call(ctx, c, "Get", id, func(cat *Catalog) (Entity, error) {
		e, ok := cat.find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return e, nil
	})
}

// Counts returns the number of entities per kind.
func (c *Client) Counts(ctx context.Context) (map[Kind]int, error) {
	return call(ctx, c, "Counts", "all", func(cat *Catalog) (map[Kind]int, error) {
		return cat.counts(), nil
	})
}

// metricBuckets is the length of a monitoring series.
const metricBuckets = 24

// Metrics returns a day of hourly monitoring data for an entity. The
// series is derived from the entity id, so repeated calls within the same
// hour agree.
func (c *Client) Metrics(ctx context.Context, id string) (Series, error) {
	end := c.now().Truncate(time.Hour)
	return call(ctx, c, "Metrics", id+"@"+end.Format(time.RFC3339), func(cat *Catalog) (Series, error) {
		e, ok := cat.find(id)
		if !ok {
			return Series{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return syntheticSeries(e.Summary(), end), nil
	})
}

// History returns an entity's activity, newest first.
func (c *Client) History(ctx context.Context, id string) ([]Event, error) {
	return call(ctx, c, "History", "", func(cat *Catalog) ([]Event, error) {
		if _, ok := cat.find(id); !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return c.activity.History(id, c.now()), nil
	})
}

// Activity returns the latest events across the catalog, newest first.
// limit <= 0 returns everything.
func (c *Client) Activity(ctx context.Context, limit int) ([]Event, error) {
	return call(ctx, c, "Activity", "", func(*Catalog) ([]Event, error) {
		events := c.activity.Snapshot(c.now())
		if limit > 0 && len(events) > limit {
			events = events[:limit]
		}
		return events, nil
	})
}

var idPrefixes = map[Kind]string{
	KindAgent:         "agt-",
	KindPrompt:        "prm-",
	KindLLM:           "llm-",
	KindKnowledgeBase: "kb-",
	KindFeature:       "fs-",
	KindGuardrail:     "grd-",
}

// Create adds a draft entity and returns its summary.
func (c *Client) Create(ctx context.Context, kind Kind, name, description string) (Summary, error) {
	return mutateOp(ctx, c, "Create", func(cat *Catalog) (Summary, error) {
		prefix, ok := idPrefixes[kind]
		if !ok {
			return Summary{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return Summary{}, fmt.Errorf("name is required")
		}
		s := Summary{
			Kind:        kind,
			ID:          prefix + uuid.NewString()[:8],
			Name:        name,
			Description: description,
			Status:      StatusDraft,
			UpdatedAt:   c.now(),
		}
		if err := cat.add(s); err != nil {
			return Summary{}, err
		}
		_, err := c.activity.Record(Event{
			EntityID: s.ID,
			Kind:     EventCreate,
			Actor:    "you",
			Message:  "Created " + s.Name,
			TS:       s.UpdatedAt,
		})
		return s, err
	})
}

// Delete removes an entity and its history.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := mutateOp(ctx, c, "Delete", func(cat *Catalog) (struct{}, error) {
		if !cat.remove(id) {
			return struct{}{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		c.activity.Forget(id)
		return struct{}{}, nil
	})
	return err
}

// mutateOp runs fn under the write lock after the configured latency and
// bumps the revision when fn succeeds.
func mutateOp[T any](ctx context.Context, c *Client, op string, fn func(*Catalog) (T, error)) (T, error) {
	var zero T
	ctx, span := c.tracer.Start(ctx, "studio "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("studio.operation", op)),
	)
	defer span.End()
	start := time.Now()

	if err := c.wait(ctx); err != nil {
		span.SetAttributes(attribute.String("error.type", "canceled"))
		c.metrics.RecordAPICall(ctx, op, time.Since(start), err)
		return zero, fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	v, err := fn(c.catalog)
	if err == nil {
		c.revision++
	}
	c.mu.Unlock()

	c.metrics.RecordAPICall(ctx, op, time.Since(start), err)
	if err != nil {
		span.SetAttributes(attribute.String("error.type", errorType(err)))
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	c.logger.Info("catalog changed", zap.String("op", op))
	return v, nil
}

// ReplaceCatalog swaps in a new catalog and reseeds the activity log.
func (c *Client) ReplaceCatalog(cat *Catalog) error {
	if cat == nil {
		return fmt.Errorf("nil catalog")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = cat
	c.revision++
	c.activity.Reset()
	return c.activity.Seed(cat.Activity, c.now())
}

func knownKind(k Kind) bool {
	_, ok := idPrefixes[k]
	return ok
}

func findAs[T Entity](cat *Catalog, id string) (T, error) {
	var zero T
	e, ok := cat.find(id)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	v, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is a %s", ErrNotFound, id, e.Summary().Kind)
	}
	return v, nil
}

func newestFirst[T Entity](list []T) []T {
	out := append([]T(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Summary().UpdatedAt.After(out[j].Summary().UpdatedAt)
	})
	return out
}

// syntheticSeries builds a plausible traffic curve for an entity. The
// random source is seeded from the id so the same entity always gets the
// same shape.
func syntheticSeries(s Summary, end time.Time) Series {
	h := fnv.New64a()
	h.Write([]byte(s.ID))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>17))

	base := 40 + rng.IntN(400)
	errRate := 0.005 + rng.Float64()*0.02
	switch s.Status {
	case StatusDraft:
		base /= 20
	case StatusPaused, StatusDeprecated:
		base /= 8
	case StatusError:
		errRate += 0.2
	}
	latency := 200 + rng.Float64()*900

	series := Series{EntityID: s.ID, Bucket: time.Hour}
	start := end.Add(-time.Duration(metricBuckets-1) * time.Hour)
	for i := 0; i < metricBuckets; i++ {
		at := start.Add(time.Duration(i) * time.Hour)
		// Daytime peak around 15:00 UTC.
		dist := float64(at.UTC().Hour() - 15)
		if dist < 0 {
			dist = -dist
		}
		load := 1.0 - dist/15
		if load < 0.1 {
			load = 0.1
		}
		req := int(float64(base)*load*(0.8+rng.Float64()*0.4)) + 1
		series.Points = append(series.Points, MetricPoint{
			Time:      at,
			Requests:  req,
			Errors:    int(float64(req)*errRate + rng.Float64()),
			LatencyMs: latency * (0.85 + rng.Float64()*0.3),
			Tokens:    req * (300 + rng.IntN(900)),
		})
	}
	return series
}
