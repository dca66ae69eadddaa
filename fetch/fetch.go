// Package fetch retrieves long-format response tables from an ordered list
// of warehouse sources with per-source fallback.
package fetch

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/frame"
	"github.com/datapages/irw-go/warehouse"
)

// Coordinator tries sources in order until one yields the requested table.
type Coordinator struct {
	sources []warehouse.Source
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithRateLimit throttles source requests to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) CoordinatorOption {
	return func(c *Coordinator) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// WithLogger injects the logger.
func WithLogger(l *zap.SugaredLogger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates a coordinator over the given sources.
func NewCoordinator(sources []warehouse.Source, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{sources: sources}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	return c
}

// Options configures a fetch request.
type Options struct {
	// Dedup retains one response per (id, item[, wave]) group, chosen by a
	// deterministic seeded draw.
	Dedup bool
}

// FetchOne retrieves a single table, trying each source in order.
//
// An invalid-request failure stops the search immediately. Not-found,
// transient, and unknown failures advance to the next source. Exhausting
// every source yields ErrNotFound when no source reported anything worse
// than absence, and ErrRetrieval otherwise, so callers can distinguish a
// missing table from a broken retrieval.
func (c *Coordinator) FetchOne(ctx context.Context, name string, opts Options) (*frame.Frame, error) {
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "table name cannot be empty")
	}

	var lastErr error
	sawRetrievalError := false
	for _, src := range c.sources {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, errors.Wrap(err, "rate limiter interrupted")
			}
		}

		f, err := src.GetTable(ctx, name)
		if err == nil {
			return c.transform(f, name, opts), nil
		}

		lastErr = err
		switch errors.Classify(err) {
		case errors.KindInvalidRequest:
			c.logger.Warnw("table cannot be fetched due to an invalid request",
				"table", name, "source", src.Name())
			return nil, errors.Wrapf(errors.ErrInvalidRequest,
				"table %q cannot be fetched: %v", name, err)
		case errors.KindNotFound:
			c.logger.Debugw("table not in source, trying next",
				"table", name, "source", src.Name())
		default:
			sawRetrievalError = true
			c.logger.Warnw("source failed, trying next",
				"table", name, "source", src.Name(), "error", err)
		}
	}

	if lastErr == nil || !sawRetrievalError {
		return nil, errors.Wrapf(errors.ErrNotFound,
			"table %q does not exist in any source", name)
	}
	return nil, errors.Wrapf(errors.ErrRetrieval,
		"fetching table %q failed: %v", name, lastErr)
}

// FetchMany retrieves several tables. The result always maps every
// requested name; unavailable tables map to nil with the failure logged,
// and one failing name never aborts its siblings.
func (c *Coordinator) FetchMany(ctx context.Context, names []string, opts Options) map[string]*frame.Frame {
	batchID := uuid.NewString()
	out := make(map[string]*frame.Frame, len(names))
	for _, name := range names {
		f, err := c.FetchOne(ctx, name, opts)
		if err != nil {
			if errors.IsNotFound(err) {
				c.logger.Warnw("table not found", "table", name, "batch", batchID)
			} else {
				c.logger.Errorw("table fetch failed",
					"table", name, "batch", batchID, "error", err)
			}
			out[name] = nil
			continue
		}
		out[name] = f
	}
	return out
}

// transform applies the inline post-fetch steps: permissive resp coercion
// and optional deduplication. The source's frame is cloned before coercion
// so its stored data is never mutated.
func (c *Coordinator) transform(f *frame.Frame, name string, opts Options) *frame.Frame {
	if f.HasColumn("resp") {
		f = f.Clone()
		col := f.Column("resp")
		failed := false
		for i, v := range col {
			coerced, bad := frame.CoerceNumber(v)
			failed = failed || bad
			col[i] = coerced
		}
		if failed {
			c.logger.Warnw("resp column contained non-numeric values; set to missing",
				"table", name)
		}
	}
	if opts.Dedup {
		f = c.dedup(f, name)
	}
	return f
}
