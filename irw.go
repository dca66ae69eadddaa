// Package irw is a client for the Item Response Warehouse: table listings
// enriched with warehouse metadata, metadata-driven filtering, long-format
// table retrieval with per-source fallback, and long-to-wide response
// matrix conversion.
package irw

import (
	"context"

	"go.uber.org/zap"

	"github.com/datapages/irw-go/cache"
	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/fetch"
	"github.com/datapages/irw-go/filter"
	"github.com/datapages/irw-go/frame"
	"github.com/datapages/irw-go/listing"
	"github.com/datapages/irw-go/reshape"
	"github.com/datapages/irw-go/warehouse"
)

// Client bundles the warehouse operations over a fixed set of sources.
type Client struct {
	sources  []warehouse.Source
	meta     warehouse.Source
	itemText warehouse.Source

	cache  *cache.Cache
	logger *zap.SugaredLogger

	versionedJoinKey bool
	ratePerSecond    float64
	rateBurst        int

	agg       *listing.Aggregator
	engine    *filter.Engine
	converter *reshape.Converter
	coord     *fetch.Coordinator
}

// Option configures a Client.
type Option func(*Client)

// WithMetadata attaches the warehouse metadata collection, enabling the
// enriched listing and metadata filtering.
func WithMetadata(meta warehouse.Source) Option {
	return func(c *Client) { c.meta = meta }
}

// WithItemText attaches the item-text collection.
func WithItemText(it warehouse.Source) Option {
	return func(c *Client) { c.itemText = it }
}

// WithCache shares a metadata cache between clients.
func WithCache(mc *cache.Cache) Option {
	return func(c *Client) { c.cache = mc }
}

// WithLogger injects the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit throttles fetch requests against the backing sources.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.ratePerSecond = perSecond; c.rateBurst = burst }
}

// WithVersionedJoinKey invalidates the cached merged listing on metadata
// version bumps instead of serving it for the process lifetime.
func WithVersionedJoinKey() Option {
	return func(c *Client) { c.versionedJoinKey = true }
}

// New creates a client over the given base sources, tried in order on
// fetch. Attach metadata with WithMetadata to enable the enriched listing.
func New(sources []warehouse.Source, opts ...Option) *Client {
	c := &Client{sources: sources}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New()
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}

	aggOpts := []listing.Option{
		listing.WithCache(c.cache),
		listing.WithLogger(c.logger),
	}
	if c.meta != nil {
		aggOpts = append(aggOpts, listing.WithMetadata(c.meta))
	}
	if c.itemText != nil {
		aggOpts = append(aggOpts, listing.WithItemText(c.itemText))
	}
	if c.versionedJoinKey {
		aggOpts = append(aggOpts, listing.WithVersionedJoinKey())
	}
	c.agg = listing.NewAggregator(sources, aggOpts...)

	c.engine = filter.NewEngine(c.logger)
	c.converter = reshape.NewConverter(c.logger)

	coordOpts := []fetch.CoordinatorOption{fetch.WithLogger(c.logger)}
	if c.ratePerSecond > 0 {
		coordOpts = append(coordOpts, fetch.WithRateLimit(c.ratePerSecond, c.rateBurst))
	}
	c.coord = fetch.NewCoordinator(sources, coordOpts...)

	return c
}

// NewSim creates a client over the simulation collection. Simulation
// tables carry no warehouse metadata, so only the basic listing applies.
func NewSim(source warehouse.Source, opts ...Option) *Client {
	return New([]warehouse.Source{source}, opts...)
}

// NewComp creates a client over the competition collection. Competition
// tables carry no warehouse metadata, so only the basic listing applies.
func NewComp(source warehouse.Source, opts ...Option) *Client {
	return New([]warehouse.Source{source}, opts...)
}

// ListTables returns the enriched table listing: base enumeration joined
// with stats, tags, bibliography, and item-text availability. Requires a
// metadata collection.
func (c *Client) ListTables(ctx context.Context) ([]warehouse.TableInfo, error) {
	if c.meta == nil {
		return nil, errors.Wrap(errors.ErrConfiguration,
			"enriched listing requires a metadata collection; use ListTablesBasic or attach one with WithMetadata")
	}
	return c.agg.List(ctx), nil
}

// ListTablesBasic returns the base table enumeration with per-table row
// and column counts only.
func (c *Client) ListTablesBasic(ctx context.Context) []warehouse.TableProps {
	return c.agg.ListBasic(ctx)
}

// Filter returns the sorted names of tables matching the spec.
func (c *Client) Filter(ctx context.Context, spec filter.Spec) ([]string, error) {
	rows, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return c.engine.Apply(rows, spec), nil
}

// Filters returns the filter catalog with usage help.
func (c *Client) Filters() []filter.Description {
	return filter.Descriptions()
}

// DescribeFilter returns usage help and the observed values for one filter.
func (c *Client) DescribeFilter(ctx context.Context, name string) (*filter.Info, error) {
	rows, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Describe(name, rows)
}

// Fetch retrieves one long-format table, trying each source in order.
func (c *Client) Fetch(ctx context.Context, name string, opts fetch.Options) (*frame.Frame, error) {
	return c.coord.FetchOne(ctx, name, opts)
}

// FetchAll retrieves several tables. Every requested name is present in
// the result; unavailable tables map to nil.
func (c *Client) FetchAll(ctx context.Context, names []string, opts fetch.Options) map[string]*frame.Frame {
	return c.coord.FetchMany(ctx, names, opts)
}

// Long2Resp converts a fetched long-format table into a wide id-by-item
// response matrix.
func (c *Client) Long2Resp(f *frame.Frame, opts reshape.Options) (*frame.Frame, *reshape.Report, error) {
	return c.converter.Long2Resp(f, opts)
}

// Info aggregates collection-level statistics across the client's sources.
func (c *Client) Info(ctx context.Context) listing.Summary {
	return listing.Info(ctx, c.sources, c.logger)
}

// ClearCache drops every cached listing and metadata piece.
func (c *Client) ClearCache() {
	c.cache.Clear()
}
