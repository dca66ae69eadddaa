// Package listing assembles the enriched table listing: base table
// enumeration joined with the warehouse's statistics, tags, and
// bibliography metadata.
package listing

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/datapages/irw-go/cache"
	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/warehouse"
)

// Aggregator builds table listings over injected sources. Base enumeration
// is authoritative: metadata rows without a base table are dropped, base
// tables without metadata keep null fields.
type Aggregator struct {
	sources  []warehouse.Source
	meta     warehouse.Source
	itemText warehouse.Source

	cache  *cache.Cache
	logger *zap.SugaredLogger

	versionedJoinKey bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMetadata attaches the metadata collection (main namespace only).
func WithMetadata(meta warehouse.Source) Option {
	return func(a *Aggregator) { a.meta = meta }
}

// WithItemText attaches the item-text collection used to derive the
// has_item_text flag.
func WithItemText(it warehouse.Source) Option {
	return func(a *Aggregator) { a.itemText = it }
}

// WithCache injects the metadata cache. A fresh cache is created otherwise.
func WithCache(c *cache.Cache) Option {
	return func(a *Aggregator) { a.cache = c }
}

// WithLogger injects the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// WithVersionedJoinKey keys the merged-listing cache by the metadata version
// tags in addition to source identities, so a metadata version bump
// invalidates the cached join. The default preserves identity-only keying
// for cross-call stability.
func WithVersionedJoinKey() Option {
	return func(a *Aggregator) { a.versionedJoinKey = true }
}

// NewAggregator creates an aggregator over the given base sources.
func NewAggregator(sources []warehouse.Source, opts ...Option) *Aggregator {
	a := &Aggregator{sources: sources}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = cache.New()
	}
	if a.logger == nil {
		a.logger = zap.NewNop().Sugar()
	}
	return a
}

// ListBasic enumerates tables with base properties only (name, numRows,
// variableCount), stably sorted by name. Sources that fail to enumerate are
// skipped.
func (a *Aggregator) ListBasic(ctx context.Context) []warehouse.TableProps {
	var rows []warehouse.TableProps
	for _, src := range a.sources {
		props, err := a.sourceTables(ctx, src)
		if err != nil {
			a.logger.Warnw("skipping source: table enumeration failed",
				"source", src.Name(), "error", err)
			continue
		}
		rows = append(rows, props...)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// List builds the full table listing. Metadata unavailability degrades to
// whatever pieces loaded; the base listing itself is never dropped.
func (a *Aggregator) List(ctx context.Context) []warehouse.TableInfo {
	key := a.joinCacheKey()
	if v, ok := a.cache.Get(key, ""); ok {
		cached := v.([]warehouse.TableInfo)
		out := make([]warehouse.TableInfo, len(cached))
		copy(out, cached)
		return out
	}

	names := a.baseNames(ctx)

	stats := a.metaFrameIndex(ctx, warehouse.MetaTableStats)
	tags := a.metaFrameIndex(ctx, warehouse.MetaTableTags)
	biblio := a.metaFrameIndex(ctx, warehouse.MetaTableBiblio)
	itemText := a.itemTextNames(ctx)

	out := make([]warehouse.TableInfo, 0, len(names))
	for _, name := range names {
		info := warehouse.TableInfo{Name: name}

		info.NResponses = stats.floatAt(name, "n_responses")
		info.NParticipants = stats.floatAt(name, "n_participants")
		info.NItems = stats.floatAt(name, "n_items")
		info.ResponsesPerParticipant = stats.floatAt(name, "responses_per_participant")
		info.ResponsesPerItem = stats.floatAt(name, "responses_per_item")
		info.Density = stats.floatAt(name, "density")
		info.Longitudinal = stats.boolAt(name, "longitudinal")

		info.ConstructType = tags.stringAt(name, "construct_type")
		info.ConstructName = tags.stringAt(name, "construct_name")
		info.AgeRange = tags.stringAt(name, "age_range")
		info.ChildAge = tags.stringAt(name, rawChildAge)
		info.Sample = tags.stringAt(name, "sample")
		info.ItemFormat = tags.stringAt(name, "item_format")
		info.MeasurementTool = tags.stringAt(name, "measurement_tool")
		info.NCategories = tags.floatAt(name, "n_categories")
		info.Variables = tags.stringAt(name, "variables")
		info.Language = tags.stringAt(name, rawLanguage)
		info.SourceDataset = tags.stringAt(name, rawDataset)
		_, info.HasItemText = itemText[strings.ToLower(name)]

		info.Reference = biblio.stringAt(name, rawReference)
		info.DOI = biblio.stringAt(name, rawDOI)
		info.URL = biblio.stringAt(name, rawURL)
		info.License = biblio.stringAt(name, rawLicense)
		info.BibTex = biblio.stringAt(name, rawBibTex)

		out = append(out, info)
	}

	a.cache.Set(key, out, "")
	ret := make([]warehouse.TableInfo, len(out))
	copy(ret, out)
	return ret
}

// baseNames returns the sorted base table names. Case-insensitive
// duplicates are collapsed in source-enumeration order before sorting, so
// the first enumerated spelling wins regardless of how the variants sort.
func (a *Aggregator) baseNames(ctx context.Context) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, src := range a.sources {
		props, err := a.sourceTables(ctx, src)
		if err != nil {
			a.logger.Warnw("skipping source: table enumeration failed",
				"source", src.Name(), "error", err)
			continue
		}
		for _, p := range props {
			key := strings.ToLower(p.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

// sourceTables enumerates one source's tables through the cache.
func (a *Aggregator) sourceTables(ctx context.Context, src warehouse.Source) ([]warehouse.TableProps, error) {
	key := "source_tables:" + src.ID()
	if v, ok := a.cache.Get(key, ""); ok {
		return v.([]warehouse.TableProps), nil
	}
	props, err := src.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	a.cache.Set(key, props, "")
	return props, nil
}

// metaFrameIndex retrieves one metadata table keyed by the metadata source's
// version tag, so a version bump transparently refetches just that piece.
// Returns nil (all lookups miss) when the piece is unavailable.
func (a *Aggregator) metaFrameIndex(ctx context.Context, table string) *metaIndex {
	if a.meta == nil {
		return nil
	}
	version := a.meta.VersionTag()
	key := "meta:" + table
	if v, ok := a.cache.Get(key, version); ok {
		return v.(*metaIndex)
	}
	f, err := a.meta.GetTable(ctx, table)
	if err != nil {
		a.logger.Warnw("metadata degraded: source table unavailable",
			"table", table, "source", a.meta.Name(),
			"error", errors.Mark(err, errors.ErrDegradedMetadata))
		return nil
	}
	idx := indexMetaFrame(f)
	a.cache.Set(key, idx, version)
	return idx
}

// itemTextNames returns the lowercased base names that have item text
// available, derived from the item-text collection's "<base>__items" tables.
func (a *Aggregator) itemTextNames(ctx context.Context) map[string]struct{} {
	if a.itemText == nil {
		return nil
	}
	key := "itemtext_tables:" + a.itemText.ID()
	if v, ok := a.cache.Get(key, ""); ok {
		return v.(map[string]struct{})
	}
	props, err := a.itemText.ListTables(ctx)
	if err != nil {
		a.logger.Warnw("metadata degraded: item-text enumeration failed",
			"source", a.itemText.Name(),
			"error", errors.Mark(err, errors.ErrDegradedMetadata))
		return nil
	}
	names := map[string]struct{}{}
	for _, p := range props {
		if strings.HasSuffix(p.Name, warehouse.ItemTextSuffix) {
			base := strings.TrimSuffix(p.Name, warehouse.ItemTextSuffix)
			names[strings.ToLower(base)] = struct{}{}
		}
	}
	a.cache.Set(key, names, "")
	return names
}

// joinCacheKey identifies the merged listing by its backing source set.
func (a *Aggregator) joinCacheKey() string {
	ids := make([]string, 0, len(a.sources))
	for _, src := range a.sources {
		ids = append(ids, strings.ToLower(src.ID()))
	}
	sort.Strings(ids)
	key := "list_tables:" + strings.Join(ids, "|")
	if a.versionedJoinKey {
		var tags []string
		if a.meta != nil {
			tags = append(tags, a.meta.VersionTag())
		}
		if a.itemText != nil {
			tags = append(tags, a.itemText.VersionTag())
		}
		key += "@" + strings.Join(tags, "|")
	}
	return key
}
