package listing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/datapages/irw-go/warehouse"
)

// Summary holds collection-level statistics aggregated across sources.
type Summary struct {
	TableCount      int
	TotalBytes      int64
	EarliestCreated time.Time
	LatestUpdated   time.Time
}

// Info aggregates collection properties across the given sources. Sources
// whose properties cannot be read are skipped.
func Info(ctx context.Context, sources []warehouse.Source, logger *zap.SugaredLogger) Summary {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	var out Summary
	for _, src := range sources {
		props, err := src.Properties(ctx)
		if err != nil {
			logger.Warnw("skipping source: properties unavailable",
				"source", src.Name(), "error", err)
			continue
		}
		out.TableCount += props.TableCount
		out.TotalBytes += props.TotalBytes
		if !props.CreatedAt.IsZero() &&
			(out.EarliestCreated.IsZero() || props.CreatedAt.Before(out.EarliestCreated)) {
			out.EarliestCreated = props.CreatedAt
		}
		if props.UpdatedAt.After(out.LatestUpdated) {
			out.LatestUpdated = props.UpdatedAt
		}
	}
	return out
}
