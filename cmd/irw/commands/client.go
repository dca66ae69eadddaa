// Package commands holds the irw CLI commands.
package commands

import (
	irw "github.com/datapages/irw-go"
	"github.com/datapages/irw-go/config"
	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/logger"
	"github.com/datapages/irw-go/warehouse"
	"github.com/datapages/irw-go/warehouse/sqlite"
)

// newClient opens the configured snapshot and builds a client over it. The
// snapshot doubles as the metadata and item-text collection when it carries
// those tables. The returned closer must be deferred.
func newClient() (*irw.Client, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}

	db, err := sqlite.Open(cfg.Snapshot.Path, logger.Logger)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open snapshot %s", cfg.Snapshot.Path)
	}
	src := sqlite.NewSource(db, "snapshot:"+cfg.Snapshot.Path, "local_snapshot", logger.Logger)

	opts := []irw.Option{
		irw.WithLogger(logger.Logger),
		irw.WithMetadata(src),
		irw.WithItemText(src),
		irw.WithRateLimit(cfg.Fetch.RatePerSecond, cfg.Fetch.Burst),
	}
	if cfg.Listing.VersionedJoinKey {
		opts = append(opts, irw.WithVersionedJoinKey())
	}

	client := irw.New([]warehouse.Source{src}, opts...)
	return client, func() { db.Close() }, nil
}
