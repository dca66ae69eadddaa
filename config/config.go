// Package config loads the client configuration from TOML files and
// IRW_-prefixed environment variables.
package config

import "github.com/spf13/viper"

// Config is the full client configuration.
type Config struct {
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Listing  ListingConfig  `mapstructure:"listing"`
	Log      LogConfig      `mapstructure:"log"`
}

// SnapshotConfig locates the local SQLite snapshot.
type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

// FetchConfig tunes table retrieval.
type FetchConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
	Dedup         bool    `mapstructure:"dedup"`
}

// ListingConfig tunes the table listing aggregator.
type ListingConfig struct {
	// VersionedJoinKey keys the merged-listing cache by metadata version
	// tags, so version bumps invalidate the cached join.
	VersionedJoinKey bool `mapstructure:"versioned_join_key"`
}

// LogConfig selects the log output format.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Snapshot defaults
	v.SetDefault("snapshot.path", "irw.db")

	// Fetch defaults
	v.SetDefault("fetch.rate_per_second", 4.0) // polite default against shared backends
	v.SetDefault("fetch.burst", 2)
	v.SetDefault("fetch.dedup", false)

	// Listing defaults
	v.SetDefault("listing.versioned_join_key", false)

	// Log defaults
	v.SetDefault("log.json", false)
}
