// Package warehouse defines the contract between irw-go and the hosted
// table collections it reads from, plus the record types the metadata
// pipeline produces.
package warehouse

import (
	"context"
	"time"

	"github.com/datapages/irw-go/frame"
)

// TableProps is one row of a basic table listing.
type TableProps struct {
	Name          string
	NumRows       *int64
	VariableCount *int64
}

// Properties describes a source at the collection level, for info summaries.
type Properties struct {
	TableCount int
	TotalBytes int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Source is the injected retrieval capability. Implementations wrap a hosted
// dataset (or a local snapshot of one); the core never talks to the network
// itself.
type Source interface {
	// ID is a stable identifier used in cache keys.
	ID() string
	// Name is the display name of the collection.
	Name() string
	// VersionTag identifies the published version of the collection's
	// contents. Tags are opaque; equality is the only defined operation.
	VersionTag() string
	// ListTables enumerates the tables the source holds.
	ListTables(ctx context.Context) ([]TableProps, error)
	// GetTable retrieves one table. Errors should wrap the errors package
	// sentinels so callers can classify them.
	GetTable(ctx context.Context, name string) (*frame.Frame, error)
	// Properties returns collection-level statistics.
	Properties(ctx context.Context) (Properties, error)
}

// Metadata table names published by the warehouse metadata collection.
const (
	MetaTableStats  = "metadata"
	MetaTableTags   = "tags"
	MetaTableBiblio = "biblio"
)

// ItemTextSuffix marks tables in the item-text collection that carry item
// wording for a base table ("<base>__items").
const ItemTextSuffix = "__items"
