// Package pgbtree is the public facade over internal/btreeidx: an
// in-memory, PostgreSQL-style B-tree multimap with pluggable
// page-level compression. Grounded on the teacher's root-level
// database.go/types.go re-export pattern (a thin constructor plus
// type aliases over the real implementation in internal/).
package pgbtree

import (
	"github.com/tuannm99/pgbtree/internal/btreeidx"
	"github.com/tuannm99/pgbtree/internal/compression"
	"github.com/tuannm99/pgbtree/internal/pgconfig"
)

// KeyType is the set of Go types usable as an index key (spec 3).
type KeyType = btreeidx.KeyType

// Tree is the top-level index (spec 2, PostgreSQLBTree).
type Tree[K KeyType, V any] = btreeidx.Tree[K, V]

// KeyValue bundles one multimap entry (spec 2).
type KeyValue[K KeyType, V any] = btreeidx.KeyValue[K, V]

// Cursor is RangeQuery's pull-based iterator (spec 9).
type Cursor[K KeyType, V any] = btreeidx.Cursor[K, V]

// TreeStats is get_statistics()'s return record (spec 6).
type TreeStats = btreeidx.TreeStats

// CompressionReport is compress_all_pages()'s return record (spec 6).
type CompressionReport = btreeidx.CompressionReport

// CompressionStats mirrors the compression manager's running counters
// (spec 6, CompressionStats).
type CompressionStats = compression.Stats

// StrategyTag discriminates which codec produced a page's blob (spec 4.3).
type StrategyTag = compression.Tag

// Option configures a Tree at construction time (spec 6).
type Option = btreeidx.Option

var (
	WithOrder                = btreeidx.WithOrder
	WithCompression          = btreeidx.WithCompression
	WithMinPayloadForGeneral = btreeidx.WithMinPayloadForGeneral
	WithAcceptanceRatios     = btreeidx.WithAcceptanceRatios
	WithMaxMaterializedPages = btreeidx.WithMaxMaterializedPages
	WithLogger               = btreeidx.WithLogger
)

// New builds an empty tree with order=256 and compression enabled
// unless overridden by opts (spec 6, "new(order=256,
// enable_compression=true) -> Tree").
func New[K KeyType, V any](opts ...Option) (*Tree[K, V], error) {
	return btreeidx.New[K, V](opts...)
}

// NewFromConfigFile loads a YAML configuration file and builds a tree
// from it, the entry point for callers that prefer a config file over
// functional options (internal/pgconfig, grounded on the teacher's
// internal.LoadConfig).
func NewFromConfigFile[K KeyType, V any](path string) (*Tree[K, V], error) {
	cfg, err := pgconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return btreeidx.New[K, V](btreeidx.FromPgConfig(cfg))
}
