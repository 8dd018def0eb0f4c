package btreeidx

import (
	"log/slog"

	"github.com/tuannm99/pgbtree/internal/pgconfig"
)

// config holds every knob New accepts. It is deliberately not generic
// (unlike Tree[K, V]) so a single Option value can configure any
// instantiation, mirroring spec 6's flat configuration-options list.
type config struct {
	order                    int
	enableCompression        bool
	minPayloadForGeneral     int
	estimatedAcceptanceRatio float64
	actualAcceptanceRatio    float64
	maxMaterializedPages     int
	logger                   *slog.Logger
}

func defaultConfig() config {
	return config{
		order:                    256,
		enableCompression:        true,
		minPayloadForGeneral:     128,
		estimatedAcceptanceRatio: 0.9,
		actualAcceptanceRatio:    0.95,
		maxMaterializedPages:     0,
	}
}

// Option configures a Tree at construction time (spec 6, "Configuration options").
type Option func(*config)

// WithOrder sets the branching factor. order must be >= 4 (spec 6); a
// smaller value is rejected by New with ErrInvalidOrder.
func WithOrder(order int) Option {
	return func(c *config) { c.order = order }
}

// WithCompression toggles whether CompressAllPages does any work
// (spec 6: "when false, compress_all_pages is a no-op").
func WithCompression(enabled bool) Option {
	return func(c *config) { c.enableCompression = enabled }
}

// WithMinPayloadForGeneral sets the GENERAL strategy's minimum payload
// threshold (spec 6, default 128 bytes).
func WithMinPayloadForGeneral(n int) Option {
	return func(c *config) { c.minPayloadForGeneral = n }
}

// WithAcceptanceRatios sets the estimated/actual rejection thresholds
// (spec 6, defaults 0.9/0.95).
func WithAcceptanceRatios(estimated, actual float64) Option {
	return func(c *config) {
		c.estimatedAcceptanceRatio = estimated
		c.actualAcceptanceRatio = actual
	}
}

// WithMaxMaterializedPages bounds how many pages may stay decompressed
// at once; once exceeded, materialize recompresses the
// least-recently-touched pages via matcache.Tracker until the tree is
// back under the cap. 0 disables the cap.
func WithMaxMaterializedPages(n int) Option {
	return func(c *config) { c.maxMaterializedPages = n }
}

// WithLogger overrides the tree's slog.Logger, following the teacher's
// own preference for log/slog over any third-party logging library.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// FromPgConfig maps a loaded pgconfig.Config onto Tree options in one
// call, the bridge the root pgbtree facade uses when a caller supplies
// a config file path instead of functional options.
func FromPgConfig(cfg pgconfig.Config) Option {
	return func(c *config) {
		c.order = cfg.Btree.Order
		c.enableCompression = cfg.Btree.EnableCompression
		c.minPayloadForGeneral = cfg.Btree.MinPayloadForGeneral
		c.estimatedAcceptanceRatio = cfg.Btree.EstimatedAcceptanceRatio
		c.actualAcceptanceRatio = cfg.Btree.ActualAcceptanceRatio
		c.maxMaterializedPages = cfg.Btree.MaxMaterializedPages
	}
}
