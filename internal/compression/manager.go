package compression

import (
	"log/slog"
	"sort"
)

// ManagerConfig carries just the knobs Manager needs, decoupled from the
// tree-level configuration type (internal/pgconfig.Config) so this
// package has no upward import.
type ManagerConfig struct {
	MinPayloadForGeneral     int
	EstimatedAcceptanceRatio float64
	ActualAcceptanceRatio    float64
}

// DefaultManagerConfig matches spec 6's documented defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MinPayloadForGeneral:     128,
		EstimatedAcceptanceRatio: 0.9,
		ActualAcceptanceRatio:    0.95,
	}
}

// priority orders strategies cheapest-decode-first for tie-breaking
// (spec 4.3 step 3: "prefer the cheaper decoder: prefix > RLE > delta >
// dictionary > general").
var priority = map[Tag]int{
	TagPrefix:  0,
	TagRLE:     1,
	TagDelta:   2,
	TagDict:    3,
	TagGeneral: 4,
}

// Manager classifies a page's entries, selects the best-fitting
// strategy, and reverses the transform. It keeps running statistics
// across every call (spec 4.3).
type Manager struct {
	cfg        ManagerConfig
	strategies []Strategy
	stats      Stats
	logger     *slog.Logger
}

func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg: cfg,
		strategies: []Strategy{
			prefixStrategy{minPrefixLen: 4},
			dictStrategy{},
			deltaStrategy{},
			rleStrategy{},
			generalStrategy{minPayloadBytes: cfg.MinPayloadForGeneral},
		},
		stats:  newStats(),
		logger: logger,
	}
}

type candidate struct {
	strategy Strategy
	ratio    float64
}

// chooseStrategy runs the cost-model estimation pass (spec 4.3 steps 1-3)
// without committing to an encode.
func (m *Manager) chooseStrategy(items []EncodableEntry) (Strategy, Fingerprint) {
	fp := computeFingerprint(items)

	var candidates []candidate
	for _, s := range m.strategies {
		if !s.Applicable(fp, items) {
			continue
		}
		ratio := s.Estimate(fp, items)
		candidates = append(candidates, candidate{strategy: s, ratio: ratio})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ratio != candidates[j].ratio {
			return candidates[i].ratio < candidates[j].ratio
		}
		return priority[candidates[i].strategy.Tag()] < priority[candidates[j].strategy.Tag()]
	})

	if len(candidates) == 0 || candidates[0].ratio > m.cfg.EstimatedAcceptanceRatio {
		return noneStrategy{}, fp
	}
	return candidates[0].strategy, fp
}

// Compress chooses and applies the best-fitting strategy, downgrading to
// TagNone when nothing clears the acceptance ratio or the real encode
// fails (CompressionFailure is absorbed here, per spec 7).
func (m *Manager) Compress(items []EncodableEntry) ([]byte, Metadata, error) {
	m.stats.Attempts++

	if len(items) == 0 {
		blob, meta, _ := noneStrategy{}.Encode(items)
		m.stats.record(TagNone, 0, len(blob))
		return blob, meta, nil
	}

	strategy, _ := m.chooseStrategy(items)
	original := totalBytes(items)

	blob, meta, err := strategy.Encode(items)
	if err != nil {
		m.logger.Warn("compression.Manager.Compress: strategy encode failed, downgrading to NONE",
			"strategy", strategy.Tag(), "err", err)
		m.stats.Failures++
		strategy = noneStrategy{}
		blob, meta, err = strategy.Encode(items)
		if err != nil {
			return nil, Metadata{}, err
		}
	}

	if strategy.Tag() != TagNone {
		actualRatio := 1.0
		if original > 0 {
			actualRatio = float64(len(blob)) / float64(original)
		}
		if actualRatio >= m.cfg.ActualAcceptanceRatio {
			m.logger.Debug("compression.Manager.Compress: actual ratio not below threshold, discarding",
				"strategy", strategy.Tag(), "ratio", actualRatio)
			strategy = noneStrategy{}
			blob, meta, err = strategy.Encode(items)
			if err != nil {
				return nil, Metadata{}, err
			}
		}
	}

	if strategy.Tag() != TagNone {
		m.stats.Successes++
	}
	m.stats.record(strategy.Tag(), original, len(blob))

	m.logger.Debug("compression.Manager.Compress.done",
		"strategy", strategy.Tag(), "entries", len(items), "bytesIn", original, "bytesOut", len(blob))

	return blob, meta, nil
}

// Decompress reverses whatever strategy produced the blob, identified by
// meta.Tag. A tag/blob mismatch is a DecompressionFailure (spec 7),
// surfaced to the caller rather than absorbed.
func (m *Manager) Decompress(blob []byte, meta Metadata) ([]EncodableEntry, error) {
	for _, s := range m.strategies {
		if s.Tag() == meta.Tag {
			return s.Decode(blob, meta)
		}
	}
	if meta.Tag == TagNone {
		return noneStrategy{}.Decode(blob, meta)
	}
	return nil, errMetaTagMismatch
}

// Stats returns a snapshot of the manager's running counters.
func (m *Manager) Stats() Stats {
	out := Stats{Attempts: m.stats.Attempts, Successes: m.stats.Successes, Failures: m.stats.Failures, ByStrategy: make(map[Tag]*StrategyStat, len(m.stats.ByStrategy))}
	for tag, st := range m.stats.ByStrategy {
		cp := *st
		out.ByStrategy[tag] = &cp
	}
	return out
}

// EstimateAll runs the estimator for every applicable strategy against a
// sample without committing to an encode (spec 4.3,
// get_compression_stats).
func (m *Manager) EstimateAll(items []EncodableEntry) map[Tag]float64 {
	fp := computeFingerprint(items)
	out := make(map[Tag]float64)
	for _, s := range m.strategies {
		if s.Applicable(fp, items) {
			out[s.Tag()] = s.Estimate(fp, items)
		}
	}
	return out
}
