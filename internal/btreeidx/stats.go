package btreeidx

import "github.com/tuannm99/pgbtree/internal/compression"

// TreeStats is get_statistics()'s return record (spec 6).
type TreeStats struct {
	Height            int
	NodeCount         int
	TotalKeys         int
	AvgFillRatio      float64
	CompressionRatio  *float64 // nil until at least one page has been compressed
}

// CompressionReport is compress_all_pages()'s return record (spec 4.1, 6).
type CompressionReport struct {
	Attempts   int
	Successes  int
	Failures   int
	BytesSaved int
	ByStrategy map[compression.Tag]int
}
