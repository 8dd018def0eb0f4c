package btreeidx

import (
	"log/slog"
	"reflect"
	"sort"

	"github.com/tuannm99/pgbtree/internal/compression"
	"github.com/tuannm99/pgbtree/internal/matcache"
)

// Tree is the top-level index: root pointer, order, global statistics,
// and the public operations (spec 2, PostgreSQLBTree). Grounded on the
// teacher's internal/btree.Tree (NewTree/OpenTree, recursive
// insertAt/rangeScanAt, slog.Debug instrumentation throughout),
// generalized from a disk-page B+Tree keyed by int64 to an in-memory
// generic multimap with real pointer children instead of page IDs.
type Tree[K KeyType, V any] struct {
	cfg config

	root      *node[K, V]
	height    int
	nodeCount int
	totalKeys int

	nextSeq    uint64
	nextPageID matcache.PageID

	pages map[matcache.PageID]*node[K, V]

	manager *compression.Manager
	tracker *matcache.Tracker
	logger  *slog.Logger
}

// New builds an empty tree. order < 4 is InvalidArgument (spec 6, 7).
func New[K KeyType, V any](opts ...Option) (*Tree[K, V], error) {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if c.order < 4 {
		return nil, ErrInvalidOrder
	}
	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}

	mgrCfg := compression.ManagerConfig{
		MinPayloadForGeneral:     c.minPayloadForGeneral,
		EstimatedAcceptanceRatio: c.estimatedAcceptanceRatio,
		ActualAcceptanceRatio:    c.actualAcceptanceRatio,
	}

	return &Tree[K, V]{
		cfg:     c,
		pages:   make(map[matcache.PageID]*node[K, V]),
		manager: compression.NewManager(mgrCfg, logger),
		tracker: matcache.New(c.maxMaterializedPages),
		logger:  logger,
	}, nil
}

func (t *Tree[K, V]) minEntries() int {
	return (t.cfg.order+1)/2 - 1
}

func (t *Tree[K, V]) maxEntries() int {
	return t.cfg.order - 1
}

func (t *Tree[K, V]) allocNode(isLeaf bool) *node[K, V] {
	id := t.nextPageID
	t.nextPageID++
	t.nodeCount++
	n := newNode[K, V](id, isLeaf)
	t.pages[id] = n
	return n
}

// forgetPage drops a node that has been merged away or discarded by
// root shrinkage from both the page registry and the materialization
// tracker, so neither keeps a dangling reference (spec 4.2 "merge"/
// "Root shrinkage").
func (t *Tree[K, V]) forgetPage(id matcache.PageID) {
	delete(t.pages, id)
	t.tracker.Forget(id)
}

// materialize ensures n's entries are decompressed in memory before any
// read or mutation touches them (spec 3 I5, spec 4.2 "Materialization
// discipline"), then opportunistically recompresses the
// least-recently-touched pages if doing so pushed the tree over
// max_materialized_pages (spec 6, spec 4.4: "recompresses the
// least-recently-touched pages" once the cap is exceeded).
func (t *Tree[K, V]) materialize(n *node[K, V]) error {
	if n.materialized {
		t.tracker.Touch(n.id)
		return nil
	}
	items, err := t.manager.Decompress(n.blob, n.meta)
	if err != nil {
		t.logger.Error("btreeidx.Tree.materialize: decompress failed", "pageID", n.id, "err", err)
		return ErrDecompressionFailure
	}
	if err := n.fromEncodable(items, &t.nextSeq); err != nil {
		return err
	}
	n.blob = nil
	n.materialized = true
	t.tracker.Touch(n.id)
	t.recompressOverflow()
	return nil
}

// recompressOverflow compresses every page the tracker names as
// least-recently-touched once max_materialized_pages is exceeded,
// reusing the same Manager.Compress path CompressAllPages uses.
func (t *Tree[K, V]) recompressOverflow() {
	for _, id := range t.tracker.Evictable() {
		page, ok := t.pages[id]
		if !ok || !page.materialized || len(page.entries) == 0 {
			t.tracker.Forget(id)
			continue
		}
		blob, meta, err := t.manager.Compress(page.toEncodable())
		if err != nil {
			t.logger.Warn("btreeidx.Tree.recompressOverflow: compress failed, leaving page materialized",
				"pageID", id, "err", err)
			continue
		}
		page.blob = blob
		page.meta = meta
		page.entries = nil
		page.materialized = false
		t.tracker.Forget(id)
	}
}

// childIndex returns the child slot to descend into when inserting
// key, using the right-biased separator discipline resolved in
// SPEC_FULL.md's Open Question: smallest i with key < entries[i].key,
// else the rightmost child (spec 4.1 insert, 4.2 tie-break: "key >=
// separator goes right"). This is correct for Insert because a new
// duplicate must land after every existing equal-key entry, but it is
// NOT safe for a read that must find every duplicate: splitLeaf's
// separator is only the first key of the right half, so a page of
// identical keys can leave equal keys on BOTH sides of the separator,
// and routing right-biased would skip the left side's copies entirely.
func childIndex[K KeyType, V any](n *node[K, V], key K) int {
	return sort.Search(len(n.entries), func(i int) bool { return key < n.entries[i].key })
}

// childIndexLeftmost returns the leftmost child slot that could still
// hold key: smallest i with key <= entries[i].key, else the rightmost
// child. Reads descend on this instead of childIndex so a run of
// duplicate keys split across a page boundary is entered from its
// first leaf rather than the one the separator happens to point at
// (spec 4.1 search: "duplicates may span leaves").
func childIndexLeftmost[K KeyType, V any](n *node[K, V], key K) int {
	return sort.Search(len(n.entries), func(i int) bool { return key <= n.entries[i].key })
}

// findLeaf descends from root to the leaf Insert should mutate,
// materializing every internal node it passes through.
func (t *Tree[K, V]) findLeaf(key K) (*node[K, V], error) {
	return t.descend(key, childIndex[K, V])
}

// findLeafLeftmost descends to the first leaf that could contain key,
// for use by Search, RangeQuery and Delete, which must not miss
// duplicates stranded on the left side of a split (see childIndexLeftmost).
func (t *Tree[K, V]) findLeafLeftmost(key K) (*node[K, V], error) {
	return t.descend(key, childIndexLeftmost[K, V])
}

func (t *Tree[K, V]) descend(key K, pick func(*node[K, V], K) int) (*node[K, V], error) {
	n := t.root
	for !n.isLeaf {
		if err := t.materialize(n); err != nil {
			return nil, err
		}
		n = n.children[pick(n, key)]
	}
	if err := t.materialize(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Insert descends to the target leaf and appends key/value in sorted,
// duplicate-stable order, splitting on overflow (spec 4.1, 4.2).
func (t *Tree[K, V]) Insert(key K, value V) error {
	if t.root == nil {
		t.root = t.allocNode(true)
		t.height = 1
	}

	leaf, err := t.findLeaf(key)
	if err != nil {
		return err
	}

	idx := sort.Search(len(leaf.entries), func(i int) bool { return leaf.entries[i].key > key })
	e := entry[K, V]{key: key, value: value, seq: t.nextSeq}
	t.nextSeq++

	leaf.entries = append(leaf.entries, entry[K, V]{})
	copy(leaf.entries[idx+1:], leaf.entries[idx:])
	leaf.entries[idx] = e
	t.totalKeys++

	if len(leaf.entries) > t.maxEntries() {
		return t.splitLeaf(leaf)
	}
	return nil
}

// Search collects every value stored under key, in insertion order,
// following next_leaf when duplicates span a leaf boundary (spec 4.1).
func (t *Tree[K, V]) Search(key K) ([]V, error) {
	if t.root == nil {
		return nil, nil
	}
	leaf, err := t.findLeafLeftmost(key)
	if err != nil {
		return nil, err
	}

	var out []V
	idx := sort.Search(len(leaf.entries), func(i int) bool { return leaf.entries[i].key >= key })
	for idx < len(leaf.entries) && leaf.entries[idx].key == key {
		out = append(out, leaf.entries[idx].value)
		idx++
	}

	cur := leaf
	for idx >= len(cur.entries) {
		next := cur.nextLeaf
		if next == nil {
			break
		}
		if err := t.materialize(next); err != nil {
			return nil, err
		}
		if len(next.entries) == 0 || next.entries[0].key != key {
			break
		}
		cur = next
		idx = 0
		for idx < len(cur.entries) && cur.entries[idx].key == key {
			out = append(out, cur.entries[idx].value)
			idx++
		}
	}
	return out, nil
}

// Delete removes the first entry matching key (and value, if given),
// scanning forward across leaves when duplicates span a leaf boundary,
// and returns whether anything was removed (spec 4.1, 4.2 underflow handling).
func (t *Tree[K, V]) Delete(key K, value *V) (bool, error) {
	if t.root == nil {
		return false, nil
	}
	leaf, err := t.findLeafLeftmost(key)
	if err != nil {
		return false, err
	}

	foundIdx := -1
	for {
		i := sort.Search(len(leaf.entries), func(i int) bool { return leaf.entries[i].key >= key })
		for ; i < len(leaf.entries) && leaf.entries[i].key == key; i++ {
			if value == nil || reflect.DeepEqual(leaf.entries[i].value, *value) {
				foundIdx = i
				break
			}
		}
		if foundIdx != -1 || i < len(leaf.entries) || leaf.nextLeaf == nil {
			break
		}
		if err := t.materialize(leaf.nextLeaf); err != nil {
			return false, err
		}
		leaf = leaf.nextLeaf
	}
	if foundIdx == -1 {
		return false, nil
	}

	leaf.entries = append(leaf.entries[:foundIdx], leaf.entries[foundIdx+1:]...)
	t.totalKeys--

	if err := t.rebalance(leaf); err != nil {
		return false, err
	}
	return true, nil
}

// Statistics reports height, node_count, total_keys, average fill
// ratio, and the compression ratio once something has been compressed
// (spec 4.1 get_statistics).
func (t *Tree[K, V]) Statistics() TreeStats {
	stats := TreeStats{Height: t.height, NodeCount: t.nodeCount, TotalKeys: t.totalKeys}
	if t.root == nil {
		return stats
	}

	var sumRatio float64
	var count int
	var walk func(n *node[K, V])
	walk = func(n *node[K, V]) {
		entryCount := len(n.entries)
		if !n.materialized {
			entryCount = n.meta.Count
		}
		sumRatio += float64(entryCount) / float64(t.maxEntries())
		count++
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	if count > 0 {
		stats.AvgFillRatio = sumRatio / float64(count)
	}

	mgrStats := t.manager.Stats()
	if mgrStats.Successes > 0 {
		ratio := mgrStats.GlobalRatio()
		stats.CompressionRatio = &ratio
	}
	return stats
}

// CompressAllPages walks every page, compressing each not already
// compressed, and reports the outcome (spec 4.1). A disabled tree
// (enable_compression=false) is a no-op (spec 6).
func (t *Tree[K, V]) CompressAllPages() CompressionReport {
	report := CompressionReport{ByStrategy: make(map[compression.Tag]int)}
	if !t.cfg.enableCompression || t.root == nil {
		return report
	}

	var walk func(n *node[K, V])
	walk = func(n *node[K, V]) {
		if n.materialized && len(n.entries) > 0 {
			items := n.toEncodable()
			report.Attempts++
			blob, meta, err := t.manager.Compress(items)
			if err != nil {
				report.Failures++
			} else {
				if meta.Tag != compression.TagNone {
					report.Successes++
					report.BytesSaved += meta.OriginalBytes - len(blob)
				}
				report.ByStrategy[meta.Tag]++
				n.blob = blob
				n.meta = meta
				n.entries = nil
				n.materialized = false
				t.tracker.Forget(n.id)
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return report
}

// DetailedCompressionStats exposes the manager's running counters
// verbatim (spec 6, CompressionStats).
func (t *Tree[K, V]) DetailedCompressionStats() compression.Stats {
	return t.manager.Stats()
}
