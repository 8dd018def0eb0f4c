package btreeidx

import "fmt"

const (
	oneKB = 1024

	// cosmeticPageSize mirrors the teacher's storage.PageSize ("8KB
	// page size, similar to PostgreSQL"). Per SPEC_FULL.md's resolved
	// Open Question, this engine has no on-disk page layout: the
	// figure is used only to render an occupancy percentage in
	// DebugDump, never to gate a real split or merge (only order does).
	cosmeticPageSize = oneKB * 8
)

// DebugDump renders a human-readable summary of the tree shape,
// following the teacher's LeafNode.DebugDump in spirit (physical
// layout, not a formatted proof of correctness).
func (t *Tree[K, V]) DebugDump() string {
	if t.root == nil {
		return "Tree{empty}"
	}
	return fmt.Sprintf("Tree{height=%d nodeCount=%d totalKeys=%d order=%d}\n%s",
		t.height, t.nodeCount, t.totalKeys, t.cfg.order, dumpNode(t.root, 0))
}

func dumpNode[K KeyType, V any](n *node[K, V], depth int) string {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	kind := "internal"
	if n.isLeaf {
		kind = "leaf"
	}

	count := len(n.entries)
	state := "materialized"
	if !n.materialized {
		count = n.meta.Count
		state = fmt.Sprintf("compressed(%s, occupancy=%.1f%%)", n.meta.Tag, occupancyPct(n.meta.OriginalBytes))
	}

	out := fmt.Sprintf("%s%s#%d[entries=%d %s]\n", indent, kind, n.id, count, state)
	for _, c := range n.children {
		out += dumpNode(c, depth+1)
	}
	return out
}

func occupancyPct(originalBytes int) float64 {
	return float64(originalBytes) / float64(cosmeticPageSize) * 100
}
