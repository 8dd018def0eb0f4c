package btreeidx

import (
	"github.com/tuannm99/pgbtree/internal/compression"
	"github.com/tuannm99/pgbtree/internal/matcache"
)

// entry is one in-memory (key, value) slot plus the insertion sequence
// used to keep duplicate keys stable (spec 3: "insertion order among
// duplicates is implementation-defined but stable within a node";
// spec 9 Open Questions: delete(key) with no value removes the
// insertion-stable first match).
type entry[K KeyType, V any] struct {
	key   K
	value V
	seq   uint64
}

// node is one B-tree page. Internal pages carry separator keys in
// entries (zero-value V, never serialized) and len(entries)+1
// children; leaves carry real (key, value) pairs, no children, and a
// forward sibling link. compression_state (spec 3) is folded into the
// materialized/blob/meta fields directly rather than a tagged union,
// since Go has no cheap sum type and the teacher's own Page wrapper
// (internal/storage) takes the same "always a struct, flag which parts
// are live" approach.
type node[K KeyType, V any] struct {
	id matcache.PageID

	isLeaf   bool
	entries  []entry[K, V]
	children []*node[K, V]

	parent   *node[K, V]
	nextLeaf *node[K, V]

	materialized bool
	blob         []byte
	meta         compression.Metadata
}

func newNode[K KeyType, V any](id matcache.PageID, isLeaf bool) *node[K, V] {
	return &node[K, V]{id: id, isLeaf: isLeaf, materialized: true}
}

func (n *node[K, V]) numEntries() int { return len(n.entries) }

// isCompressed reports whether this page's entries are currently
// only reachable through blob/meta (spec 3, I5).
func (n *node[K, V]) isCompressed() bool { return !n.materialized }

// toEncodable projects entries to the byte-oriented form the
// compression package operates on. Internal-node separators carry no
// value payload (spec 4.4: "child separators only").
func (n *node[K, V]) toEncodable() []compression.EncodableEntry {
	out := make([]compression.EncodableEntry, len(n.entries))
	for i, e := range n.entries {
		keyBytes, origin := encodeKey(e.key)
		item := compression.EncodableEntry{Key: keyBytes, KeyOrigin: origin}
		if n.isLeaf {
			valBytes, err := encodeValue(e.value)
			if err == nil {
				item.Value = valBytes
			}
		}
		out[i] = item
	}
	return out
}

// fromEncodable reverses toEncodable, restoring entries in the order
// the decoder produced them. Duplicate-key seq numbers are not part of
// the wire format (compression is a transparent cache, not a durable
// log); they are recomputed in ascending order, which preserves
// relative stability among keys that were already contiguous and
// equal, the only ordering the multimap promises (spec 3).
func (n *node[K, V]) fromEncodable(items []compression.EncodableEntry, nextSeq *uint64) error {
	out := make([]entry[K, V], len(items))
	for i, it := range items {
		key := decodeKey[K](it.Key, it.KeyOrigin)
		var value V
		if n.isLeaf {
			v, err := decodeValue[V](it.Value)
			if err != nil {
				return ErrDecompressionFailure
			}
			value = v
		}
		out[i] = entry[K, V]{key: key, value: value, seq: *nextSeq}
		*nextSeq++
	}
	n.entries = out
	return nil
}
