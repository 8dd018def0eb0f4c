package btreeidx

import "sort"

// Cursor is a finite, single-pass, pull-based range iterator (spec 9,
// "Lazy range iteration": "expose it as a pull-based cursor with
// next() -> option<(k,v)>"). It reflects tree state as of each step;
// concurrent mutation during iteration is unsupported (spec 5).
type Cursor[K KeyType, V any] struct {
	tree         *Tree[K, V]
	leaf         *node[K, V]
	idx          int
	end          K
	inclusiveEnd bool
	done         bool
}

// Next returns the next (key, value) pair in ascending key order, or
// ok=false once the range is exhausted.
func (c *Cursor[K, V]) Next() (kv KeyValue[K, V], ok bool, err error) {
	if c.done {
		return KeyValue[K, V]{}, false, nil
	}
	for {
		if c.leaf == nil {
			c.done = true
			return KeyValue[K, V]{}, false, nil
		}
		if c.idx >= len(c.leaf.entries) {
			next := c.leaf.nextLeaf
			if next == nil {
				c.done = true
				return KeyValue[K, V]{}, false, nil
			}
			if err := c.tree.materialize(next); err != nil {
				c.done = true
				return KeyValue[K, V]{}, false, err
			}
			c.leaf = next
			c.idx = 0
			continue
		}

		e := c.leaf.entries[c.idx]
		if c.inclusiveEnd {
			if e.key > c.end {
				c.done = true
				return KeyValue[K, V]{}, false, nil
			}
		} else if e.key >= c.end {
			c.done = true
			return KeyValue[K, V]{}, false, nil
		}

		c.idx++
		return KeyValue[K, V]{Key: e.key, Value: e.value}, true, nil
	}
}

// RangeQuery descends to the first leaf intersecting [start, ...) and
// returns a cursor that emits entries up to end, honoring inclusive on
// both endpoints (spec 4.1, "range_query").
func (t *Tree[K, V]) RangeQuery(start, end K, inclusive bool) (*Cursor[K, V], error) {
	if start > end {
		return nil, ErrInvalidRange
	}
	if t.root == nil {
		return &Cursor[K, V]{done: true}, nil
	}

	leaf, err := t.findLeafLeftmost(start)
	if err != nil {
		return nil, err
	}

	idx := sort.Search(len(leaf.entries), func(i int) bool {
		if inclusive {
			return leaf.entries[i].key >= start
		}
		return leaf.entries[i].key > start
	})

	return &Cursor[K, V]{tree: t, leaf: leaf, idx: idx, end: end, inclusiveEnd: inclusive}, nil
}
