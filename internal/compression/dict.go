package compression

// dictStrategy stores distinct values once in a table and replaces each
// entry's value with a 4-byte table index, a win when distinct/N < 0.5.
type dictStrategy struct{}

func (dictStrategy) Tag() Tag { return TagDict }

func (dictStrategy) Applicable(fp Fingerprint, items []EncodableEntry) bool {
	return fp.DistinctValueRatio < 0.5 && fp.N > 0
}

// Estimate: "sum(value_size x (count-1)) minus table overhead."
func (dictStrategy) Estimate(fp Fingerprint, items []EncodableEntry) float64 {
	groups := valueGroups(items)

	saved := 0
	tableOverhead := 0
	for _, g := range groups {
		saved += len(g.value) * (len(g.indices) - 1)
		tableOverhead += len(g.value) + 4
	}
	saved -= tableOverhead
	saved -= 4 * fp.N // per-entry index cost

	if fp.TotalBytes == 0 {
		return 1.0
	}
	ratio := float64(fp.TotalBytes-saved) / float64(fp.TotalBytes)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

func (dictStrategy) Encode(items []EncodableEntry) ([]byte, Metadata, error) {
	if len(items) == 0 {
		return nil, Metadata{}, errEmptyInput
	}

	table := make([][]byte, 0)
	index := make(map[string]int)

	out := make([]byte, 0, totalBytes(items))
	for _, it := range items {
		idx, ok := index[string(it.Value)]
		if !ok {
			idx = len(table)
			table = append(table, it.Value)
			index[string(it.Value)] = idx
		}

		out = append(out, byte(it.KeyOrigin))
		out = appendLenBytes(out, it.Key)
		var idxBuf [4]byte
		putU32(idxBuf[:], uint32(idx))
		out = append(out, idxBuf[:]...)
	}

	meta := Metadata{
		Tag:           TagDict,
		Count:         len(items),
		DictTable:     table,
		OriginalBytes: totalBytes(items),
	}
	return out, meta, nil
}

func (dictStrategy) Decode(blob []byte, meta Metadata) ([]EncodableEntry, error) {
	if meta.Tag != TagDict {
		return nil, errMetaTagMismatch
	}
	out := make([]EncodableEntry, 0, meta.Count)
	off := 0
	for i := 0; i < meta.Count; i++ {
		if off+1 > len(blob) {
			return nil, errShortBuffer
		}
		origin := KeyOrigin(blob[off])
		off++

		key, next, err := readLenBytes(blob, off)
		if err != nil {
			return nil, err
		}
		off = next

		if off+4 > len(blob) {
			return nil, errShortBuffer
		}
		idx := int(u32(blob[off : off+4]))
		off += 4
		if idx < 0 || idx >= len(meta.DictTable) {
			return nil, errShortBuffer
		}

		out = append(out, EncodableEntry{Key: key, KeyOrigin: origin, Value: meta.DictTable[idx]})
	}
	if len(out) != meta.Count {
		return nil, errCountMismatch
	}
	return out, nil
}

type valueGroup struct {
	value   []byte
	indices []int
}

func valueGroups(items []EncodableEntry) []valueGroup {
	order := make([]string, 0)
	groups := make(map[string]*valueGroup)
	for i, it := range items {
		k := string(it.Value)
		g, ok := groups[k]
		if !ok {
			g = &valueGroup{value: it.Value}
			groups[k] = g
			order = append(order, k)
		}
		g.indices = append(g.indices, i)
	}
	out := make([]valueGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}
