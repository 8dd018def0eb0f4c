package compression

// rleStrategy stores (value, runLength) pairs in the value stream when
// long runs of identical values dominate, keeping every key intact.
type rleStrategy struct{}

func (rleStrategy) Tag() Tag { return TagRLE }

func (rleStrategy) Applicable(fp Fingerprint, items []EncodableEntry) bool {
	return fp.N > 0 && fp.RunRatio >= 0.5
}

// Estimate: "sum((run-1) x element_size)".
func (rleStrategy) Estimate(fp Fingerprint, items []EncodableEntry) float64 {
	runs := rleRuns(items)
	saved := 0
	for _, r := range runs {
		saved += (r.count - 1) * len(r.value)
	}
	if fp.TotalBytes == 0 {
		return 1.0
	}
	ratio := float64(fp.TotalBytes-saved) / float64(fp.TotalBytes)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

func (rleStrategy) Encode(items []EncodableEntry) ([]byte, Metadata, error) {
	if len(items) == 0 {
		return nil, Metadata{}, errEmptyInput
	}

	out := make([]byte, 0, totalBytes(items))
	for _, it := range items {
		out = append(out, byte(it.KeyOrigin))
		out = appendLenBytes(out, it.Key)
	}

	runs := rleRuns(items)
	var countBuf [4]byte
	putU32(countBuf[:], uint32(len(runs)))
	out = append(out, countBuf[:]...)
	for _, r := range runs {
		out = appendLenBytes(out, r.value)
		var runBuf [4]byte
		putU32(runBuf[:], uint32(r.count))
		out = append(out, runBuf[:]...)
	}

	meta := Metadata{Tag: TagRLE, Count: len(items), OriginalBytes: totalBytes(items)}
	return out, meta, nil
}

func (rleStrategy) Decode(blob []byte, meta Metadata) ([]EncodableEntry, error) {
	if meta.Tag != TagRLE {
		return nil, errMetaTagMismatch
	}

	type keyRec struct {
		origin KeyOrigin
		key    []byte
	}
	keys := make([]keyRec, 0, meta.Count)
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
		keys = append(keys, keyRec{origin: origin, key: key})
	}

	if off+4 > len(blob) {
		return nil, errShortBuffer
	}
	numRuns := int(u32(blob[off : off+4]))
	off += 4

	out := make([]EncodableEntry, 0, meta.Count)
	for i := 0; i < numRuns; i++ {
		val, next, err := readLenBytes(blob, off)
		if err != nil {
			return nil, err
		}
		off = next

		if off+4 > len(blob) {
			return nil, errShortBuffer
		}
		count := int(u32(blob[off : off+4]))
		off += 4

		for c := 0; c < count; c++ {
			if len(out) >= len(keys) {
				return nil, errCountMismatch
			}
			k := keys[len(out)]
			out = append(out, EncodableEntry{Key: k.key, KeyOrigin: k.origin, Value: val})
		}
	}
	if len(out) != meta.Count {
		return nil, errCountMismatch
	}
	return out, nil
}

type rleRun struct {
	value []byte
	count int
}

func rleRuns(items []EncodableEntry) []rleRun {
	out := make([]rleRun, 0)
	for _, it := range items {
		if len(out) > 0 && string(out[len(out)-1].value) == string(it.Value) {
			out[len(out)-1].count++
			continue
		}
		out = append(out, rleRun{value: it.Value, count: 1})
	}
	return out
}
