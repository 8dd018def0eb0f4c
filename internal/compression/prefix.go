package compression

// prefixStrategy stores the shared leading bytes of every key once and a
// tail array of the remainder, cheapest of the five codecs to decode
// (spec 4.3 tie-break: "prefer the cheaper decoder... prefix > RLE >
// delta > dictionary > general").
type prefixStrategy struct {
	minPrefixLen int
}

func (prefixStrategy) Tag() Tag { return TagPrefix }

func (p prefixStrategy) Applicable(fp Fingerprint, items []EncodableEntry) bool {
	return fp.AllStringKeys && fp.CommonPrefixLen >= p.minPrefixLen && len(items) > 1
}

// Estimate: "prefix saves prefix_len x (N-1)" (the shared prefix is kept
// once; the other N-1 copies are what's actually saved).
func (prefixStrategy) Estimate(fp Fingerprint, items []EncodableEntry) float64 {
	saved := fp.CommonPrefixLen * (fp.N - 1)
	if fp.TotalBytes == 0 {
		return 1.0
	}
	ratio := float64(fp.TotalBytes-saved) / float64(fp.TotalBytes)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

func (p prefixStrategy) Encode(items []EncodableEntry) ([]byte, Metadata, error) {
	if len(items) == 0 {
		return nil, Metadata{}, errEmptyInput
	}
	prefix := commonPrefixLenBytes(items)

	out := make([]byte, 0, totalBytes(items))
	for _, it := range items {
		tail := it.Key[len(prefix):]
		out = appendLenBytes(out, tail)
		out = appendLenBytes(out, it.Value)
	}

	meta := Metadata{
		Tag:           TagPrefix,
		Count:         len(items),
		Prefix:        prefix,
		KeyOrigin:     KeyOriginString,
		OriginalBytes: totalBytes(items),
	}
	return out, meta, nil
}

func (prefixStrategy) Decode(blob []byte, meta Metadata) ([]EncodableEntry, error) {
	if meta.Tag != TagPrefix {
		return nil, errMetaTagMismatch
	}
	out := make([]EncodableEntry, 0, meta.Count)
	off := 0
	for i := 0; i < meta.Count; i++ {
		tail, next, err := readLenBytes(blob, off)
		if err != nil {
			return nil, err
		}
		off = next

		val, next, err := readLenBytes(blob, off)
		if err != nil {
			return nil, err
		}
		off = next

		key := make([]byte, 0, len(meta.Prefix)+len(tail))
		key = append(key, meta.Prefix...)
		key = append(key, tail...)
		out = append(out, EncodableEntry{Key: key, KeyOrigin: KeyOriginString, Value: val})
	}
	if len(out) != meta.Count {
		return nil, errCountMismatch
	}
	return out, nil
}

func commonPrefixLenBytes(items []EncodableEntry) []byte {
	prefix := items[0].Key
	for _, it := range items[1:] {
		prefix = commonPrefix(prefix, it.Key)
		if len(prefix) == 0 {
			break
		}
	}
	return prefix
}
