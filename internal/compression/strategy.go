package compression

// Strategy is the capability set every codec implements: estimate a
// compressed ratio from a cheap cost model, then (if chosen) encode and
// decode for real. Dispatch happens through Manager's small strategy
// table; there is no open-ended plugin surface (spec 9, "Polymorphic
// compression strategies").
type Strategy interface {
	Tag() Tag

	// Applicable reports whether this strategy can encode the sample at
	// all, using only the cheap fingerprint.
	Applicable(fp Fingerprint, items []EncodableEntry) bool

	// Estimate returns the predicted compressed/original byte ratio
	// (lower is better) using the cost model from spec 4.3 step 2.
	// Only called when Applicable returned true.
	Estimate(fp Fingerprint, items []EncodableEntry) float64

	Encode(items []EncodableEntry) ([]byte, Metadata, error)
	Decode(blob []byte, meta Metadata) ([]EncodableEntry, error)
}

// serializeRaw is the passthrough wire format shared by the NONE sentinel
// and as the GENERAL strategy's pre-deflate payload: each entry is
// [keyOrigin:1][keylen:2][key][vallen:2][value].
func serializeRaw(items []EncodableEntry) []byte {
	out := make([]byte, 0, totalBytes(items)+len(items)*9)
	for _, it := range items {
		out = append(out, byte(it.KeyOrigin))
		out = appendLenBytes(out, it.Key)
		out = appendLenBytes(out, it.Value)
	}
	return out
}

func deserializeRaw(blob []byte, count int) ([]EncodableEntry, error) {
	out := make([]EncodableEntry, 0, count)
	off := 0
	for i := 0; i < count; i++ {
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

		val, next, err := readLenBytes(blob, off)
		if err != nil {
			return nil, err
		}
		off = next

		out = append(out, EncodableEntry{Key: key, KeyOrigin: origin, Value: val})
	}
	if len(out) != count {
		return nil, errCountMismatch
	}
	return out, nil
}
