package compression

import "encoding/binary"

// deltaStrategy stores a base key plus a shared-width difference from the
// previous key, a win when keys are numeric and mostly monotonic. Values
// are carried through unchanged: spec 4.3's table names DELTA for
// "numeric keys/values, mostly monotonic" but its cost model is phrased
// purely in terms of key width, so this implementation scopes the delta
// transform to keys (see DESIGN.md).
type deltaStrategy struct{}

func (deltaStrategy) Tag() Tag { return TagDelta }

func (deltaStrategy) Applicable(fp Fingerprint, items []EncodableEntry) bool {
	if !fp.AllNumericKeys || fp.N <= 1 || fp.MonotonicRunRatio < 0.5 {
		return false
	}
	for _, it := range items {
		if it.KeyOrigin != KeyOriginInt {
			return false
		}
	}
	return true
}

func keyAsInt64(e EncodableEntry) int64 {
	return int64(u64BE(pad8(e.Key)))
}

func deltaWidth(delta int64) int {
	u := uint64(delta)
	if delta < 0 {
		u = uint64(-delta)
	}
	switch {
	case u <= 0xFF:
		return 1
	case u <= 0xFFFF:
		return 2
	case u <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

func deltas(items []EncodableEntry) []int64 {
	out := make([]int64, len(items)-1)
	prev := keyAsInt64(items[0])
	for i := 1; i < len(items); i++ {
		cur := keyAsInt64(items[i])
		out[i-1] = cur - prev
		prev = cur
	}
	return out
}

func sharedDeltaWidth(ds []int64) int {
	width := 1
	for _, d := range ds {
		if w := deltaWidth(d); w > width {
			width = w
		}
	}
	return width
}

// Estimate: "sum(width(v) - width(delta_i))" against a fixed 8-byte
// original key width, using the shared width the real encode would pick.
func (deltaStrategy) Estimate(fp Fingerprint, items []EncodableEntry) float64 {
	if len(items) < 2 {
		return 1.0
	}
	ds := deltas(items)
	width := sharedDeltaWidth(ds)
	saved := 8*len(items) - width*len(ds) - 8 // base key still costs 8 bytes
	if fp.TotalBytes == 0 {
		return 1.0
	}
	ratio := float64(fp.TotalBytes-saved) / float64(fp.TotalBytes)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

func (deltaStrategy) Encode(items []EncodableEntry) ([]byte, Metadata, error) {
	if len(items) == 0 {
		return nil, Metadata{}, errEmptyInput
	}
	base := keyAsInt64(items[0])
	ds := deltas(items)
	width := sharedDeltaWidth(ds)

	out := make([]byte, 0, width*len(ds)+totalBytes(items))
	var buf [8]byte
	for _, d := range ds {
		binary.LittleEndian.PutUint64(buf[:], uint64(d))
		out = append(out, buf[:width]...)
	}
	for _, it := range items {
		out = appendLenBytes(out, it.Value)
	}

	meta := Metadata{
		Tag:           TagDelta,
		Count:         len(items),
		DeltaBase:     base,
		DeltaWidth:    width,
		KeyOrigin:     items[0].KeyOrigin,
		OriginalBytes: totalBytes(items),
	}
	return out, meta, nil
}

func (deltaStrategy) Decode(blob []byte, meta Metadata) ([]EncodableEntry, error) {
	if meta.Tag != TagDelta {
		return nil, errMetaTagMismatch
	}
	if meta.Count == 0 {
		return nil, errCountMismatch
	}

	width := meta.DeltaWidth
	numDeltas := meta.Count - 1
	if width*numDeltas > len(blob) {
		return nil, errShortBuffer
	}

	keys := make([]int64, meta.Count)
	keys[0] = meta.DeltaBase
	off := 0
	for i := 0; i < numDeltas; i++ {
		var buf [8]byte
		copy(buf[:width], blob[off:off+width])
		off += width
		delta := signExtend(binary.LittleEndian.Uint64(buf[:]), width)
		keys[i+1] = keys[i] + delta
	}

	out := make([]EncodableEntry, 0, meta.Count)
	for i := 0; i < meta.Count; i++ {
		val, next, err := readLenBytes(blob, off)
		if err != nil {
			return nil, err
		}
		off = next

		var keyBuf [8]byte
		putU64BE(keyBuf[:], uint64(keys[i]))
		out = append(out, EncodableEntry{Key: keyBuf[:], KeyOrigin: meta.KeyOrigin, Value: val})
	}
	if len(out) != meta.Count {
		return nil, errCountMismatch
	}
	return out, nil
}

// signExtend interprets the low `width` bytes already placed into a
// little-endian uint64 as a two's-complement integer of that width,
// sign-extended to 64 bits.
func signExtend(u uint64, width int) int64 {
	if width >= 8 {
		return int64(u)
	}
	bits := uint(width) * 8
	mask := uint64(1) << (bits - 1)
	v := u & ((uint64(1) << bits) - 1)
	if v&mask != 0 {
		v |= ^uint64(0) << bits
	}
	return int64(v)
}
