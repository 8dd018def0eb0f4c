package compression

// noneStrategy is the passthrough sentinel used whenever nothing else
// produces an acceptable ratio. It is never chosen by the estimator
// directly (estimate-stage rejection always falls back to it) but
// implements the same interface so Manager's decode path is uniform.
type noneStrategy struct{}

func (noneStrategy) Tag() Tag { return TagNone }

func (noneStrategy) Applicable(Fingerprint, []EncodableEntry) bool { return true }

func (noneStrategy) Estimate(Fingerprint, []EncodableEntry) float64 { return 1.0 }

func (noneStrategy) Encode(items []EncodableEntry) ([]byte, Metadata, error) {
	blob := serializeRaw(items)
	meta := Metadata{Tag: TagNone, Count: len(items), OriginalBytes: totalBytes(items)}
	return blob, meta, nil
}

func (noneStrategy) Decode(blob []byte, meta Metadata) ([]EncodableEntry, error) {
	if meta.Tag != TagNone {
		return nil, errMetaTagMismatch
	}
	return deserializeRaw(blob, meta.Count)
}
