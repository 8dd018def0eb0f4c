package compression

import (
	"bytes"
	"compress/flate"
	"io"
)

// generalStrategy is the deflate-family fallback. No example in the
// teacher pack wires a third-party compression codec into a complete,
// buildable module (see DESIGN.md), so this uses the standard library's
// compress/flate at best-compression, the same stdlib-first posture the
// teacher takes for every other binary framing concern.
type generalStrategy struct {
	minPayloadBytes int
}

func (generalStrategy) Tag() Tag { return TagGeneral }

func (g generalStrategy) Applicable(fp Fingerprint, items []EncodableEntry) bool {
	return fp.TotalBytes >= g.minPayloadBytes && len(items) > 0
}

// Estimate uses the spec's fixed cost-model figure (~40% savings on
// text-like data) rather than a trial encode.
func (generalStrategy) Estimate(fp Fingerprint, items []EncodableEntry) float64 {
	return 0.6
}

func (generalStrategy) Encode(items []EncodableEntry) ([]byte, Metadata, error) {
	raw := serializeRaw(items)

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, Metadata{}, err
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, Metadata{}, err
	}
	if err := w.Close(); err != nil {
		return nil, Metadata{}, err
	}

	meta := Metadata{Tag: TagGeneral, Count: len(items), OriginalBytes: totalBytes(items)}
	return buf.Bytes(), meta, nil
}

func (generalStrategy) Decode(blob []byte, meta Metadata) ([]EncodableEntry, error) {
	if meta.Tag != TagGeneral {
		return nil, errMetaTagMismatch
	}
	r := flate.NewReader(bytes.NewReader(blob))
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return deserializeRaw(raw, meta.Count)
}
