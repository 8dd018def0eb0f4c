package compression

import "errors"

// KeyOrigin records what Go value a key byte-slice was encoded from, so
// strategies that only apply to one key shape (delta wants integers,
// prefix wants strings) can check applicability without re-parsing bytes.
type KeyOrigin uint8

const (
	KeyOriginString KeyOrigin = iota
	KeyOriginInt
	KeyOriginFloat
)

// Tag discriminates the codec that produced (or should consume) a blob.
type Tag uint8

const (
	TagNone Tag = iota
	TagPrefix
	TagDict
	TagDelta
	TagRLE
	TagGeneral
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "NONE"
	case TagPrefix:
		return "PREFIX"
	case TagDict:
		return "DICT"
	case TagDelta:
		return "DELTA"
	case TagRLE:
		return "RLE"
	case TagGeneral:
		return "GENERAL"
	default:
		return "UNKNOWN"
	}
}

// EncodableEntry is the serialization-facing projection of one page entry.
// btreeidx's node type owns the K/V <-> EncodableEntry mapping; this package only
// ever deals in bytes plus the KeyOrigin hint.
type EncodableEntry struct {
	Key       []byte
	KeyOrigin KeyOrigin
	Value     []byte
}

// Metadata carries the chosen strategy tag and any per-strategy parameters
// needed to reverse the transform. Only the fields relevant to Tag are
// populated; the rest are zero.
type Metadata struct {
	Tag       Tag
	Count     int       // number of entries the blob encodes
	KeyOrigin KeyOrigin // shared key origin across the page

	// PREFIX
	Prefix []byte

	// DICT
	DictTable [][]byte

	// DELTA
	DeltaBase  int64
	DeltaWidth int // bytes per delta, shared across the whole page

	// bookkeeping shared by every tag, used for ratio reporting
	OriginalBytes int
}

var (
	errShortBuffer    = errors.New("compression: blob shorter than its own length prefixes")
	errCountMismatch  = errors.New("compression: decoded entry count does not match metadata")
	errNotApplicable  = errors.New("compression: strategy not applicable to this sample")
	errEmptyInput     = errors.New("compression: cannot encode zero entries")
	errMetaTagMismatch = errors.New("compression: metadata tag does not match decoder")
)

func totalBytes(items []EncodableEntry) int {
	n := 0
	for _, it := range items {
		n += len(it.Key) + len(it.Value)
	}
	return n
}
