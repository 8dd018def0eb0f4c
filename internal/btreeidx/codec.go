package btreeidx

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/tuannm99/pgbtree/internal/compression"
)

// encodeKey projects a generic key to the byte/origin pair the
// compression package fingerprints and frames. Integral keys are
// packed big-endian so byte-wise comparison matches numeric order,
// the same convention the teacher's EncodeLeafEntry/EncodeInternalEntry
// used for its fixed int64 keys (internal/btree/entry.go), generalized
// here across every integral width plus float64 and string.
func encodeKey[K KeyType](key K) ([]byte, compression.KeyOrigin) {
	switch v := any(key).(type) {
	case string:
		return []byte(v), compression.KeyOriginString
	case int:
		return encodeInt64(int64(v)), compression.KeyOriginInt
	case int32:
		return encodeInt64(int64(v)), compression.KeyOriginInt
	case int64:
		return encodeInt64(v), compression.KeyOriginInt
	case float64:
		var b [8]byte
		be.PutUint64(b[:], math.Float64bits(v))
		return b[:], compression.KeyOriginFloat
	default:
		panic(fmt.Sprintf("btreeidx: unsupported key type %T", key))
	}
}

// decodeKey reverses encodeKey. The zero value of K selects which
// branch to take since Go generics give no runtime type switch on K
// itself, only on values of it.
func decodeKey[K KeyType](b []byte, origin compression.KeyOrigin) K {
	var zero K
	switch any(zero).(type) {
	case string:
		return any(string(b)).(K)
	case int:
		return any(int(decodeInt64(b))).(K)
	case int32:
		return any(int32(decodeInt64(b))).(K)
	case int64:
		return any(decodeInt64(b)).(K)
	case float64:
		bits := be.Uint64(b)
		return any(math.Float64frombits(bits)).(K)
	default:
		panic(fmt.Sprintf("btreeidx: unsupported key type %T", zero))
	}
}

// encodeInt64 packs a signed integer as big-endian with the sign bit
// flipped, so the unsigned byte order matches signed numeric order
// (negative keys sort before positive ones under a plain byte
// comparison). Delta/prefix fingerprinting and the general codec all
// operate on this representation.
func encodeInt64(v int64) []byte {
	var b [8]byte
	be.PutUint64(b[:], uint64(v)^signBit)
	return b[:]
}

func decodeInt64(b []byte) int64 {
	return int64(be.Uint64(b) ^ signBit)
}

const signBit = uint64(1) << 63

// encodeValue serializes an opaque value with encoding/gob. No
// example repo in the pack carries a generic third-party value codec
// (the pack's serialization-adjacent dependency, protobuf, appears
// only in unrelated gRPC-service repos with fixed message types, not a
// generic any-value encoder) — see DESIGN.md. gob handles every
// concrete V a caller instantiates Tree[K, V] with, the same posture
// the teacher takes toward encoding/json for its own ad hoc structs.
func encodeValue[V any](v V) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, fmt.Errorf("btreeidx: encode value: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeValue[V any](b []byte) (V, error) {
	var v V
	if len(b) == 0 {
		return v, nil
	}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v); err != nil {
		return v, fmt.Errorf("btreeidx: decode value: %w", err)
	}
	return v, nil
}
