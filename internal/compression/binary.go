// Package compression implements the page-level compression layer: a
// fingerprint-driven strategy selector, five reversible codecs, and the
// bookkeeping statistics the tree surfaces through get_statistics.
package compression

import "encoding/binary"

// byte-packing helpers used by every codec to frame length-prefixed
// fields inside an encoded blob. Adapted from the teacher's bx package:
// LE is used for plain length/count fields, BE for key material so that
// byte-wise comparison of encoded keys matches numeric/lexicographic
// order (handy for the delta codec's base+offset layout).
var (
	le = binary.LittleEndian
	be = binary.BigEndian
)

func putU16(b []byte, v uint16) { le.PutUint16(b, v) }
func u16(b []byte) uint16       { return le.Uint16(b) }

func putU32(b []byte, v uint32) { le.PutUint32(b, v) }
func u32(b []byte) uint32       { return le.Uint32(b) }

func putU64(b []byte, v uint64) { le.PutUint64(b, v) }
func u64(b []byte) uint64       { return le.Uint64(b) }

func putU64BE(b []byte, v uint64) { be.PutUint64(b, v) }
func u64BE(b []byte) uint64       { return be.Uint64(b) }

// appendLenBytes appends a 2-byte little-endian length prefix followed by
// the bytes themselves. Page entries are small (spec's order-bounded
// pages, not arbitrary blobs), so a uint16 length keeps framing overhead
// proportionate instead of a wasteful fixed 4-byte prefix.
func appendLenBytes(dst []byte, b []byte) []byte {
	var lenBuf [2]byte
	putU16(lenBuf[:], uint16(len(b)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, b...)
	return dst
}

// readLenBytes reads a 2-byte length prefix followed by that many bytes
// starting at offset off, returning the slice and the new offset.
func readLenBytes(src []byte, off int) ([]byte, int, error) {
	if off+2 > len(src) {
		return nil, 0, errShortBuffer
	}
	n := int(u16(src[off : off+2]))
	off += 2
	if off+n > len(src) {
		return nil, 0, errShortBuffer
	}
	return src[off : off+n], off + n, nil
}
