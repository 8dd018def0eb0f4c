package compression

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func stringItems(keys []string, values []string) []EncodableEntry {
	items := make([]EncodableEntry, len(keys))
	for i := range keys {
		items[i] = EncodableEntry{Key: []byte(keys[i]), KeyOrigin: KeyOriginString, Value: []byte(values[i])}
	}
	return items
}

func intItems(keys []int64, values []string) []EncodableEntry {
	items := make([]EncodableEntry, len(keys))
	for i := range keys {
		var kb [8]byte
		putU64BE(kb[:], uint64(keys[i]))
		items[i] = EncodableEntry{Key: kb[:], KeyOrigin: KeyOriginInt, Value: []byte(values[i])}
	}
	return items
}

func TestManager_PrefixCompression(t *testing.T) {
	keys := make([]string, 8)
	vals := make([]string, 8)
	for i := range keys {
		keys[i] = fmt.Sprintf("user_%03d", i+1)
		vals[i] = "x"
	}
	items := stringItems(keys, vals)

	m := NewManager(DefaultManagerConfig(), nil)
	blob, meta, err := m.Compress(items)
	require.NoError(t, err)
	require.Equal(t, TagPrefix, meta.Tag)
	require.Less(t, len(blob), totalBytes(items))

	back, err := m.Decompress(blob, meta)
	require.NoError(t, err)
	require.Equal(t, items, back)
}

func TestManager_DeltaCompression(t *testing.T) {
	keys := make([]int64, 128)
	vals := make([]string, 128)
	for i := range keys {
		keys[i] = 1000 + int64(i)
		vals[i] = "" // scenario 5: key-only page, exercises the key-width savings directly
	}
	items := intItems(keys, vals)

	m := NewManager(DefaultManagerConfig(), nil)
	blob, meta, err := m.Compress(items)
	require.NoError(t, err)
	require.Equal(t, TagDelta, meta.Tag)

	ratio := float64(len(blob)) / float64(totalBytes(items))
	require.LessOrEqual(t, ratio, 0.4)

	back, err := m.Decompress(blob, meta)
	require.NoError(t, err)
	require.Equal(t, items, back)
}

func TestManager_RejectsLowGainRandomData(t *testing.T) {
	keys := []string{"qx7f", "m2ap", "zz10", "b7yq", "kk02", "vv91", "ee44", "rr18",
		"tt55", "uu23", "ww87", "xx12", "yy65", "nn34", "oo09", "pp76"}
	vals := []string{"aQ1!rXz8pL9m0KzT", "bR2@sYa9qM0n1LaU", "cS3#tZb0rN1o2MbV", "dT4$uAc1sO2p3NcW",
		"eU5%vBd2tP3q4OdX", "fV6^wCe3uQ4r5PeY", "gW7&xDf4vR5s6QfZ", "hX8*yEg5wS6t7Rg1",
		"iY9(zFh6xT7u8Sh2", "jZ0)aGi7yU8v9Ti3", "kA1_bHj8zV9w0Uj4", "lB2-cIk9aW0x1Vk5",
		"mC3=dJl0bX1y2Wl6", "nD4+eKm1cY2z3Xm7", "oE5~fLn2dZ3a4Yn8", "pF6`gMo3eA4b5Zo9"}
	items := stringItems(keys, vals)

	m := NewManager(DefaultManagerConfig(), nil)
	_, meta, err := m.Compress(items)
	require.NoError(t, err)
	require.Equal(t, TagNone, meta.Tag)

	stats := m.Stats()
	require.Equal(t, 1, stats.Attempts)
	require.Equal(t, 0, stats.Successes)
}

func TestManager_DictCompression(t *testing.T) {
	keys := make([]string, 20)
	vals := make([]string, 20)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%02d", i)
		vals[i] = []string{"account_status_active", "account_status_inactive", "account_status_pending"}[i%3]
	}
	items := stringItems(keys, vals)

	m := NewManager(DefaultManagerConfig(), nil)
	blob, meta, err := m.Compress(items)
	require.NoError(t, err)
	require.Contains(t, []Tag{TagDict, TagPrefix}, meta.Tag)

	back, err := m.Decompress(blob, meta)
	require.NoError(t, err)
	require.Equal(t, items, back)
}

func TestManager_RepeatCompressIsIdempotent(t *testing.T) {
	items := intItems([]int64{1, 2, 3, 4, 5, 6, 7, 8}, []string{"a", "b", "c", "d", "e", "f", "g", "h"})

	m := NewManager(DefaultManagerConfig(), nil)
	blob1, meta1, err := m.Compress(items)
	require.NoError(t, err)

	back, err := m.Decompress(blob1, meta1)
	require.NoError(t, err)

	blob2, meta2, err := m.Compress(back)
	require.NoError(t, err)
	require.Equal(t, meta1.Tag, meta2.Tag)
	require.Equal(t, len(blob1), len(blob2))
}
