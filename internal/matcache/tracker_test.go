package matcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracker_DisabledByDefault(t *testing.T) {
	tr := New(0)
	tr.Touch(1)
	tr.Touch(2)
	require.Equal(t, 0, tr.Len())
	require.Nil(t, tr.Evictable())
}

func TestTracker_EvictsLeastRecentlyTouched(t *testing.T) {
	tr := New(2)
	tr.Touch(1)
	tr.Touch(2)
	tr.Touch(3) // now over cap by one; 1 is the oldest

	evictable := tr.Evictable()
	require.Equal(t, []PageID{1}, evictable)
}

func TestTracker_TouchRefreshesRecency(t *testing.T) {
	tr := New(2)
	tr.Touch(1)
	tr.Touch(2)
	tr.Touch(1) // 1 is now most-recent; 2 should be the eviction candidate
	tr.Touch(3)

	evictable := tr.Evictable()
	require.Equal(t, []PageID{2}, evictable)
}

func TestTracker_ForgetRemovesFromTracking(t *testing.T) {
	tr := New(1)
	tr.Touch(1)
	tr.Touch(2) // over cap; 1 is evictable

	tr.Forget(1)
	require.Equal(t, 1, tr.Len())
	require.Nil(t, tr.Evictable())
}
