package pgbtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsAndOperations(t *testing.T) {
	tr, err := New[int, string]()
	require.NoError(t, err)

	require.NoError(t, tr.Insert(1, "one"))
	require.NoError(t, tr.Insert(2, "two"))

	vals, err := tr.Search(1)
	require.NoError(t, err)
	require.Equal(t, []string{"one"}, vals)

	stats := tr.Statistics()
	require.Equal(t, 2, stats.TotalKeys)
}

func TestNewFromConfigFile_MissingFileErrors(t *testing.T) {
	_, err := NewFromConfigFile[int, string]("/nonexistent/pgbtree.yaml")
	require.Error(t, err)
}
