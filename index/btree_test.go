package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/value"
)

func TestInsertAndPointLookup(t *testing.T) {
	tr := New(false)
	for i := int64(0); i < 20; i++ {
		require.NoError(t, tr.Insert(value.Integer(i), i*10))
	}
	assert.Equal(t, []int64{50}, tr.PointLookup(value.Integer(5)))
	assert.Nil(t, tr.PointLookup(value.Integer(999)))
}

func TestUniqueIndexRejectsDuplicate(t *testing.T) {
	tr := New(true)
	require.NoError(t, tr.Insert(value.Integer(1), 100))
	err := tr.Insert(value.Integer(1), 200)
	require.Error(t, err)
	var dup *ErrDuplicateKey
	assert.ErrorAs(t, err, &dup)
}

func TestNonUniqueIndexAllowsMultipleRowIDs(t *testing.T) {
	tr := New(false)
	require.NoError(t, tr.Insert(value.Integer(1), 100))
	require.NoError(t, tr.Insert(value.Integer(1), 200))
	got := tr.PointLookup(value.Integer(1))
	assert.ElementsMatch(t, []int64{100, 200}, got)
}

func TestNullKeysExcluded(t *testing.T) {
	tr := New(false)
	require.NoError(t, tr.Insert(value.Null, 1))
	assert.Equal(t, 0, tr.Size())
	assert.Nil(t, tr.PointLookup(value.Null))
}

func TestRemove(t *testing.T) {
	tr := New(false)
	require.NoError(t, tr.Insert(value.Integer(1), 100))
	require.NoError(t, tr.Insert(value.Integer(1), 200))
	tr.Remove(value.Integer(1), 100)
	assert.Equal(t, []int64{200}, tr.PointLookup(value.Integer(1)))
}

func TestUniqueIndexReinsertsAfterRemove(t *testing.T) {
	tr := New(true)
	require.NoError(t, tr.Insert(value.Integer(1), 100))
	tr.Remove(value.Integer(1), 100)
	assert.Nil(t, tr.PointLookup(value.Integer(1)))
	require.NoError(t, tr.Insert(value.Integer(1), 200))
	assert.Equal(t, []int64{200}, tr.PointLookup(value.Integer(1)))
}

func TestRangeLookupInclusiveExclusive(t *testing.T) {
	tr := New(false)
	for i := int64(1); i <= 10; i++ {
		require.NoError(t, tr.Insert(value.Integer(i), i))
	}
	lo, hi := value.Integer(3), value.Integer(7)
	got := tr.RangeLookup(&lo, &hi, true, false)
	assert.ElementsMatch(t, []int64{3, 4, 5, 6}, got)
}

func TestInOrderTraversalIsSorted(t *testing.T) {
	tr := New(false)
	for _, i := range []int64{5, 3, 8, 1, 9, 2, 7, 4, 6, 0} {
		require.NoError(t, tr.Insert(value.Integer(i), i))
	}
	entries := tr.InOrder()
	require.Len(t, entries, 10)
	for i := 1; i < len(entries); i++ {
		c, err := value.Compare(entries[i-1].Key, entries[i].Key)
		require.NoError(t, err)
		assert.True(t, c < 0)
	}
}

func TestSurvivesManyRandomInsertions(t *testing.T) {
	tr := New(false)
	n := int64(500)
	for i := int64(0); i < n; i++ {
		k := (i * 7919) % n
		require.NoError(t, tr.Insert(value.Integer(k), i))
	}
	entries := tr.InOrder()
	total := 0
	for _, e := range entries {
		total += len(e.RowIDs)
	}
	assert.Equal(t, int(n), total)
}
