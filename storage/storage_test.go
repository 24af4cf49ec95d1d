package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/catalog"
	"github.com/latticedb/lattice/value"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), true)
	require.NoError(t, err)
	return s
}

func TestCreateTableAndAppendRow(t *testing.T) {
	s := newTestStore(t)
	schema := &catalog.Table{
		Name: "users",
		Columns: []*catalog.Column{
			{Name: "id", Type: catalog.TypeInteger, PrimaryKey: true},
			{Name: "name", Type: catalog.TypeVarchar, Length: 50},
		},
	}
	require.NoError(t, s.CreateTable(schema))

	id, err := s.AppendRow("users", []value.Value{value.Integer(1), value.Text("ada")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	tbl, ok := s.Table("users")
	require.True(t, ok)
	require.Len(t, tbl.Rows(), 1)
	assert.Equal(t, "ada", RowValues(tbl.Rows()[0])[1].AsText())
}

func TestReopenReloadsRowsFromDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, true)
	require.NoError(t, err)
	schema := &catalog.Table{
		Name:    "t",
		Columns: []*catalog.Column{{Name: "a", Type: catalog.TypeInteger}},
	}
	require.NoError(t, s.CreateTable(schema))
	_, err = s.AppendRow("t", []value.Value{value.Integer(42)})
	require.NoError(t, err)

	reopened, err := Open(dir, true)
	require.NoError(t, err)
	tbl, ok := reopened.Table("t")
	require.True(t, ok)
	require.Len(t, tbl.Rows(), 1)
	assert.Equal(t, int64(42), RowValues(tbl.Rows()[0])[0].AsInteger())
}

func TestMutateAndRemoveRow(t *testing.T) {
	s := newTestStore(t)
	schema := &catalog.Table{Name: "t", Columns: []*catalog.Column{{Name: "a", Type: catalog.TypeInteger}}}
	require.NoError(t, s.CreateTable(schema))
	id, err := s.AppendRow("t", []value.Value{value.Integer(1)})
	require.NoError(t, err)

	require.NoError(t, s.MutateRow("t", id, []value.Value{value.Integer(2)}))
	tbl, _ := s.Table("t")
	assert.Equal(t, int64(2), RowValues(tbl.Rows()[0])[0].AsInteger())

	require.NoError(t, s.RemoveRow("t", id))
	tbl, _ = s.Table("t")
	assert.Len(t, tbl.Rows(), 0)
}

func TestDropTableRemovesArtefacts(t *testing.T) {
	s := newTestStore(t)
	schema := &catalog.Table{Name: "t", Columns: []*catalog.Column{{Name: "a", Type: catalog.TypeInteger}}}
	require.NoError(t, s.CreateTable(schema))
	require.NoError(t, s.DropTable("t"))
	_, ok := s.Table("t")
	assert.False(t, ok)
}

func TestNullRoundTrip(t *testing.T) {
	s := newTestStore(t)
	schema := &catalog.Table{Name: "t", Columns: []*catalog.Column{{Name: "a", Type: catalog.TypeInteger}}}
	require.NoError(t, s.CreateTable(schema))
	_, err := s.AppendRow("t", []value.Value{value.Null})
	require.NoError(t, err)
	tbl, _ := s.Table("t")
	assert.True(t, RowValues(tbl.Rows()[0])[0].IsNull())
}
