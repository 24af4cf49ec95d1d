package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTableRejectsDuplicateColumns(t *testing.T) {
	c := New()
	_, err := c.CreateTable(&Table{
		Name: "t",
		Columns: []*Column{
			{Name: "id", Type: TypeInteger},
			{Name: "id", Type: TypeInteger},
		},
	})
	require.Error(t, err)
}

func TestCreateTableRejectsMultiplePrimaryKeys(t *testing.T) {
	c := New()
	_, err := c.CreateTable(&Table{
		Name: "t",
		Columns: []*Column{
			{Name: "a", Type: TypeInteger, PrimaryKey: true},
			{Name: "b", Type: TypeInteger, PrimaryKey: true},
		},
	})
	require.Error(t, err)
}

func TestCreateTableSynthesizesUniqueIndex(t *testing.T) {
	c := New()
	idxs, err := c.CreateTable(&Table{
		Name: "t",
		Columns: []*Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, idxs, 1)
	assert.Equal(t, "t_id_idx", idxs[0].Name)
	assert.True(t, idxs[0].Unique)
}

func TestCreateTableForeignKeyMustTargetUniqueColumn(t *testing.T) {
	c := New()
	_, err := c.CreateTable(&Table{
		Name:    "parent",
		Columns: []*Column{{Name: "id", Type: TypeInteger}},
	})
	require.NoError(t, err)

	_, err = c.CreateTable(&Table{
		Name: "child",
		Columns: []*Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true},
			{Name: "parent_id", Type: TypeInteger, References: &ForeignKey{Table: "parent", Column: "id"}},
		},
	})
	require.Error(t, err)
}

func TestCreateTableForeignKeyOntoPrimaryKeySucceeds(t *testing.T) {
	c := New()
	_, err := c.CreateTable(&Table{
		Name:    "parent",
		Columns: []*Column{{Name: "id", Type: TypeInteger, PrimaryKey: true}},
	})
	require.NoError(t, err)

	_, err = c.CreateTable(&Table{
		Name: "child",
		Columns: []*Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true},
			{Name: "parent_id", Type: TypeInteger, References: &ForeignKey{Table: "parent", Column: "id"}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, c.ReferencingTables("parent"), "child")
}

func TestDropTableRefusedWhenReferenced(t *testing.T) {
	c := New()
	_, _ = c.CreateTable(&Table{Name: "parent", Columns: []*Column{{Name: "id", Type: TypeInteger, PrimaryKey: true}}})
	_, _ = c.CreateTable(&Table{
		Name: "child",
		Columns: []*Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true},
			{Name: "parent_id", Type: TypeInteger, References: &ForeignKey{Table: "parent", Column: "id"}},
		},
	})

	err := c.DropTable("parent")
	require.Error(t, err)
}

func TestDropTableIdempotenceFailsSecondCall(t *testing.T) {
	c := New()
	_, _ = c.CreateTable(&Table{Name: "t", Columns: []*Column{{Name: "id", Type: TypeInteger}}})
	require.NoError(t, c.DropTable("t"))
	err := c.DropTable("t")
	require.Error(t, err)
}
