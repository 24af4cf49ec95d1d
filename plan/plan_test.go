package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/catalog"
	"github.com/latticedb/lattice/parser"
)

func buildCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	_, err := c.CreateTable(&catalog.Table{
		Name: "dept",
		Columns: []*catalog.Column{
			{Name: "id", Type: catalog.TypeInteger, PrimaryKey: true},
			{Name: "name", Type: catalog.TypeVarchar, Length: 30},
		},
	})
	require.NoError(t, err)
	_, err = c.CreateTable(&catalog.Table{
		Name: "emp",
		Columns: []*catalog.Column{
			{Name: "id", Type: catalog.TypeInteger, PrimaryKey: true},
			{Name: "dept_id", Type: catalog.TypeInteger, References: &catalog.ForeignKey{Table: "dept", Column: "id"}},
		},
	})
	require.NoError(t, err)
	return c
}

func mustParse(t *testing.T, sql string) ast.Statement {
	t.Helper()
	stmt, err := parser.New(sql).Parse()
	require.NoError(t, err)
	return stmt
}

func TestExplainSingleTableIndexScan(t *testing.T) {
	c := buildCatalog(t)
	stmt := mustParse(t, "SELECT * FROM emp WHERE id = 1")
	doc, err := Explain(c, stmt)
	require.NoError(t, err)
	require.Len(t, doc.Sources, 1)
	assert.Equal(t, "index-scan", doc.Sources[0].Method)
	assert.Equal(t, "emp_id_idx", doc.Sources[0].IndexName)
}

func TestExplainFullScanWithoutIndexedPredicate(t *testing.T) {
	c := buildCatalog(t)
	stmt := mustParse(t, "SELECT * FROM emp WHERE dept_id = 2")
	doc, err := Explain(c, stmt)
	require.NoError(t, err)
	assert.Equal(t, "full-scan", doc.Sources[0].Method)
}

func TestExplainJoinIsIndexAware(t *testing.T) {
	c := buildCatalog(t)
	stmt := mustParse(t, "SELECT * FROM emp JOIN dept ON emp.dept_id = dept.id")
	doc, err := Explain(c, stmt)
	require.NoError(t, err)
	require.Len(t, doc.Joins, 1)
	assert.True(t, doc.Joins[0].IndexAware)
	assert.Equal(t, "dept_id_idx", doc.Joins[0].IndexName)
}

func TestExplainGroupingAndAggregates(t *testing.T) {
	c := buildCatalog(t)
	stmt := mustParse(t, "SELECT dept_id, COUNT(*) FROM emp GROUP BY dept_id")
	doc, err := Explain(c, stmt)
	require.NoError(t, err)
	require.NotNil(t, doc.Grouping)
	assert.Equal(t, []string{"dept_id"}, doc.Grouping.Columns)
	assert.Contains(t, doc.Grouping.Aggregates, "COUNT(*)")
}

func TestExplainLimitAndOrderBy(t *testing.T) {
	c := buildCatalog(t)
	stmt := mustParse(t, "SELECT * FROM emp ORDER BY id DESC LIMIT 5")
	doc, err := Explain(c, stmt)
	require.NoError(t, err)
	require.NotNil(t, doc.Limit)
	assert.Equal(t, int64(5), *doc.Limit)
	assert.Equal(t, []string{"id DESC"}, doc.OrderBy)
}
