package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/config"
	"github.com/latticedb/lattice/errs"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Sync = false
	e, err := Open(cfg)
	require.NoError(t, err)
	return e
}

func TestExecuteCreateInsertSelectRoundTrip(t *testing.T) {
	e := newEngine(t)

	_, err := e.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY, name VARCHAR(20))")
	require.NoError(t, err)

	_, err = e.Execute("INSERT INTO t VALUES (1, 'a')")
	require.NoError(t, err)
	_, err = e.Execute("INSERT INTO t VALUES (2, 'b')")
	require.NoError(t, err)

	rs, err := e.Execute("SELECT name FROM t WHERE id = 2")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "b", rs.Rows[0][0].AsText())
}

func TestExecuteInsertReturnsRowsAffected(t *testing.T) {
	e := newEngine(t)
	_, err := e.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	rs, err := e.Execute("INSERT INTO t VALUES (1)")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rs.Rows[0][0].AsInteger())
}

func TestReopenRebuildsCatalogAndIndexes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Sync = false

	e1, err := Open(cfg)
	require.NoError(t, err)
	_, err = e1.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY, val INTEGER)")
	require.NoError(t, err)
	_, err = e1.Execute("INSERT INTO t VALUES (1, 10)")
	require.NoError(t, err)

	e2, err := Open(cfg)
	require.NoError(t, err)
	rs, err := e2.Execute("SELECT val FROM t WHERE id = 1")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, int64(10), rs.Rows[0][0].AsInteger())

	_, err = e2.Execute("INSERT INTO t VALUES (1, 20)")
	assert.Error(t, err, "unique index should have been rebuilt on reopen")
}

func TestExplainReturnsStructuralSteps(t *testing.T) {
	e := newEngine(t)
	_, err := e.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	doc, err := e.Explain("SELECT * FROM t WHERE id = 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT", doc.Kind)
	require.Len(t, doc.Sources, 1)
	assert.Equal(t, "index-scan", doc.Sources[0].Method)
}

func TestIntrospectTables(t *testing.T) {
	e := newEngine(t)
	_, err := e.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY, name VARCHAR(10))")
	require.NoError(t, err)
	_, err = e.Execute("INSERT INTO t VALUES (1, 'a')")
	require.NoError(t, err)

	rs, err := e.Introspect(IntrospectTables)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "t", rs.Rows[0][0].AsText())
	assert.Equal(t, int64(1), rs.Rows[0][2].AsInteger())
}

func TestExecuteSyntaxErrorIsBandA(t *testing.T) {
	e := newEngine(t)
	_, err := e.Execute("SELEKT * FROM t")
	require.Error(t, err)
	assert.True(t, errs.IsBandA(err))
}

func TestIntrospectIndexes(t *testing.T) {
	e := newEngine(t)
	_, err := e.Execute("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	rs, err := e.Introspect(IntrospectIndexes)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "t_id_idx", rs.Rows[0][0].AsText())
	assert.True(t, rs.Rows[0][3].AsBool())
}
