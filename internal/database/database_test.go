package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestMigrateIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"sql/001_a.sql": {Data: []byte(`CREATE TABLE a (id INTEGER PRIMARY KEY);`)},
		"sql/002_b.sql": {Data: []byte(`CREATE TABLE b (id INTEGER PRIMARY KEY, a_id INTEGER REFERENCES a(id));`)},
		"sql/README":    {Data: []byte(`not a migration`)},
	}
	require.NoError(t, Migrate(db, fsys))
	require.NoError(t, Migrate(db, fsys), "second run skips applied files")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	require.Equal(t, 2, n)

	_, err = db.Exec(`INSERT INTO b (id, a_id) VALUES (1, 42)`)
	require.Error(t, err, "foreign keys enforced")
}

func TestMigrateBadSQL(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	err = Migrate(db, fstest.MapFS{"sql/001_bad.sql": {Data: []byte(`CREATE TABLEX nope;`)}})
	require.ErrorContains(t, err, "apply sql/001_bad.sql")
}

func TestManagesOwnTx(t *testing.T) {
	require.True(t, managesOwnTx("PRAGMA foreign_keys=off;\nBEGIN TRANSACTION;"))
	require.True(t, managesOwnTx("pragma   foreign_keys  =  off;"))
	require.False(t, managesOwnTx("CREATE TABLE t (id INTEGER);"))
}
