package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/internal/testutil"
)

func seedSnapshot(t *testing.T) *sql.DB {
	t.Helper()
	db := testutil.CreateTestDB(t)

	stmts := []string{
		`CREATE TABLE anger (id TEXT, item TEXT, resp REAL)`,
		`INSERT INTO anger VALUES ('p1', 'a', 2.0), ('p1', 'b', NULL), ('p2', 'a', 3.5)`,
		`CREATE TABLE mood_waves (id TEXT, item TEXT, resp INTEGER, wave INTEGER)`,
		`INSERT INTO mood_waves VALUES ('p1', 'a', 1, 1)`,
		`PRAGMA user_version = 7`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestListTables(t *testing.T) {
	src := NewSource(seedSnapshot(t), "snap:test", "local_snapshot", nil)

	props, err := src.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, props, 2)

	assert.Equal(t, "anger", props[0].Name)
	require.NotNil(t, props[0].NumRows)
	assert.Equal(t, int64(3), *props[0].NumRows)
	require.NotNil(t, props[0].VariableCount)
	assert.Equal(t, int64(3), *props[0].VariableCount)

	assert.Equal(t, "mood_waves", props[1].Name)
	require.NotNil(t, props[1].VariableCount)
	assert.Equal(t, int64(4), *props[1].VariableCount)
}

func TestGetTable(t *testing.T) {
	src := NewSource(seedSnapshot(t), "snap:test", "local_snapshot", nil)

	f, err := src.GetTable(context.Background(), "anger")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "item", "resp"}, f.Columns())
	assert.Equal(t, 3, f.NumRows())

	id, ok := f.Value(0, "id").Text()
	require.True(t, ok)
	assert.Equal(t, "p1", id)
	resp, ok := f.Value(0, "resp").Number()
	require.True(t, ok)
	assert.Equal(t, 2.0, resp)
	assert.True(t, f.Value(1, "resp").IsNull())
}

func TestGetTableCaseInsensitive(t *testing.T) {
	src := NewSource(seedSnapshot(t), "snap:test", "local_snapshot", nil)

	f, err := src.GetTable(context.Background(), "ANGER")
	require.NoError(t, err)
	assert.Equal(t, 3, f.NumRows())
}

func TestGetTableNotFound(t *testing.T) {
	src := NewSource(seedSnapshot(t), "snap:test", "local_snapshot", nil)

	_, err := src.GetTable(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestVersionTag(t *testing.T) {
	src := NewSource(seedSnapshot(t), "snap:test", "local_snapshot", nil)
	assert.Equal(t, "7", src.VersionTag())

	unversioned := NewSource(testutil.CreateTestDB(t), "snap:fresh", "fresh", nil)
	assert.Equal(t, "", unversioned.VersionTag())
}

func TestProperties(t *testing.T) {
	src := NewSource(seedSnapshot(t), "snap:test", "local_snapshot", nil)

	p, err := src.Properties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, p.TableCount)
	assert.Greater(t, p.TotalBytes, int64(0))
}

func TestListTablesQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WillReturnError(errors.New("disk I/O error"))

	src := NewSource(db, "snap:mock", "mock", nil)
	_, err = src.ListTables(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enumerate")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTableResolveFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WillReturnError(errors.New("database is locked"))

	src := NewSource(db, "snap:mock", "mock", nil)
	_, err = src.GetTable(context.Background(), "anger")
	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err), "a query failure is not table absence")
	require.NoError(t, mock.ExpectationsWereMet())
}
