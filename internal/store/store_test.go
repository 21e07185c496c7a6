package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv'").Scan(&name)
	if err != nil {
		t.Errorf("kv table not found after idempotent opens: %v", err)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("user_version", "2"); err != nil {
		t.Error(err)
	}
}

func TestOpen_MigratesV1Database(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.db")

	// Build a v1 database by hand: kv table without updated_at.
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`DROP TABLE kv`)
	require.NoError(t, err)
	_, err = s.db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY NOT NULL, value TEXT NOT NULL) WITHOUT ROWID`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO kv (key, value) VALUES ('isLoggedIn', '1')`)
	require.NoError(t, err)
	_, err = s.db.Exec(`PRAGMA user_version = 1`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	value, ok, err := s.Get(context.Background(), "isLoggedIn")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	require.NoError(t, s.Set(context.Background(), "isLoggedIn", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "2"))
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "isLoggedIn", "1"))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	value, ok, err := s2.Get(ctx, "isLoggedIn")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	testContract(t, s)
}

func TestSQLite_Contract(t *testing.T) {
	testContract(t, createTestStore(t))
}

func TestMemory_Contract(t *testing.T) {
	testContract(t, NewMemory())
}

func TestRedis_Contract(t *testing.T) {
	r, _ := createTestRedis(t, "")
	testContract(t, r)
}

func TestRedis_Prefix(t *testing.T) {
	r, mr := createTestRedis(t, "authform:")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "isLoggedIn", "1"))
	got, err := mr.Get("authform:isLoggedIn")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
	assert.False(t, mr.Exists("isLoggedIn"))

	require.NoError(t, r.Delete(ctx, "isLoggedIn"))
	assert.False(t, mr.Exists("authform:isLoggedIn"))
}

func TestRedis_Unavailable(t *testing.T) {
	r, mr := createTestRedis(t, "")
	mr.Close()

	_, _, err := r.Get(context.Background(), "isLoggedIn")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}

func TestDialRedis(t *testing.T) {
	_, mr := createTestRedis(t, "")

	r, err := DialRedis(context.Background(), mr.Addr(), "p:")
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Set(context.Background(), "k", "v"))
	assert.True(t, mr.Exists("p:k"))
}

// testContract exercises the Get/Set/Delete semantics every backend shares.
func testContract(t *testing.T, s kv) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "isLoggedIn")
	require.NoError(t, err)
	assert.False(t, ok, "missing key reports absent")

	require.NoError(t, s.Set(ctx, "isLoggedIn", "1"))
	value, ok, err := s.Get(ctx, "isLoggedIn")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	require.NoError(t, s.Set(ctx, "isLoggedIn", "1"), "set is an upsert")
	require.NoError(t, s.Set(ctx, "other", "x"))

	require.NoError(t, s.Delete(ctx, "isLoggedIn"))
	_, ok, err = s.Get(ctx, "isLoggedIn")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "isLoggedIn"), "deleting a missing key is fine")

	value, ok, err = s.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", value)
}
