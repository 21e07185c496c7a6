package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/authform/internal/session"
	"github.com/roach88/authform/internal/store"
)

// failingStorage fails every operation with err.
type failingStorage struct {
	err error
}

func (f failingStorage) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStorage) Set(context.Context, string, string) error         { return f.err }
func (f failingStorage) Delete(context.Context, string) error              { return f.err }

func restored(t *testing.T, storage session.Storage) *session.Store {
	t.Helper()
	s := session.New(storage)
	_, err := s.Restore(context.Background())
	require.NoError(t, err)
	return s
}

func TestRestore_EmptyStorageIsLoggedOut(t *testing.T) {
	s := session.New(store.NewMemory())
	st, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, st.IsLoggedIn)
	assert.Equal(t, st, s.State())
}

func TestRestore_MarkerIsLoggedIn(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Set(context.Background(), session.MarkerKey, session.MarkerValue))

	s := restored(t, mem)
	assert.True(t, s.State().IsLoggedIn)
}

func TestRestore_OtherValuesAreIgnored(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Set(context.Background(), session.MarkerKey, "true"))

	s := restored(t, mem)
	assert.False(t, s.State().IsLoggedIn)
}

func TestRestore_OnlyOnce(t *testing.T) {
	s := restored(t, store.NewMemory())
	_, err := s.Restore(context.Background())
	assert.ErrorIs(t, err, session.ErrAlreadyRestored)
}

func TestLogin_WritesMarkerAndSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	s := restored(t, mem)
	require.NoError(t, s.Login(ctx, "user@test.com", "abcdefg"))
	assert.True(t, s.State().IsLoggedIn)

	value, ok, err := mem.Get(ctx, session.MarkerKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	fresh := restored(t, mem)
	assert.True(t, fresh.State().IsLoggedIn)
}

func TestLogout_RemovesMarker(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	s := restored(t, mem)
	require.NoError(t, s.Login(ctx, "user@test.com", "abcdefg"))
	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.State().IsLoggedIn)

	_, ok, err := mem.Get(ctx, session.MarkerKey)
	require.NoError(t, err)
	assert.False(t, ok)

	fresh := restored(t, mem)
	assert.False(t, fresh.State().IsLoggedIn)
}

func TestLogin_SQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := store.Open(path)
	require.NoError(t, err)
	s := restored(t, db)
	require.NoError(t, s.Login(ctx, "user@test.com", "abcdefg"))
	require.NoError(t, db.Close())

	db, err = store.Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.True(t, restored(t, db).State().IsLoggedIn)
}

func TestLogin_StubAcceptsAnyCredentials(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := restored(t, mem)

	require.NoError(t, s.Login(ctx, "usertest.com", "abc"))
	assert.True(t, s.State().IsLoggedIn)
	v, ok, err := mem.Get(ctx, session.MarkerKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, session.MarkerValue, v)
}

type rejectAll struct{}

func (rejectAll) Authenticate(context.Context, string, string) error {
	return session.ErrInvalidCredentials
}

func TestLogin_InjectedAuthenticatorRejects(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := session.New(mem, session.WithAuthenticator(rejectAll{}))
	_, err := s.Restore(ctx)
	require.NoError(t, err)

	err = s.Login(ctx, "user@test.com", "abcdefg")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)

	assert.False(t, s.State().IsLoggedIn)
	_, ok, _ := mem.Get(ctx, session.MarkerKey)
	assert.False(t, ok)
}

func TestLogin_StorageFailureKeepsStateConsistent(t *testing.T) {
	boom := errors.New("disk full")
	s := session.New(failingStorage{err: boom})

	notified := 0
	s.Subscribe(func(session.State) { notified++ })

	err := s.Login(context.Background(), "user@test.com", "abcdefg")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.State().IsLoggedIn)
	assert.Equal(t, 0, notified)

	assert.ErrorIs(t, s.Logout(context.Background()), boom)

	_, err = s.Restore(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSubscribe_SynchronousAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := restored(t, store.NewMemory())

	var got []string
	s.Subscribe(func(st session.State) {
		if st.IsLoggedIn {
			got = append(got, "a:in")
		} else {
			got = append(got, "a:out")
		}
	})
	s.Subscribe(func(st session.State) {
		if st.IsLoggedIn {
			got = append(got, "b:in")
		} else {
			got = append(got, "b:out")
		}
	})

	require.NoError(t, s.Login(ctx, "user@test.com", "abcdefg"))
	assert.Equal(t, []string{"a:in", "b:in"}, got, "listeners ran before Login returned")

	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, []string{"a:in", "b:in", "a:out", "b:out", "a:out", "b:out"}, got)
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()
	s := restored(t, store.NewMemory())

	calls := 0
	id := s.Subscribe(func(session.State) { calls++ })
	require.NoError(t, s.Login(ctx, "user@test.com", "abcdefg"))
	s.Unsubscribe(id)
	s.Unsubscribe(id)
	require.NoError(t, s.Logout(ctx))

	assert.Equal(t, 1, calls)
}

func TestUnsubscribe_FromInsideListener(t *testing.T) {
	ctx := context.Background()
	s := restored(t, store.NewMemory())

	var order []string
	var first int
	first = s.Subscribe(func(session.State) {
		order = append(order, "first")
		s.Unsubscribe(first)
	})
	s.Subscribe(func(session.State) { order = append(order, "second") })

	require.NoError(t, s.Login(ctx, "user@test.com", "abcdefg"))
	require.NoError(t, s.Logout(ctx))

	assert.Equal(t, []string{"first", "second", "second"}, order)
}
