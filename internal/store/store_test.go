package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFile(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	sqlite, err := NewSQLite(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		BackendFile:   file,
		BackendSQLite: sqlite,
		BackendMemory: NewMemory(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Ping(ctx))

			_, ok, err := s.Get(ctx, "tai_role")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "tai_role", "student"))
			require.NoError(t, s.Set(ctx, "tai_role", "teacher"))
			require.NoError(t, s.Set(ctx, "tai_user_id", "u-1"))

			v, ok, err := s.Get(ctx, "tai_role")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "teacher", v)

			require.NoError(t, s.Delete(ctx, "tai_role", "tai_user_id", "missing"))
			_, ok, err = s.Get(ctx, "tai_user_id")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "tai_device_id", "device_abc"))

	second, err := NewFile(path)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "tai_device_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "device_abc", v)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open("redis", "")
	require.Error(t, err)

	s, err := Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

func TestWithBusyRetry(t *testing.T) {
	calls := 0
	err := withBusyRetry(context.Background(), "set", func() error {
		calls++
		if calls < 2 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = withBusyRetry(context.Background(), "set", func() error {
		calls++
		return errors.New("constraint failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-conflict errors are not retried")
}

func TestConflictErrorDetection(t *testing.T) {
	assert.True(t, isConflictError(errors.New("SQLITE_BUSY: database busy")))
	assert.True(t, isConflictError(errors.New("database is locked")))
	assert.False(t, isConflictError(nil))
	assert.False(t, isConflictError(errors.New("no such table")))
}

func TestSQLiteUsesWAL(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var mode string
	require.NoError(t, s.db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var sync int
	require.NoError(t, s.db.QueryRowContext(context.Background(), "PRAGMA synchronous").Scan(&sync))
	assert.Equal(t, 1, sync)
}
