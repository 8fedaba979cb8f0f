package artifact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(OpenOptions{InMemory: true, TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openMem(t, time.Hour)
	a := Artifact{Name: "daily_report_20240315_090507.csv", ContentType: "text/csv", CreatedAt: time.Now().UTC().Truncate(time.Second), Data: []byte("\ufeffa,b\n")}
	require.NoError(t, s.Put("run-1", a))

	got, err := s.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, a.Data, got.Data)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
}

func TestGetMissing(t *testing.T) {
	s := openMem(t, 0)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get("  ")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	s := openMem(t, 0)
	require.NoError(t, s.Put("x", Artifact{Name: "x.zip"}))
	require.NoError(t, s.Delete("x"))
	_, err := s.Get("x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpired(t *testing.T) {
	// badger TTL 精度为秒
	s := openMem(t, time.Second)
	require.NoError(t, s.Put("ttl", Artifact{Name: "ttl.csv"}))
	require.Eventually(t, func() bool {
		_, err := s.Get("ttl")
		return err == ErrNotFound
	}, 5*time.Second, 100*time.Millisecond)
}
