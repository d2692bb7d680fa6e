package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// failingBackend refuses every write.
type failingBackend struct{}

func (failingBackend) Save(context.Context, string, []byte) error {
	return ErrQuotaExceeded
}
func (failingBackend) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}
func (failingBackend) Name() string               { return "failing" }
func (failingBackend) Ping(context.Context) error { return nil }

// brokenReadBackend fails every read.
type brokenReadBackend struct {
	*MemoryBackend
}

func (b brokenReadBackend) Load(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend unavailable")
}
func (brokenReadBackend) Name() string { return "broken-read" }

func TestAdapterSaveLoadRoundTrip(t *testing.T) {
	adapter := NewAdapter(NewMemoryBackend(), nil)
	ctx := context.Background()

	res := adapter.Save(ctx, "things", []record{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	require.NoError(t, res.Err)
	require.Equal(t, "memory", res.Backend)
	require.False(t, res.FellBack)

	var loaded []record
	require.NoError(t, adapter.Load(ctx, "things", &loaded))
	require.Equal(t, []record{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, loaded)
}

func TestAdapterMissingCollectionLoadsEmpty(t *testing.T) {
	adapter := NewAdapter(NewMemoryBackend(), nil)

	var loaded []record
	require.NoError(t, adapter.Load(context.Background(), "absent", &loaded))
	require.Empty(t, loaded)
}

func TestAdapterFallsBackOnPrimaryFailure(t *testing.T) {
	fallback := NewMemoryBackend()
	adapter := NewAdapter(failingBackend{}, fallback)
	ctx := context.Background()

	res := adapter.Save(ctx, "things", []record{{ID: 7, Name: "x"}})
	require.NoError(t, res.Err)
	require.True(t, res.FellBack)
	require.Equal(t, "memory", res.Backend)

	// The fallback serves reads when the primary has nothing.
	var loaded []record
	require.NoError(t, adapter.Load(ctx, "things", &loaded))
	require.Len(t, loaded, 1)
	require.Equal(t, 7, loaded[0].ID)
}

func TestAdapterSurfacesReadFailure(t *testing.T) {
	ctx := context.Background()

	// No fallback: the primary's read error must reach the caller, not
	// decode as an empty collection a later save would persist.
	adapter := NewAdapter(brokenReadBackend{NewMemoryBackend()}, nil)
	var loaded []record
	err := adapter.Load(ctx, "things", &loaded)
	require.Error(t, err)
	require.Empty(t, loaded)

	// A fallback that also has nothing cannot vouch for absence either.
	adapter = NewAdapter(brokenReadBackend{NewMemoryBackend()}, NewMemoryBackend())
	err = adapter.Load(ctx, "things", &loaded)
	require.Error(t, err)

	// A fallback hit still serves the data despite the broken primary.
	fallback := NewMemoryBackend()
	res := NewAdapter(fallback, nil).Save(ctx, "things", []record{{ID: 7, Name: "x"}})
	require.NoError(t, res.Err)
	adapter = NewAdapter(brokenReadBackend{NewMemoryBackend()}, fallback)
	require.NoError(t, adapter.Load(ctx, "things", &loaded))
	require.Len(t, loaded, 1)
}

func TestAdapterRepairsPrimaryFromFallbackHit(t *testing.T) {
	primary := NewMemoryBackend()
	fallback := NewMemoryBackend()
	adapter := NewAdapter(primary, fallback)
	ctx := context.Background()

	// Seed only the fallback, as if the primary had been wiped.
	res := NewAdapter(fallback, nil).Save(ctx, "things", []record{{ID: 4, Name: "y"}})
	require.NoError(t, res.Err)

	var loaded []record
	require.NoError(t, adapter.Load(ctx, "things", &loaded))
	require.Len(t, loaded, 1)

	// The read repaired the primary; it now serves the blob itself.
	data, found, err := primary.Load(ctx, "things")
	require.NoError(t, err)
	require.True(t, found)
	require.NotEmpty(t, data)
}

func TestAdapterReportsTerminalWriteFailure(t *testing.T) {
	adapter := NewAdapter(failingBackend{}, nil)

	res := adapter.Save(context.Background(), "things", []record{{ID: 1}})
	require.Error(t, res.Err)
	require.False(t, res.OK())
	require.True(t, errors.Is(res.Err, ErrQuotaExceeded))
}

func TestBoundedMemoryBackendEnforcesQuota(t *testing.T) {
	backend := NewBoundedMemoryBackend(8)

	err := backend.Save(context.Background(), "big", make([]byte, 64))
	require.ErrorIs(t, err, ErrQuotaExceeded)

	require.NoError(t, backend.Save(context.Background(), "small", []byte("ok")))
}

func TestNextID(t *testing.T) {
	records := []record{{ID: 3}, {ID: 9}, {ID: 1}}
	require.Equal(t, 10, NextID(records, func(r record) int { return r.ID }))
	require.Equal(t, 1, NextID(nil, func(r record) int { return r.ID }))
}
