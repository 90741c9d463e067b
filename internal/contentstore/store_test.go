package contentstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gocloud.dev/blob/memblob"

	apperrors "github.com/biodidseq/bioseq/internal/errors"
)

// TestMain verifies that bucket handles are closed and leak no goroutines.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openMemStore(t *testing.T) Store {
	t.Helper()

	store, closer, err := Open(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, closer())
	})
	return store
}

func TestBlobStore_PutGetRoundTrip(t *testing.T) {
	store := openMemStore(t)
	ctx := context.Background()

	data := []byte(`{"id":"did:bio:7e0b4ce7-0a54-4b67-bf08-efb2b9e2f6b2"}`)

	address, err := store.Put(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, Address(data), address)

	got, err := store.Get(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestBlobStore_PutIsIdempotent(t *testing.T) {
	store := openMemStore(t)
	ctx := context.Background()

	data := []byte("same bytes")

	first, err := store.Put(ctx, data)
	require.NoError(t, err)

	second, err := store.Put(ctx, data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBlobStore_DistinctContentDistinctAddress(t *testing.T) {
	store := openMemStore(t)
	ctx := context.Background()

	a, err := store.Put(ctx, []byte("version one"))
	require.NoError(t, err)

	b, err := store.Put(ctx, []byte("version two"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	// Both versions stay independently fetchable.
	gotA, err := store.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []byte("version one"), gotA)

	gotB, err := store.Get(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []byte("version two"), gotB)
}

func TestBlobStore_GetUnknownAddress(t *testing.T) {
	store := openMemStore(t)

	_, err := store.Get(context.Background(), Address([]byte("never stored")))
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestNewWithBucket(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() {
		require.NoError(t, bucket.Close())
	})

	store := NewWithBucket(bucket)
	ctx := context.Background()

	data := []byte("caller-owned bucket")

	address, err := store.Put(ctx, data)
	require.NoError(t, err)

	got, err := store.Get(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOpen_InvalidURL(t *testing.T) {
	_, _, err := Open(context.Background(), "bogus://nope")
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrStore))
}
