// Package contentstore provides content-addressed storage for serialized
// identity documents on top of gocloud.dev/blob.
//
// Addresses are the hex-encoded SHA-256 of the stored bytes, so a Put of
// identical bytes is idempotent and every historical document version stays
// independently fetchable by its address.
package contentstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/biodidseq/bioseq/internal/errors"

	// Register blob bucket drivers
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Store is the content-addressed storage consumed by the identity document
// manager. Put returns the address of the stored bytes; Get retrieves them.
type Store interface {
	// Put stores the bytes and returns their content address. Storing the
	// same bytes twice returns the same address.
	Put(ctx context.Context, data []byte) (string, error)

	// Get retrieves the bytes stored at the given address. Returns
	// ErrNotFound for an unknown address.
	Get(ctx context.Context, address string) ([]byte, error)
}

// blobStore implements Store over a gocloud.dev blob bucket.
type blobStore struct {
	bucket *blob.Bucket
}

// Open opens the bucket at the given URL and returns a Store backed by it.
// Supports: mem://, file://, s3://, gs://, azblob://
func Open(ctx context.Context, bucketURL string) (Store, func() error, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, nil, apperrors.Wrapf(apperrors.ErrStore, "failed to open content bucket %q: %v", bucketURL, err)
	}
	return &blobStore{bucket: bucket}, bucket.Close, nil
}

// NewWithBucket returns a Store over an already-open bucket. The caller
// retains ownership of the bucket.
func NewWithBucket(bucket *blob.Bucket) Store {
	return &blobStore{bucket: bucket}
}

// Address returns the content address for the given bytes without storing them.
func Address(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *blobStore) Put(ctx context.Context, data []byte) (string, error) {
	address := Address(data)

	// Identical bytes produce an identical key, so rewriting is harmless but
	// skipped when the blob already exists.
	exists, err := s.bucket.Exists(ctx, address)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStore, err.Error())
	}
	if exists {
		return address, nil
	}

	if err := s.bucket.WriteAll(ctx, address, data, nil); err != nil {
		return "", apperrors.Wrap(apperrors.ErrStore, err.Error())
	}
	return address, nil
}

func (s *blobStore) Get(ctx context.Context, address string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, address)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.Wrapf(apperrors.ErrNotFound, "content %s", address)
		}
		return nil, apperrors.Wrap(apperrors.ErrStore, err.Error())
	}
	return data, nil
}
