package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodidseq/bioseq/internal/capability/domain"
	apperrors "github.com/biodidseq/bioseq/internal/errors"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec()

	id := uuid.New()
	issuedAt := time.Now().UTC().Truncate(time.Second)
	capabilities := []domain.Capability{
		{Resource: domain.Resource{Kind: domain.ResourceDataset, ID: "ds-42"}, Action: domain.ActionRead},
		{Resource: domain.Resource{Kind: domain.ResourceDID, ID: "did:bio:abc"}, Action: domain.ActionUpdate},
	}

	token, err := codec.Encode(id, "did:key:z6MkIssuer", "did:bio:audience", issuedAt, capabilities)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "ucan:demo:"))

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, id, decoded.ID)
	assert.Equal(t, "did:key:z6MkIssuer", decoded.Issuer)
	assert.Equal(t, "did:bio:audience", decoded.Audience)
	assert.Equal(t, issuedAt, decoded.IssuedAt)
	assert.Equal(t, capabilities, decoded.Capabilities)
}

func TestTokenCodec_IssuerWithColonsSurvives(t *testing.T) {
	// DIDs contain colons; the encoded segments must not leak them into the
	// delimiter structure.
	codec := NewTokenCodec()

	token, err := codec.Encode(
		uuid.New(),
		"did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK",
		"did:bio:7e0b4ce7-0a54-4b67-bf08-efb2b9e2f6b2",
		time.Now().UTC(),
		[]domain.Capability{
			{Resource: domain.Resource{Kind: domain.ResourceFile, ID: "bafy123"}, Action: domain.ActionDownload},
		},
	)
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK", decoded.Issuer)
}

func TestTokenCodec_DecodeMalformed(t *testing.T) {
	codec := NewTokenCodec()

	tests := []struct {
		name  string
		token string
	}{
		{"not a token", "not-a-token"},
		{"empty", ""},
		{"wrong scheme", "jwt:demo:a:b:c:d:e"},
		{"wrong variant", "ucan:v2:a:b:c:d:e"},
		{"too few segments", "ucan:demo:abc"},
		{"bad token id", "ucan:demo:not-a-uuid:aXNz:YXVk:123:W10"},
		{"bad timestamp", "ucan:demo:" + uuid.NewString() + ":aXNz:YXVk:notanumber:W10"},
		{"bad capabilities json", "ucan:demo:" + uuid.NewString() + ":aXNz:YXVk:123:bm90anNvbg"},
		{"bad base64 issuer", "ucan:demo:" + uuid.NewString() + ":!!!:YXVk:123:W10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := codec.Decode(tt.token)
			assert.Nil(t, decoded)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrTokenDecode))
		})
	}
}

func TestTokenCodec_DecodeRejectsUnknownAction(t *testing.T) {
	codec := NewTokenCodec()

	token, err := codec.Encode(uuid.New(), "iss", "aud", time.Now().UTC(), nil)
	require.NoError(t, err)

	// Swap the capability segment for one carrying an action outside the
	// closed set.
	parts := strings.Split(token, ":")
	parts[6] = "W1siZGF0YXNldDp4Iiwic21hc2giXV0" // [["dataset:x","smash"]]
	_, err = codec.Decode(strings.Join(parts, ":"))
	assert.True(t, apperrors.Is(err, apperrors.ErrTokenDecode))
}
