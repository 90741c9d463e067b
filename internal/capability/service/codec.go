// Package service implements the capability token wire codec.
//
// Tokens are unsigned, colon-delimited strings:
//
//	ucan:demo:<token_id>:<b64url(issuer)>:<b64url(audience)>:<issued_unix>:<b64url(capsJSON)>
//
// The issuer, audience, and capability segments are base64url-encoded
// (unpadded) because DIDs and JSON contain colons of their own. The format
// carries no signature; the stored token row is what authorizes anything.
package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/biodidseq/bioseq/internal/capability/domain"
	apperrors "github.com/biodidseq/bioseq/internal/errors"
)

const (
	tokenScheme  = "ucan"
	tokenVariant = "demo"
	segmentCount = 7
)

// DecodedToken is the parsed content of a token string.
type DecodedToken struct {
	ID           uuid.UUID
	Issuer       string
	Audience     string
	IssuedAt     time.Time
	Capabilities []domain.Capability
}

// TokenCodec encodes and decodes capability token strings.
type TokenCodec interface {
	// Encode renders a token string from its parts.
	Encode(id uuid.UUID, issuer, audience string, issuedAt time.Time, capabilities []domain.Capability) (string, error)

	// Decode parses a token string. Returns ErrTokenDecode for any
	// malformed input; it never inspects revocation or expiry.
	Decode(token string) (*DecodedToken, error)
}

// tokenCodec implements TokenCodec.
type tokenCodec struct{}

// NewTokenCodec creates a new TokenCodec instance.
func NewTokenCodec() TokenCodec {
	return &tokenCodec{}
}

func (c *tokenCodec) Encode(
	id uuid.UUID,
	issuer, audience string,
	issuedAt time.Time,
	capabilities []domain.Capability,
) (string, error) {
	capsJSON, err := json.Marshal(capabilities)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrSerialization, err.Error())
	}

	enc := base64.RawURLEncoding
	return strings.Join([]string{
		tokenScheme,
		tokenVariant,
		id.String(),
		enc.EncodeToString([]byte(issuer)),
		enc.EncodeToString([]byte(audience)),
		strconv.FormatInt(issuedAt.Unix(), 10),
		enc.EncodeToString(capsJSON),
	}, ":"), nil
}

func (c *tokenCodec) Decode(token string) (*DecodedToken, error) {
	parts := strings.Split(token, ":")
	if len(parts) != segmentCount || parts[0] != tokenScheme || parts[1] != tokenVariant {
		return nil, domain.ErrMalformedToken
	}

	id, err := uuid.Parse(parts[2])
	if err != nil {
		return nil, malformed("token id", err)
	}

	enc := base64.RawURLEncoding

	issuer, err := enc.DecodeString(parts[3])
	if err != nil {
		return nil, malformed("issuer", err)
	}

	audience, err := enc.DecodeString(parts[4])
	if err != nil {
		return nil, malformed("audience", err)
	}

	issuedUnix, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil {
		return nil, malformed("issued timestamp", err)
	}

	capsJSON, err := enc.DecodeString(parts[6])
	if err != nil {
		return nil, malformed("capabilities", err)
	}

	var capabilities []domain.Capability
	if err := json.Unmarshal(capsJSON, &capabilities); err != nil {
		return nil, malformed("capabilities", err)
	}

	return &DecodedToken{
		ID:           id,
		Issuer:       string(issuer),
		Audience:     string(audience),
		IssuedAt:     time.Unix(issuedUnix, 0).UTC(),
		Capabilities: capabilities,
	}, nil
}

func malformed(segment string, err error) error {
	return apperrors.Wrap(domain.ErrMalformedToken, fmt.Sprintf("invalid %s: %v", segment, err))
}
