package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/biodidseq/bioseq/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("NilError", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("WrapsAsInvalidInput", func(t *testing.T) {
		err := WrapValidationError(errors.New("audience_did: must be a valid DID"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "audience_did")
	})
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid", "researcher@example.org", false},
		{"ValidWithPlus", "a.b+c@lab.example.org", false},
		{"MissingAt", "researcher.example.org", true},
		{"MissingTLD", "researcher@example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email.Validate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDIDFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ValidBioDID", "did:bio:0196a1b2-0000-7000-8000-000000000001", false},
		{"ValidKeyDID", "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK", false},
		{"MissingScheme", "bio:12345", true},
		{"MissingID", "did:bio:", true},
		{"UppercaseMethod", "did:BIO:12345", true},
		// String rules skip empty values. Request fields pair DIDFormat with
		// validation.Required to reject them.
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DIDFormat.Validate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("did:bio:x"))
	assert.Error(t, NoWhitespace.Validate(" did:bio:x"))
	assert.Error(t, NoWhitespace.Validate("did:bio:x "))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("title"))
	// Empty strings are skipped by string rules; only whitespace-only input
	// trips NotBlank on its own.
	assert.NoError(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestRequiredPairing(t *testing.T) {
	// Empty input is rejected once Required joins the rule chain, which is
	// how every request field applies these rules.
	assert.Error(t, validation.Validate("", validation.Required, DIDFormat))
	assert.Error(t, validation.Validate("", validation.Required, NotBlank))
	assert.NoError(t, validation.Validate("did:bio:x", validation.Required, DIDFormat, NotBlank))
}
