// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package signer produces and verifies HMAC-signed opaque strings. The scope
// string is mixed into the MAC, so a value signed for one scope never
// verifies under another.
package signer

import (
	"errors"

	"github.com/gorilla/securecookie"
)

// ErrInvalid is returned for any string that does not verify: tampered,
// truncated, or signed for a different scope.
var ErrInvalid = errors.New("invalid signed value")

// Signer signs and verifies opaque payloads with a shared secret key.
type Signer struct {
	codec *securecookie.SecureCookie
}

// New creates a Signer from the secret key material. The signature layer
// enforces no expiry of its own; token expiry lives in the database, which
// is the single source of truth for it.
func New(secretKey string) *Signer {
	codec := securecookie.New([]byte(secretKey), nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(0) // disable the signature-layer timestamp check
	return &Signer{codec: codec}
}

// Sign encodes payload into a signed opaque string bound to scope.
func (s *Signer) Sign(scope string, payload any) (string, error) {
	return s.codec.Encode(scope, payload)
}

// Verify decodes a signed string into dst. Any failure, including a scope
// mismatch, collapses to ErrInvalid; callers get no detail about why.
func (s *Signer) Verify(scope, encoded string, dst any) error {
	if err := s.codec.Decode(scope, encoded, dst); err != nil {
		return ErrInvalid
	}
	return nil
}
