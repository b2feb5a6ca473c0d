// Package sessions holds the single refresh-token slot per identity.
//
// A session is the most recently issued refresh token for an identity. Only
// one is active at a time: issuing a new one (login or refresh) overwrites
// the slot and implicitly revokes the previous token.
package sessions

import "context"

// SingleActiveSession documents the slot policy: logging in on a second
// device invalidates the first device's refresh token.
const SingleActiveSession = true

// Store is the session slot keyed by identity id.
type Store interface {
	// Set overwrites the slot with token.
	Set(ctx context.Context, identityID, token string) error
	// Get returns the stored token and whether one is present.
	Get(ctx context.Context, identityID string) (string, bool, error)
	// Rotate replaces expected with next atomically. It fails with
	// common.ErrStaleSession when the slot no longer holds expected.
	Rotate(ctx context.Context, identityID, expected, next string) error
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, identityID string) error
}
