// Package auth extracts and verifies the bearer tokens carried on
// every relay request but GET /health and POST /v1/conversations.
// Tokens themselves are ceremony-derived pad material the relay never
// sees in the clear beyond this one request; the store holds only
// SHA-256 hashes, so a compromised relay cannot forge or replay a
// token it never observed.
package auth

import (
	"strings"

	"github.com/ashmsg/ash/asherr"
	"github.com/ashmsg/ash/relay/store"
)

// ExtractBearerToken strips the "Bearer " (or "bearer ") prefix from an
// Authorization header value. It returns false if the header does not
// carry a bearer token.
func ExtractBearerToken(authorization string) (string, bool) {
	const prefixUpper = "Bearer "
	const prefixLower = "bearer "
	if strings.HasPrefix(authorization, prefixUpper) {
		return authorization[len(prefixUpper):], true
	}
	if strings.HasPrefix(authorization, prefixLower) {
		return authorization[len(prefixLower):], true
	}
	return "", false
}

// VerifyAuth checks the Authorization header against conversationID's
// stored auth token hash. An unknown conversation ID reports
// asherr.ErrConversationNotFound; a present conversation with a wrong
// or missing token reports asherr.ErrUnauthorized or
// asherr.ErrMissingHeader. Callers that want to avoid leaking whether
// a conversation exists to an unauthenticated caller should map
// ErrConversationNotFound to the same response as ErrUnauthorized at
// the HTTP layer.
func VerifyAuth(s *store.Store, conversationID, authorization string) error {
	if authorization == "" {
		return asherr.ErrMissingHeader
	}
	token, ok := ExtractBearerToken(authorization)
	if !ok {
		return asherr.ErrInvalidHeader
	}
	if !s.IsRegistered(conversationID) {
		return asherr.ErrConversationNotFound
	}
	if !s.VerifyAuthToken(conversationID, token) {
		return asherr.ErrUnauthorized
	}
	s.Touch(conversationID)
	return nil
}

// VerifyBurnAuth is VerifyAuth's counterpart for the burn operation: it
// checks the burn token hash rather than the auth token hash, since
// spec.md requires the two to be verified independently.
func VerifyBurnAuth(s *store.Store, conversationID, authorization string) error {
	if authorization == "" {
		return asherr.ErrMissingHeader
	}
	token, ok := ExtractBearerToken(authorization)
	if !ok {
		return asherr.ErrInvalidHeader
	}
	if !s.IsRegistered(conversationID) {
		return asherr.ErrConversationNotFound
	}
	if !s.VerifyBurnToken(conversationID, token) {
		return asherr.ErrUnauthorized
	}
	return nil
}
