// Package tokens derives the three public identifiers every ceremony
// produces from its pad: the conversation identifier used to address a
// conversation at the relay, the auth token used as a bearer credential
// for ordinary operations, and the burn token used as a bearer credential
// for the one-shot destroy operation. Each is derived from its own
// disjoint 32/64/64-byte slice of the pad's first 160 bytes (0..32 for
// the conversation ID, 32..96 for the auth token, 96..160 for the burn
// token) using a deterministic, non-cryptographic mixing function, each
// with its own domain-separation byte besides, so that knowing one
// identifier — or even the exact pad bytes it was derived from — gives
// no shortcut to the others.
//
// The mixing function is not collision-resistant and is not a substitute
// for a cryptographic KDF; it exists because these identifiers only need
// to be unpredictable to someone who never saw the pad, not to resist a
// dedicated collision search. ConversationID, AuthToken and BurnToken are
// the default, wire-compatible entry points. DeriveHKDF is a separate, explicitly opt-in variant built
// on a real KDF for deployments that accept breaking compatibility with
// the reference mixing function in exchange for stronger guarantees under
// partial pad disclosure (see DESIGN.md's resolution of that Open
// Question).
package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"math/bits"

	"golang.org/x/crypto/hkdf"

	"github.com/ashmsg/ash/asherr"
)

// MinPadSize is the minimum pad length, in bytes, from which tokens can be
// derived. Ceremony pads are always at least this large in practice
// (the smallest valid pad/pad.ValidSizes entry is 32 KiB), but the check
// exists so the derivation functions never read out of bounds if handed a
// short or malformed buffer directly.
const MinPadSize = 160

// Byte ranges within the pad's first MinPadSize bytes that each
// identifier is derived from. The three ranges are disjoint: no byte of
// the pad ever feeds more than one identifier.
var (
	conversationIDRange = [2]int{0, 32}
	authTokenRange      = [2]int{32, 96}
	burnTokenRange      = [2]int{96, 160}
)

// Domain-separation bytes folded into the mixing function. With disjoint
// input ranges these aren't strictly required to prevent collisions
// between the three identifiers, but they're kept so the mixing function
// never produces the same output for two different purposes even if two
// ranges were ever widened to overlap.
const (
	domainConversation byte = 0xC3
	domainAuth         byte = 0xA1
	domainBurn         byte = 0xB2
)

// mixBytes XOR-folds input down to 32 bytes, folds in the domain byte,
// then runs four rounds of simultaneous rotate-and-add diffusion. Each
// round computes every output byte from the *previous* round's full
// state snapshot, so byte i's new value depends on its left and right
// neighbors as they stood before this round started, not as they're
// updated mid-round.
func mixBytes(input []byte, domain byte) [32]byte {
	var state [32]byte
	for i, b := range input {
		state[i%32] ^= b
	}
	state[0] ^= domain

	for round := 0; round < 4; round++ {
		prev := state
		for i := 0; i < 32; i++ {
			left := prev[(i+31)%32]
			right := prev[(i+1)%32]
			state[i] = state[i] + bits.RotateLeft8(left, 3) + bits.RotateLeft8(right, -5)
		}
	}
	return state
}

func deriveHex(padBytes []byte, rng [2]int, domain byte) (string, error) {
	if len(padBytes) < MinPadSize {
		return "", asherr.ErrPadTooSmallForTokens
	}
	out := mixBytes(padBytes[rng[0]:rng[1]], domain)
	return hex.EncodeToString(out[:]), nil
}

// ConversationID derives the conversation identifier from bytes 0..32 of
// padBytes.
func ConversationID(padBytes []byte) (string, error) {
	return deriveHex(padBytes, conversationIDRange, domainConversation)
}

// AuthToken derives the bearer auth token from bytes 32..96 of padBytes.
func AuthToken(padBytes []byte) (string, error) {
	return deriveHex(padBytes, authTokenRange, domainAuth)
}

// BurnToken derives the bearer burn token from bytes 96..160 of padBytes.
func BurnToken(padBytes []byte) (string, error) {
	return deriveHex(padBytes, burnTokenRange, domainBurn)
}

// DeriveHKDF derives a 32-byte hex token from the first MinPadSize bytes
// of padBytes using HKDF-SHA256 (extract with no salt, then expand) with
// the given info string as domain separation, in place of the default
// mixing function. It is not wire-compatible with the outputs of
// ConversationID/AuthToken/BurnToken for the same pad, and
// exists only for deployments that explicitly opt into it.
func DeriveHKDF(padBytes []byte, info string) (string, error) {
	if len(padBytes) < MinPadSize {
		return "", asherr.ErrPadTooSmallForTokens
	}
	r := hkdf.New(sha256.New, padBytes[:MinPadSize], nil, []byte(info))
	out := make([]byte, 32)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}
