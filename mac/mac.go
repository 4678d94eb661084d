// Package mac implements the Wegman-Carter authenticator used to produce
// the 32-byte tag on every MessageFrame. It combines two independent
// polyhash.Hash outputs, each masked with one-time-pad material, so that
// forging a tag requires breaking two unrelated universal-hash instances at
// once: with a fresh, uniformly random key used exactly once, the forgery
// probability is bounded by 2^-256.
//
// The single requirement that makes this unforgeable is that r1, r2, s1,
// s2 are never reused across two different messages. Reusing the key
// material is the one mistake that destroys the security of the whole
// construction; nothing in this package can detect reuse on its own, so
// callers (package pad) are responsible for handing out each AuthKey
// exactly once.
package mac

import (
	"crypto/subtle"

	"github.com/ashmsg/ash/polyhash"
)

// KeySize is the size in bytes of an AuthKey (r1, r2, s1, s2, 16 bytes each).
const KeySize = 64

// TagSize is the size in bytes of a MAC tag (two 16-byte masked hashes).
const TagSize = 32

// AuthKey is the single-use key material for one authenticated message.
type AuthKey struct {
	R1 [16]byte
	R2 [16]byte
	S1 [16]byte
	S2 [16]byte
}

// ParseAuthKey splits a 64-byte key slice into an AuthKey. It panics if key
// is not exactly KeySize bytes; callers that accept untrusted lengths must
// check len(key) == KeySize first.
func ParseAuthKey(key []byte) AuthKey {
	if len(key) != KeySize {
		panic("mac: AuthKey must be exactly 64 bytes")
	}
	var k AuthKey
	copy(k.R1[:], key[0:16])
	copy(k.R2[:], key[16:32])
	copy(k.S1[:], key[32:48])
	copy(k.S2[:], key[48:64])
	return k
}

// Tag computes the 32-byte authentication tag over header and body using
// the given single-use key.
func Tag(key AuthKey, header, body []byte) [TagSize]byte {
	h1 := polyhash.Sum2(key.R1, header, body)
	h2 := polyhash.Sum2(key.R2, header, body)

	var tag [TagSize]byte
	for i := 0; i < 16; i++ {
		tag[i] = h1[i] ^ key.S1[i]
		tag[16+i] = h2[i] ^ key.S2[i]
	}
	return tag
}

// Verify reports whether tag authenticates header||body under key, in
// constant time with respect to the tag contents. A mismatch at any byte
// never causes an early return.
func Verify(key AuthKey, header, body []byte, tag [TagSize]byte) bool {
	want := Tag(key, header, body)
	return subtle.ConstantTimeCompare(want[:], tag[:]) == 1
}
