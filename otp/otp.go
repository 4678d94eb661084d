// Package otp implements the one-time-pad XOR cipher: encryption and
// decryption are the same involutive operation, keyed by a slice of pad
// bytes exactly as long as the plaintext/ciphertext.
package otp

import "github.com/ashmsg/ash/asherr"

// Xor XORs data with key byte-for-byte, returning a new slice. It returns
// asherr.LengthMismatchError if the lengths differ; a one-time pad cipher
// cannot stretch or reuse key material, so any mismatch is a caller bug,
// not a recoverable condition.
func Xor(data, key []byte) ([]byte, error) {
	if len(data) != len(key) {
		return nil, asherr.LengthMismatchError{PadLen: len(key), DataLen: len(data)}
	}
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i]
	}
	return out, nil
}

// Encrypt XORs plaintext with key. It is identical to Decrypt: the
// operation is its own inverse.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	return Xor(plaintext, key)
}

// Decrypt XORs ciphertext with key. It is identical to Encrypt.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	return Xor(ciphertext, key)
}
