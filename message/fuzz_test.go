package message

import (
	"testing"

	"github.com/ashmsg/ash/mac"
)

func FuzzDecode(f *testing.F) {
	// Seed: a valid, fully sealed frame.
	var authKey mac.AuthKey
	sealed, _ := Seal(TypeText, []byte("hello"), make([]byte, 5), authKey)
	f.Add(sealed)

	// Seed: valid frame, TypeLocation.
	sealed2, _ := Seal(TypeLocation, []byte("loc"), make([]byte, 3), authKey)
	f.Add(sealed2)

	// Seed: too short to contain a header+tag.
	f.Add([]byte{0x01, 0x01})

	// Seed: empty.
	f.Add([]byte{})

	// Seed: unsupported version byte.
	badVersion := append([]byte(nil), sealed...)
	badVersion[0] = 0xFF
	f.Add(badVersion)

	// Seed: invalid message type byte.
	badType := append([]byte(nil), sealed...)
	badType[1] = 0xFF
	f.Add(badType)

	// Seed: declared length disagrees with actual ciphertext length.
	badLen := append([]byte(nil), sealed...)
	badLen[2] ^= 0xFF
	f.Add(badLen)

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic on any input; Decode performs no authentication.
		Decode(data)
	})
}

func FuzzOpen(f *testing.F) {
	var authKey mac.AuthKey
	otpKey := make([]byte, 5)
	sealed, _ := Seal(TypeText, []byte("hello"), otpKey, authKey)
	f.Add(sealed)
	f.Add([]byte{})

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0x01
	f.Add(tampered)

	f.Fuzz(func(t *testing.T, data []byte) {
		// Must not panic on any input under this fixed otpKey/authKey.
		Open(data, otpKey, authKey)
	})
}
