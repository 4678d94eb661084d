// Package passphrase provides optional, spoken-aloud key derivation for
// encrypting QR ceremony frames. It protects against shoulder-surfing
// during the ceremony, not against a capable adversary: it is CRC-32
// chaining, not a cryptographic KDF. The frame header (index, total) is
// never covered by it; only the payload is XORed with the derived
// keystream.
package passphrase

import (
	"encoding/binary"

	"github.com/ashmsg/ash/asherr"
	"github.com/ashmsg/ash/checksum"
	"golang.org/x/crypto/pbkdf2"

	"crypto/sha256"
)

// MinPassphraseLength and MaxPassphraseLength bound a spoken passphrase.
const (
	MinPassphraseLength = 4
	MaxPassphraseLength = 64
)

// pbkdf2Iterations and strongKeyLen are used only by DeriveStrong, the
// opt-in variant for deployments that want a real KDF instead of the
// CRC-chain keystream.
const (
	pbkdf2Iterations = 100_000
	strongKeyLen     = 32
)

// DeriveKey expands passphrase and frameIndex into a length-byte
// keystream via CRC-32 chaining: the seed is CRC(passphrase||
// frame_index_BE), and each subsequent block is
// CRC(state_BE||counter_BE||passphrase), contributing its 4 big-endian
// bytes to the output until length bytes have been produced.
func DeriveKey(passphrase string, frameIndex uint16, length int) []byte {
	if length == 0 {
		return nil
	}

	passphraseBytes := []byte(passphrase)
	seedData := make([]byte, 0, len(passphraseBytes)+2)
	seedData = append(seedData, passphraseBytes...)
	var idxBuf [2]byte
	binary.BigEndian.PutUint16(idxBuf[:], frameIndex)
	seedData = append(seedData, idxBuf[:]...)

	state := checksum.Sum(seedData)

	key := make([]byte, 0, length)
	blockInput := make([]byte, 8+len(passphraseBytes))
	var counter uint32
	for len(key) < length {
		binary.BigEndian.PutUint32(blockInput[0:4], state)
		binary.BigEndian.PutUint32(blockInput[4:8], counter)
		copy(blockInput[8:], passphraseBytes)

		state = checksum.Sum(blockInput)

		var stateBuf [4]byte
		binary.BigEndian.PutUint32(stateBuf[:], state)
		for _, b := range stateBuf {
			if len(key) >= length {
				break
			}
			key = append(key, b)
		}
		counter++
	}
	return key
}

// XorBytes XORs data with key, returning asherr.LengthMismatchError if
// their lengths differ.
func XorBytes(data, key []byte) ([]byte, error) {
	if len(data) != len(key) {
		return nil, asherr.LengthMismatchError{PadLen: len(key), DataLen: len(data)}
	}
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i]
	}
	return out, nil
}

// EncryptPayload derives a keystream sized to payload and XORs it in.
func EncryptPayload(passphrase string, frameIndex uint16, payload []byte) []byte {
	key := DeriveKey(passphrase, frameIndex, len(payload))
	out, _ := XorBytes(payload, key) // lengths match by construction
	return out
}

// DecryptPayload is identical to EncryptPayload: XOR is its own
// inverse.
func DecryptPayload(passphrase string, frameIndex uint16, encryptedPayload []byte) []byte {
	return EncryptPayload(passphrase, frameIndex, encryptedPayload)
}

// ValidatePassphrase checks length bounds and that every rune is
// printable ASCII, since the passphrase is meant to be spoken aloud and
// typed back in, not copy-pasted.
func ValidatePassphrase(passphrase string) error {
	runes := []rune(passphrase)
	if len(runes) < MinPassphraseLength || len(runes) > MaxPassphraseLength {
		return asherr.InvalidEntropySizeError{Size: len(runes), Expected: []int{MinPassphraseLength, MaxPassphraseLength}}
	}
	for _, r := range runes {
		if r > 0x7E || r < 0x20 {
			return asherr.ErrInvalidHeader
		}
	}
	return nil
}

// DeriveStrong is an explicit opt-in alternative to DeriveKey for
// deployments that want PBKDF2-HMAC-SHA256 rather than CRC-32 chaining.
// It is not wire-compatible with DeriveKey and is never selected by
// default; a caller must choose it deliberately, since it changes the
// security properties of frame encryption without changing the wire
// format it's layered over.
func DeriveStrong(passphrase string, salt []byte, length int) []byte {
	if length == 0 {
		return nil
	}
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, length, sha256.New)
}
