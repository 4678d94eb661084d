// Package message implements the authenticated MessageFrame wire format:
// one encrypted chat message, tagged with a Wegman-Carter MAC computed
// over its header and ciphertext together.
//
// Open always authenticates before it decrypts. A forged or corrupted
// frame never reaches the OTP decryption step, let alone returns partial
// plaintext: Decode only validates wire structure (lengths, version,
// type), and it is deliberately the only function in this package that
// does not check the tag, so that callers can inspect a frame's shape
// (e.g. to log a malformed-frame event) without being tempted to treat an
// unauthenticated decode as a verified message.
package message

import (
	"encoding/binary"

	"github.com/ashmsg/ash/asherr"
	"github.com/ashmsg/ash/mac"
	"github.com/ashmsg/ash/otp"
)

// Version is the only MessageFrame wire version this implementation
// understands.
const Version = 1

// MsgType identifies the payload kind carried in a MessageFrame.
type MsgType byte

const (
	TypeText     MsgType = 0x01
	TypeLocation MsgType = 0x02
)

// HeaderSize is the size of the version+type+length header authenticated
// (but not encrypted) by every frame.
const HeaderSize = 4

// TagSize is the size of the trailing MAC tag.
const TagSize = mac.TagSize

// AuthOverhead is the number of pad bytes a message's authentication key
// consumes, independent of its ciphertext length.
const AuthOverhead = mac.KeySize

// MaxCiphertextLen is the largest ciphertext a frame can carry (the wire
// length field is a 16-bit unsigned integer).
const MaxCiphertextLen = 65535

// Frame is a decoded MessageFrame.
type Frame struct {
	Version    byte
	Type       MsgType
	Ciphertext []byte
	Tag        [TagSize]byte
}

func (f Frame) header() []byte {
	var h [HeaderSize]byte
	h[0] = f.Version
	h[1] = byte(f.Type)
	binary.BigEndian.PutUint16(h[2:4], uint16(len(f.Ciphertext)))
	return h[:]
}

// Encode serializes f as version(1) || type(1) || length(2 BE) ||
// ciphertext || tag(32).
func Encode(f Frame) []byte {
	h := f.header()
	buf := make([]byte, 0, len(h)+len(f.Ciphertext)+TagSize)
	buf = append(buf, h...)
	buf = append(buf, f.Ciphertext...)
	buf = append(buf, f.Tag[:]...)
	return buf
}

// Decode parses wire structure only: version, type, and declared-vs-actual
// length. It does not check the MAC tag; use Open to get an authenticated
// result.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < HeaderSize+TagSize {
		return Frame{}, asherr.FrameTooShortError{Size: len(buf), Minimum: HeaderSize + TagSize}
	}
	version := buf[0]
	if version != Version {
		return Frame{}, asherr.ErrUnsupportedFrameVersion
	}
	typ := MsgType(buf[1])
	if typ != TypeText && typ != TypeLocation {
		return Frame{}, asherr.ErrInvalidMessageType
	}
	declared := binary.BigEndian.Uint16(buf[2:4])
	body := buf[HeaderSize : len(buf)-TagSize]
	if int(declared) != len(body) {
		return Frame{}, asherr.FrameLengthMismatchError{Declared: int(declared), Actual: len(body)}
	}

	var tag [TagSize]byte
	copy(tag[:], buf[len(buf)-TagSize:])
	return Frame{
		Version:    version,
		Type:       typ,
		Ciphertext: append([]byte(nil), body...),
		Tag:        tag,
	}, nil
}

// Seal encrypts plaintext under otpKey and authenticates the resulting
// frame under authKey, returning the encoded wire bytes. len(otpKey) must
// equal len(plaintext); authKey is consumed from AuthOverhead bytes of
// pad, otpKey from len(plaintext) bytes — AuthOverhead+len(plaintext) pad
// bytes total per message.
func Seal(typ MsgType, plaintext, otpKey []byte, authKey mac.AuthKey) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, asherr.ErrEmptyPayload
	}
	if len(plaintext) > MaxCiphertextLen {
		return nil, asherr.PayloadTooLargeError{Size: len(plaintext), Max: MaxCiphertextLen}
	}
	ciphertext, err := otp.Encrypt(plaintext, otpKey)
	if err != nil {
		return nil, err
	}
	f := Frame{Version: Version, Type: typ, Ciphertext: ciphertext}
	tag := mac.Tag(authKey, f.header(), ciphertext)
	f.Tag = tag
	return Encode(f), nil
}

// Open decodes, authenticates, and decrypts a wire frame, in that order.
// A tampered frame anywhere — header, ciphertext, or tag — is rejected
// with asherr.ErrAuthenticationFailed before any OTP decryption happens.
func Open(buf []byte, otpKey []byte, authKey mac.AuthKey) (MsgType, []byte, error) {
	f, err := Decode(buf)
	if err != nil {
		return 0, nil, err
	}
	if !mac.Verify(authKey, f.header(), f.Ciphertext, f.Tag) {
		return 0, nil, asherr.ErrAuthenticationFailed
	}
	plaintext, err := otp.Decrypt(f.Ciphertext, otpKey)
	if err != nil {
		return 0, nil, err
	}
	return f.Type, plaintext, nil
}
