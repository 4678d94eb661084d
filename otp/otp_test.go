package otp

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/ashmsg/ash/asherr"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return b
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key := randomBytes(t, 64)
	plaintext := randomBytes(t, 64)

	ciphertext, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatalf("ciphertext equals plaintext")
	}

	got, err := Decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("decrypt did not recover plaintext")
	}
}

func TestXorIsInvolution(t *testing.T) {
	key := randomBytes(t, 32)
	data := randomBytes(t, 32)

	once, err := Xor(data, key)
	if err != nil {
		t.Fatalf("Xor: %v", err)
	}
	twice, err := Xor(once, key)
	if err != nil {
		t.Fatalf("Xor: %v", err)
	}
	if !bytes.Equal(twice, data) {
		t.Fatalf("double XOR did not recover original data")
	}
}

func TestXorRejectsLengthMismatch(t *testing.T) {
	_, err := Xor(make([]byte, 10), make([]byte, 9))
	if err == nil {
		t.Fatalf("expected error for mismatched lengths")
	}
	var lenErr asherr.LengthMismatchError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected LengthMismatchError, got %T", err)
	}
	if lenErr.DataLen != 10 || lenErr.PadLen != 9 {
		t.Fatalf("unexpected fields: %+v", lenErr)
	}
}

func TestXorEmptyInputs(t *testing.T) {
	got, err := Xor(nil, nil)
	if err != nil {
		t.Fatalf("Xor: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestXorDoesNotMutateInputs(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	key := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	dataCopy := append([]byte(nil), data...)
	keyCopy := append([]byte(nil), key...)

	if _, err := Xor(data, key); err != nil {
		t.Fatalf("Xor: %v", err)
	}
	if !bytes.Equal(data, dataCopy) || !bytes.Equal(key, keyCopy) {
		t.Fatalf("Xor mutated its inputs")
	}
}
