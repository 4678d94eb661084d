// Package mnemonic renders a human-verifiable summary of a ceremony pad as
// six words drawn from a fixed 512-word list, so two devices that just
// transferred a pad can read a short phrase aloud to each other and
// confirm they received the same bytes without comparing raw hex.
//
// Each word carries 9 bits (512 = 2^9), read most-significant-bit-first
// from the pad's byte stream. If the pad is shorter than the 54 bits six
// words need (it never is in practice — the smallest valid pad size is far
// larger — but the bit reader is defensive regardless), the bit stream
// wraps back around to the start of the pad rather than failing.
package mnemonic

import "github.com/ashmsg/ash/asherr"

// WordCount is the number of words in a ceremony mnemonic.
const WordCount = 6

// BitsPerWord is the number of pad bits each word encodes.
const BitsPerWord = 9

// bitReader reads bits most-significant-bit-first from data, cycling back
// to the start once it runs past the end.
type bitReader struct {
	data []byte
	pos  int // bit position, unbounded; wrapped via modulo on read
}

func (r *bitReader) next() int {
	bitLen := len(r.data) * 8
	bytePos := (r.pos / 8) % len(r.data)
	bitInByte := 7 - uint(r.pos%8)
	bit := int((r.data[bytePos] >> bitInByte) & 1)
	r.pos = (r.pos + 1) % bitLen
	return bit
}

// Generate returns the WordCount-word mnemonic for padBytes.
func Generate(padBytes []byte) ([]string, error) {
	if len(padBytes) == 0 {
		return nil, asherr.ErrEmptyPayload
	}
	r := &bitReader{data: padBytes}
	result := make([]string, WordCount)
	for w := 0; w < WordCount; w++ {
		idx := 0
		for b := 0; b < BitsPerWord; b++ {
			idx = (idx << 1) | r.next()
		}
		result[w] = words[idx]
	}
	return result, nil
}

// Indices converts a mnemonic back into its 9-bit word indices, validating
// that every word is a member of the word list.
func Indices(mnemonicWords []string) ([]int, error) {
	if len(mnemonicWords) != WordCount {
		return nil, asherr.FrameCountMismatchError{Expected: WordCount, Actual: len(mnemonicWords)}
	}
	lookup := wordIndex()
	out := make([]int, WordCount)
	for i, w := range mnemonicWords {
		idx, ok := lookup[w]
		if !ok {
			return nil, asherr.ErrUnknownMnemonicWord
		}
		out[i] = idx
	}
	return out, nil
}

var wordIndexCache map[string]int

func wordIndex() map[string]int {
	if wordIndexCache != nil {
		return wordIndexCache
	}
	m := make(map[string]int, len(words))
	for i, w := range words {
		m[w] = i
	}
	wordIndexCache = m
	return m
}

// Verify reports whether mnemonicWords is the mnemonic Generate would have
// produced for padBytes, i.e. whether the two devices in a ceremony
// received the same pad bytes.
func Verify(padBytes []byte, mnemonicWords []string) (bool, error) {
	want, err := Generate(padBytes)
	if err != nil {
		return false, err
	}
	if len(mnemonicWords) != len(want) {
		return false, nil
	}
	for i := range want {
		if want[i] != mnemonicWords[i] {
			return false, nil
		}
	}
	return true, nil
}
