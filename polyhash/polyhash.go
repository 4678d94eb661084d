// Package polyhash implements a Horner's-method universal hash over
// GF(2^128), the same construction GHASH uses: each 16-byte block is added
// into an accumulator and the accumulator is then multiplied by a fixed
// key, block by block, and a trailing length block binds the exact byte
// lengths of the hashed segments.
//
// The hash supports two independently zero-padded segments — a header and
// a body — matching GHASH's treatment of associated data and ciphertext as
// separate padded regions ending in a length block that encodes both bit
// lengths. This is the shape the Wegman-Carter MAC in package mac needs to
// authenticate a message header together with its ciphertext.
package polyhash

import (
	"encoding/binary"

	"github.com/ashmsg/ash/gf128"
)

// Hash accumulates a polynomial hash over one header segment followed by
// one body segment. It is single-use: create a new Hash per message.
type Hash struct {
	key        gf128.Element
	acc        gf128.Element
	pending    [16]byte
	pendingLen int
	headerBits uint64
	bodyBits   uint64
	headerDone bool
	summed     bool
}

// New returns a Hash keyed by key. The key must never be reused across two
// different messages; reuse is what breaks Wegman-Carter unforgeability.
func New(key [16]byte) *Hash {
	return &Hash{key: gf128.Element(key)}
}

func (h *Hash) absorbBlock(b [16]byte) {
	h.acc = gf128.Add(h.acc, gf128.Element(b))
	h.acc = gf128.Mul(h.acc, h.key)
}

func (h *Hash) absorb(p []byte) {
	for len(p) > 0 {
		n := copy(h.pending[h.pendingLen:], p)
		h.pendingLen += n
		p = p[n:]
		if h.pendingLen == 16 {
			h.absorbBlock(h.pending)
			h.pending = [16]byte{}
			h.pendingLen = 0
		}
	}
}

func (h *Hash) flushPending() {
	if h.pendingLen > 0 {
		h.absorbBlock(h.pending)
		h.pending = [16]byte{}
		h.pendingLen = 0
	}
}

// WriteHeader absorbs header (associated-data) bytes. All header writes
// must happen before the first Write call; the header segment is zero
// padded to a block boundary once the body segment begins.
func (h *Hash) WriteHeader(p []byte) {
	if h.headerDone {
		panic("polyhash: WriteHeader called after Write")
	}
	h.headerBits += uint64(len(p)) * 8
	h.absorb(p)
}

// Write absorbs body bytes. It implements io.Writer's signature but never
// returns an error.
func (h *Hash) Write(p []byte) (int, error) {
	if !h.headerDone {
		h.flushPending()
		h.headerDone = true
	}
	h.bodyBits += uint64(len(p)) * 8
	h.absorb(p)
	return len(p), nil
}

// Sum finalizes the hash: it pads the body segment, appends a length block
// encoding the bit lengths of the header and body segments as two
// big-endian uint64s, and returns the resulting 16-byte field element. Sum
// must be called exactly once; calling it again panics, since the
// underlying accumulator state has already been consumed by the length
// block fold.
func (h *Hash) Sum() [16]byte {
	if h.summed {
		panic("polyhash: Sum called twice")
	}
	h.summed = true
	if !h.headerDone {
		h.flushPending()
		h.headerDone = true
	}
	h.flushPending()

	var lenBlock [16]byte
	binary.BigEndian.PutUint64(lenBlock[0:8], h.headerBits)
	binary.BigEndian.PutUint64(lenBlock[8:16], h.bodyBits)
	h.absorbBlock(lenBlock)

	return h.acc
}

// Sum2 is a one-shot helper equivalent to:
//
//	h := New(key)
//	h.WriteHeader(header)
//	h.Write(body)
//	return h.Sum()
func Sum2(key [16]byte, header, body []byte) [16]byte {
	h := New(key)
	h.WriteHeader(header)
	h.Write(body)
	return h.Sum()
}
