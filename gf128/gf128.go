// Package gf128 implements constant-time arithmetic over GF(2^128) using the
// GHASH reduction polynomial x^128 + x^7 + x^2 + x + 1.
//
// Elements are 16-byte big-endian bit strings, least-significant bit first
// within the polynomial representation (the same convention GHASH uses).
// Multiplication never branches on secret data: every conditional fold in
// the shift-and-add loop is an arithmetic mask derived from a single bit,
// not an if statement.
package gf128

// Element is one element of GF(2^128), stored as 16 bytes.
type Element [16]byte

// reductionByte is the top byte of R = 0xE1 << 120 folded into a single
// byte XOR during the reduction step of the shift (see Mul).
const reductionByte = 0xE1

// Add returns x+y, which in GF(2^n) is plain XOR.
func Add(x, y Element) Element {
	var z Element
	for i := range z {
		z[i] = x[i] ^ y[i]
	}
	return z
}

// Mul returns x*y in GF(2^128) using constant-time shift-and-add
// multiplication with the GHASH reduction polynomial.
//
// No branch in this function depends on the value of a field element: each
// bit of x selects whether v is folded into the accumulator via an
// arithmetic 0x00/0xFF mask, and the reduction fold after each shift is
// applied the same way.
func Mul(x, y Element) Element {
	var z, v Element
	v = y

	for i := 0; i < 128; i++ {
		byteIdx := i / 8
		bitIdx := 7 - uint(i%8)
		bit := (x[byteIdx] >> bitIdx) & 1
		mask := byte(0) - bit // 0x00 if bit==0, 0xFF if bit==1

		for j := range z {
			z[j] ^= v[j] & mask
		}

		lsb := v[15] & 1
		lsbMask := byte(0) - lsb

		var carry byte
		for j := range v {
			next := v[j] & 1
			v[j] = (v[j] >> 1) | (carry << 7)
			carry = next
		}
		v[0] ^= reductionByte & lsbMask
	}

	return z
}

// Zero returns the additive identity.
func Zero() Element {
	return Element{}
}

// One returns the multiplicative identity (the field element with only its
// top bit set, per the GHASH bit convention).
func One() Element {
	var e Element
	e[0] = 0x80
	return e
}

// Equal reports whether x and y are the same field element. This is not
// constant-time; callers comparing secret-derived elements for
// authentication purposes must use crypto/subtle instead.
func Equal(x, y Element) bool {
	return x == y
}
