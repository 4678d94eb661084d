// Package checksum provides the CRC-32 (ISO 3309 / IEEE 802.3, reflected
// polynomial 0xEDB88320) checksum used on every framing and erasure-coding
// wire block. The original core crate hand-rolls this table to avoid an
// external dependency in a no_std-friendly crate; Go's own hash/crc32
// ships the identical reflected-polynomial IEEE table, so this package is
// a thin, explicit wrapper around it rather than a hand duplicated table.
package checksum

import "hash/crc32"

// Sum returns the CRC-32 (IEEE) checksum of data.
func Sum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Table exposes the reflected IEEE polynomial table for callers that want
// to stream a checksum incrementally (e.g. wire decoders validating a
// block before copying it out of a read buffer).
var Table = crc32.IEEETable
