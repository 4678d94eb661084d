// Package frame implements the simple fixed-size chunk framing used to
// carry a ceremony/fountain payload across a sequence of QR codes: each
// frame is a small, independently checksummed chunk tagged with its index
// and the total frame count, so a receiver can detect missing or
// duplicated chunks and reassemble the original bytes once every index is
// present. This is distinct from package message's MessageFrame, which
// frames one already-encrypted chat message rather than a chunk of a
// larger transfer.
package frame

import (
	"encoding/binary"

	"github.com/ashmsg/ash/asherr"
	"github.com/ashmsg/ash/checksum"
)

// MaxPayload is the largest payload a single frame may carry.
const MaxPayload = 1000

// HeaderSize is the size of the index+total header.
const HeaderSize = 4

// TrailerSize is the size of the trailing CRC-32.
const TrailerSize = 4

// MinFrameSize is the smallest legal encoded frame (empty payload).
const MinFrameSize = HeaderSize + TrailerSize

// Frame is one chunk of a larger transfer.
type Frame struct {
	Index   uint16
	Total   uint16
	Payload []byte
}

// Encode serializes f as index(2 BE) || total(2 BE) || payload || crc32(4 BE).
func Encode(f Frame) []byte {
	buf := make([]byte, HeaderSize+len(f.Payload)+TrailerSize)
	binary.BigEndian.PutUint16(buf[0:2], f.Index)
	binary.BigEndian.PutUint16(buf[2:4], f.Total)
	copy(buf[4:4+len(f.Payload)], f.Payload)
	crc := checksum.Sum(buf[:4+len(f.Payload)])
	binary.BigEndian.PutUint32(buf[4+len(f.Payload):], crc)
	return buf
}

// Decode parses and checksum-validates a single wire frame.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < MinFrameSize {
		return Frame{}, asherr.FrameTooShortError{Size: len(buf), Minimum: MinFrameSize}
	}
	payloadLen := len(buf) - HeaderSize - TrailerSize
	gotCRC := binary.BigEndian.Uint32(buf[len(buf)-TrailerSize:])
	wantCRC := checksum.Sum(buf[:len(buf)-TrailerSize])
	if gotCRC != wantCRC {
		return Frame{}, asherr.CrcMismatchError{Expected: wantCRC, Actual: gotCRC}
	}

	total := binary.BigEndian.Uint16(buf[2:4])
	if total == 0 {
		return Frame{}, asherr.ErrZeroTotalFrames
	}
	index := binary.BigEndian.Uint16(buf[0:2])
	if index >= total {
		return Frame{}, asherr.FrameIndexOutOfBoundsError{Index: int(index), Total: int(total)}
	}

	payload := append([]byte(nil), buf[HeaderSize:HeaderSize+payloadLen]...)
	return Frame{Index: index, Total: total, Payload: payload}, nil
}

// Chunk splits data into a sequence of frames of at most MaxPayload bytes
// each, with Total set to the resulting frame count. An empty data slice
// still produces exactly one (empty-payload) frame.
func Chunk(data []byte) []Frame {
	n := (len(data) + MaxPayload - 1) / MaxPayload
	if n == 0 {
		n = 1
	}
	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		start := i * MaxPayload
		end := start + MaxPayload
		if end > len(data) {
			end = len(data)
		}
		frames[i] = Frame{
			Index:   uint16(i),
			Total:   uint16(n),
			Payload: append([]byte(nil), data[start:end]...),
		}
	}
	return frames
}

// Reassemble reconstructs the original byte stream from a set of frames.
// It requires every index in [0, total) to be present and all frames to
// agree on total. An identical duplicate of a frame is ignored; a
// conflicting duplicate (same index, different payload) is rejected.
func Reassemble(frames []Frame) ([]byte, error) {
	if len(frames) == 0 {
		return nil, asherr.ErrNoFrames
	}
	total := frames[0].Total
	if total == 0 {
		return nil, asherr.ErrZeroTotalFrames
	}

	seen := make(map[uint16][]byte, total)
	for _, f := range frames {
		if f.Total != total {
			return nil, asherr.FrameCountMismatchError{Expected: int(total), Actual: int(f.Total)}
		}
		if f.Index >= total {
			return nil, asherr.FrameIndexOutOfBoundsError{Index: int(f.Index), Total: int(total)}
		}
		if prev, ok := seen[f.Index]; ok {
			if string(prev) != string(f.Payload) {
				return nil, asherr.DuplicateFrameError{Index: int(f.Index)}
			}
			continue
		}
		seen[f.Index] = f.Payload
	}

	var missing []int
	for i := uint16(0); i < total; i++ {
		if _, ok := seen[i]; !ok {
			missing = append(missing, int(i))
		}
	}
	if len(missing) > 0 {
		return nil, asherr.MissingFramesError{Missing: missing}
	}

	var out []byte
	for i := uint16(0); i < total; i++ {
		out = append(out, seen[i]...)
	}
	return out, nil
}
