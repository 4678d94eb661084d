package frame

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	f := Frame{Index: 3, Total: 10, Payload: []byte("hello world")}
	buf := Encode(f)
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Index != f.Index || got.Total != f.Total || !bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, f)
	}
}

func TestDecodeDetectsCorruption(t *testing.T) {
	f := Frame{Index: 0, Total: 1, Payload: []byte("payload")}
	buf := Encode(f)
	buf[5] ^= 0xFF
	if _, err := Decode(buf); err == nil {
		t.Fatalf("expected CRC mismatch on corrupted frame")
	}
}

func TestDecodeRejectsTooShort(t *testing.T) {
	if _, err := Decode([]byte{0x01, 0x02}); err == nil {
		t.Fatalf("expected error for too-short buffer")
	}
}

func TestDecodeRejectsZeroTotal(t *testing.T) {
	buf := Encode(Frame{Index: 0, Total: 0, Payload: nil})
	// Encode doesn't forbid Total=0 (it's a thin serializer); Decode must.
	if _, err := Decode(buf); err == nil {
		t.Fatalf("expected error for zero total")
	}
}

func TestDecodeRejectsIndexOutOfBounds(t *testing.T) {
	buf := Encode(Frame{Index: 5, Total: 3, Payload: []byte("x")})
	if _, err := Decode(buf); err == nil {
		t.Fatalf("expected error for index >= total")
	}
}

func TestChunkAndReassembleRoundtrip(t *testing.T) {
	data := make([]byte, MaxPayload*3+42)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}
	frames := Chunk(data)
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	got, err := Reassemble(frames)
	if err != nil {
		t.Fatalf("Reassemble: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("reassembled data does not match original")
	}
}

func TestReassembleOutOfOrder(t *testing.T) {
	frames := Chunk(bytes.Repeat([]byte{1, 2, 3}, 500))
	reversed := make([]Frame, len(frames))
	for i, f := range frames {
		reversed[len(frames)-1-i] = f
	}
	got, err := Reassemble(reversed)
	if err != nil {
		t.Fatalf("Reassemble: %v", err)
	}
	want, _ := Reassemble(frames)
	if !bytes.Equal(got, want) {
		t.Fatalf("out-of-order reassembly mismatch")
	}
}

func TestReassembleDetectsMissing(t *testing.T) {
	frames := Chunk(bytes.Repeat([]byte{9}, MaxPayload*3))
	_, err := Reassemble(frames[:len(frames)-1])
	if err == nil {
		t.Fatalf("expected missing-frames error")
	}
}

func TestReassembleDetectsConflictingDuplicate(t *testing.T) {
	frames := Chunk([]byte("short payload"))
	dup := frames[0]
	dup.Payload = append([]byte(nil), dup.Payload...)
	dup.Payload[0] ^= 0xFF
	frames = append(frames, dup)
	if _, err := Reassemble(frames); err == nil {
		t.Fatalf("expected duplicate-frame conflict error")
	}
}

func TestReassembleAllowsIdenticalDuplicate(t *testing.T) {
	frames := Chunk([]byte("short payload"))
	frames = append(frames, frames[0])
	if _, err := Reassemble(frames); err != nil {
		t.Fatalf("identical duplicate frame should not error: %v", err)
	}
}

func TestReassembleRejectsEmptyInput(t *testing.T) {
	if _, err := Reassemble(nil); err == nil {
		t.Fatalf("expected error for no frames")
	}
}

func TestReassembleDetectsCountMismatch(t *testing.T) {
	a := Chunk(bytes.Repeat([]byte{1}, MaxPayload*2))
	b := Chunk(bytes.Repeat([]byte{1}, MaxPayload*5))
	mixed := append([]Frame{a[0]}, b...)
	if _, err := Reassemble(mixed); err == nil {
		t.Fatalf("expected frame count mismatch error")
	}
}
