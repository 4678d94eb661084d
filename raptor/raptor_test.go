package raptor

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestBlockEncodeDecodeRoundtrip(t *testing.T) {
	b := Block{ESI: 3, K: 20, SymbolSize: 16, OriginalLen: 300, Data: bytes.Repeat([]byte{0x5A}, 16)}
	buf := EncodeBlock(b)
	got, err := DecodeBlock(buf)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if got.ESI != b.ESI || got.K != b.K || got.SymbolSize != b.SymbolSize || got.OriginalLen != b.OriginalLen || !bytes.Equal(got.Data, b.Data) {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, b)
	}
}

func TestDecodeBlockDetectsCorruption(t *testing.T) {
	buf := EncodeBlock(Block{ESI: 0, K: 1, SymbolSize: 4, OriginalLen: 4, Data: []byte{9, 9, 9, 9}})
	buf[BlockHeaderSize] ^= 0xFF
	if _, err := DecodeBlock(buf); err == nil {
		t.Fatalf("expected CRC mismatch")
	}
}

func TestParityCountFormula(t *testing.T) {
	cases := map[int]int{
		1:   4, // ceil(0.05) + 3
		20:  4,
		100: 8,
	}
	for k, want := range cases {
		if got := ParityCount(k); got != want {
			t.Errorf("ParityCount(%d) = %d, want %d", k, got, want)
		}
	}
}

func TestSystematicSymbolsAreVerbatim(t *testing.T) {
	data := make([]byte, 256*8)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}
	enc := NewEncoder(data, 256)
	for esi := 0; esi < enc.K(); esi++ {
		b := enc.GenerateBlock(uint32(esi))
		want := data[esi*256 : esi*256+256]
		if !bytes.Equal(b.Data, want) {
			t.Fatalf("systematic symbol %d is not verbatim source data", esi)
		}
	}
}

func TestDecodeFromSystematicSymbolsOnly(t *testing.T) {
	data := make([]byte, 256*12)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}
	enc := NewEncoder(data, 256)

	dec := NewDecoder()
	for esi := 0; esi < enc.K(); esi++ {
		if err := dec.AddBlock(enc.GenerateBlock(uint32(esi))); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	if !dec.IsComplete() {
		t.Fatalf("decoder not complete after receiving every systematic symbol")
	}
	got, err := dec.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("reconstructed data mismatch")
	}
}

func TestDecodeRecoversFromParityWhenSourceSymbolsMissing(t *testing.T) {
	data := make([]byte, 256*16)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}
	enc := NewEncoder(data, 256)

	dec := NewDecoder()
	// Drop the first systematic symbol, supply the rest plus all parity.
	for esi := 1; esi < enc.K(); esi++ {
		if err := dec.AddBlock(enc.GenerateBlock(uint32(esi))); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	for esi := enc.K(); esi < enc.K()+enc.P(); esi++ {
		if err := dec.AddBlock(enc.GenerateBlock(uint32(esi))); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	if !dec.IsComplete() {
		t.Fatalf("decoder failed to recover missing source symbol from parity")
	}
	got, err := dec.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("reconstructed data mismatch")
	}
}

func TestDecodeRecoversUsingRepairSymbols(t *testing.T) {
	data := make([]byte, 256*30)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}
	enc := NewEncoder(data, 256)
	n := enc.K() + enc.P()

	dec := NewDecoder()
	// Skip every systematic and parity symbol; rely entirely on repair.
	var esi uint32 = uint32(n)
	received := 0
	for !dec.IsComplete() && received < enc.K()*6 {
		if err := dec.AddBlock(enc.GenerateBlock(esi)); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
		esi++
		received++
	}
	if !dec.IsComplete() {
		t.Fatalf("decoder failed to complete using only repair symbols after %d blocks (K=%d)", received, enc.K())
	}
	got, err := dec.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("reconstructed data mismatch")
	}
}

func TestDataFailsBeforeComplete(t *testing.T) {
	dec := NewDecoder()
	if _, err := dec.Data(); err == nil {
		t.Fatalf("expected error calling Data on an empty decoder")
	}
}

func TestGenerateBlockDeterministic(t *testing.T) {
	data := make([]byte, 256*10)
	enc := NewEncoder(data, 256)
	n := enc.K() + enc.P()
	a := enc.GenerateBlock(uint32(n) + 5)
	b := enc.GenerateBlock(uint32(n) + 5)
	if !bytes.Equal(a.Data, b.Data) {
		t.Fatalf("same ESI produced different repair block data")
	}
}
