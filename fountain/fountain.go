// Package fountain implements the legacy LT-only rateless erasure codec:
// a pure Luby Transform encoder/decoder using a Robust Soliton degree
// distribution, with no systematic or parity symbols. It exists alongside
// package raptor as a simpler fallback a deployment can ship first —
// package raptor's own design notes observe that the reserved ESI range
// for parity symbols lets a deployment start with plain LT and add parity
// later without changing the wire format. The two codecs are wire
// compatible at the block level (same ESI/K/symbol_size/original_len/
// data/crc32 layout) but not at the belief-propagation level: a raptor
// block's systematic and parity symbols carry no meaning to this decoder,
// and vice versa.
package fountain

import (
	"encoding/binary"

	"github.com/ashmsg/ash/asherr"
	"github.com/ashmsg/ash/checksum"
	"github.com/ashmsg/ash/internal/prng"
)

// BlockHeaderSize is the size of the fixed block header: esi(4) || K(2) ||
// symbol_size(2) || original_len(4).
const BlockHeaderSize = 4 + 2 + 2 + 4

// TrailerSize is the size of the trailing CRC-32.
const TrailerSize = 4

// robustSolitonC and robustSolitonDelta are the fixed tuning parameters
// both the encoder and decoder must use; they are not carried on the
// wire, so encoder and decoder must agree on them out of band (they are
// compiled-in constants here, matching a single implementation talking to
// itself or to another implementation of this same codec).
const (
	robustSolitonC     = 0.03
	robustSolitonDelta = 0.5
)

// Block is one encoded LT symbol.
type Block struct {
	ESI         uint32
	K           uint16
	SymbolSize  uint16
	OriginalLen uint32
	Data        []byte
}

// EncodeBlock serializes b as esi(4)||K(2)||symbol_size(2)||
// original_len(4)||data||crc32(4), all big-endian.
func EncodeBlock(b Block) []byte {
	buf := make([]byte, BlockHeaderSize+len(b.Data)+TrailerSize)
	binary.BigEndian.PutUint32(buf[0:4], b.ESI)
	binary.BigEndian.PutUint16(buf[4:6], b.K)
	binary.BigEndian.PutUint16(buf[6:8], b.SymbolSize)
	binary.BigEndian.PutUint32(buf[8:12], b.OriginalLen)
	copy(buf[BlockHeaderSize:BlockHeaderSize+len(b.Data)], b.Data)
	crc := checksum.Sum(buf[:BlockHeaderSize+len(b.Data)])
	binary.BigEndian.PutUint32(buf[BlockHeaderSize+len(b.Data):], crc)
	return buf
}

// DecodeBlock parses and checksum-validates a wire block.
func DecodeBlock(buf []byte) (Block, error) {
	if len(buf) < BlockHeaderSize+TrailerSize {
		return Block{}, asherr.FountainBlockTooShortError{Size: len(buf), Minimum: BlockHeaderSize + TrailerSize}
	}
	gotCRC := binary.BigEndian.Uint32(buf[len(buf)-TrailerSize:])
	wantCRC := checksum.Sum(buf[:len(buf)-TrailerSize])
	if gotCRC != wantCRC {
		return Block{}, asherr.CrcMismatchError{Expected: wantCRC, Actual: gotCRC}
	}
	b := Block{
		ESI:         binary.BigEndian.Uint32(buf[0:4]),
		K:           binary.BigEndian.Uint16(buf[4:6]),
		SymbolSize:  binary.BigEndian.Uint16(buf[6:8]),
		OriginalLen: binary.BigEndian.Uint32(buf[8:12]),
	}
	b.Data = append([]byte(nil), buf[BlockHeaderSize:len(buf)-TrailerSize]...)
	return b, nil
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func sampleIndices(rng *prng.PseudoRng, k, degree int) []int {
	if degree >= k {
		out := make([]int, k)
		for i := range out {
			out[i] = i
		}
		return out
	}
	chosen := make(map[int]bool, degree)
	out := make([]int, 0, degree)
	for len(out) < degree {
		idx := rng.Intn(k)
		if !chosen[idx] {
			chosen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

// Encoder produces an unbounded stream of LT-coded blocks for one fixed
// input.
type Encoder struct {
	symbols     [][]byte
	symbolSize  int
	originalLen int
	k           int
	sampler     *robustSoliton
}

// NewEncoder splits data into fixed-size source symbols (the final symbol
// zero-padded if data does not divide evenly) and prepares an LT encoder
// over them.
func NewEncoder(data []byte, symbolSize int) *Encoder {
	k := (len(data) + symbolSize - 1) / symbolSize
	if k == 0 {
		k = 1
	}
	symbols := make([][]byte, k)
	for i := 0; i < k; i++ {
		sym := make([]byte, symbolSize)
		start := i * symbolSize
		end := start + symbolSize
		if end > len(data) {
			end = len(data)
		}
		if start < len(data) {
			copy(sym, data[start:end])
		}
		symbols[i] = sym
	}
	return &Encoder{
		symbols:     symbols,
		symbolSize:  symbolSize,
		originalLen: len(data),
		k:           k,
		sampler:     newRobustSoliton(k, robustSolitonC, robustSolitonDelta),
	}
}

// K returns the number of source symbols.
func (e *Encoder) K() int { return e.k }

// GenerateBlock produces the LT-coded block for the given ESI. Blocks are
// deterministic in ESI: calling GenerateBlock twice with the same ESI
// always produces the same combination of source symbols.
func (e *Encoder) GenerateBlock(esi uint32) Block {
	rng := prng.New(uint64(esi))
	degree := e.sampler.sample(rng.Float64())
	if degree > e.k {
		degree = e.k
	}
	if degree < 1 {
		degree = 1
	}
	indices := sampleIndices(rng, e.k, degree)

	data := make([]byte, e.symbolSize)
	for _, idx := range indices {
		xorInto(data, e.symbols[idx])
	}
	return Block{
		ESI:         esi,
		K:           uint16(e.k),
		SymbolSize:  uint16(e.symbolSize),
		OriginalLen: uint32(e.originalLen),
		Data:        data,
	}
}

type equation struct {
	indices []int
	data    []byte
}

// Decoder reconstructs data from a stream of LT-coded blocks via belief
// propagation: an equation involving only one still-unknown symbol
// immediately solves that symbol, which in turn may reduce other pending
// equations down to a single unknown, and so on until either everything
// is solved or no further progress can be made.
type Decoder struct {
	k           int
	symbolSize  int
	originalLen int
	symbols     [][]byte
	solved      int
	pending     []equation
	sampler     *robustSoliton
}

// NewDecoder returns an empty Decoder; its parameters are learned from the
// first block added.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// AddBlock folds one received block into the decoder's belief-propagation
// state.
func (d *Decoder) AddBlock(b Block) error {
	if len(b.Data) != int(b.SymbolSize) {
		return asherr.FrameLengthMismatchError{Declared: int(b.SymbolSize), Actual: len(b.Data)}
	}
	if d.symbols == nil {
		d.k = int(b.K)
		d.symbolSize = int(b.SymbolSize)
		d.originalLen = int(b.OriginalLen)
		d.symbols = make([][]byte, d.k)
		d.sampler = newRobustSoliton(d.k, robustSolitonC, robustSolitonDelta)
	}

	rng := prng.New(uint64(b.ESI))
	degree := d.sampler.sample(rng.Float64())
	if degree > d.k {
		degree = d.k
	}
	if degree < 1 {
		degree = 1
	}
	indices := sampleIndices(rng, d.k, degree)

	eq := equation{indices: indices, data: append([]byte(nil), b.Data...)}
	d.reduceAndFile(eq)
	d.propagate()
	return nil
}

func (d *Decoder) reduce(eq *equation) {
	remaining := eq.indices[:0]
	for _, idx := range eq.indices {
		if d.symbols[idx] != nil {
			xorInto(eq.data, d.symbols[idx])
		} else {
			remaining = append(remaining, idx)
		}
	}
	eq.indices = remaining
}

func (d *Decoder) solve(idx int, data []byte) {
	if d.symbols[idx] == nil {
		d.symbols[idx] = append([]byte(nil), data...)
		d.solved++
	}
}

func (d *Decoder) reduceAndFile(eq equation) {
	d.reduce(&eq)
	switch len(eq.indices) {
	case 0:
		return
	case 1:
		d.solve(eq.indices[0], eq.data)
	default:
		d.pending = append(d.pending, eq)
	}
}

func (d *Decoder) propagate() {
	for {
		progressed := false
		var stillPending []equation
		for _, eq := range d.pending {
			d.reduce(&eq)
			switch len(eq.indices) {
			case 0:
				progressed = true
			case 1:
				d.solve(eq.indices[0], eq.data)
				progressed = true
			default:
				stillPending = append(stillPending, eq)
			}
		}
		d.pending = stillPending
		if !progressed {
			return
		}
	}
}

// IsComplete reports whether every source symbol has been recovered.
func (d *Decoder) IsComplete() bool {
	return d.symbols != nil && d.solved == d.k
}

// Progress returns the fraction of source symbols recovered so far.
func (d *Decoder) Progress() float64 {
	if d.k == 0 {
		return 0
	}
	return float64(d.solved) / float64(d.k)
}

// Data returns the reconstructed original bytes, trimmed to OriginalLen.
// It fails with asherr.ErrIncompleteTransfer if not all source symbols
// have been recovered yet.
func (d *Decoder) Data() ([]byte, error) {
	if !d.IsComplete() {
		return nil, asherr.ErrIncompleteTransfer
	}
	out := make([]byte, 0, d.k*d.symbolSize)
	for _, s := range d.symbols {
		out = append(out, s...)
	}
	return out[:d.originalLen], nil
}
