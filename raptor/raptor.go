// Package raptor implements the production rateless erasure codec: a
// systematic code (the first K symbols are the source data itself,
// unmodified) backed by a small number of LDPC-like parity symbols and
// an unbounded tail of LT repair symbols. It supersedes package fountain
// (kept as a simpler fallback a deployment can ship first) by adding
// the systematic and parity layers, which let a decoder that received
// every systematic symbol skip belief propagation entirely, and let one
// that is missing a few source symbols recover them straight from the
// parity equations before falling back to full LT decoding.
//
// Encoded symbol space, addressed by ESI (encoding symbol ID):
//
//	[0, K)        systematic: the source symbols verbatim
//	[K, K+P)      parity: each the XOR of a fixed, PRNG-chosen subset of
//	              source symbols of degree approximately K/4
//	[K+P, ...)    LT repair: each the XOR of a PRNG-chosen subset of all
//	              K+P symbols (source and parity together), sampled from
//	              a degree distribution tuned for belief propagation
//
// Both K and P, and every symbol's chosen subset, are derived solely
// from public values (K, the parity index or ESI), so an encoder and a
// decoder that never exchange anything but wire blocks still agree on
// every symbol's definition.
package raptor

import (
	"encoding/binary"

	"github.com/ashmsg/ash/asherr"
	"github.com/ashmsg/ash/checksum"
	"github.com/ashmsg/ash/internal/prng"
)

// BlockHeaderSize is the size of the fixed block header: esi(4) || K(2) ||
// symbol_size(2) || original_len(4). It is wire-compatible with package
// fountain's block header, though the two codecs do not interpret ESIs
// the same way.
const BlockHeaderSize = 4 + 2 + 2 + 4

// TrailerSize is the size of the trailing CRC-32.
const TrailerSize = 4

// parityDegreeDivisor sets the parity layer's fixed degree to
// approximately K/4 source symbols per parity equation.
const parityDegreeDivisor = 4

// paritySeedOffset separates the parity layer's PRNG stream from the LT
// repair layer's, which is seeded directly by ESI; a small parity index
// p could otherwise collide with a low repair ESI.
const paritySeedOffset = 0x12345678

// Block is one encoded symbol, systematic, parity, or LT repair,
// distinguished by which range its ESI falls in relative to K and P.
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

// ParityCount returns P, the number of parity symbols for a given K:
// ceil(0.05*K) + 3.
func ParityCount(k int) int {
	return (k*5+99)/100 + 3
}

func clip(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// repairDegree maps a uniform draw r in [0,1) and the total symbol count
// n (= K+P) to an LT repair symbol's degree, under a distribution tuned
// so belief propagation converges: mostly low degrees with an
// occasional high-degree symbol to stitch components together.
func repairDegree(r float64, n int) int {
	switch {
	case r < 0.05:
		return 1
	case r < 0.45:
		return 2
	case r < 0.75:
		return 3
	case r < 0.90:
		return 4
	case r < 0.97:
		return clip(n/4, 5, 10)
	default:
		return clip(n/2, 10, 20)
	}
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func sampleIndices(rng *prng.PseudoRng, n, degree int) []int {
	if degree >= n {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	chosen := make(map[int]bool, degree)
	out := make([]int, 0, degree)
	for len(out) < degree {
		idx := rng.Intn(n)
		if !chosen[idx] {
			chosen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

// parityIndices returns the sorted-by-selection source-symbol indices
// that parity symbol p (0-based within the parity range) XORs together.
func parityIndices(k, p int) []int {
	degree := clip(k/parityDegreeDivisor, 1, k)
	rng := prng.New(uint64(p) + paritySeedOffset)
	return sampleIndices(rng, k, degree)
}

// repairIndices returns the global indices (into the combined [0,K+P)
// symbol space) that LT repair symbol esi XORs together.
func repairIndices(esi uint32, n int) []int {
	rng := prng.New(uint64(esi))
	degree := repairDegree(rng.Float64(), n)
	if degree > n {
		degree = n
	}
	if degree < 1 {
		degree = 1
	}
	return sampleIndices(rng, n, degree)
}

// Encoder produces systematic, parity, and unbounded LT repair symbols
// for one fixed input.
type Encoder struct {
	source      [][]byte
	parity      [][]byte
	symbolSize  int
	originalLen int
	k           int
	p           int
}

// NewEncoder splits data into K fixed-size source symbols (the final one
// zero-padded if data does not divide evenly) and precomputes the P
// parity symbols.
func NewEncoder(data []byte, symbolSize int) *Encoder {
	k := (len(data) + symbolSize - 1) / symbolSize
	if k == 0 {
		k = 1
	}
	source := make([][]byte, k)
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
		source[i] = sym
	}

	p := ParityCount(k)
	parity := make([][]byte, p)
	for i := 0; i < p; i++ {
		sym := make([]byte, symbolSize)
		for _, idx := range parityIndices(k, i) {
			xorInto(sym, source[idx])
		}
		parity[i] = sym
	}

	return &Encoder{
		source:      source,
		parity:      parity,
		symbolSize:  symbolSize,
		originalLen: len(data),
		k:           k,
		p:           p,
	}
}

// K returns the number of source symbols.
func (e *Encoder) K() int { return e.k }

// P returns the number of parity symbols.
func (e *Encoder) P() int { return e.p }

// symbol returns the combined-space symbol at global index i, where
// [0,K) is source and [K,K+P) is parity.
func (e *Encoder) symbol(i int) []byte {
	if i < e.k {
		return e.source[i]
	}
	return e.parity[i-e.k]
}

// GenerateBlock produces the block for the given ESI: the systematic
// symbol itself for esi < K, a parity symbol for K <= esi < K+P, or an
// LT repair symbol combining source and parity symbols for esi >= K+P.
// Blocks are deterministic in ESI.
func (e *Encoder) GenerateBlock(esi uint32) Block {
	var data []byte
	switch {
	case int(esi) < e.k:
		data = append([]byte(nil), e.source[esi]...)
	case int(esi) < e.k+e.p:
		data = append([]byte(nil), e.parity[int(esi)-e.k]...)
	default:
		n := e.k + e.p
		indices := repairIndices(esi, n)
		data = make([]byte, e.symbolSize)
		for _, idx := range indices {
			xorInto(data, e.symbol(idx))
		}
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

// Decoder reconstructs data from a stream of raptor blocks. It solves by
// belief propagation over a combined [0,K+P) unknown space, seeded with
// the P parity-definition equations (each relating one parity symbol
// back to its source symbols) derived purely from K, which are knowable
// before any parity block is ever received. Those definitional
// equations are what let a handful of missing source symbols be
// recovered algebraically from received parity or repair symbols even
// when plain LT propagation alone would stall.
type Decoder struct {
	k, p        int
	n           int
	symbolSize  int
	originalLen int
	symbols     [][]byte // length k+p, source then parity
	solvedCount int
	pending     []equation
}

// NewDecoder returns an empty Decoder; K, P, and the symbol size are
// learned from the first block added.
func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) init(k, symbolSize, originalLen int) {
	d.k = k
	d.p = ParityCount(k)
	d.n = k + d.p
	d.symbolSize = symbolSize
	d.originalLen = originalLen
	d.symbols = make([][]byte, d.n)
	for i := 0; i < d.p; i++ {
		indices := append([]int{d.k + i}, parityIndices(d.k, i)...)
		d.reduceAndFile(equation{indices: indices, data: make([]byte, symbolSize)})
	}
}

// AddBlock folds one received block into the decoder's state.
func (d *Decoder) AddBlock(b Block) error {
	if len(b.Data) != int(b.SymbolSize) {
		return asherr.FrameLengthMismatchError{Declared: int(b.SymbolSize), Actual: len(b.Data)}
	}
	if d.symbols == nil {
		d.init(int(b.K), int(b.SymbolSize), int(b.OriginalLen))
	}

	var indices []int
	switch {
	case int(b.ESI) < d.k:
		indices = []int{int(b.ESI)}
	case int(b.ESI) < d.k+d.p:
		indices = []int{int(b.ESI)}
	default:
		indices = repairIndices(b.ESI, d.n)
	}

	eq := equation{indices: indices, data: append([]byte(nil), b.Data...)}
	d.reduceAndFile(eq)
	d.propagate()
	d.recoverViaParityEquations()
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
		d.solvedCount++
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

// recoverViaParityEquations is the algebraic fallback for when plain
// belief propagation stalls with pending equations left over: it is the
// same reduction applied again, but is kept as a distinct, explicitly
// named pass because a future revision may want to run a heavier
// technique here (e.g. Gaussian elimination across all pending
// equations at once) without touching the LT propagate loop above.
func (d *Decoder) recoverViaParityEquations() {
	d.propagate()
}

// IsComplete reports whether every source symbol (not counting parity)
// has been recovered.
func (d *Decoder) IsComplete() bool {
	if d.symbols == nil {
		return false
	}
	for i := 0; i < d.k; i++ {
		if d.symbols[i] == nil {
			return false
		}
	}
	return true
}

// Progress returns the fraction of source symbols recovered so far.
func (d *Decoder) Progress() float64 {
	if d.k == 0 {
		return 0
	}
	solved := 0
	for i := 0; i < d.k; i++ {
		if d.symbols[i] != nil {
			solved++
		}
	}
	return float64(solved) / float64(d.k)
}

// Data returns the reconstructed original bytes, trimmed to OriginalLen.
// It fails with asherr.ErrIncompleteTransfer if not all source symbols
// have been recovered yet.
func (d *Decoder) Data() ([]byte, error) {
	if !d.IsComplete() {
		return nil, asherr.ErrIncompleteTransfer
	}
	out := make([]byte, 0, d.k*d.symbolSize)
	for i := 0; i < d.k; i++ {
		out = append(out, d.symbols[i]...)
	}
	return out[:d.originalLen], nil
}
