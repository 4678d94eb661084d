// Package pad implements the bidirectional, single-use shared secret at
// the center of ASH: a fixed-size block of random bytes, physically
// transferred once between two parties, that both sides then consume as
// key material and never see again once exhausted.
//
// The two directions of the conversation never touch the same bytes. The
// Initiator consumes key material from the front of the pad; the
// Responder consumes from the back. Both counters only grow, so
// consumedFront+consumedBack <= len(data) holds for the whole lifetime of
// the Pad, guaranteeing the two directions' key material can never
// overlap regardless of how asymmetrically either side sends.
//
// Each side also tracks how far it believes its peer has consumed, purely
// from what it observes in incoming messages (never by direct
// coordination). That tracker only moves forward: an incoming message
// whose implied consumption offset would rewind it is rejected outright,
// rather than honored, because honoring it would mean re-deriving and
// reusing key material a previous (possibly legitimate, possibly
// replayed) message already consumed.
package pad

import (
	"sync"

	"github.com/ashmsg/ash/asherr"
)

// Role identifies which end of the pad a party occupies.
type Role int

const (
	// Initiator consumes key material from the front of the pad.
	Initiator Role = iota
	// Responder consumes key material from the back of the pad.
	Responder
)

// ValidSizes lists the pad sizes, in bytes, the ceremony protocol
// supports: 32, 64, 256, 512, and 1024 KiB.
func ValidSizes() []int {
	return []int{32 * 1024, 64 * 1024, 256 * 1024, 512 * 1024, 1024 * 1024}
}

func isValidSize(n int) bool {
	for _, s := range ValidSizes() {
		if n == s {
			return true
		}
	}
	return false
}

// Pad is a single-use shared secret shared by exactly two parties.
//
// Exactly two counters track the whole pad's consumption state,
// consumedFront and consumedBack, regardless of which party's Pad value
// holds them: a value constructed with role Initiator advances
// consumedFront on its own Consume calls and tracks the peer's
// consumption (from the back) in consumedBack via DerivePeerKey, and a
// Responder value does the opposite. No separate "peer" counters exist
// because front/back consumption is a property of the pad itself, not of
// which side is asking about it.
type Pad struct {
	mu   sync.Mutex
	data []byte
	role Role

	consumedFront int
	consumedBack  int

	burned bool
}

// New wraps data (copying it) as a freshly-generated Pad for the given
// role. len(data) must be one of ValidSizes.
func New(data []byte, role Role) (*Pad, error) {
	if !isValidSize(len(data)) {
		return nil, asherr.InvalidEntropySizeError{Size: len(data), Expected: ValidSizes()}
	}
	return FromBytes(data, role), nil
}

// FromBytes wraps data (copying it) as a Pad for the given role without
// validating its length against ValidSizes. This is the entry point for
// reconstructing a pad directly from ceremony-transferred bytes, which
// have already been validated at the point they were generated.
func FromBytes(data []byte, role Role) *Pad {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Pad{data: cp, role: role}
}

// FromBytesWithState reconstructs a Pad for the given role from
// previously persisted state: the pad bytes themselves plus the
// consumedFront/consumedBack counters returned by an earlier call to
// SerializeState. This is how a client restores an in-progress
// conversation's pad after restarting, instead of losing its place in
// the pad and risking key-material reuse.
func FromBytesWithState(data []byte, role Role, consumedFront, consumedBack int) (*Pad, error) {
	if consumedFront < 0 || consumedBack < 0 || consumedFront+consumedBack > len(data) {
		return nil, asherr.InsufficientPadBytesError{Needed: consumedFront + consumedBack, Available: len(data)}
	}
	p := FromBytes(data, role)
	p.consumedFront = consumedFront
	p.consumedBack = consumedBack
	return p, nil
}

// SerializeState returns a copy of the pad's bytes and its two
// consumption counters, suitable for persisting to local storage and
// later restoring with FromBytesWithState. The returned data is the
// Pad's full backing buffer, not just the unconsumed middle, so the
// resulting counters continue to index into it correctly.
func (p *Pad) SerializeState() (data []byte, consumedFront, consumedBack int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(p.data))
	copy(cp, p.data)
	return cp, p.consumedFront, p.consumedBack
}

// Len returns the total size of the pad in bytes.
func (p *Pad) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.data)
}

// Role returns which end of the pad this Pad value occupies.
func (p *Pad) Role() Role {
	return p.role
}

func (p *Pad) localConsumedLocked() int {
	if p.role == Initiator {
		return p.consumedFront
	}
	return p.consumedBack
}

func (p *Pad) peerConsumedLocked() int {
	if p.role == Initiator {
		return p.consumedBack
	}
	return p.consumedFront
}

func (p *Pad) setPeerConsumedLocked(n int) {
	if p.role == Initiator {
		p.consumedBack = n
	} else {
		p.consumedFront = n
	}
}

// AvailableForSending returns how many bytes this side can still consume
// for outgoing key material before running into the region already
// claimed by the peer's own consumption.
func (p *Pad) AvailableForSending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.data) - p.consumedFront - p.consumedBack
}

// CanSend reports whether n more bytes are available for an outgoing
// message. This is the authoritative admission check a caller must
// perform before attempting to send; Consume enforces the same bound but
// CanSend lets a caller check without mutating state (e.g. to decide
// whether to split a message across multiple pad allocations).
func (p *Pad) CanSend(n int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return n <= len(p.data)-p.consumedFront-p.consumedBack
}

// NextSendOffset returns the offset, from this side's end of the pad,
// that the next Consume call will start at.
func (p *Pad) NextSendOffset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.localConsumedLocked()
}

// Consume returns the next n bytes of key material for an outgoing
// message and advances this side's consumption counter. The returned
// slice is a copy; callers own it and are responsible for zeroing it once
// used (see Burn for the Pad's own zeroization).
func (p *Pad) Consume(n int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.burned {
		return nil, asherr.ErrPadExhausted
	}
	avail := len(p.data) - p.consumedFront - p.consumedBack
	if n > avail {
		return nil, asherr.InsufficientPadBytesError{Needed: n, Available: avail}
	}

	var out []byte
	if p.role == Initiator {
		start := p.consumedFront
		out = append([]byte(nil), p.data[start:start+n]...)
		p.consumedFront += n
	} else {
		end := len(p.data) - p.consumedBack
		start := end - n
		out = append([]byte(nil), p.data[start:end]...)
		p.consumedBack += n
	}
	return out, nil
}

// DerivePeerKey returns the key material the peer used for the n bytes of
// its own direction starting at offset, and advances this Pad's record of
// the peer's consumption to max(current, offset+n).
//
// offset must be at least the peer-consumption high-water mark already
// recorded; an offset below that mark means the message claims to have
// consumed a region this Pad has already derived for a prior message,
// which is rejected as pad reuse/replay rather than honored.
func (p *Pad) DerivePeerKey(offset, n int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.burned {
		return nil, asherr.ErrPadExhausted
	}
	pc := p.peerConsumedLocked()
	if offset < pc {
		return nil, asherr.ErrPadExhausted
	}
	end := offset + n
	if end > len(p.data)-p.localConsumedLocked() {
		return nil, asherr.InsufficientPadBytesError{Needed: end - pc, Available: len(p.data) - p.localConsumedLocked() - pc}
	}

	var out []byte
	if p.role == Initiator {
		// Peer is the Responder: its direction consumes from the back.
		start := len(p.data) - end
		out = append([]byte(nil), p.data[start:start+n]...)
	} else {
		out = append([]byte(nil), p.data[offset:end]...)
	}

	newMark := pc
	if end > newMark {
		newMark = end
	}
	p.setPeerConsumedLocked(newMark)
	return out, nil
}

// Burn zeroes the pad's backing storage in place. Once burned, Consume
// and DerivePeerKey both fail with asherr.ErrPadExhausted regardless of
// how much capacity remained. Burn is idempotent.
func (p *Pad) Burn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.data)
	p.burned = true
}
