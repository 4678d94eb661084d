// Package store implements the relay's in-memory, TTL-based ephemeral
// state: per-conversation auth-token hashes, blob queues, burn flags,
// and device registrations. Nothing here is persisted; a restart loses
// everything, which is the point — the relay never retains plaintext
// and is not meant to be a durable message store.
//
// The store is sharded the way package circuit in the teacher's repo
// guards one struct's fields with a mutex, generalized from one
// mutex-guarded struct to a fixed table of shards so concurrent
// requests for different conversations don't contend on the same lock.
package store

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashmsg/ash/asherr"
)

// MaxConversations bounds total registered conversations (DoS
// protection): at roughly 200 bytes per entry, 100,000 entries is
// about 20 MB.
const MaxConversations = 100_000

// InactiveTTL is how long a conversation may go without activity
// before it becomes eligible for eviction under capacity pressure.
const InactiveTTL = 24 * time.Hour

// MaxBlobsPerConversation is the default per-conversation message queue
// bound; see Store.MaxBlobsPerConversation to override it.
const MaxBlobsPerConversation = 50

// MaxCiphertextSize is the default bound on a single stored ciphertext
// blob; see Store.MaxCiphertextSize to override it.
const MaxCiphertextSize = 8 * 1024

// BurnTTL is the default lifetime of a burn flag before it too expires;
// see Store.BurnTTL to override it.
const BurnTTL = 300 * time.Second

// BlobTTL is the fixed, non-configurable message lifetime: unlike the
// other limits above, spec.md pins this value so every relay ages out
// messages identically regardless of local configuration.
const BlobTTL = 300 * time.Second

// DeviceTokenTTL is the default lifetime of a device registration; see
// Store.DeviceTokenTTL to override it.
const DeviceTokenTTL = 24 * time.Hour

const shardCount = 64

// Platform identifies a push notification platform.
type Platform string

const (
	PlatformIOS   Platform = "ios"
	PlatformMacOS Platform = "macos"
)

// StoredBlob is one queued, opaque ciphertext.
type StoredBlob struct {
	ID         string
	Sequence   *uint64
	Ciphertext []byte
	ReceivedAt time.Time
	ExpiresAt  time.Time
}

// DeviceRegistration is one registered push-notification target.
type DeviceRegistration struct {
	DeviceToken    string
	Platform       Platform
	RegisteredAt   time.Time
	ExpiresAt      time.Time
}

// BurnFlag marks a conversation as irreversibly destroyed.
type BurnFlag struct {
	BurnedAt  time.Time
	ExpiresAt time.Time
}

// Cursor is an opaque pagination token for GET /v1/messages.
type Cursor struct {
	LastID       string     `json:"last_id,omitempty"`
	LastSequence *uint64    `json:"last_sequence,omitempty"`
	Since        *time.Time `json:"since,omitempty"`
}

// EncodeCursor renders c as a URL-safe, unpadded base64 JSON token.
func EncodeCursor(c Cursor) string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor parses a cursor token produced by EncodeCursor.
func DecodeCursor(s string) (Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, asherr.ErrInvalidHeader
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, asherr.ErrInvalidHeader
	}
	return c, nil
}

// RegisterResult reports the outcome of Register.
type RegisterResult int

const (
	RegisterOK RegisterResult = iota
	RegisterAlreadyExists
	RegisterAtCapacity
)

type conversationAuth struct {
	authTokenHash string
	burnTokenHash string
	lastActivity  time.Time
}

type conversationData struct {
	blobs    []StoredBlob
	devices  map[string]DeviceRegistration
	burn     *BurnFlag
}

type shard struct {
	mu   sync.Mutex
	auth map[string]*conversationAuth
	data map[string]*conversationData
}

// Store is the relay's sharded, TTL-based in-memory state. The TTL and
// capacity fields default to this package's constants but can be
// overridden after New (see cmd/ash-relay, which wires them from
// relay/config) to let an operator tune limits without recompiling.
type Store struct {
	BurnTTL                 time.Duration
	DeviceTokenTTL          time.Duration
	MaxCiphertextSize       int
	MaxBlobsPerConversation int

	shards [shardCount]*shard
	count  atomic.Int64 // total registered conversations across all shards
}

// New returns an empty Store with default TTLs and capacity limits.
func New() *Store {
	s := &Store{
		BurnTTL:                 BurnTTL,
		DeviceTokenTTL:          DeviceTokenTTL,
		MaxCiphertextSize:       MaxCiphertextSize,
		MaxBlobsPerConversation: MaxBlobsPerConversation,
	}
	for i := range s.shards {
		s.shards[i] = &shard{
			auth: make(map[string]*conversationAuth),
			data: make(map[string]*conversationData),
		}
	}
	return s
}

func (s *Store) shardFor(conversationID string) *shard {
	h := fnv32(conversationID)
	return s.shards[h%shardCount]
}

func fnv32(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	hash := uint32(offset32)
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= prime32
	}
	return hash
}

// HashToken returns the hex-encoded SHA-256 of token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Len reports the number of registered conversations across all
// shards.
func (s *Store) Len() int {
	return int(s.count.Load())
}

// Register stores auth/burn token hashes for conversationID. It is
// idempotent: re-registering the same conversation just refreshes its
// activity timestamp and reports RegisterAlreadyExists.
func (s *Store) Register(conversationID, authTokenHash, burnTokenHash string) RegisterResult {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.auth[conversationID]; ok {
		existing.lastActivity = time.Now()
		return RegisterAlreadyExists
	}

	if int(s.count.Load()) >= MaxConversations {
		// Unlock before scanning every shard for eviction to avoid
		// self-deadlock on sh below.
		sh.mu.Unlock()
		s.evictInactive()
		sh.mu.Lock()
		if int(s.count.Load()) >= MaxConversations {
			return RegisterAtCapacity
		}
		// Re-check: another goroutine may have registered this
		// conversation while the lock was released.
		if _, ok := sh.auth[conversationID]; ok {
			return RegisterAlreadyExists
		}
	}

	sh.auth[conversationID] = &conversationAuth{
		authTokenHash: authTokenHash,
		burnTokenHash: burnTokenHash,
		lastActivity:  time.Now(),
	}
	sh.data[conversationID] = &conversationData{
		devices: make(map[string]DeviceRegistration),
	}
	s.count.Add(1)
	return RegisterOK
}

func (s *Store) evictInactive() {
	cutoff := time.Now().Add(-InactiveTTL)
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, a := range sh.auth {
			if a.lastActivity.Before(cutoff) {
				delete(sh.auth, id)
				delete(sh.data, id)
				s.count.Add(-1)
			}
		}
		sh.mu.Unlock()
	}
}

// Touch refreshes conversationID's last-activity timestamp. It is a
// no-op if the conversation is not registered.
func (s *Store) Touch(conversationID string) {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if a, ok := sh.auth[conversationID]; ok {
		a.lastActivity = time.Now()
	}
}

// VerifyAuthToken reports whether token hashes to conversationID's
// stored auth token hash.
func (s *Store) VerifyAuthToken(conversationID, token string) bool {
	return s.verifyToken(conversationID, token, func(a *conversationAuth) string { return a.authTokenHash })
}

// VerifyBurnToken reports whether token hashes to conversationID's
// stored burn token hash. Auth and burn tokens are verified
// independently: knowledge of the auth token alone never authorizes a
// burn.
func (s *Store) VerifyBurnToken(conversationID, token string) bool {
	return s.verifyToken(conversationID, token, func(a *conversationAuth) string { return a.burnTokenHash })
}

func (s *Store) verifyToken(conversationID, token string, pick func(*conversationAuth) string) bool {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	a, ok := sh.auth[conversationID]
	sh.mu.Unlock()
	if !ok {
		return false
	}
	provided := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(pick(a)), []byte(provided)) == 1
}

// IsRegistered reports whether conversationID has been registered.
func (s *Store) IsRegistered(conversationID string) bool {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.auth[conversationID]
	return ok
}

// Remove deletes all state for conversationID.
func (s *Store) Remove(conversationID string) {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.auth[conversationID]; ok {
		s.count.Add(-1)
	}
	delete(sh.auth, conversationID)
	delete(sh.data, conversationID)
}

func newUUID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	b[6] = (b[6] & 0x0F) | 0x40 // version 4
	b[8] = (b[8] & 0x3F) | 0x80 // variant 10
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]), nil
}

// StoreBlob appends ciphertext to conversationID's queue, returning the
// new blob's UUID. It fails with asherr.ErrConversationBurned if the
// conversation has been burned, asherr.PayloadTooLargeError if
// ciphertext exceeds MaxCiphertextSize, or asherr.ErrQueueFull if the
// queue is already at MaxBlobsPerConversation.
func (s *Store) StoreBlob(conversationID string, ciphertext []byte, sequence *uint64) (string, error) {
	if len(ciphertext) > s.MaxCiphertextSize {
		return "", asherr.PayloadTooLargeError{Size: len(ciphertext), Max: s.MaxCiphertextSize}
	}

	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	d, ok := sh.data[conversationID]
	if !ok {
		return "", asherr.ErrConversationNotFound
	}
	if d.burn != nil {
		return "", asherr.ErrConversationBurned
	}
	if len(d.blobs) >= s.MaxBlobsPerConversation {
		return "", asherr.ErrQueueFull
	}

	id, err := newUUID()
	if err != nil {
		return "", fmt.Errorf("generate blob id: %w", err)
	}
	now := time.Now()
	d.blobs = append(d.blobs, StoredBlob{
		ID:         id,
		Sequence:   sequence,
		Ciphertext: append([]byte(nil), ciphertext...),
		ReceivedAt: now,
		ExpiresAt:  now.Add(BlobTTL),
	})
	return id, nil
}

// GetBlobs returns blobs received after cursor.Since (if set), in
// insertion order, along with a cursor for the next page.
func (s *Store) GetBlobs(conversationID string, cursor *Cursor) ([]StoredBlob, Cursor, error) {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	d, ok := sh.data[conversationID]
	if !ok {
		return nil, Cursor{}, asherr.ErrConversationNotFound
	}

	var since time.Time
	if cursor != nil && cursor.Since != nil {
		since = *cursor.Since
	}

	var out []StoredBlob
	for _, b := range d.blobs {
		if b.ReceivedAt.After(since) {
			out = append(out, b)
		}
	}

	next := Cursor{}
	if len(out) > 0 {
		last := out[len(out)-1]
		when := last.ReceivedAt
		next = Cursor{LastID: last.ID, LastSequence: last.Sequence, Since: &when}
	}
	return out, next, nil
}

// Burn installs a BurnFlag, removing all blobs and device
// registrations for conversationID. It does not remove the
// conversation's auth/burn token registration itself, so burn status
// can still be queried afterward.
func (s *Store) Burn(conversationID string) error {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	d, ok := sh.data[conversationID]
	if !ok {
		return asherr.ErrConversationNotFound
	}
	now := time.Now()
	d.burn = &BurnFlag{BurnedAt: now, ExpiresAt: now.Add(s.BurnTTL)}
	d.blobs = nil
	d.devices = make(map[string]DeviceRegistration)
	return nil
}

// IsBurned reports whether conversationID currently carries a burn
// flag.
func (s *Store) IsBurned(conversationID string) bool {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	d, ok := sh.data[conversationID]
	return ok && d.burn != nil
}

// GetBurnStatus returns the burn flag for conversationID, if any.
func (s *Store) GetBurnStatus(conversationID string) (BurnFlag, bool) {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	d, ok := sh.data[conversationID]
	if !ok || d.burn == nil {
		return BurnFlag{}, false
	}
	return *d.burn, true
}

// RegisterDevice upserts a device registration for push notifications.
// It fails with asherr.ErrConversationBurned if the conversation has
// been burned.
func (s *Store) RegisterDevice(conversationID, deviceToken string, platform Platform) error {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	d, ok := sh.data[conversationID]
	if !ok {
		return asherr.ErrConversationNotFound
	}
	if d.burn != nil {
		return asherr.ErrConversationBurned
	}
	now := time.Now()
	d.devices[deviceToken] = DeviceRegistration{
		DeviceToken:  deviceToken,
		Platform:     platform,
		RegisteredAt: now,
		ExpiresAt:    now.Add(s.DeviceTokenTTL),
	}
	return nil
}

// GetDeviceTokens returns every currently-registered device for
// conversationID.
func (s *Store) GetDeviceTokens(conversationID string) []DeviceRegistration {
	sh := s.shardFor(conversationID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	d, ok := sh.data[conversationID]
	if !ok {
		return nil
	}
	out := make([]DeviceRegistration, 0, len(d.devices))
	for _, dev := range d.devices {
		out = append(out, dev)
	}
	return out
}

// Cleanup removes expired blobs, expired burn flags, and stale device
// registrations across every shard. It is meant to be called
// periodically (spec.md's CLEANUP_INTERVAL, default 10s) by a
// background ticker, and never holds a shard's lock for longer than one
// shard's scan.
func (s *Store) Cleanup() {
	now := time.Now()
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, d := range sh.data {
			var kept []StoredBlob
			for _, b := range d.blobs {
				if now.Before(b.ExpiresAt) {
					kept = append(kept, b)
				}
			}
			d.blobs = kept

			if d.burn != nil && now.After(d.burn.ExpiresAt) {
				d.burn = nil
			}

			for token, dev := range d.devices {
				if now.After(dev.ExpiresAt) {
					delete(d.devices, token)
				}
			}
		}
		sh.mu.Unlock()
	}
}
