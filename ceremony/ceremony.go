// Package ceremony defines the metadata transferred alongside the pad
// during the one-shot QR exchange: conversation settings encoded into
// frame 0 of the QR stream, ahead of the raptor-coded pad data itself.
//
// Simplified ephemeral design: messages live in relay RAM only, with a
// fixed 5-minute TTL deleted on ACK or expiry; burn is immediate and
// irreversible; any "disappearing message" display TTL beyond that is a
// client-side concern this package does not model.
package ceremony

// MetadataVersion is the current ceremony metadata wire version.
const MetadataVersion uint8 = 1

// DefaultTTLSeconds is the default message TTL (5 minutes), matching
// the relay's fixed, non-configurable blob lifetime.
const DefaultTTLSeconds uint64 = 300

// MaxRelayURLLen bounds the relay URL carried in ceremony metadata.
const MaxRelayURLLen = 256

// Metadata is the conversation configuration exchanged at ceremony
// time, carried in frame 0 ahead of the pad's raptor-coded symbols.
type Metadata struct {
	Version  uint8
	RelayURL string
	// TTLSeconds is informational only: the relay's blob TTL is fixed at
	// DefaultTTLSeconds regardless of what a ceremony negotiates here.
	TTLSeconds uint64
}

// NewMetadata returns ceremony Metadata for relayURL with the current
// version and the default TTL.
func NewMetadata(relayURL string) Metadata {
	return Metadata{
		Version:    MetadataVersion,
		RelayURL:   relayURL,
		TTLSeconds: DefaultTTLSeconds,
	}
}

// Valid reports whether m's relay URL fits the wire budget and its
// version matches the version this package understands.
func (m Metadata) Valid() bool {
	return m.Version == MetadataVersion && len(m.RelayURL) <= MaxRelayURLLen
}
