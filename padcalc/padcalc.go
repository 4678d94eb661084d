// Package padcalc provides pad-capacity planning calculations: how many
// messages a pad of a given size can carry, how many QR codes its
// ceremony transfer will take, and how those numbers shrink as messages
// are sent. It performs no I/O and holds no state; every function is a
// pure computation over byte counts.
package padcalc

import (
	"fmt"

	"github.com/ashmsg/ash/mac"
	"github.com/ashmsg/ash/message"
)

// AuthOverhead is the fixed Wegman-Carter MAC cost per message: r1, r2,
// s1, s2 (mac.KeySize bytes).
const AuthOverhead = mac.KeySize

// FrameOverhead is the MessageFrame header size.
const FrameOverhead = message.HeaderSize

// DefaultQRBlockSize is the default payload size per ceremony QR code.
const DefaultQRBlockSize = 1500

// ReservedForTokens is the pad prefix spent on conversation ID, auth
// token, and burn token derivation.
const ReservedForTokens = 160

// defaultQRScanRate is the assumed scan rate, in QR codes per second,
// used by CalculatePadStatsWithQRSize and as NewPadCalculator's default.
const defaultQRScanRate = 10.0

// PadStats summarizes a pad's capacity.
type PadStats struct {
	PadSize                  int
	UsableBytes              int
	AuthOverheadPerMessage   int
	QRCodesNeeded            int
	BytesPerQR               int
	EstimatedTransferSeconds float64
}

// MessagesAtAvg returns how many messages of avgMessageBytes average
// plaintext size fit in the pad's usable bytes, each costing
// AuthOverhead plus its own length.
func (s PadStats) MessagesAtAvg(avgMessageBytes int) int {
	bytesPerMessage := AuthOverhead + avgMessageBytes
	if bytesPerMessage == 0 {
		return 0
	}
	return s.UsableBytes / bytesPerMessage
}

// MessagesAtAvgChars is MessagesAtAvg for text measured in characters,
// assuming roughly 1.5 bytes per character (UTF-8 with some emoji and
// other multi-byte runes).
func (s PadStats) MessagesAtAvgChars(avgChars int) int {
	avgBytes := (avgChars * 3) / 2
	return s.MessagesAtAvg(avgBytes)
}

// BytesForMessages returns the total pad bytes consumed by count
// messages of avgMessageBytes average size.
func (s PadStats) BytesForMessages(count, avgMessageBytes int) int {
	return count * (AuthOverhead + avgMessageBytes)
}

// RemainingAfter returns the pad bytes and message count still
// available after sending messagesSent messages of avgMessageBytes
// average size.
func (s PadStats) RemainingAfter(messagesSent, avgMessageBytes int) (remainingBytes, remainingMessages int) {
	consumed := s.BytesForMessages(messagesSent, avgMessageBytes)
	remaining := s.UsableBytes - consumed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, remaining / (AuthOverhead + avgMessageBytes)
}

// CalculatePadStats computes PadStats for padSize using
// DefaultQRBlockSize.
func CalculatePadStats(padSize int) PadStats {
	return CalculatePadStatsWithQRSize(padSize, DefaultQRBlockSize)
}

// CalculatePadStatsWithQRSize computes PadStats for padSize using a
// caller-supplied QR block size.
func CalculatePadStatsWithQRSize(padSize, qrBlockSize int) PadStats {
	usable := padSize - ReservedForTokens
	if usable < 0 {
		usable = 0
	}

	var qrCodesNeeded int
	if qrBlockSize != 0 {
		qrCodesNeeded = (padSize + qrBlockSize - 1) / qrBlockSize
	}

	return PadStats{
		PadSize:                  padSize,
		UsableBytes:              usable,
		AuthOverheadPerMessage:   AuthOverhead,
		QRCodesNeeded:            qrCodesNeeded,
		BytesPerQR:               qrBlockSize,
		EstimatedTransferSeconds: float64(qrCodesNeeded) / defaultQRScanRate,
	}
}

// PadCalculator builds a PadStats with configurable QR parameters.
type PadCalculator struct {
	PadSize     int
	QRBlockSize int
	QRScanRate  float64
}

// NewPadCalculator returns a calculator with default QR settings for
// padSize.
func NewPadCalculator(padSize int) *PadCalculator {
	return &PadCalculator{
		PadSize:     padSize,
		QRBlockSize: DefaultQRBlockSize,
		QRScanRate:  defaultQRScanRate,
	}
}

// WithQRBlockSize sets a custom QR block size and returns the receiver
// for chaining.
func (c *PadCalculator) WithQRBlockSize(size int) *PadCalculator {
	c.QRBlockSize = size
	return c
}

// WithQRScanRate sets the assumed scan rate and returns the receiver
// for chaining.
func (c *PadCalculator) WithQRScanRate(rate float64) *PadCalculator {
	c.QRScanRate = rate
	return c
}

// Calculate computes PadStats from the calculator's current settings.
func (c *PadCalculator) Calculate() PadStats {
	usable := c.PadSize - ReservedForTokens
	if usable < 0 {
		usable = 0
	}

	var qrCodesNeeded int
	if c.QRBlockSize != 0 {
		qrCodesNeeded = (c.PadSize + c.QRBlockSize - 1) / c.QRBlockSize
	}

	var estimatedSeconds float64
	if c.QRScanRate > 0 {
		estimatedSeconds = float64(qrCodesNeeded) / c.QRScanRate
	}

	return PadStats{
		PadSize:                  c.PadSize,
		UsableBytes:              usable,
		AuthOverheadPerMessage:   AuthOverhead,
		QRCodesNeeded:            qrCodesNeeded,
		BytesPerQR:               c.QRBlockSize,
		EstimatedTransferSeconds: estimatedSeconds,
	}
}

// MessageCapacityPoint is one row of a message-capacity table.
type MessageCapacityPoint struct {
	AvgSize int
	Count   int
}

// MessageCapacityTable returns message capacity at a spread of typical
// average message sizes.
func (c *PadCalculator) MessageCapacityTable() []MessageCapacityPoint {
	stats := c.Calculate()
	sizes := []int{50, 100, 200, 500, 1000}
	table := make([]MessageCapacityPoint, len(sizes))
	for i, size := range sizes {
		table[i] = MessageCapacityPoint{AvgSize: size, Count: stats.MessagesAtAvg(size)}
	}
	return table
}

// FormatBytes renders a byte count as a human-readable string.
func FormatBytes(bytes int) string {
	const unit = 1024.0
	switch {
	case bytes >= unit*unit*unit:
		return fmt.Sprintf("%.2f GB", float64(bytes)/(unit*unit*unit))
	case bytes >= unit*unit:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(unit*unit))
	case bytes >= unit:
		return fmt.Sprintf("%.2f KB", float64(bytes)/unit)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// FormatDuration renders a duration in seconds as a human-readable
// string.
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.1f seconds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.1f minutes", seconds/60)
	default:
		return fmt.Sprintf("%.1f hours", seconds/3600)
	}
}
