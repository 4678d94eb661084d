// Package notify defines the relay's push-notification boundary.
// Actual push delivery (APNs, FCM, or any other provider) is out of
// scope for this module: it requires third-party credentials, network
// egress to a vendor endpoint, and platform-specific payload signing
// that have nothing to do with ASH's ephemeral-message contract.
// What is in scope is the dispatcher's side of that boundary —
// deciding when a notification should fire and handing it to whatever
// Notifier a deployment wires in. The default Notifier only logs.
package notify

import (
	"log/slog"

	"github.com/ashmsg/ash/relay/store"
)

// Event is a best-effort notification the dispatcher wants delivered
// to a conversation's registered devices.
type Event struct {
	ConversationID string
	Kind           EventKind
}

// EventKind distinguishes the two notification triggers spec.md names:
// a new message arriving, and a conversation being burned.
type EventKind int

const (
	EventMessage EventKind = iota
	EventBurned
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventBurned:
		return "burned"
	default:
		return "unknown"
	}
}

// Notifier delivers best-effort push notifications. Notify must not
// block the caller for long: device notifications race with burns and
// with the conversation's own TTL expiry, and that race is an accepted
// outcome, not a bug, so a Notifier should fail fast rather than retry.
type Notifier interface {
	Notify(event Event, devices []store.DeviceRegistration)
}

// LoggingNotifier is the default Notifier: it logs what it would have
// sent and sends nothing. It lets a relay run end to end without any
// push credentials configured, matching spec.md's push-delivery
// non-goal while still exercising the dispatch-time decision of which
// devices would be notified.
type LoggingNotifier struct {
	Logger *slog.Logger
}

// NewLoggingNotifier returns a LoggingNotifier using logger, or
// slog.Default() if logger is nil.
func NewLoggingNotifier(logger *slog.Logger) *LoggingNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingNotifier{Logger: logger}
}

// Notify logs the event and the device count; it never dials out.
func (n *LoggingNotifier) Notify(event Event, devices []store.DeviceRegistration) {
	n.Logger.Debug("notification suppressed (no delivery backend configured)",
		"conversation_id", event.ConversationID,
		"kind", event.Kind.String(),
		"device_count", len(devices),
	)
}
