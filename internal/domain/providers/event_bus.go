package providers

import (
	"context"
	"strings"

	"github.com/svasikarla/USInsuranceDetails-sub001/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.DocumentEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.DocumentEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelDocumentUpdates is the channel for all document updates
	EventChannelDocumentUpdates = "document:updates"

	// EventChannelDocumentPrefix is the prefix for document-specific channels
	EventChannelDocumentPrefix = "document:"
)

// GetDocumentChannel returns the channel name for a specific document
func GetDocumentChannel(documentID string) string {
	return EventChannelDocumentPrefix + documentID
}

// DocumentIDFromChannel returns the document a document-specific channel
// belongs to. The shared updates channel belongs to no single document.
func DocumentIDFromChannel(channel string) (string, bool) {
	if channel == EventChannelDocumentUpdates || !strings.HasPrefix(channel, EventChannelDocumentPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(channel, EventChannelDocumentPrefix)
	return id, id != ""
}
