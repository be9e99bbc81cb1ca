package messaging

import (
	"context"

	"github.com/carbonix/carbonix-indexer/internal/domain"
)

// Publisher defines the interface for publishing snapshot events to a message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishSnapshot publishes a snapshot-updated event to the message broker
	PublishSnapshot(ctx context.Context, event *domain.SnapshotEvent) error
	// Close closes the connection
	Close()
}
