package cdc

import "context"

// ChangePublisher is an interface for publishing CDC change messages
type ChangePublisher interface {
	// PublishChanges publishes a batch of change events to the next stage
	// Returns a channel that will receive true when all messages are successfully published
	// The entire batch should succeed or fail atomically
	PublishChanges(changes []ChangeEvent) (<-chan bool, error)

	// Close releases any resources used by the publisher
	Close() error
}

// ColumnSource looks up the declared columns of a table
type ColumnSource interface {
	// Columns returns the columns of the named table, optionally schema qualified ("public.users")
	Columns(ctx context.Context, table string) ([]Column, error)
}
