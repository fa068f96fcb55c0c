package backend

import (
	"context"

	"billed/internal/store"
)

// Backend is the store the web server runs against.
type Backend interface {
	store.BillStore
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional extras.
// Attachments is nil when the backend serves receipts from elsewhere.
type BackendResult struct {
	Backend     Backend
	Attachments store.AttachmentReader
	Ready       func(ctx context.Context) error
	Cleanup     CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Remote specific
	RemoteAPIURL   string
	RemoteAPIToken string

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	RemoteBackend BackendType = "remote"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, RemoteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
