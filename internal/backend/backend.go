// Package backend builds the persistence and messaging dependencies shared
// by the API server and the worker.
package backend

import (
	"context"

	"mealbills/internal/amqp"
	"mealbills/internal/storage"
)

// CleanupFunc releases resources held by a Result.
type CleanupFunc func() error

// Result is a ready store plus the optional AMQP client.
type Result struct {
	Store storage.Store
	// AMQP is nil when messaging is disabled or the broker is unreachable.
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type         BackendType
	SQLiteDBPath string
	AMQP         amqp.Config
	// RequireAMQP turns an unreachable broker into an error instead of a
	// warning. The worker cannot run without one.
	RequireAMQP bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
