package health

import "context"

// Pinger is the Redis connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports a missing or unreadable vector index.
type IndexChecker interface {
	CheckIndex(ctx context.Context) error
}

// EmbeddingChecker reports an unreachable embedding provider.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
