package utils

import (
	"context"
	"time"
)

// Query timeouts for the raw session-store paths
const (
	DefaultQueryTimeout = 30 * time.Second
	FastQueryTimeout    = 10 * time.Second
)

// QueryContext returns a context with the given timeout for database work
func QueryContext(parentCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return context.WithTimeout(parentCtx, timeout)
}

// DefaultQueryContext returns a context with the default query timeout
func DefaultQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return QueryContext(parentCtx, DefaultQueryTimeout)
}
