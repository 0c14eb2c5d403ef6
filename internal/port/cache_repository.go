package port

import (
	"context"

	"github.com/rl1809/commerce-kit/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a key claimed by a request that did not complete
	ReleaseIdempotency(ctx context.Context, key string) error

	// GetFulfillment returns a cached status read, or nil on a miss
	GetFulfillment(ctx context.Context, id int64) (*domain.Fulfillment, error)

	SetFulfillment(ctx context.Context, f *domain.Fulfillment) error
}
