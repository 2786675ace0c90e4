package port

import (
	"context"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
)

// ProfileCache is a best-effort read-through cache for account profiles.
// A miss returns (nil, nil); cache failures must never fail the read path.
type ProfileCache interface {
	Get(ctx context.Context, accountID string) (*domain.Profile, error)
	Set(ctx context.Context, profile domain.Profile) error
	Invalidate(ctx context.Context, accountID string) error
}
