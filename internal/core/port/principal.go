package port

import (
	"context"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
)

// PrincipalProvider resolves the currently authenticated account for the
// active request context. How the identity was established (token, session)
// is opaque to consumers.
type PrincipalProvider interface {
	CurrentPrincipal(ctx context.Context) (*domain.Account, error)
}
