package port

import (
	"context"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID      string
	IncludeArchived bool
	Limit           int
	Offset          int
}

// CategoryRepository exposes persistence behavior for catalog categories.
type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) (*domain.Category, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// ProductRepository exposes persistence behavior for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
	Save(ctx context.Context, product domain.Product) (*domain.Product, error)
	SetImageKey(ctx context.Context, id string, imageKey string) error
	Archive(ctx context.Context, id string) error
}
