package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/repository"
)

var (
	// ErrCategoryNotFound indicates the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductNotFound indicates the referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrSlugTaken indicates the category slug is already in use.
	ErrSlugTaken = errors.New("slug already in use")
)

// ProductPage bundles a product listing with its total count.
type ProductPage struct {
	Products []domain.Product
	Total    int
}

// ProductImageUpload carries an image payload for a product.
type ProductImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// CatalogService manages the category tree and product listings.
type CatalogService struct {
	categories    port.CategoryRepository
	products      port.ProductRepository
	images        port.ObjectStore
	presignExpiry time.Duration
	logger        *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(categories port.CategoryRepository, products port.ProductRepository, images port.ObjectStore, presignExpiry time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &CatalogService{
		categories:    categories,
		products:      products,
		images:        images,
		presignExpiry: presignExpiry,
		logger:        logger,
	}
}

// ListCategories returns the category tree in name order.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category by identifier.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("lookup category: %w", err)
	}
	return category, nil
}

// CreateCategory validates and persists a new category. Slugs are unique;
// a duplicate surfaces as ErrSlugTaken.
func (s *CatalogService) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))

	if err := category.Validate(); err != nil {
		return nil, err
	}

	if category.ParentID != nil {
		if _, err := s.categories.FindByID(ctx, *category.ParentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("lookup parent category: %w", err)
		}
	}

	created, err := s.categories.Create(ctx, category)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return created, nil
}

// ListProducts returns a filtered, paginated product page.
func (s *CatalogService) ListProducts(ctx context.Context, filter port.ProductFilter) (*ProductPage, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	return &ProductPage{Products: products, Total: total}, nil
}

// GetProduct returns a product by identifier.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	return product, nil
}

// CreateProduct validates the listing and its category before persisting.
func (s *CatalogService) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.categories.FindByID(ctx, product.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("lookup category: %w", err)
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return created, nil
}

// UpdateProduct persists the mutable listing fields of an existing product.
func (s *CatalogService) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)

	if err := product.Validate(); err != nil {
		return nil, err
	}

	current, err := s.products.FindByID(ctx, product.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	if product.CategoryID != current.CategoryID {
		if _, err := s.categories.FindByID(ctx, product.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("lookup category: %w", err)
		}
	}

	product.ImageKey = current.ImageKey
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	saved, err := s.products.Save(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("save product: %w", err)
	}

	return saved, nil
}

// ArchiveProduct removes a product from listings without deleting it.
func (s *CatalogService) ArchiveProduct(ctx context.Context, id string) error {
	if err := s.products.Archive(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("archive product: %w", err)
	}
	return nil
}

// AttachProductImage uploads the image to the object store and records its
// key on the product.
func (s *CatalogService) AttachProductImage(ctx context.Context, productID string, upload ProductImageUpload) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("object store not configured")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrProductNotFound
		}
		return "", fmt.Errorf("lookup product: %w", err)
	}

	key := fmt.Sprintf("products/%s/%s", product.ID, uuid.NewString())
	if err := s.images.Put(ctx, key, upload.Reader, upload.Size, upload.ContentType); err != nil {
		return "", fmt.Errorf("store product image: %w", err)
	}

	if err := s.products.SetImageKey(ctx, product.ID, key); err != nil {
		return "", fmt.Errorf("record product image: %w", err)
	}

	if product.ImageKey != "" {
		if err := s.images.Delete(ctx, product.ImageKey); err != nil {
			s.logger.Warn("delete replaced product image", zap.Error(err), zap.String("key", product.ImageKey))
		}
	}

	return key, nil
}

// ImageURL resolves a presigned download link for the product image. Empty
// for products without an image.
func (s *CatalogService) ImageURL(ctx context.Context, product domain.Product) string {
	if s.images == nil || product.ImageKey == "" {
		return ""
	}

	url, err := s.images.PresignedGetURL(ctx, product.ImageKey, s.presignExpiry)
	if err != nil {
		s.logger.Warn("presign product image", zap.Error(err), zap.String("key", product.ImageKey))
		return ""
	}

	return url
}
