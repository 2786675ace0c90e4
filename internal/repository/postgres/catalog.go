package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/repository"
)

// CategoryRepository implements port.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCategoryRepository constructs a CategoryRepository.
func NewCategoryRepository(exec pgExecutor) *CategoryRepository {
	return &CategoryRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var categoryColumns = []string{"id", "name", "slug", "parent_id", "created_at", "updated_at"}

// Create inserts a category row.
func (r *CategoryRepository) Create(ctx context.Context, category domain.Category) (*domain.Category, error) {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	if category.UpdatedAt.IsZero() {
		category.UpdatedAt = category.CreatedAt
	}

	sql, args, err := r.builder.Insert("ligera.categories").
		Columns(categoryColumns...).
		Values(category.ID, category.Name, category.Slug, category.ParentID, category.CreatedAt, category.UpdatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert category sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}

	return &category, nil
}

// FindByID retrieves a category by identifier.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindBySlug retrieves a category by its slug.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.findOne(ctx, squirrel.Eq{"slug": slug})
}

func (r *CategoryRepository) findOne(ctx context.Context, pred any) (*domain.Category, error) {
	stmt, args, err := r.builder.
		Select(categoryColumns...).
		From("ligera.categories").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select category sql: %w", err)
	}

	var category domain.Category
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.ParentID,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &category, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	stmt, args, err := r.builder.
		Select(categoryColumns...).
		From("ligera.categories").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list categories sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Slug,
			&category.ParentID,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

var _ port.CategoryRepository = (*CategoryRepository)(nil)

// ProductRepository implements port.ProductRepository using PostgreSQL.
type ProductRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProductRepository constructs a ProductRepository.
func NewProductRepository(exec pgExecutor) *ProductRepository {
	return &ProductRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var productColumns = []string{
	"id",
	"category_id",
	"name",
	"description",
	"price_cents",
	"sizes",
	"image_key",
	"archived",
	"created_at",
	"updated_at",
}

// Create inserts a product row.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = product.CreatedAt
	}

	sql, args, err := r.builder.Insert("ligera.products").
		Columns(productColumns...).
		Values(
			product.ID,
			product.CategoryID,
			product.Name,
			product.Description,
			product.PriceCents,
			product.Sizes,
			product.ImageKey,
			product.Archived,
			product.CreatedAt,
			product.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert product sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	return &product, nil
}

// FindByID retrieves a product by identifier.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	stmt, args, err := r.builder.
		Select(productColumns...).
		From("ligera.products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product sql: %w", err)
	}

	var product domain.Product
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&product.ID,
		&product.CategoryID,
		&product.Name,
		&product.Description,
		&product.PriceCents,
		&product.Sizes,
		&product.ImageKey,
		&product.Archived,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &product, nil
}

func (r *ProductRepository) applyFilter(query squirrel.SelectBuilder, filter port.ProductFilter) squirrel.SelectBuilder {
	if filter.CategoryID != "" {
		query = query.Where(squirrel.Eq{"category_id": filter.CategoryID})
	}
	if !filter.IncludeArchived {
		query = query.Where(squirrel.Eq{"archived": false})
	}
	return query
}

// List returns products with optional filtering and pagination.
func (r *ProductRepository) List(ctx context.Context, filter port.ProductFilter) ([]domain.Product, error) {
	query := r.applyFilter(
		r.builder.Select(productColumns...).From("ligera.products").OrderBy("created_at DESC"),
		filter,
	)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.CategoryID,
			&product.Name,
			&product.Description,
			&product.PriceCents,
			&product.Sizes,
			&product.ImageKey,
			&product.Archived,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Count returns the number of products matching the filter.
func (r *ProductRepository) Count(ctx context.Context, filter port.ProductFilter) (int, error) {
	query := r.applyFilter(r.builder.Select("COUNT(*)").From("ligera.products"), filter)

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count products sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan products count: %w", err)
	}

	return int(count), nil
}

// Save persists the mutable product fields.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Update("ligera.products").
		Set("category_id", product.CategoryID).
		Set("name", product.Name).
		Set("description", product.Description).
		Set("price_cents", product.PriceCents).
		Set("sizes", product.Sizes).
		Set("archived", product.Archived).
		Set("updated_at", product.UpdatedAt).
		Where(squirrel.Eq{"id": product.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update product sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}

	return &product, nil
}

// SetImageKey records the object-store key of the product image.
func (r *ProductRepository) SetImageKey(ctx context.Context, id string, imageKey string) error {
	stmt, args, err := r.builder.Update("ligera.products").
		Set("image_key", imageKey).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product image sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update product image: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Archive marks a product as no longer listed.
func (r *ProductRepository) Archive(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("ligera.products").
		Set("archived", true).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build archive product sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("archive product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.ProductRepository = (*ProductRepository)(nil)
