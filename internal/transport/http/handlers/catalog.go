package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/usecase"
)

const maxProductImageSize = 10 << 20

// CatalogHandler exposes category and product endpoints.
type CatalogHandler struct {
	catalog *usecase.CatalogService
}

func NewCatalogHandler(catalog *usecase.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterPublicRoutes binds read-only catalog endpoints.
func (h *CatalogHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:id", h.GetCategory)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
}

// RegisterAdminRoutes binds catalog mutation endpoints.
func (h *CatalogHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("/categories", h.CreateCategory)
	r.POST("/products", h.CreateProduct)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.ArchiveProduct)
	r.POST("/products/:id/image", h.UploadProductImage)
}

var catalogErrorCases = []ErrorCase{
	{Err: usecase.ErrCategoryNotFound, Status: http.StatusNotFound, Message: "category not found"},
	{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "product not found"},
	{Err: usecase.ErrSlugTaken, Status: http.StatusConflict, Message: "slug already in use"},
}

// ListCategories returns the full category tree.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to list categories")
		return
	}

	resp := CategoryListResponse{Categories: make([]CategoryPayload, 0, len(categories))}
	for i := range categories {
		resp.Categories = append(resp.Categories, newCategoryPayload(&categories[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// GetCategory returns a single category.
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to load category")
		return
	}

	c.JSON(http.StatusOK, newCategoryPayload(category))
}

// CreateCategory adds a category to the tree.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBindingError(c, err, "invalid category payload")
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), domain.Category{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
	})
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to create category")
		return
	}

	c.JSON(http.StatusCreated, newCategoryPayload(category))
}

// ListProducts returns a filtered, paginated product listing.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := port.ProductFilter{
		CategoryID: c.Query("category_id"),
		Limit:      parseIntQuery(c, "limit", 20),
		Offset:     parseIntQuery(c, "offset", 0),
	}

	page, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to list products")
		return
	}

	resp := ProductListResponse{
		Products: make([]ProductPayload, 0, len(page.Products)),
		Total:    page.Total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	for i := range page.Products {
		resp.Products = append(resp.Products, h.newProductPayload(c, &page.Products[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// GetProduct returns a single product.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to load product")
		return
	}

	c.JSON(http.StatusOK, h.newProductPayload(c, product))
}

// CreateProduct adds a product listing.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req ProductUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBindingError(c, err, "invalid product payload")
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), domain.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Sizes:       req.Sizes,
	})
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, h.newProductPayload(c, product))
}

// UpdateProduct persists the mutable listing fields of a product.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req ProductUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBindingError(c, err, "invalid product payload")
		return
	}

	product := domain.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Sizes:       req.Sizes,
	}
	product.ID = c.Param("id")

	updated, err := h.catalog.UpdateProduct(c.Request.Context(), product)
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, h.newProductPayload(c, updated))
}

// ArchiveProduct hides a product from listings.
func (h *CatalogHandler) ArchiveProduct(c *gin.Context) {
	if err := h.catalog.ArchiveProduct(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to archive product")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "product archived"})
}

// UploadProductImage attaches an image from a multipart form to a product.
func (h *CatalogHandler) UploadProductImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest,
			NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "image file is required"))
		return
	}

	if fileHeader.Size > maxProductImageSize {
		c.JSON(http.StatusRequestEntityTooLarge,
			NewErrorResponse(c, http.StatusRequestEntityTooLarge, "Payload Too Large", "image exceeds size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest,
			NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "failed to read image file"))
		return
	}
	defer file.Close()

	key, err := h.catalog.AttachProductImage(c.Request.Context(), c.Param("id"), usecase.ProductImageUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "failed to store product image")
		return
	}

	c.JSON(http.StatusCreated, ProductImageResponse{Key: key})
}

func (h *CatalogHandler) newProductPayload(c *gin.Context, product *domain.Product) ProductPayload {
	return ProductPayload{
		ID:          product.ID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Sizes:       product.Sizes,
		ImageURL:    h.catalog.ImageURL(c.Request.Context(), *product),
		Archived:    product.Archived,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}

	return value
}
