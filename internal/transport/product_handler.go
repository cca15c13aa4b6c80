package transport

import (
	"net/http"
	"strconv"
	"time"

	"tienda/internal/domain"
	"tienda/internal/middleware"
	"tienda/internal/repository"
	"tienda/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// timeFormat is the timestamp layout used across API responses.
const timeFormat = time.RFC3339

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=500"`
	Price       string `json:"price" validate:"required"`
	Currency    string `json:"currency" validate:"required,len=3"`
	CategoryID  string `json:"category_id" validate:"required,uuid"`
}

// UpdateProductRequest represents the product info update payload
type UpdateProductRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// ChangePriceRequest represents the price change payload
type ChangePriceRequest struct {
	Price    string `json:"price" validate:"required"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// AddImageRequest represents the image upload payload
type AddImageRequest struct {
	URL     string `json:"url" validate:"required,url"`
	AltText string `json:"alt_text" validate:"required"`
	Order   int    `json:"order" validate:"gte=0"`
}

// ImageView represents one product image in responses
type ImageView struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
	Order   int    `json:"order"`
}

// ProductView represents a product in responses
type ProductView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       string      `json:"price"`
	Currency    string      `json:"currency"`
	CategoryID  string      `json:"category_id"`
	Available   bool        `json:"available"`
	Images      []ImageView `json:"images"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
}

// ProductListResponse represents a paginated product listing
type ProductListResponse struct {
	Products []ProductView `json:"products"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func toProductView(p *domain.Product) ProductView {
	images := []ImageView{}
	for _, img := range p.Images() {
		images = append(images, ImageView{
			ID:      img.ID().String(),
			URL:     img.URL(),
			AltText: img.AltText(),
			Order:   img.Order(),
		})
	}
	return ProductView{
		ID:          p.ID().String(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price().Amount().StringFixed(2),
		Currency:    p.Price().Currency(),
		CategoryID:  p.CategoryID().String(),
		Available:   p.Available(),
		Images:      images,
		CreatedAt:   p.CreatedAt().Format(timeFormat),
		UpdatedAt:   p.UpdatedAt().Format(timeFormat),
	}
}

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads are public; catalog
// management requires an authenticated admin.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Put("/{id}/price", h.ChangePrice)
			r.Post("/{id}/activate", h.Activate)
			r.Post("/{id}/deactivate", h.Deactivate)
			r.Post("/{id}/images", h.AddImage)
			r.Delete("/{id}/images/{imageID}", h.RemoveImage)
		})
	})
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (domain.ProductID, bool) {
	id, err := domain.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return domain.ProductID{}, false
	}
	return id, true
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product creation validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return
	}

	categoryID, err := domain.ParseCategoryID(req.CategoryID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), req.Name, req.Description, price, req.Currency, categoryID)
	if err != nil {
		h.logger.Debug("Product creation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID().String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductView(product))
}

// Get handles fetching a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductView(product))
}

// List handles listing products with filters, pagination and sorting
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var categoryID *domain.CategoryID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := domain.ParseCategoryID(raw)
		if err != nil {
			middleware.RespondWithDomainError(w, err)
			return
		}
		categoryID = &id
	}

	sortBy := r.URL.Query().Get("sort_by")
	sortOrder := repository.SortOrder(r.URL.Query().Get("sort_order"))

	products, total, err := h.catalogService.ListProducts(r.Context(), categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Product listing failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	views := []ProductView{}
	for _, p := range products {
		views = append(views, toProductView(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: views,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Update handles renaming and redescribing a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.UpdateProductInfo(r.Context(), id, req.Name, req.Description)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductView(product))
}

// Delete handles removing a product from the catalog
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ChangePrice handles product price changes
func (h *ProductHandler) ChangePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req ChangePriceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return
	}

	product, err := h.catalogService.ChangeProductPrice(r.Context(), id, price, req.Currency)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductView(product))
}

// Activate handles publishing a product
func (h *ProductHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.ActivateProduct(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Product activated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toProductView(product))
}

// Deactivate handles unpublishing a product
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.DeactivateProduct(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductView(product))
}

// AddImage handles adding an image to the product gallery
func (h *ProductHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req AddImageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.AddProductImage(r.Context(), id, req.URL, req.AltText, req.Order)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductView(product))
}

// RemoveImage handles removing an image from the product gallery
func (h *ProductHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	product, err := h.catalogService.RemoveProductImage(r.Context(), id, imageID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductView(product))
}
