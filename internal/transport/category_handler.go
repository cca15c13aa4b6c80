package transport

import (
	"net/http"

	"tienda/internal/domain"
	"tienda/internal/middleware"
	"tienda/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateCategoryRequest represents the category update payload
type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// AssignParentRequest represents the parent assignment payload. A null
// parent_id clears the parent.
type AssignParentRequest struct {
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// CategoryView represents a category in responses
type CategoryView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toCategoryView(c *domain.Category) CategoryView {
	view := CategoryView{
		ID:          c.ID().String(),
		Name:        c.Name(),
		Description: c.Description(),
		CreatedAt:   c.CreatedAt().Format(timeFormat),
		UpdatedAt:   c.UpdatedAt().Format(timeFormat),
	}
	if pid := c.ParentID(); pid != nil {
		s := pid.String()
		view.ParentID = &s
	}
	return view
}

// CategoryHandler handles HTTP requests for catalog categories
type CategoryHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalogService service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all category routes. Reads are public; category
// management requires an authenticated admin.
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Put("/{id}/parent", h.AssignParent)
		})
	})
}

func (h *CategoryHandler) categoryID(w http.ResponseWriter, r *http.Request) (domain.CategoryID, bool) {
	id, err := domain.ParseCategoryID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return domain.CategoryID{}, false
	}
	return id, true
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.logger.Debug("Category creation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID().String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toCategoryView(category))
}

// Get handles fetching a single category
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryView(category))
}

// List handles listing every category
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Category listing failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	views := []CategoryView{}
	for _, c := range categories {
		views = append(views, toCategoryView(c))
	}

	middleware.RespondWithJSON(w, http.StatusOK, views)
}

// Update handles renaming and redescribing a category
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalogService.UpdateCategory(r.Context(), id, req.Name, req.Description)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryView(category))
}

// AssignParent handles setting or clearing a category's parent
func (h *CategoryHandler) AssignParent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.categoryID(w, r)
	if !ok {
		return
	}

	var req AssignParentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var parentID *domain.CategoryID
	if req.ParentID != nil {
		pid, err := domain.ParseCategoryID(*req.ParentID)
		if err != nil {
			middleware.RespondWithDomainError(w, err)
			return
		}
		parentID = &pid
	}

	category, err := h.catalogService.AssignCategoryParent(r.Context(), id, parentID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryView(category))
}
