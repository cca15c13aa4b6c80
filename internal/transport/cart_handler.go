package transport

import (
	"net/http"

	"tienda/internal/domain"
	"tienda/internal/middleware"
	"tienda/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddCartItemRequest represents the add-to-cart payload
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=10"`
}

// ModifyQuantityRequest represents the quantity change payload
type ModifyQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=10"`
}

// ApplyDiscountRequest represents the discount payload
type ApplyDiscountRequest struct {
	Code    string `json:"code" validate:"required"`
	Kind    string `json:"kind" validate:"required,oneof=PERCENTAGE SEASONAL PROMOTION"`
	Percent string `json:"percent" validate:"required"`
}

// CartItemView represents one cart line in responses
type CartItemView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// DiscountView represents the applied discount in responses
type DiscountView struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Percent string `json:"percent"`
}

// CartView represents a cart in responses
type CartView struct {
	ID        string         `json:"id"`
	ClientID  string         `json:"client_id"`
	State     string         `json:"state"`
	Items     []CartItemView `json:"items"`
	Discount  *DiscountView  `json:"discount,omitempty"`
	Subtotal  string         `json:"subtotal"`
	Total     string         `json:"total"`
	Currency  string         `json:"currency"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

func toCartView(c *domain.Cart) CartView {
	items := []CartItemView{}
	for _, item := range c.Items() {
		items = append(items, CartItemView{
			ProductID: item.Product().ProductID().String(),
			Name:      item.Product().Name(),
			SKU:       item.Product().SKU(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().Amount().StringFixed(2),
			Subtotal:  item.Subtotal().Amount().StringFixed(2),
		})
	}
	view := CartView{
		ID:        c.ID().String(),
		ClientID:  c.ClientID().String(),
		State:     string(c.State()),
		Items:     items,
		Subtotal:  c.Subtotal().Amount().StringFixed(2),
		Total:     c.Total().Amount().StringFixed(2),
		Currency:  c.Subtotal().Currency(),
		CreatedAt: c.CreatedAt().Format(timeFormat),
		UpdatedAt: c.UpdatedAt().Format(timeFormat),
	}
	if d := c.Discount(); d != nil {
		view.Discount = &DiscountView{
			Code:    d.Code(),
			Kind:    string(d.Kind()),
			Percent: d.Percent().String(),
		}
	}
	return view
}

// CartHandler handles HTTP requests for shopping carts
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes. Every route requires an
// authenticated client; a client can only touch their own carts.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetActiveCart)
	})

	r.Route("/api/carts/{id}", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.ModifyQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Delete("/items", h.Clear)
		r.Post("/discount", h.ApplyDiscount)
		r.Post("/checkout", h.Checkout)
		r.Post("/abandon", h.Abandon)
	})
}

// clientID extracts the authenticated client's id from the request context
func clientID(w http.ResponseWriter, r *http.Request) (domain.ClientID, bool) {
	raw, ok := middleware.GetClientID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return domain.ClientID{}, false
	}
	id, err := domain.ParseClientID(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return domain.ClientID{}, false
	}
	return id, true
}

// ownedCart loads the cart from the URL and verifies the authenticated
// client owns it. Foreign carts read as not found, not forbidden, so cart
// ids cannot be probed.
func (h *CartHandler) ownedCart(w http.ResponseWriter, r *http.Request) (*domain.Cart, bool) {
	owner, ok := clientID(w, r)
	if !ok {
		return nil, false
	}

	id, err := domain.ParseCartID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return nil, false
	}

	cart, err := h.cartService.GetCart(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return nil, false
	}

	if cart.ClientID() != owner {
		middleware.RespondWithError(w, http.StatusNotFound, "cart not found")
		return nil, false
	}

	return cart, true
}

func (h *CartHandler) productParam(w http.ResponseWriter, r *http.Request) (domain.ProductID, bool) {
	id, err := domain.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return domain.ProductID{}, false
	}
	return id, true
}

// GetActiveCart returns the client's current active cart, opening one if
// needed
func (h *CartHandler) GetActiveCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := clientID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetOrCreateActiveCart(r.Context(), owner)
	if err != nil {
		h.logger.Error("Failed to get active cart", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}

// Get handles fetching a cart by id
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}

// AddItem handles adding a product to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := domain.ParseProductID(req.ProductID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	cart, err = h.cartService.AddItem(r.Context(), cart.ID(), productID, req.Quantity)
	if err != nil {
		h.logger.Debug("Add to cart failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}

// ModifyQuantity handles changing the quantity of a cart line
func (h *CartHandler) ModifyQuantity(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	productID, ok := h.productParam(w, r)
	if !ok {
		return
	}

	var req ModifyQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.cartService.ModifyItemQuantity(r.Context(), cart.ID(), productID, req.Quantity)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}

// RemoveItem handles dropping a product line from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	productID, ok := h.productParam(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), cart.ID(), productID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}

// Clear handles emptying the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.ClearCart(r.Context(), cart.ID())
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}

// ApplyDiscount handles attaching a discount to the cart
func (h *CartHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	var req ApplyDiscountRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	percent, err := decimal.NewFromString(req.Percent)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid percent")
		return
	}

	cart, err = h.cartService.ApplyDiscount(r.Context(), cart.ID(), req.Code, domain.DiscountKind(req.Kind), percent)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}

// Checkout handles freezing the cart for order creation
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Checkout(r.Context(), cart.ID())
	if err != nil {
		h.logger.Debug("Checkout failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Cart checked out", zap.String("cart_id", cart.ID().String()))
	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}

// Abandon handles giving up a checked-out cart
func (h *CartHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ownedCart(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.AbandonCart(r.Context(), cart.ID())
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartView(cart))
}
