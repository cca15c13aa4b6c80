package transport

import (
	"net/http"

	"tienda/internal/domain"
	"tienda/internal/middleware"
	"tienda/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateOrderRequest represents the order creation payload
type CreateOrderRequest struct {
	CartID        string `json:"cart_id" validate:"required,uuid"`
	RecipientName string `json:"recipient_name" validate:"required"`
	Street        string `json:"street" validate:"required"`
	City          string `json:"city" validate:"required"`
	Region        string `json:"region" validate:"required"`
	PostalCode    string `json:"postal_code" validate:"required,len=5,numeric"`
	Country       string `json:"country" validate:"required"`
	Phone         string `json:"phone" validate:"required,len=10,numeric"`
	Instructions  string `json:"instructions"`
}

// ProcessPaymentRequest represents the payment recording payload
type ProcessPaymentRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// ShipOrderRequest represents the carrier hand-off payload
type ShipOrderRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required"`
	Carrier        string `json:"carrier" validate:"required"`
}

// CancelOrderRequest represents the cancellation payload
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderItemView represents one order line in responses
type OrderItemView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// AddressView represents the shipping address in responses
type AddressView struct {
	RecipientName string `json:"recipient_name"`
	Street        string `json:"street"`
	City          string `json:"city"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`
	Instructions  string `json:"instructions,omitempty"`
}

// PaymentView represents the recorded payment in responses
type PaymentView struct {
	Method      string `json:"method"`
	Reference   string `json:"reference"`
	Approved    bool   `json:"approved"`
	ProcessedAt string `json:"processed_at"`
}

// ShippingView represents the carrier hand-off in responses
type ShippingView struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
	ShippedAt      string `json:"shipped_at"`
}

// StateChangeView represents one history entry in responses
type StateChangeView struct {
	From   string `json:"from"`
	To     string `json:"to"`
	At     string `json:"at"`
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// OrderView represents an order in responses
type OrderView struct {
	ID          string            `json:"id"`
	OrderNumber string            `json:"order_number"`
	ClientID    string            `json:"client_id"`
	State       string            `json:"state"`
	Items       []OrderItemView   `json:"items"`
	Address     AddressView       `json:"address"`
	Total       string            `json:"total"`
	Currency    string            `json:"currency"`
	Payment     *PaymentView      `json:"payment,omitempty"`
	Shipping    *ShippingView     `json:"shipping,omitempty"`
	History     []StateChangeView `json:"history"`
	CreatedAt   string            `json:"created_at"`
}

func toOrderView(o *domain.Order) OrderView {
	items := []OrderItemView{}
	for _, item := range o.Items() {
		items = append(items, OrderItemView{
			ProductID: item.ProductID().String(),
			Name:      item.ProductName(),
			SKU:       item.SKU(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().Amount().StringFixed(2),
			Subtotal:  item.Subtotal().Amount().StringFixed(2),
		})
	}

	history := []StateChangeView{}
	for _, change := range o.History() {
		history = append(history, StateChangeView{
			From:   string(change.From),
			To:     string(change.To),
			At:     change.At.Format(timeFormat),
			Reason: change.Reason,
			Actor:  change.Actor,
		})
	}

	addr := o.Address()
	view := OrderView{
		ID:          o.ID().String(),
		OrderNumber: o.OrderNumber(),
		ClientID:    o.ClientID().String(),
		State:       string(o.State()),
		Items:       items,
		Address: AddressView{
			RecipientName: addr.RecipientName(),
			Street:        addr.Street(),
			City:          addr.City(),
			Region:        addr.Region(),
			PostalCode:    addr.PostalCode(),
			Country:       addr.Country(),
			Phone:         addr.Phone(),
			Instructions:  addr.Instructions(),
		},
		Total:     o.Total().Amount().StringFixed(2),
		Currency:  o.Total().Currency(),
		History:   history,
		CreatedAt: o.CreatedAt().Format(timeFormat),
	}

	if p := o.Payment(); p != nil {
		view.Payment = &PaymentView{
			Method:      p.Method,
			Reference:   p.Reference,
			Approved:    p.Approved,
			ProcessedAt: p.ProcessedAt.Format(timeFormat),
		}
	}
	if s := o.Shipping(); s != nil {
		view.Shipping = &ShippingView{
			TrackingNumber: s.TrackingNumber,
			Carrier:        s.Carrier,
			ShippedAt:      s.ShippedAt.Format(timeFormat),
		}
	}

	return view
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	cartService  service.CartService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, cartService service.CartService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		cartService:  cartService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes. Clients create, read and
// cancel their own orders; fulfillment transitions are admin-only.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/cancel", h.Cancel)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/{id}/confirm", h.Confirm)
			r.Post("/{id}/payment", h.ProcessPayment)
			r.Post("/{id}/preparing", h.MarkPreparing)
			r.Post("/{id}/ship", h.MarkShipped)
			r.Post("/{id}/transit", h.MarkInTransit)
			r.Post("/{id}/deliver", h.MarkDelivered)
		})
	})
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (domain.OrderID, bool) {
	id, err := domain.ParseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return domain.OrderID{}, false
	}
	return id, true
}

// Create converts the client's checked-out cart into an order
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := clientID(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cartID, err := domain.ParseCartID(req.CartID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), cartID)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}
	if cart.ClientID() != owner {
		middleware.RespondWithError(w, http.StatusNotFound, "cart not found")
		return
	}

	address, err := domain.NewShippingAddress(
		req.RecipientName, req.Street, req.City, req.Region,
		req.PostalCode, req.Country, req.Phone, req.Instructions,
	)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	order, err := h.orderService.CreateFromCart(r.Context(), cartID, address)
	if err != nil {
		h.logger.Debug("Order creation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID().String()),
		zap.String("order_number", order.OrderNumber()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toOrderView(order))
}

// List returns the authenticated client's orders, newest first
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := clientID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListByClient(r.Context(), owner)
	if err != nil {
		h.logger.Error("Order listing failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	views := []OrderView{}
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}

	middleware.RespondWithJSON(w, http.StatusOK, views)
}

// Get handles fetching one order. Clients see their own orders; admins see
// every order.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	owner, ok := clientID(w, r)
	if !ok {
		return
	}
	role, _ := middleware.GetClientRole(r.Context())
	if order.ClientID() != owner && role != "admin" {
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderView(order))
}

// Cancel aborts an order that has not shipped yet
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	owner, ok := clientID(w, r)
	if !ok {
		return
	}
	role, _ := middleware.GetClientRole(r.Context())
	if order.ClientID() != owner && role != "admin" {
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	var req CancelOrderRequest
	// Body is optional for cancellation
	_ = middleware.DecodeAndValidate(r, &req)

	order, err = h.orderService.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	h.logger.Info("Order cancelled", zap.String("order_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toOrderView(order))
}

// Confirm moves a pending order to CONFIRMED
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id domain.OrderID) (*domain.Order, error) {
		return h.orderService.Confirm(r.Context(), id)
	})
}

// ProcessPayment records a payment reference against the order
func (h *OrderHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req ProcessPaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.ProcessPayment(r.Context(), id, req.Reference)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderView(order))
}

// MarkPreparing moves a paid order to PREPARING
func (h *OrderHandler) MarkPreparing(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id domain.OrderID) (*domain.Order, error) {
		return h.orderService.MarkPreparing(r.Context(), id)
	})
}

// MarkShipped records the carrier hand-off
func (h *OrderHandler) MarkShipped(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req ShipOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.MarkShipped(r.Context(), id, req.TrackingNumber, req.Carrier)
	if err != nil {
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderView(order))
}

// MarkInTransit moves a shipped order to IN_TRANSIT
func (h *OrderHandler) MarkInTransit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id domain.OrderID) (*domain.Order, error) {
		return h.orderService.MarkInTransit(r.Context(), id)
	})
}

// MarkDelivered closes the order
func (h *OrderHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id domain.OrderID) (*domain.Order, error) {
		return h.orderService.MarkDelivered(r.Context(), id)
	})
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, apply func(domain.OrderID) (*domain.Order, error)) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := apply(id)
	if err != nil {
		h.logger.Debug("Order transition failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderView(order))
}
