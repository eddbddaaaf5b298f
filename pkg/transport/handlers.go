package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	catalogmodel "marketplace/pkg/catalog/domain/model"
	catalogservice "marketplace/pkg/catalog/domain/service"
	orderingmodel "marketplace/pkg/ordering/domain/model"
	orderingservice "marketplace/pkg/ordering/domain/service"
)

type checkoutRequest struct {
	UserID string `json:"userId"`
	Items  []struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
	} `json:"items"`
	Payment string `json:"payment"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

type checkoutItemResponse struct {
	ProductID      string `json:"productId"`
	Title          string `json:"title"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	SubtotalCents  int64  `json:"subtotalCents"`
}

type checkoutResponse struct {
	OrderID      string                 `json:"orderId"`
	TotalCents   int64                  `json:"totalCents"`
	CoinsGranted int                    `json:"coinsGranted"`
	Status       string                 `json:"status"`
	Items        []checkoutItemResponse `json:"items"`
}

func (h *Handler) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	items := make([]orderingservice.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		items = append(items, orderingservice.CartItem{ProductID: productID, Qty: item.Qty})
	}

	receipt, err := h.checkout.Checkout(r.Context(), orderingservice.CheckoutRequest{
		UserID:  userID,
		Items:   items,
		Payment: orderingmodel.PaymentMethod(req.Payment),
		Address: req.Address,
		Note:    req.Note,
	})
	if err != nil {
		status := checkoutErrorStatus(err)
		writeError(w, status, err.Error())
		return
	}

	respItems := make([]checkoutItemResponse, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		respItems = append(respItems, checkoutItemResponse{
			ProductID:      item.ProductID.String(),
			Title:          item.Title,
			Qty:            item.Qty,
			UnitPriceCents: item.PriceCents,
			SubtotalCents:  item.SubtotalCents(),
		})
	}
	writeJSON(w, http.StatusCreated, apiResponse{
		Success: true,
		Data: checkoutResponse{
			OrderID:      receipt.OrderID.String(),
			TotalCents:   receipt.TotalCents,
			CoinsGranted: receipt.CoinsGranted,
			Status:       string(receipt.Status),
			Items:        respItems,
		},
	})
}

// checkoutErrorStatus maps the checkout validation taxonomy to HTTP
// codes: every validation failure is caller-visible and specific.
func checkoutErrorStatus(err error) int {
	switch {
	case errors.Is(err, orderingmodel.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalogmodel.ErrProductNotFound),
		errors.Is(err, catalogmodel.ErrProductInactive),
		errors.Is(err, catalogmodel.ErrInsufficientStock),
		errors.Is(err, orderingservice.ErrEmptyCart),
		errors.Is(err, orderingservice.ErrInvalidQuantity),
		errors.Is(err, orderingmodel.ErrUnknownPayment):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type orderResponse struct {
	OrderID      string                 `json:"orderId"`
	UserID       string                 `json:"userId"`
	Status       string                 `json:"status"`
	Payment      string                 `json:"payment"`
	TotalCents   int64                  `json:"totalCents"`
	CoinsGranted int                    `json:"coinsGranted"`
	Address      string                 `json:"address,omitempty"`
	Note         string                 `json:"note,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	Items        []checkoutItemResponse `json:"items"`
}

func (h *Handler) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	status := orderingmodel.OrderStatus(r.URL.Query().Get("status"))
	orders, err := h.checkout.ListOrders(r.Context(), userID, status)
	switch {
	case err == nil:
	case errors.Is(err, orderingmodel.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.logger.WithError(err).Error("failed to list orders")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items := make([]checkoutItemResponse, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, checkoutItemResponse{
				ProductID:      item.ProductID.String(),
				Title:          item.Title,
				Qty:            item.Qty,
				UnitPriceCents: item.PriceCents,
				SubtotalCents:  item.SubtotalCents(),
			})
		}
		resp = append(resp, orderResponse{
			OrderID:      order.ID.String(),
			UserID:       order.UserID.String(),
			Status:       string(order.Status),
			Payment:      string(order.Payment),
			TotalCents:   order.TotalCents,
			CoinsGranted: order.CoinsGranted,
			Address:      order.Address,
			Note:         order.Note,
			CreatedAt:    order.CreatedAt,
			Items:        items,
		})
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: resp})
}

func (h *Handler) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.checkout.UpdateOrderStatus(r.Context(), orderID, orderingmodel.OrderStatus(req.Status))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Order status updated"})
	case errors.Is(err, orderingmodel.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orderingmodel.ErrUnknownStatus), errors.Is(err, orderingmodel.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).Error("failed to update order status")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) coinBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	balance, err := h.coins.Balance(r.Context(), userID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: balance})
	case errors.Is(err, orderingmodel.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.WithError(err).Error("failed to load coin balance")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

type productRequest struct {
	SellerID    string `json:"sellerId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Country     string `json:"country"`
	ImageURL    string `json:"imageUrl"`
	PriceCents  int64  `json:"priceCents"`
	Stock       int    `json:"stock"`
}

func (h *Handler) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// No default-seller fallback: an explicit seller identity is part
	// of the request contract.
	sellerID, err := uuid.Parse(req.SellerID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "an authenticated seller is required")
		return
	}

	product, err := h.products.CreateProduct(r.Context(), catalogservice.NewProductData{
		SellerID:    sellerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Country:     req.Country,
		ImageURL:    req.ImageURL,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, apiResponse{Success: true, Data: product, Message: "Product created successfully"})
	case errors.Is(err, catalogmodel.ErrSellerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		ImageURL    *string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.products.UpdateProduct(r.Context(), productID, req.Title, req.Description, req.Category, req.ImageURL)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Product updated successfully"})
	case errors.Is(err, catalogmodel.ErrProductNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) archiveProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	err = h.products.ArchiveProduct(r.Context(), productID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Product archived"})
	case errors.Is(err, catalogmodel.ErrProductNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.WithError(err).Error("failed to archive product")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	page, _ := strconv.Atoi(query.Get("page"))
	if page <= 0 {
		page = 1
	}

	products, err := h.productRepo.List(r.Context(), catalogmodel.ListFilter{
		Query:      query.Get("query"),
		Category:   query.Get("category"),
		ActiveOnly: query.Get("active") == "true",
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		h.logger.WithError(err).Error("failed to list products")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: products})
}
