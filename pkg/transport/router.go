package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	catalogmodel "marketplace/pkg/catalog/domain/model"
	catalogservice "marketplace/pkg/catalog/domain/service"
	chatservice "marketplace/pkg/chat/domain/service"
	orderingservice "marketplace/pkg/ordering/domain/service"
)

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	orchestrator *chatservice.Orchestrator
	products     catalogservice.ProductService
	productRepo  catalogmodel.ProductRepository
	checkout     orderingservice.CheckoutService
	coins        orderingservice.CoinService
	provider     string
	verifyToken  string
	logger       logrus.FieldLogger
}

func NewHandler(
	orchestrator *chatservice.Orchestrator,
	products catalogservice.ProductService,
	productRepo catalogmodel.ProductRepository,
	checkout orderingservice.CheckoutService,
	coins orderingservice.CoinService,
	provider, verifyToken string,
	logger logrus.FieldLogger,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		products:     products,
		productRepo:  productRepo,
		checkout:     checkout,
		coins:        coins,
		provider:     provider,
		verifyToken:  verifyToken,
		logger:       logger,
	}
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.healthHandler).Methods(http.MethodGet)

	r.HandleFunc("/webhook/whatsapp", h.verifyWebhookHandler).Methods(http.MethodGet)
	r.HandleFunc("/webhook/whatsapp", h.incomingMessageHandler).Methods(http.MethodPost)

	r.HandleFunc("/products", h.listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products", h.createProductHandler).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}", h.updateProductHandler).Methods(http.MethodPatch)
	r.HandleFunc("/products/{id}", h.archiveProductHandler).Methods(http.MethodDelete)

	r.HandleFunc("/checkout", h.checkoutHandler).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.listOrdersHandler).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/status", h.updateOrderStatusHandler).Methods(http.MethodPut)
	r.HandleFunc("/coins/balance", h.coinBalanceHandler).Methods(http.MethodGet)

	return h.logMiddleware(r)
}

func (h *Handler) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}

func (h *Handler) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Error: message})
}
