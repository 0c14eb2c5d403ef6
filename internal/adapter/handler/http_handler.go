package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

type HTTPHandler struct {
	api *API
}

func NewHTTPHandler(api *API) *HTTPHandler {
	return &HTTPHandler{api: api}
}

// Routes builds the chi router serving every endpoint.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.HealthCheck)
	r.Get("/users", h.ListUsers)
	r.Get("/sales", h.ListSales)
	r.Get("/inventory", h.ListInventory)
	r.Put("/inventory", h.UpdateInventory)
	r.Post("/fulfillment", h.CreateFulfillment)
	r.Get("/fulfillment/{fulfillment_id}", h.FulfillmentStatus)

	return r
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.api.listUsers(r.Context()))
}

func (h *HTTPHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.api.listSales(r.Context()))
}

func (h *HTTPHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.api.listInventory(r.Context()))
}

func (h *HTTPHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeResult(w, fail(http.StatusBadRequest, "invalid request body"))
		return
	}
	writeResult(w, h.api.updateInventory(r.Context(), body))
}

func (h *HTTPHandler) CreateFulfillment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeResult(w, fail(http.StatusBadRequest, "invalid request body"))
		return
	}
	writeResult(w, h.api.createFulfillment(r.Context(), body, r.Header.Get(IdempotencyKeyHeader)))
}

func (h *HTTPHandler) FulfillmentStatus(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.api.fulfillmentStatus(r.Context(), chi.URLParam(r, "fulfillment_id")))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.api.health(r.Context()))
}

func writeResult(w http.ResponseWriter, res result) {
	writeJSON(w, res.status, res.payload)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
