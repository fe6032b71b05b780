package handler

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/products-crud-api/internal/app/dto"
	"github.com/mrops-br/products-crud-api/internal/app/service"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/request"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/http/response"
	"github.com/mrops-br/products-crud-api/internal/infrastructure/messaging"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service   *service.ProductService
	incidents messaging.Reporter
	logger    *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, incidents messaging.Reporter, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:   service,
		incidents: incidents,
		logger:    logger,
	}
}

// CreateProduct handles POST /products/
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := request.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, r, "products.create", err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req.ToDomain())
	if err != nil {
		h.fail(w, r, "products.create", err)
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// ListProducts handles GET /products/
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.fail(w, r, "products.list", err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{id}/
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := request.ProductID(r)
	if err != nil {
		h.fail(w, r, "products.get", err)
		return
	}

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "products.get", err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// UpdateProduct handles PATCH /products/{id}/
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := request.ProductID(r)
	if err != nil {
		h.fail(w, r, "products.update", err)
		return
	}

	var req dto.PatchProductRequest
	if err := request.Decode(r, &req); err != nil {
		h.fail(w, r, "products.update", err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req.ToDomain())
	if err != nil {
		h.fail(w, r, "products.update", err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}/
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := request.ProductID(r)
	if err != nil {
		h.fail(w, r, "products.delete", err)
		return
	}

	product, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, "products.delete", err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// fail writes the error response. Internal errors are logged and reported in
// full while the client only sees a generic detail.
func (h *ProductHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, detail := response.FromError(err)
	if status >= http.StatusInternalServerError {
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "Request failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		h.incidents.Report(ctx, messaging.NewIncident(op, r.Method, r.URL.Path, chimiddleware.GetReqID(ctx), err))
	}
	response.Error(w, status, detail)
}
