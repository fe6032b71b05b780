package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mrops-br/products-crud-api/internal/domain"
)

const (
	DetailNotFound        = "Product not found"
	DetailTooManyRequests = "Too many requests."
	DetailInternal        = "Internal server error."
	DetailUnauthenticated = "Not authenticated"

	DetailRouteNotFound    = "Not Found"
	DetailMethodNotAllowed = "Method Not Allowed"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error response with a single detail string
func Error(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, ErrorResponse{Detail: detail})
}

// FromError maps err to a status code and a detail that is safe to show to
// clients. Anything outside the known taxonomy is an internal error.
func FromError(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, DetailNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, DetailTooManyRequests
	default:
		return http.StatusInternalServerError, DetailInternal
	}
}
