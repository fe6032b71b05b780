package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrops-br/products-crud-api/internal/domain"
)

func TestFromError_Taxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail string
	}{
		{domain.ErrProductNotFound, http.StatusNotFound, DetailNotFound},
		{fmt.Errorf("get: %w", domain.ErrProductNotFound), http.StatusNotFound, DetailNotFound},
		{domain.NewValidationError("price", "field required"), http.StatusBadRequest, "price: field required"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, DetailTooManyRequests},
		{domain.PersistenceError("create product", errors.New("dial tcp 10.0.0.3:3306")), http.StatusInternalServerError, DetailInternal},
		{errors.New("boom"), http.StatusInternalServerError, DetailInternal},
	}
	for _, c := range cases {
		status, detail := FromError(c.err)
		if status != c.status || detail != c.detail {
			t.Fatalf("%v: expected %d %q, got %d %q", c.err, c.status, c.detail, status, detail)
		}
	}
}

func TestError_WritesDetailBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, DetailNotFound)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body["detail"] != DetailNotFound {
		t.Fatalf("expected only a detail field, got %v", body)
	}
}
