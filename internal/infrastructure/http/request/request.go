// Package request decodes and validates inbound HTTP input into DTOs.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/products-crud-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// Decode reads a single JSON value into dst. Malformed JSON, trailing data
// and type mismatches come back as *domain.ValidationError.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		if rest := dec.Decode(&json.RawMessage{}); !errors.Is(rest, io.EOF) {
			return domain.NewValidationError("", "malformed JSON body")
		}
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("", "request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewValidationError("", "malformed JSON body")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return domain.NewValidationError("", "request body must be a JSON object")
		}
		return domain.NewValidationError(typeErr.Field, fmt.Sprintf("expected %s", kindName(typeErr.Type)))
	default:
		return domain.NewValidationError("", err.Error())
	}
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return t.Kind().String()
	}
}

// Validate runs struct tag validation and reports the first failing field
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "field required")
	case "email":
		return domain.NewValidationError(fe.Field(), "value is not a valid email address")
	default:
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("failed on the %q rule", fe.Tag()))
	}
}

// DecodeAndValidate is Decode followed by Validate
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := Decode(r, dst); err != nil {
		return err
	}
	return Validate(dst)
}

// ProductID parses the {id} path parameter. Ids outside the int64 range can
// never have been assigned, so they resolve to not found.
func ProductID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, domain.ErrProductNotFound
		}
		return 0, domain.NewValidationError("id", "value is not a valid integer")
	}
	return id, nil
}
