package web

// forms.go holds request decoding and validation helpers: JSON bodies
// are decoded into the db package's typed request structs and checked
// with go-playground/validator struct tags; URL query parameters are
// decoded with gorilla/schema.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// validate checks the `validate` struct tags on request types.
var validate = validator.New(validator.WithRequiredStructEnabled())

// errBadRequest marks client-caused decoding failures for the 400
// mapping in respond.go.
var errBadRequest = errors.New("bad request")

// decodeJSONBody decodes a JSON request body into dst and validates it.
func decodeJSONBody(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("request body decoding error (%v): %w", err, errBadRequest)
	}
	return validate.Struct(dst)
}

// validationMessage summarises validator errors for the client, for
// example "name is required; unit must be one of [day hour mission]".
func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s needs at least %s entries", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(parts, "; ")
}

// muxID extracts the numeric {id} route variable.
func muxID(r *http.Request) (int64, error) {
	vars := mux.Vars(r)
	raw, ok := vars["id"]
	if !ok {
		return 0, errors.New("id parameter missing")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, errBadRequest)
	}
	return id, nil
}

// DocumentsFilterForm represents the URL query parameter filters for
// the documents listing.
type DocumentsFilterForm struct {
	Type string `schema:"type" validate:"omitempty,oneof=quote invoice"`
}

// newSchemaDecoder creates a new schema.Decoder instance. Unknown query
// keys are ignored rather than rejected.
func newSchemaDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}

// DecodeURLParams is a helper that decodes URL query parameters from a
// request into a destination struct (dst) and validates it.
func DecodeURLParams(r *http.Request, dst any) error {
	decoder := newSchemaDecoder()
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("url parameter decoding error (%v): %w", err, errBadRequest)
	}
	return validate.Struct(dst)
}
