package web

// respond.go holds the JSON response helpers and the mapping from the
// db package's sentinel errors to http statuses.

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoicebox/db"

	"github.com/go-playground/validator/v10"
)

// successResponse is the body for deletions and counter updates.
type successResponse struct {
	Success bool `json:"success"`
}

// errorResponse is the body for all error statuses.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes data as a JSON response with the given status.
func (web *WebApp) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		web.logger.Error("response encoding error", "error", err)
	}
}

// respondError translates an error into an http response. Validation
// failures and invalid-state errors map to 400, missing records to 404;
// anything else is an opaque 500 with the detail logged server-side.
func (web *WebApp) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		web.clientError(w, http.StatusBadRequest, validationMessage(validationErrs))
	case errors.Is(err, errBadRequest):
		web.clientError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		web.clientError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrNotQuote):
		web.clientError(w, http.StatusBadRequest, err.Error())
	default:
		web.serverError(w, r, err)
	}
}

// serverError logs and returns an internal server error. The error
// should contain the information needed for logging.
func (web *WebApp) serverError(w http.ResponseWriter, r *http.Request, err error) {
	web.logger.Error(
		"server error",
		"method", r.Method,
		"uri", r.URL.RequestURI(),
		"error", err,
	)
	web.writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
	})
}

// clientError returns a client error.
func (web *WebApp) clientError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	web.writeJSON(w, status, errorResponse{Error: message})
}
