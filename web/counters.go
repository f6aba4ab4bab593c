package web

// counters.go holds the handlers for the /counters endpoints, used to
// inspect and reposition the per-type document number counters.

import (
	"net/http"

	"invoicebox/db"
)

// setCounterRequest is the body for PUT /counters.
type setCounterRequest struct {
	Type    string `json:"type" validate:"required,oneof=quote invoice"`
	Counter int64  `json:"counter" validate:"gte=0"`
}

// handleCountersGet serves GET /counters.
func (web *WebApp) handleCountersGet() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counters, err := web.db.CountersGet(r.Context())
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, counters)
	})
}

// handleCounterSet serves PUT /counters, setting the counter for one
// document type to an absolute value. The next number allocated for
// that type embeds value + 1.
func (web *WebApp) handleCounterSet() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req setCounterRequest
		if err := decodeJSONBody(r, &req); err != nil {
			web.respondError(w, r, err)
			return
		}
		err := web.db.CounterSet(r.Context(), db.DocumentType(req.Type), req.Counter)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, successResponse{Success: true})
	})
}
