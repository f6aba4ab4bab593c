package web

// profile.go holds the handlers for the /profile endpoints.

import (
	"net/http"

	"invoicebox/db"
)

// addressResponse is the body for the /profile/address endpoint.
type addressResponse struct {
	Address string `json:"address"`
}

// handleProfileGet serves GET /profile.
func (web *WebApp) handleProfileGet() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := web.db.ProfileGet(r.Context())
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, profile)
	})
}

// handleProfileUpdate serves PUT /profile, applying a partial update to
// the singleton profile.
func (web *WebApp) handleProfileUpdate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req db.UpdateUserProfileRequest
		if err := decodeJSONBody(r, &req); err != nil {
			web.respondError(w, r, err)
			return
		}
		profile, err := web.db.ProfileUpdate(r.Context(), req)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, profile)
	})
}

// handleProfileAddress serves GET /profile/address, returning the
// profile rendered as the multi-line issuer address block used to
// prefill new documents.
func (web *WebApp) handleProfileAddress() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		block, err := web.db.ProfileAddressBlock(r.Context())
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, addressResponse{Address: block})
	})
}
