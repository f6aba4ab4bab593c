package web

// clients.go holds the handlers for the /clients endpoints.

import (
	"net/http"

	"invoicebox/db"
)

// handleClientsList serves GET /clients, listing all clients ordered by
// name.
func (web *WebApp) handleClientsList() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clients, err := web.db.ClientsGet(r.Context())
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, clients)
	})
}

// handleClientCreate serves POST /clients.
func (web *WebApp) handleClientCreate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req db.CreateClientRequest
		if err := decodeJSONBody(r, &req); err != nil {
			web.respondError(w, r, err)
			return
		}
		client, err := web.db.ClientCreate(r.Context(), req)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusCreated, client)
	})
}

// handleClientGet serves GET /clients/{id}.
func (web *WebApp) handleClientGet() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := muxID(r)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		client, err := web.db.ClientGet(r.Context(), id)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, client)
	})
}

// handleClientUpdate serves PUT /clients/{id}, applying a partial
// update.
func (web *WebApp) handleClientUpdate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := muxID(r)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		var req db.UpdateClientRequest
		if err := decodeJSONBody(r, &req); err != nil {
			web.respondError(w, r, err)
			return
		}
		client, err := web.db.ClientUpdate(r.Context(), id, req)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, client)
	})
}

// handleClientDelete serves DELETE /clients/{id}. Documents referencing
// the client are left in place with their snapshots.
func (web *WebApp) handleClientDelete() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := muxID(r)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		deleted, err := web.db.ClientDelete(r.Context(), id)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		if !deleted {
			web.clientError(w, http.StatusNotFound, "client not found")
			return
		}
		web.writeJSON(w, http.StatusOK, successResponse{Success: true})
	})
}
