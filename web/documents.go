package web

// documents.go holds the handlers for the /documents endpoints.

import (
	"net/http"

	"invoicebox/db"
)

// handleDocumentsList serves GET /documents, optionally filtered by
// ?type=quote or ?type=invoice. Listings omit section detail.
func (web *WebApp) handleDocumentsList() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var form DocumentsFilterForm
		if err := DecodeURLParams(r, &form); err != nil {
			web.respondError(w, r, err)
			return
		}
		documents, err := web.db.DocumentsGet(r.Context(), db.DocumentType(form.Type))
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, documents)
	})
}

// handleDocumentCreate serves POST /documents, creating a quote or
// invoice with its sections and a freshly allocated number.
func (web *WebApp) handleDocumentCreate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req db.CreateDocumentRequest
		if err := decodeJSONBody(r, &req); err != nil {
			web.respondError(w, r, err)
			return
		}
		document, err := web.db.DocumentCreate(r.Context(), req)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusCreated, document)
	})
}

// handleDocumentGet serves GET /documents/{id}, returning the document
// hydrated with client details, sections and any linked quote or
// invoice.
func (web *WebApp) handleDocumentGet() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := muxID(r)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		document, err := web.db.DocumentGet(r.Context(), id)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusOK, document)
	})
}

// handleDocumentDelete serves DELETE /documents/{id}. Sections cascade
// with the document.
func (web *WebApp) handleDocumentDelete() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := muxID(r)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		deleted, err := web.db.DocumentDelete(r.Context(), id)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		if !deleted {
			web.clientError(w, http.StatusNotFound, "document not found")
			return
		}
		web.writeJSON(w, http.StatusOK, successResponse{Success: true})
	})
}

// handleConvertToInvoice serves POST /documents/{id}/convert-to-invoice,
// deriving a new invoice from a quote. Converting the same quote again
// produces a further distinct invoice.
func (web *WebApp) handleConvertToInvoice() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := muxID(r)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		invoice, err := web.db.ConvertToInvoice(r.Context(), id)
		if err != nil {
			web.respondError(w, r, err)
			return
		}
		web.writeJSON(w, http.StatusCreated, invoice)
	})
}
