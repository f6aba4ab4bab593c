package db

// documents.go deals with document-related database calls: creation of
// a document together with its nested sections, hydration, listing,
// deletion, sequential number allocation and quote to invoice
// conversion.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// DocumentType distinguishes quotes from invoices. The type of a
// document is immutable after creation.
type DocumentType string

const (
	DocumentTypeQuote   DocumentType = "quote"
	DocumentTypeInvoice DocumentType = "invoice"
)

// numberPrefix returns the document number prefix for a type: D- for
// quotes (devis), F- for invoices (factures).
func (t DocumentType) numberPrefix() string {
	if t == DocumentTypeInvoice {
		return "F-"
	}
	return "D-"
}

// SectionUnit is the billing unit of a document section.
type SectionUnit string

const (
	SectionUnitDay     SectionUnit = "day"
	SectionUnitHour    SectionUnit = "hour"
	SectionUnitMission SectionUnit = "mission"
)

// DocumentSection is a line item within a document, exclusively owned
// by it. Total is quantity times unit price; SortOrder fixes display
// and iteration order.
type DocumentSection struct {
	ID          int64       `db:"id" json:"id"`
	DocumentID  int64       `db:"document_id" json:"document_id"`
	Name        string      `db:"name" json:"name"`
	Description string      `db:"description" json:"description"`
	Unit        SectionUnit `db:"unit" json:"unit"`
	Quantity    float64     `db:"quantity" json:"quantity"`
	UnitPrice   float64     `db:"unit_price" json:"unit_price"`
	Total       float64     `db:"total" json:"total"`
	SortOrder   int         `db:"sort_order" json:"sort_order"`
}

// Document is a quote or invoice. The My* fields are a snapshot of the
// user profile captured at creation time, as is ClientAddress for the
// client. Subtotal, VatAmount and Total are derived at creation and
// never independently mutated. The Client*, Quote* and Invoice* fields
// are hydrated by joins on read and not stored redundantly.
type Document struct {
	ID                int64        `db:"id" json:"id"`
	Type              DocumentType `db:"type" json:"type"`
	Number            string       `db:"number" json:"number"`
	ClientID          int64        `db:"client_id" json:"client_id"`
	QuoteID           *int64       `db:"quote_id" json:"quote_id,omitempty"`
	MyName            string       `db:"my_name" json:"my_name,omitempty"`
	MyAddress         string       `db:"my_address" json:"my_address"`
	MyEmail           string       `db:"my_email" json:"my_email,omitempty"`
	MyPhone           string       `db:"my_phone" json:"my_phone,omitempty"`
	MyWebsite         string       `db:"my_website" json:"my_website,omitempty"`
	MySiren           string       `db:"my_siren" json:"my_siren,omitempty"`
	MyVatNumber       string       `db:"my_vat_number" json:"my_vat_number,omitempty"`
	MyBank            string       `db:"my_bank" json:"my_bank,omitempty"`
	MyIban            string       `db:"my_iban" json:"my_iban,omitempty"`
	MyBic             string       `db:"my_bic" json:"my_bic,omitempty"`
	MyTermsConditions string       `db:"my_terms_conditions" json:"my_terms_conditions,omitempty"`
	ClientAddress     string       `db:"client_address" json:"client_address"`
	Subtotal          float64      `db:"subtotal" json:"subtotal"`
	VatRate           float64      `db:"vat_rate" json:"vat_rate"`
	VatAmount         float64      `db:"vat_amount" json:"vat_amount"`
	Total             float64      `db:"total" json:"total"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updated_at"`

	// Hydrated on read.
	ClientName        *string `db:"client_name" json:"client_name,omitempty"`
	ClientSiren       *string `db:"client_siren" json:"client_siren,omitempty"`
	ClientVatNumber   *string `db:"client_vat_number" json:"client_vat_number,omitempty"`
	QuoteNumber       *string `db:"quote_number" json:"quote_number,omitempty"`
	QuoteDocumentID   *int64  `db:"quote_document_id" json:"quote_document_id,omitempty"`
	InvoiceNumber     *string `db:"invoice_number" json:"invoice_number,omitempty"`
	InvoiceDocumentID *int64  `db:"invoice_document_id" json:"invoice_document_id,omitempty"`

	Sections []DocumentSection `db:"-" json:"sections,omitempty"`
}

// CreateSectionRequest carries one line item of a creation request.
type CreateSectionRequest struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description"`
	Unit        SectionUnit `json:"unit" validate:"required,oneof=day hour mission"`
	Quantity    float64     `json:"quantity" validate:"gte=0"`
	UnitPrice   float64     `json:"unit_price"`
}

// CreateDocumentRequest carries the fields needed to create a document.
// VatRate defaults to the configured rate when nil. QuoteID is set only
// on invoices derived from a quote.
type CreateDocumentRequest struct {
	Type              DocumentType           `json:"type" validate:"required,oneof=quote invoice"`
	ClientID          int64                  `json:"client_id" validate:"required,gt=0"`
	QuoteID           *int64                 `json:"quote_id,omitempty"`
	MyName            string                 `json:"my_name,omitempty"`
	MyAddress         string                 `json:"my_address" validate:"required"`
	MyEmail           string                 `json:"my_email,omitempty"`
	MyPhone           string                 `json:"my_phone,omitempty"`
	MyWebsite         string                 `json:"my_website,omitempty"`
	MySiren           string                 `json:"my_siren,omitempty"`
	MyVatNumber       string                 `json:"my_vat_number,omitempty"`
	MyBank            string                 `json:"my_bank,omitempty"`
	MyIban            string                 `json:"my_iban,omitempty"`
	MyBic             string                 `json:"my_bic,omitempty"`
	MyTermsConditions string                 `json:"my_terms_conditions,omitempty"`
	Sections          []CreateSectionRequest `json:"sections" validate:"required,min=1,dive"`
	VatRate           *float64               `json:"vat_rate,omitempty" validate:"omitempty,gte=0"`
}

// allocateNumber increments the persistent counter for the given type
// within tx and formats the new document number, for example
// D-202507-0001. The counter is global per type and never resets, so
// sequence numbers keep growing as the year-month prefix rolls over;
// this guarantees global uniqueness at the cost of non-contiguous
// per-period numbering.
func (db *DB) allocateNumber(ctx context.Context, tx *sqlx.Tx, docType DocumentType) (string, error) {

	namedArgs := map[string]any{"DocType": string(docType)}

	bump := db.counterBumpStmt
	if err := bump.verifyArgs(namedArgs); err != nil {
		return "", fmt.Errorf("counter bump verify arguments error: %w", err)
	}
	res, err := tx.NamedStmtContext(ctx, bump.NamedStmt).ExecContext(ctx, namedArgs)
	if err != nil {
		db.logQuery("counter_bump", bump, namedArgs, err)
		return "", fmt.Errorf("counter bump error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("counter bump rows affected error: %w", err)
	}
	if affected == 0 {
		return "", fmt.Errorf("counter for %q: %w", docType, ErrNotFound)
	}

	read := db.counterGetStmt
	if err := read.verifyArgs(namedArgs); err != nil {
		return "", fmt.Errorf("counter read verify arguments error: %w", err)
	}
	var counter int64
	if err := tx.NamedStmtContext(ctx, read.NamedStmt).GetContext(ctx, &counter, namedArgs); err != nil {
		return "", fmt.Errorf("counter read error: %w", err)
	}

	now := db.now()
	return fmt.Sprintf(
		"%s%04d%02d-%04d",
		docType.numberPrefix(), now.Year(), int(now.Month()), counter,
	), nil
}

// DocumentCreate creates a document with its sections. The counter
// increment, document insert and section inserts run in one
// transaction, so a failure anywhere leaves neither a numbering gap nor
// an orphaned document. The client's current address is snapshotted
// onto the document; subtotal, vat amount and total are computed from
// the sections. The fully hydrated document is returned.
func (db *DB) DocumentCreate(ctx context.Context, req CreateDocumentRequest) (*Document, error) {

	vatRate := db.vatRate
	if req.VatRate != nil {
		vatRate = *req.VatRate
	}

	var subtotal float64
	for _, s := range req.Sections {
		subtotal += s.Quantity * s.UnitPrice
	}
	vatAmount := subtotal * vatRate
	total := subtotal + vatAmount

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("document create begin error: %w", err)
	}
	defer tx.Rollback() // no-op after commit.

	// Snapshot the client's current address.
	addrArgs := map[string]any{"ClientID": req.ClientID}
	if err := db.clientAddressStmt.verifyArgs(addrArgs); err != nil {
		return nil, fmt.Errorf("client address verify arguments error: %w", err)
	}
	var clientAddress string
	err = tx.NamedStmtContext(ctx, db.clientAddressStmt.NamedStmt).GetContext(ctx, &clientAddress, addrArgs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %d: %w", req.ClientID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("client address select error: %w", err)
	}

	number, err := db.allocateNumber(ctx, tx, req.Type)
	if err != nil {
		return nil, err
	}

	stmt := db.documentInsertStmt
	namedArgs := map[string]any{
		"DocType":           string(req.Type),
		"Number":            number,
		"ClientID":          req.ClientID,
		"QuoteID":           req.QuoteID,
		"MyName":            req.MyName,
		"MyAddress":         req.MyAddress,
		"MyEmail":           req.MyEmail,
		"MyPhone":           req.MyPhone,
		"MyWebsite":         req.MyWebsite,
		"MySiren":           req.MySiren,
		"MyVatNumber":       req.MyVatNumber,
		"MyBank":            req.MyBank,
		"MyIban":            req.MyIban,
		"MyBic":             req.MyBic,
		"MyTermsConditions": req.MyTermsConditions,
		"ClientAddress":     clientAddress,
		"Subtotal":          subtotal,
		"VatRate":           vatRate,
		"VatAmount":         vatAmount,
		"Total":             total,
	}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return nil, fmt.Errorf("document insert verify arguments error: %w", err)
	}
	res, err := tx.NamedStmtContext(ctx, stmt.NamedStmt).ExecContext(ctx, namedArgs)
	if err != nil {
		db.logQuery("document_insert", stmt, namedArgs, err)
		return nil, fmt.Errorf("failed to insert document %s: %w", number, err)
	}
	documentID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("document insert id error: %w", err)
	}

	// Add the related sections, ordered as provided.
	sectionStmt := db.sectionInsertStmt
	for i, s := range req.Sections {
		sectionArgs := map[string]any{
			"DocumentID":  documentID,
			"Name":        s.Name,
			"Description": s.Description,
			"Unit":        string(s.Unit),
			"Quantity":    s.Quantity,
			"UnitPrice":   s.UnitPrice,
			"Total":       s.Quantity * s.UnitPrice,
			"SortOrder":   i,
		}
		if err := sectionStmt.verifyArgs(sectionArgs); err != nil {
			return nil, fmt.Errorf("section insert verify arguments error: %w", err)
		}
		_, err := tx.NamedStmtContext(ctx, sectionStmt.NamedStmt).ExecContext(ctx, sectionArgs)
		if err != nil {
			return nil, fmt.Errorf("failed to insert section %d for document %s: %w", i, number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("document create commit error: %w", err)
	}

	return db.DocumentGet(ctx, documentID)
}

// DocumentGet returns a single document hydrated with its client
// details, its ordered sections and any linked quote or invoice.
func (db *DB) DocumentGet(ctx context.Context, id int64) (*Document, error) {
	stmt := db.documentGetStmt
	namedArgs := map[string]any{"DocumentID": id}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return nil, fmt.Errorf("document get verify arguments error: %w", err)
	}
	var document Document
	err := stmt.GetContext(ctx, &document, namedArgs)
	db.logQuery("document", stmt, namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("document select error: %w", err)
	}

	sections := db.sectionsGetStmt
	if err := sections.verifyArgs(namedArgs); err != nil {
		return nil, fmt.Errorf("sections verify arguments error: %w", err)
	}
	document.Sections = []DocumentSection{}
	if err := sections.SelectContext(ctx, &document.Sections, namedArgs); err != nil {
		return nil, fmt.Errorf("sections select error: %w", err)
	}
	return &document, nil
}

// DocumentsGet returns all documents, newest first, annotated with
// their client names. An empty docType returns documents of all types.
// Sections are not loaded for listings.
func (db *DB) DocumentsGet(ctx context.Context, docType DocumentType) ([]Document, error) {
	stmt := db.documentsGetStmt
	namedArgs := map[string]any{"DocType": string(docType)}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return nil, fmt.Errorf("documents verify arguments error: %w", err)
	}
	documents := []Document{}
	err := stmt.SelectContext(ctx, &documents, namedArgs)
	db.logQuery("documents", stmt, namedArgs, err)
	if err != nil {
		return nil, fmt.Errorf("documents select error: %w", err)
	}
	return documents, nil
}

// DocumentDelete removes a document, reporting whether a row was
// removed. Sections cascade with the document.
func (db *DB) DocumentDelete(ctx context.Context, id int64) (bool, error) {
	stmt := db.documentDeleteStmt
	namedArgs := map[string]any{"DocumentID": id}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return false, fmt.Errorf("document delete verify arguments error: %w", err)
	}
	res, err := stmt.ExecContext(ctx, namedArgs)
	if err != nil {
		return false, fmt.Errorf("document delete error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("document delete rows affected error: %w", err)
	}
	return affected > 0, nil
}

// ConvertToInvoice creates a new invoice from an existing quote: same
// client, same vat rate, a copy of the issuer snapshot and of each
// section's values, with quote_id recording the origin. The invoice
// gets its own freshly allocated number and recomputed totals; the
// quote is left unchanged. Converting the same quote again produces a
// further distinct invoice.
func (db *DB) ConvertToInvoice(ctx context.Context, quoteID int64) (*Document, error) {

	quote, err := db.DocumentGet(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Type != DocumentTypeQuote {
		return nil, fmt.Errorf("document %d: %w", quoteID, ErrNotQuote)
	}

	req := CreateDocumentRequest{
		Type:              DocumentTypeInvoice,
		ClientID:          quote.ClientID,
		QuoteID:           &quoteID,
		MyName:            quote.MyName,
		MyAddress:         quote.MyAddress,
		MyEmail:           quote.MyEmail,
		MyPhone:           quote.MyPhone,
		MyWebsite:         quote.MyWebsite,
		MySiren:           quote.MySiren,
		MyVatNumber:       quote.MyVatNumber,
		MyBank:            quote.MyBank,
		MyIban:            quote.MyIban,
		MyBic:             quote.MyBic,
		MyTermsConditions: quote.MyTermsConditions,
		VatRate:           &quote.VatRate,
	}
	for _, s := range quote.Sections {
		req.Sections = append(req.Sections, CreateSectionRequest{
			Name:        s.Name,
			Description: s.Description,
			Unit:        s.Unit,
			Quantity:    s.Quantity,
			UnitPrice:   s.UnitPrice,
		})
	}

	return db.DocumentCreate(ctx, req)
}
