package db

// profile.go deals with the singleton user profile, the issuer identity
// mirrored onto each document at creation time.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// profileRowID is the primary key of the single user_profile row, which
// is seeded by schema.sql. The constant does not leak out of this file.
const profileRowID = 1

// UserProfile is the issuer's billing identity.
type UserProfile struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Address         string    `db:"address" json:"address"`
	Email           string    `db:"email" json:"email,omitempty"`
	Phone           string    `db:"phone" json:"phone,omitempty"`
	Website         string    `db:"website" json:"website,omitempty"`
	Siren           string    `db:"siren" json:"siren,omitempty"`
	VatNumber       string    `db:"vat_number" json:"vat_number,omitempty"`
	Bank            string    `db:"bank" json:"bank,omitempty"`
	Iban            string    `db:"iban" json:"iban,omitempty"`
	Bic             string    `db:"bic" json:"bic,omitempty"`
	TermsConditions string    `db:"terms_conditions" json:"terms_conditions,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateUserProfileRequest is a partial update: only non-nil fields are
// written; omitted fields retain their previous values.
type UpdateUserProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	Address         *string `json:"address,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Website         *string `json:"website,omitempty"`
	Siren           *string `json:"siren,omitempty"`
	VatNumber       *string `json:"vat_number,omitempty"`
	Bank            *string `json:"bank,omitempty"`
	Iban            *string `json:"iban,omitempty"`
	Bic             *string `json:"bic,omitempty"`
	TermsConditions *string `json:"terms_conditions,omitempty"`
}

// ProfileGet returns the user profile.
func (db *DB) ProfileGet(ctx context.Context) (*UserProfile, error) {
	stmt := db.profileGetStmt
	namedArgs := map[string]any{"ProfileID": profileRowID}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return nil, fmt.Errorf("profile get verify arguments error: %w", err)
	}
	var profile UserProfile
	err := stmt.GetContext(ctx, &profile, namedArgs)
	db.logQuery("profile", stmt, namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		// Should not occur: the row is seeded at schema initialization.
		return nil, fmt.Errorf("user profile: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("profile select error: %w", err)
	}
	return &profile, nil
}

// fields maps UpdateUserProfileRequest fields to their columns. A
// partial update is assembled dynamically per present field, so it
// cannot be a prepared sql file.
func (req UpdateUserProfileRequest) fields() map[string]*string {
	return map[string]*string{
		"name":             req.Name,
		"address":          req.Address,
		"email":            req.Email,
		"phone":            req.Phone,
		"website":          req.Website,
		"siren":            req.Siren,
		"vat_number":       req.VatNumber,
		"bank":             req.Bank,
		"iban":             req.Iban,
		"bic":              req.Bic,
		"terms_conditions": req.TermsConditions,
	}
}

// profileColumns fixes the iteration order of the update field map.
var profileColumns = []string{
	"name", "address", "email", "phone", "website", "siren",
	"vat_number", "bank", "iban", "bic", "terms_conditions",
}

// ProfileUpdate applies a partial update to the user profile, refreshing
// updated_at, and returns the stored row.
func (db *DB) ProfileUpdate(ctx context.Context, req UpdateUserProfileRequest) (*UserProfile, error) {

	fields := req.fields()
	sets := []string{}
	namedArgs := map[string]any{"id": profileRowID}
	for _, col := range profileColumns {
		if fields[col] == nil {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
		namedArgs[col] = *fields[col]
	}
	if len(sets) == 0 {
		return db.ProfileGet(ctx)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf("UPDATE user_profile SET %s WHERE id = :id", strings.Join(sets, ", "))
	if _, err := db.NamedExecContext(ctx, query, namedArgs); err != nil {
		return nil, fmt.Errorf("profile update error: %w", err)
	}
	return db.ProfileGet(ctx)
}

// ProfileAddressBlock renders the profile into the multi-line "From:"
// block used to prefill the issuer address on new documents.
func (db *DB) ProfileAddressBlock(ctx context.Context) (string, error) {
	profile, err := db.ProfileGet(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if profile.Name != "" {
		b.WriteString(profile.Name + "\n")
	}
	if profile.Address != "" {
		b.WriteString(profile.Address)
	}
	contacts := []struct {
		label, value string
	}{
		{"Email", profile.Email},
		{"Phone", profile.Phone},
		{"Website", profile.Website},
		{"SIREN", profile.Siren},
		{"VAT", profile.VatNumber},
	}
	hasContact := false
	for _, c := range contacts {
		if c.value != "" {
			hasContact = true
		}
	}
	if hasContact {
		b.WriteString("\n")
		for _, c := range contacts {
			if c.value == "" {
				continue
			}
			b.WriteString(fmt.Sprintf("\n%s: %s", c.label, c.value))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
