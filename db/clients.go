package db

// clients.go deals with client-related database calls.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Client is a customer record. Siren and VatNumber are optional French
// business identifiers.
type Client struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Siren     *string   `db:"siren" json:"siren,omitempty"`
	VatNumber *string   `db:"vat_number" json:"vat_number,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CreateClientRequest carries the fields needed to create a client.
type CreateClientRequest struct {
	Name      string  `json:"name" validate:"required"`
	Address   string  `json:"address" validate:"required"`
	Siren     *string `json:"siren,omitempty"`
	VatNumber *string `json:"vat_number,omitempty"`
}

// UpdateClientRequest is a partial update: only non-nil fields are
// written; omitted fields retain their previous values.
type UpdateClientRequest struct {
	Name      *string `json:"name,omitempty"`
	Address   *string `json:"address,omitempty"`
	Siren     *string `json:"siren,omitempty"`
	VatNumber *string `json:"vat_number,omitempty"`
}

// ClientCreate inserts a new client and returns the stored row.
func (db *DB) ClientCreate(ctx context.Context, req CreateClientRequest) (*Client, error) {
	stmt := db.clientInsertStmt
	namedArgs := map[string]any{
		"Name":      req.Name,
		"Address":   req.Address,
		"Siren":     req.Siren,
		"VatNumber": req.VatNumber,
	}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return nil, fmt.Errorf("client insert verify arguments error: %w", err)
	}
	res, err := stmt.ExecContext(ctx, namedArgs)
	if err != nil {
		db.logQuery("client_insert", stmt, namedArgs, err)
		return nil, fmt.Errorf("failed to insert client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("client insert id error: %w", err)
	}
	return db.ClientGet(ctx, id)
}

// ClientGet returns a single client by id.
func (db *DB) ClientGet(ctx context.Context, id int64) (*Client, error) {
	stmt := db.clientGetStmt
	namedArgs := map[string]any{"ClientID": id}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return nil, fmt.Errorf("client get verify arguments error: %w", err)
	}
	var client Client
	err := stmt.GetContext(ctx, &client, namedArgs)
	db.logQuery("client", stmt, namedArgs, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("client select error: %w", err)
	}
	return &client, nil
}

// ClientsGet returns all clients ordered by name.
func (db *DB) ClientsGet(ctx context.Context) ([]Client, error) {
	stmt := db.clientsGetStmt
	clients := []Client{}
	err := stmt.SelectContext(ctx, &clients, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("clients select error: %w", err)
	}
	return clients, nil
}

// ClientUpdate applies a partial update to a client, refreshing
// updated_at, and returns the stored row. The SET clause is assembled
// dynamically per present field, so it cannot be a prepared sql file.
func (db *DB) ClientUpdate(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {

	sets := []string{}
	namedArgs := map[string]any{"id": id}
	if req.Name != nil {
		sets = append(sets, "name = :name")
		namedArgs["name"] = *req.Name
	}
	if req.Address != nil {
		sets = append(sets, "address = :address")
		namedArgs["address"] = *req.Address
	}
	if req.Siren != nil {
		sets = append(sets, "siren = :siren")
		namedArgs["siren"] = *req.Siren
	}
	if req.VatNumber != nil {
		sets = append(sets, "vat_number = :vat_number")
		namedArgs["vat_number"] = *req.VatNumber
	}
	if len(sets) == 0 {
		return db.ClientGet(ctx, id)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf("UPDATE clients SET %s WHERE id = :id", strings.Join(sets, ", "))
	res, err := db.NamedExecContext(ctx, query, namedArgs)
	if err != nil {
		return nil, fmt.Errorf("client update error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("client update rows affected error: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("client %d: %w", id, ErrNotFound)
	}
	return db.ClientGet(ctx, id)
}

// ClientDelete removes a client, reporting whether a row was removed.
// Documents referencing the client are left untouched, keeping their
// creation-time address snapshots.
func (db *DB) ClientDelete(ctx context.Context, id int64) (bool, error) {
	stmt := db.clientDeleteStmt
	namedArgs := map[string]any{"ClientID": id}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return false, fmt.Errorf("client delete verify arguments error: %w", err)
	}
	res, err := stmt.ExecContext(ctx, namedArgs)
	if err != nil {
		return false, fmt.Errorf("client delete error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("client delete rows affected error: %w", err)
	}
	return affected > 0, nil
}
