package db

// counters.go deals with the per-type document counters. Allocation
// during document creation happens in documents.go; these calls back
// the /counters inspection and adjustment endpoints.

import (
	"context"
	"fmt"
)

// Counters reports the current counter value per document type.
type Counters struct {
	Quote   int64 `json:"quote"`
	Invoice int64 `json:"invoice"`
}

// counterRow is the scan target for counters.sql.
type counterRow struct {
	Type    string `db:"type"`
	Counter int64  `db:"counter"`
}

// CountersGet returns the current counter for each document type.
func (db *DB) CountersGet(ctx context.Context) (*Counters, error) {
	stmt := db.countersGetStmt
	var rows []counterRow
	err := stmt.SelectContext(ctx, &rows, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("counters select error: %w", err)
	}

	counters := &Counters{}
	for _, row := range rows {
		switch DocumentType(row.Type) {
		case DocumentTypeQuote:
			counters.Quote = row.Counter
		case DocumentTypeInvoice:
			counters.Invoice = row.Counter
		}
	}
	return counters, nil
}

// CounterSet sets the counter for a document type to an absolute value.
// The next allocated number for that type embeds value + 1.
func (db *DB) CounterSet(ctx context.Context, docType DocumentType, value int64) error {
	stmt := db.counterSetStmt
	namedArgs := map[string]any{
		"DocType": string(docType),
		"Counter": value,
	}
	if err := stmt.verifyArgs(namedArgs); err != nil {
		return fmt.Errorf("counter set verify arguments error: %w", err)
	}
	res, err := stmt.ExecContext(ctx, namedArgs)
	if err != nil {
		db.logQuery("counter_set", stmt, namedArgs, err)
		return fmt.Errorf("counter set error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counter set rows affected error: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("counter for %q: %w", docType, ErrNotFound)
	}
	return nil
}
