package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCountersGetSeeded(t *testing.T) {
	testDB, closer := setupTestDB(t)
	defer closer()

	counters, err := testDB.CountersGet(context.Background())
	if err != nil {
		t.Fatalf("counters get error: %v", err)
	}
	if diff := cmp.Diff(&Counters{Quote: 0, Invoice: 0}, counters); diff != "" {
		t.Errorf("counters mismatch (-want +got):\n%s", diff)
	}
}

func TestCounterSet(t *testing.T) {
	testDB, closer := setupTestDB(t)
	defer closer()
	ctx := context.Background()

	if err := testDB.CounterSet(ctx, DocumentTypeInvoice, 41); err != nil {
		t.Fatalf("counter set error: %v", err)
	}
	counters, err := testDB.CountersGet(ctx)
	if err != nil {
		t.Fatalf("counters get error: %v", err)
	}
	if diff := cmp.Diff(&Counters{Quote: 0, Invoice: 41}, counters); diff != "" {
		t.Errorf("counters mismatch (-want +got):\n%s", diff)
	}

	err = testDB.CounterSet(ctx, DocumentType("receipt"), 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown counter type, got %v", err)
	}
}
