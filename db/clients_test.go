package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestClientLifecycle(t *testing.T) {
	testDB, closer := setupTestDB(t)
	defer closer()
	ctx := context.Background()

	client, err := testDB.ClientCreate(ctx, CreateClientRequest{
		Name:    "Acme SARL",
		Address: "1 rue de la Paix\n75002 Paris",
		Siren:   ptrStr("123456789"),
	})
	if err != nil {
		t.Fatalf("client create error: %v", err)
	}
	if client.ID == 0 {
		t.Error("expected a non-zero client id")
	}
	if client.CreatedAt.IsZero() || client.UpdatedAt.IsZero() {
		t.Error("expected creation timestamps to be set")
	}

	want := &Client{
		ID:      client.ID,
		Name:    "Acme SARL",
		Address: "1 rue de la Paix\n75002 Paris",
		Siren:   ptrStr("123456789"),
	}
	ignoreTimes := cmpopts.IgnoreFields(Client{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(want, client, ignoreTimes); diff != "" {
		t.Errorf("client mismatch (-want +got):\n%s", diff)
	}

	got, err := testDB.ClientGet(ctx, client.ID)
	if err != nil {
		t.Fatalf("client get error: %v", err)
	}
	if diff := cmp.Diff(client, got); diff != "" {
		t.Errorf("client get mismatch (-want +got):\n%s", diff)
	}

	deleted, err := testDB.ClientDelete(ctx, client.ID)
	if err != nil {
		t.Fatalf("client delete error: %v", err)
	}
	if !deleted {
		t.Error("expected client deletion to report a removed row")
	}
	deleted, err = testDB.ClientDelete(ctx, client.ID)
	if err != nil {
		t.Fatalf("second client delete error: %v", err)
	}
	if deleted {
		t.Error("expected second deletion to report no removed row")
	}
	if _, err := testDB.ClientGet(ctx, client.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}
}

func TestClientsGetOrdering(t *testing.T) {
	testDB, closer := setupTestDB(t)
	defer closer()
	ctx := context.Background()

	clients, err := testDB.ClientsGet(ctx)
	if err != nil {
		t.Fatalf("clients get error: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("expected an empty listing, got %d clients", len(clients))
	}

	for _, name := range []string{"Zulu", "Alpha", "Mike"} {
		_, err := testDB.ClientCreate(ctx, CreateClientRequest{
			Name: name, Address: "somewhere",
		})
		if err != nil {
			t.Fatalf("client create error: %v", err)
		}
	}

	clients, err = testDB.ClientsGet(ctx)
	if err != nil {
		t.Fatalf("clients get error: %v", err)
	}
	names := []string{}
	for _, c := range clients {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Alpha", "Mike", "Zulu"}, names); diff != "" {
		t.Errorf("clients ordering mismatch (-want +got):\n%s", diff)
	}
}

func TestClientUpdate(t *testing.T) {
	testDB, closer := setupTestDB(t)
	defer closer()
	ctx := context.Background()

	client, err := testDB.ClientCreate(ctx, CreateClientRequest{
		Name:    "Widget Co",
		Address: "2 avenue Foch",
	})
	if err != nil {
		t.Fatalf("client create error: %v", err)
	}

	// A partial update only touches the provided fields.
	updated, err := testDB.ClientUpdate(ctx, client.ID, UpdateClientRequest{
		Address:   ptrStr("3 avenue Foch"),
		VatNumber: ptrStr("FR12345678901"),
	})
	if err != nil {
		t.Fatalf("client update error: %v", err)
	}
	if got, want := updated.Name, "Widget Co"; got != want {
		t.Errorf("name: got %q want %q", got, want)
	}
	if got, want := updated.Address, "3 avenue Foch"; got != want {
		t.Errorf("address: got %q want %q", got, want)
	}
	if updated.VatNumber == nil || *updated.VatNumber != "FR12345678901" {
		t.Errorf("vat_number: got %v want FR12345678901", updated.VatNumber)
	}

	// An empty update is a read.
	same, err := testDB.ClientUpdate(ctx, client.ID, UpdateClientRequest{})
	if err != nil {
		t.Fatalf("empty client update error: %v", err)
	}
	if diff := cmp.Diff(updated, same); diff != "" {
		t.Errorf("empty update mismatch (-want +got):\n%s", diff)
	}

	_, err = testDB.ClientUpdate(ctx, 9999, UpdateClientRequest{Name: ptrStr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown client, got %v", err)
	}
}
