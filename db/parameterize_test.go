package db

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParameterize(t *testing.T) {

	tests := []struct {
		input        string
		expectedArgs []string
		expectedBody string
		isErr        bool
	}{
		{
			input:        `'quote' AS DocType    /* @param */`,
			expectedArgs: []string{"DocType"},
			expectedBody: `:DocType AS DocType`,
		},
		{
			input: `nothing`,
			isErr: true,
		},
		{
			input: `
WITH args AS (
	SELECT
	'quote' AS DocType          /* @param */
	,1 AS ClientID              /* @param */
	-- 0.20 is the standard French rate
	,0.20 AS VatRate            /* @param */
	,null AS QuoteID            /* @param */
	,-34.5 AS FloatExample      /* @param */
	,'raw string' AS RawString
)
`,
			expectedArgs: []string{
				"DocType", "ClientID", "VatRate", "QuoteID", "FloatExample"},
			expectedBody: `
WITH args AS (
	SELECT
	:DocType AS DocType
	,:ClientID AS ClientID
	-- 0.20 is the standard French rate
	,:VatRate AS VatRate
	,:QuoteID AS QuoteID
	,:FloatExample AS FloatExample
	,'raw string' AS RawString
)
`,
		},
	}

	for ii, tt := range tests {
		t.Run(fmt.Sprintf("test_%d", ii), func(t *testing.T) {
			result, err := parameterize([]byte(tt.input))
			if err != nil {
				if tt.isErr {
					return
				}
				t.Fatal(err)
			}
			if got, want := len(result.Parameters), len(tt.expectedArgs); got != want {
				t.Errorf("got %d parameters, want %d", got, want)
			}
			if diff := cmp.Diff(tt.expectedArgs, result.Parameters); diff != "" {
				t.Errorf("Parameters mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(string(result.Body), tt.expectedBody); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestParameterizeNoParameters(t *testing.T) {
	_, err := parameterize([]byte(`SELECT type, counter FROM document_counters`))
	if !errors.Is(err, errNoParameters) {
		t.Fatalf("expected errNoParameters, got %v", err)
	}
}

func TestParameterizeFile(t *testing.T) {

	sqlDir := os.DirFS("sql")

	query, err := ParameterizeFile(sqlDir, "document_insert.sql")
	if err != nil {
		t.Fatalf("unexpected file parameterization error: %v", err)
	}
	if got, want := len(query.Parameters), 20; got != want {
		t.Errorf("document_insert.sql parameters: got %d want %d", got, want)
	}
	_, err = ParameterizeFile(sqlDir, "doesNotExist")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected file parameterization error")
	}
}
