package main

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mockApplicator records the calls made by the CLI.
type mockApplicator struct {
	calls   []string
	cfgPath string
	docType string
	value   int64
	dir     string
}

func (m *mockApplicator) Serve(ctx context.Context, cfgPath string) error {
	m.calls = append(m.calls, "serve")
	m.cfgPath = cfgPath
	return nil
}

func (m *mockApplicator) InitDB(ctx context.Context, cfgPath string) error {
	m.calls = append(m.calls, "initdb")
	m.cfgPath = cfgPath
	return nil
}

func (m *mockApplicator) ShowCounters(ctx context.Context, cfgPath string) error {
	m.calls = append(m.calls, "counters")
	m.cfgPath = cfgPath
	return nil
}

func (m *mockApplicator) SetCounter(ctx context.Context, cfgPath, docType string, value int64) error {
	m.calls = append(m.calls, "counters set")
	m.cfgPath = cfgPath
	m.docType = docType
	m.value = value
	return nil
}

func (m *mockApplicator) ExtractSQL(ctx context.Context, dir string) error {
	m.calls = append(m.calls, "extract-sql")
	m.dir = dir
	return nil
}

func TestBuildCLI(t *testing.T) {

	tests := []struct {
		args        []string
		wantCalls   []string
		wantCfgPath string
	}{
		{
			args:        []string{"invoicebox", "serve"},
			wantCalls:   []string{"serve"},
			wantCfgPath: "config.yaml",
		},
		{
			args:        []string{"invoicebox", "serve", "-c", "custom.yaml"},
			wantCalls:   []string{"serve"},
			wantCfgPath: "custom.yaml",
		},
		{
			args:        []string{"invoicebox", "initdb"},
			wantCalls:   []string{"initdb"},
			wantCfgPath: "config.yaml",
		},
		{
			args:        []string{"invoicebox", "counters"},
			wantCalls:   []string{"counters"},
			wantCfgPath: "config.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.args[1], func(t *testing.T) {
			mock := &mockApplicator{}
			cmd := BuildCLI(mock)
			if err := cmd.Run(context.Background(), tt.args); err != nil {
				t.Fatalf("cli run error: %v", err)
			}
			if diff := cmp.Diff(tt.wantCalls, mock.calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
			if got, want := mock.cfgPath, tt.wantCfgPath; got != want {
				t.Errorf("config path: got %q want %q", got, want)
			}
		})
	}
}

func TestBuildCLICounterSet(t *testing.T) {
	mock := &mockApplicator{}
	cmd := BuildCLI(mock)
	args := []string{"invoicebox", "counters", "set", "--type", "invoice", "--value", "41"}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("cli run error: %v", err)
	}
	if diff := cmp.Diff([]string{"counters set"}, mock.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if mock.docType != "invoice" || mock.value != 41 {
		t.Errorf("got type %q value %d, want invoice 41", mock.docType, mock.value)
	}
}

func TestBuildCLIExtractSQL(t *testing.T) {
	mock := &mockApplicator{}
	cmd := BuildCLI(mock)
	args := []string{"invoicebox", "extract-sql", "--dir", "/tmp/queries"}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("cli run error: %v", err)
	}
	if mock.dir != "/tmp/queries" {
		t.Errorf("dir: got %q want /tmp/queries", mock.dir)
	}
}
