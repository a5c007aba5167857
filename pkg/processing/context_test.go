package processing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadContextFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "context.yaml")
	if err := os.WriteFile(f, []byte("payment_id: pay-123\ncapture_sequence: 2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, err := LoadContextFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ctx["payment_id"] != "pay-123" {
		t.Errorf("expected payment_id=pay-123, got %v", ctx["payment_id"])
	}
	if ctx["capture_sequence"] != "2" {
		t.Errorf("expected capture_sequence=2, got %v", ctx["capture_sequence"])
	}
}

func TestLoadContextFile_Empty(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "context.yaml")
	if err := os.WriteFile(f, []byte(""), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, err := LoadContextFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ctx == nil {
		t.Fatal("expected non-nil map")
	}
	if len(ctx) != 0 {
		t.Errorf("expected empty map, got %v", ctx)
	}
}

func TestLoadContextFile_NotFound(t *testing.T) {
	_, err := LoadContextFile("/nonexistent/context.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadContextFile_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "context.yaml")
	if err := os.WriteFile(f, []byte("{{invalid"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadContextFile(f)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadContextFile_NestedValue(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "context.yaml")
	if err := os.WriteFile(f, []byte("payment:\n  id: x\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadContextFile(f); err == nil {
		t.Fatal("expected error for a nested mapping")
	}
}

func TestMergeContext(t *testing.T) {
	tests := []struct {
		name   string
		global map[string]string
		local  map[string]string
		check  func(t *testing.T, merged map[string]string)
	}{
		{
			name:   "local overrides global",
			global: map[string]string{"payment_id": "p1", "refund_id": "r1"},
			local:  map[string]string{"payment_id": "p2", "operation_id": "op"},
			check: func(t *testing.T, m map[string]string) {
				t.Helper()
				if m["payment_id"] != "p2" {
					t.Errorf("expected local override, got %v", m["payment_id"])
				}
				if m["refund_id"] != "r1" {
					t.Errorf("expected global refund_id preserved, got %v", m["refund_id"])
				}
				if m["operation_id"] != "op" {
					t.Errorf("expected local operation_id, got %v", m["operation_id"])
				}
			},
		},
		{
			name:  "nil global",
			local: map[string]string{"key": "val"},
			check: func(t *testing.T, m map[string]string) {
				t.Helper()
				if m["key"] != "val" {
					t.Errorf("expected key=val, got %v", m["key"])
				}
			},
		},
		{
			name:   "nil local",
			global: map[string]string{"key": "val"},
			check: func(t *testing.T, m map[string]string) {
				t.Helper()
				if m["key"] != "val" {
					t.Errorf("expected key=val, got %v", m["key"])
				}
			},
		},
		{
			name: "both nil",
			check: func(t *testing.T, m map[string]string) {
				t.Helper()
				if m == nil || len(m) != 0 {
					t.Errorf("expected empty map, got %v", m)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, MergeContext(tt.global, tt.local))
		})
	}
}

func TestMergeContext_DoesNotAlias(t *testing.T) {
	seed := map[string]string{"payment_id": "p1"}
	merged := MergeContext(seed, nil)
	merged["payment_id"] = "p2"
	if seed["payment_id"] != "p1" {
		t.Error("merge must not modify its inputs")
	}
}
