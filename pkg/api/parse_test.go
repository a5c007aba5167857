package api

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestLoadTestSteps_Valid(t *testing.T) {
	content := `chain_id,step_order,call_type,test_id,tags,env,merchant_id,card_id,amount,currency,capture_immediately,use_dcc,expected_http_status,expected_status
C2,1,create_payment,T3,"smoke, visa",dev,m1,visa1,100.0,eur,FALSE,1,201,AUTHORIZED
C1,2,capture_payment,T2,smoke,dev,m1,,50,EUR,,,,
C1,1,create_payment,T1,,dev,m1,visa1,0100,EUR,true,,,
`
	f := writeFile(t, t.TempDir(), "tests.csv", content)

	steps, err := LoadTestSteps(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}

	order := []string{steps[0].TestID, steps[1].TestID, steps[2].TestID}
	if strings.Join(order, ",") != "T1,T2,T3" {
		t.Fatalf("expected sorted order T1,T2,T3, got %v", order)
	}

	first := steps[0]
	if first.Amount == nil || *first.Amount != 100 {
		t.Errorf("expected amount 100, got %v", first.Amount)
	}
	if first.CaptureImmediately == nil || !*first.CaptureImmediately {
		t.Errorf("expected capture_immediately=true")
	}
	if first.Line != 4 {
		t.Errorf("expected line 4, got %d", first.Line)
	}

	last := steps[2]
	if len(last.Tags) != 2 || last.Tags[0] != "smoke" || last.Tags[1] != "visa" {
		t.Errorf("unexpected tags %v", last.Tags)
	}
	if last.Currency != "EUR" {
		t.Errorf("expected currency upper-cased, got %q", last.Currency)
	}
	if !last.UseDCC {
		t.Error("expected use_dcc")
	}
	if last.Expect.HTTPStatus == nil || *last.Expect.HTTPStatus != 201 {
		t.Errorf("expected http status 201, got %v", last.Expect.HTTPStatus)
	}
	if last.Expect.Status != "AUTHORIZED" {
		t.Errorf("expected status AUTHORIZED, got %q", last.Expect.Status)
	}
	if steps[1].Expect.HTTPStatus != nil || !steps[1].Expect.Empty() {
		t.Errorf("expected no expectations on T2, got %+v", steps[1].Expect)
	}
}

func TestLoadTestSteps_MissingColumn(t *testing.T) {
	f := writeFile(t, t.TempDir(), "tests.csv", "chain_id,call_type,test_id\nC1,ping,T1\n")

	_, err := LoadTestSteps(f)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "step_order") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadTestSteps_DuplicateStep(t *testing.T) {
	content := "chain_id,step_order,call_type,test_id\nC1,1,ping,T1\nC1,1,ping,T2\n"
	f := writeFile(t, t.TempDir(), "tests.csv", content)

	_, err := LoadTestSteps(f)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "duplicate step_order 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadTestSteps_BadCell(t *testing.T) {
	content := "chain_id,step_order,call_type,test_id,amount\nC1,1,create_payment,T1,lots\n"
	f := writeFile(t, t.TempDir(), "tests.csv", content)

	_, err := LoadTestSteps(f)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Line != 2 || !strings.Contains(err.Error(), "amount") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadTestSteps_FileNotFound(t *testing.T) {
	_, err := LoadTestSteps("/nonexistent/tests.csv")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestReadTable(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		required []string
		wantRows int
		wantErr  string
	}{
		{"empty file", "", nil, 0, "empty file"},
		{"header only", "a,b\n", []string{"a"}, 0, ""},
		{"blank rows skipped", "a,b\n1,2\n,\n3,4\n", nil, 2, ""},
		{"short rows allowed", "a,b,c\n1\n", nil, 1, ""},
		{"header normalised", "\ufeff A ,B\n1,2\n", []string{"a", "b"}, 1, ""},
		{"missing required", "a\n1\n", []string{"a", "b"}, 0, "missing required columns: b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadTable(strings.NewReader(tt.content), tt.required...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != tt.wantRows {
				t.Fatalf("expected %d rows, got %d", tt.wantRows, len(rows))
			}
		})
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100", 100, false},
		{"100.0", 100, false},
		{"0", 0, false},
		{"09", 9, false},
		{"-5", -5, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := toInt(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("toInt(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("toInt(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" smoke ,, dcc,")
	if strings.Join(got, "|") != "smoke|dcc" {
		t.Fatalf("unexpected tags %v", got)
	}
	if SplitTags("") != nil {
		t.Fatal("expected nil for empty cell")
	}
}
