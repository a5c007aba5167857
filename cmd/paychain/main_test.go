package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/systemstart/paychain/pkg/api"
	"github.com/systemstart/paychain/pkg/results"
)

const testsCSV = `chain_id,step_order,call_type,test_id,tags,env,merchant_id,card_id,amount,currency,expected_http_status,expected_status
C1,1,create_payment,T1,"smoke,visa",test,m1,visa1,1000,EUR,201,AUTHORIZED
C1,2,capture_payment,T2,smoke,test,m1,visa1,1000,EUR,201,CAPTURED
C2,1,create_payment,T3,visa,test,m1,visa1,500,EUR,,
C3,1,capture_payment,T4,slow,test,m1,visa1,500,EUR,,
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// setupProject writes a complete configuration tree and returns the settings file.
func setupProject(t *testing.T, endpoint string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "static", "environments.csv"), "env,endpoint_host,socket_timeout\ntest,"+endpoint+",5\n")
	writeFile(t, filepath.Join(dir, "static", "merchants.csv"), "env,merchant,acquirer_id,merchant_id,merchant_description\ntest,m1,100,200,Test merchant\n")
	writeFile(t, filepath.Join(dir, "static", "cards.csv"), "card_id,card_brand,card_number,expiry_date\nvisa1,VISA,4111111111111111,122030\n")
	writeFile(t, filepath.Join(dir, "suites", "smoke.csv"), testsCSV)
	writeFile(t, filepath.Join(dir, "suites", "regression", "dcc.csv"), "chain_id,step_order,call_type,test_id\n")

	settings := filepath.Join(dir, "paychain.yaml")
	writeFile(t, settings, strings.Join([]string{
		"staticDir: " + filepath.Join(dir, "static"),
		"credentialsDir: " + filepath.Join(dir, "credentials"),
		"testSuitesDir: " + filepath.Join(dir, "suites"),
		"tests: smoke.csv",
		"threads: 2",
		"results:",
		"  csv: " + filepath.Join(dir, "outputs", "results.csv"),
		"  database: " + filepath.Join(dir, "outputs", "local.db"),
		"",
	}, "\n"))
	return dir, settings
}

func acquirerStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/payments"):
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"paymentId":"p1","status":"AUTHORIZED"}`))
		case strings.HasSuffix(r.URL.Path, "/captures"):
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"status":"CAPTURED"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	cmd := newRootCmd(&options{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--logging-type", "text", "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func readResults(t *testing.T, file string) []map[string]string {
	t.Helper()
	f, err := os.Open(file)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]string
	for _, row := range rows[1:] {
		m := map[string]string{}
		for i, c := range rows[0] {
			m[c] = row[i]
		}
		out = append(out, m)
	}
	return out
}

func TestRun_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(acquirerStub())
	defer srv.Close()
	dir, settings := setupProject(t, srv.URL)

	out, err := execute(t, "--settings", settings)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "SUCCEEDED") {
		t.Errorf("summary not rendered:\n%s", out)
	}

	records := readResults(t, filepath.Join(dir, "outputs", "results.csv"))
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	status := map[string]string{}
	for _, r := range records {
		status[r["test_id"]] = r["status"]
	}
	want := map[string]string{
		"T1": string(api.StepSucceeded),
		"T2": string(api.StepSucceeded),
		"T3": string(api.StepSucceeded),
		"T4": string(api.StepSkippedMissingDependency),
	}
	for id, s := range want {
		if status[id] != s {
			t.Errorf("%s: status %q, want %q", id, status[id], s)
		}
	}

	store, err := results.OpenStore(filepath.Join(dir, "outputs", "local.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runs, err := store.Runs()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run in the database, got %v", runs)
	}
	stored, err := store.RunRecords(runs[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 4 {
		t.Errorf("expected 4 stored records, got %d", len(stored))
	}
}

func TestRun_TagFilter(t *testing.T) {
	srv := httptest.NewServer(acquirerStub())
	defer srv.Close()
	dir, settings := setupProject(t, srv.URL)

	if _, err := execute(t, "--settings", settings, "--include-tags", "visa", "--exclude-tags", "smoke", "--threads", "1"); err != nil {
		t.Fatal(err)
	}

	records := readResults(t, filepath.Join(dir, "outputs", "results.csv"))
	if len(records) != 1 || records[0]["test_id"] != "T3" {
		t.Errorf("expected only T3, got %v", records)
	}
}

func TestRun_ConfigurationError(t *testing.T) {
	dir, settings := setupProject(t, "http://127.0.0.1:1")
	if err := os.Remove(filepath.Join(dir, "static", "cards.csv")); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "--settings", settings)
	var cfgErr *api.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRun_InvalidThreads(t *testing.T) {
	_, settings := setupProject(t, "http://127.0.0.1:1")
	if _, err := execute(t, "--settings", settings, "--threads", "0"); err == nil {
		t.Fatal("expected error for --threads 0")
	}
}

func TestSuitesCommand(t *testing.T) {
	_, settings := setupProject(t, "http://127.0.0.1:1")

	out, err := execute(t, "suites", "--settings", settings)
	if err != nil {
		t.Fatal(err)
	}
	if out != "regression/dcc.csv\nsmoke.csv\n" {
		t.Errorf("unexpected suites:\n%s", out)
	}
}

func TestTagsCommand(t *testing.T) {
	_, settings := setupProject(t, "http://127.0.0.1:1")

	out, err := execute(t, "tags", "--settings", settings)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "slow") || !strings.HasSuffix(lines[1], "2") {
		t.Errorf("unexpected tags output:\n%s", out)
	}
}

func TestCallTypesCommand(t *testing.T) {
	out, err := execute(t, "call-types")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "capture_payment") || !strings.Contains(out, "payment_id") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("unexpected version %q", out)
	}
}

func TestRunsCommand(t *testing.T) {
	srv := httptest.NewServer(acquirerStub())
	defer srv.Close()
	_, settings := setupProject(t, srv.URL)

	for range 2 {
		if _, err := execute(t, "--settings", settings); err != nil {
			t.Fatal(err)
		}
	}

	out, err := execute(t, "runs", "--settings", settings)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "RUN") {
		t.Fatalf("unexpected runs output:\n%s", out)
	}
	fields := strings.Fields(lines[1])
	if n := len(fields); n < 4 || fields[n-2] != "4" || fields[n-1] != "3" {
		t.Fatalf("unexpected run line %q", lines[1])
	}

	out, err = execute(t, "runs", fields[0], "--settings", settings)
	if err != nil {
		t.Fatal(err)
	}
	lines = strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 || !strings.Contains(out, "T4") || !strings.Contains(out, string(api.StepSkippedMissingDependency)) {
		t.Errorf("unexpected run records:\n%s", out)
	}

	if _, err := execute(t, "runs", "missing", "--settings", settings); err == nil {
		t.Error("expected error for an unknown run id")
	}
}
