package results

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/systemstart/paychain/pkg/api"
)

func sampleRecord(chain string, order int) Record {
	return Record{
		RunID:          "run-1",
		ChainID:        chain,
		StepOrder:      order,
		CallType:       api.CallCreatePayment,
		TestID:         "T1",
		Status:         api.StepSucceeded,
		HTTPStatus:     201,
		BusinessStatus: "AUTHORIZED",
		PaymentID:      "p1",
		Request:        `{"operationId":"op, quoted \"x\""}`,
		Assertions:     "[]",
		Passed:         true,
		Duration:       1500 * time.Millisecond,
		StartedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		WorkerID:       2,
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCSVWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(sampleRecord("C1", 1)); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(Columns, ",") {
		t.Errorf("unexpected header %v", rows[0])
	}
	got := map[string]string{}
	for i, c := range Columns {
		got[c] = rows[1][i]
	}
	if got["status"] != "SUCCEEDED" || got["duration_ms"] != "1500" || got["passed"] != "true" {
		t.Errorf("unexpected row %v", got)
	}
	if got["request"] != `{"operationId":"op, quoted \"x\""}` {
		t.Errorf("request not round-tripped: %q", got["request"])
	}
}

func TestCreateCSV_Overwrites(t *testing.T) {
	file := filepath.Join(t.TempDir(), "outputs", "results.csv")
	for range 2 {
		w, err := CreateCSV(file)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Write(sampleRecord("C1", 1)); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "run-1"); n != 1 {
		t.Errorf("expected a single record after rerun, found %d", n)
	}
}

func TestStore(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	want := sampleRecord("C1", 1)
	if err := store.Insert(want); err != nil {
		t.Fatal(err)
	}
	other := sampleRecord("C2", 1)
	other.RunID = "run-2"
	other.Status = api.StepFailedAPIError
	other.Passed = false
	if err := store.Insert(other); err != nil {
		t.Fatal(err)
	}

	got, err := store.RunRecords("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if !got[0].StartedAt.Equal(want.StartedAt) {
		t.Errorf("started_at = %v, want %v", got[0].StartedAt, want.StartedAt)
	}
	got[0].StartedAt = want.StartedAt
	if got[0] != want {
		t.Errorf("record mismatch:\n got %+v\nwant %+v", got[0], want)
	}

	runs, err := store.Runs()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(runs, ",") != "run-2,run-1" {
		t.Errorf("unexpected runs %v", runs)
	}
}

func TestStore_Reopen(t *testing.T) {
	db := filepath.Join(t.TempDir(), "local.db")
	for i := range 2 {
		store, err := OpenStore(db)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Insert(sampleRecord("C1", i+1)); err != nil {
			t.Fatal(err)
		}
		store.Close()
	}

	store, err := OpenStore(db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.RunRecords("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected records to be appended across opens, got %d", len(got))
	}
}

func TestSink_ConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	sink, err := Open(filepath.Join(dir, "results.csv"), filepath.Join(dir, "local.db"))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sink.Write(sampleRecord("C", i)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	store, err := OpenStore(filepath.Join(dir, "local.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	records, err := store.RunRecords("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 20 {
		t.Errorf("expected 20 stored records, got %d", len(records))
	}

	f, err := os.Open(filepath.Join(dir, "results.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 21 {
		t.Errorf("expected header and 20 rows, got %d", len(rows))
	}
}

func TestSink_NilDestinations(t *testing.T) {
	sink := NewSink(nil, nil)
	if err := sink.Write(sampleRecord("C1", 1)); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
}
