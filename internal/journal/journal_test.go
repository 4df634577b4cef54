package journal

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zakolko/zakolko/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)

	features := models.FormPayload{"uzit_plocha": "62", "mesto": "Bratislava-Ružinov"}
	rec, err := store.Record("model-a", features, 185000)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if rec.ID == "" {
		t.Error("Expected record id to be set")
	}

	records, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if diff := cmp.Diff(rec, records[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	store := openTestStore(t)

	for i, p := range []int64{100, 200, 300} {
		if _, err := store.Record("model-a", models.FormPayload{"pocet_izieb": string(rune('1' + i))}, p); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	records, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Prediction != 300 || records[1].Prediction != 200 {
		t.Errorf("Expected newest first, got %d then %d", records[0].Prediction, records[1].Prediction)
	}
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	records, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", records)
	}
}

func TestCount(t *testing.T) {
	store := openTestStore(t)
	store.Record("m", models.FormPayload{}, 1)
	store.Record("m", models.FormPayload{}, 2)

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2, got %d", n)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.Record("m", models.FormPayload{"podlazie": "4"}, 99000)
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer store.Close()

	n, _ := store.Count()
	if n != 1 {
		t.Errorf("Expected 1 record after reopen, got %d", n)
	}
}

func TestOpenInvalidPath(t *testing.T) {
	if _, err := Open("/nonexistent/dir/"+FileName); err == nil {
		t.Error("Expected error for unwritable path")
	}
}
