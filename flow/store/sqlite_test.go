package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStore_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.db")
	st, err := NewSQLiteStore[testRecord](path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer func() { _ = st.Close() }()

	runStoreContract(t, st)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.db")
	ctx := context.Background()

	st, err := NewSQLiteStore[testRecord](path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	_, err = st.Update(ctx, "inst-durable", func(cur testRecord) (testRecord, error) {
		cur.ID = "inst-durable"
		cur.Status = "finished"
		cur.Counter = 3
		return cur, nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen the same file: the record must still be there.
	reopened, err := NewSQLiteStore[testRecord](path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, "inst-durable")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Status != "finished" || got.Counter != 3 {
		t.Errorf("record after reopen = %+v, want finished/3", got)
	}
}
