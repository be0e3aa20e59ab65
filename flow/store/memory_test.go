package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// testRecord is a minimal record type for store contract tests.
type testRecord struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Counter int    `json:"counter"`
}

// runStoreContract exercises the Store contract shared by all backends.
func runStoreContract(t *testing.T, st Store[testRecord]) {
	t.Helper()
	ctx := context.Background()

	// Unique prefix so reruns against a persistent backend start clean.
	prefix := fmt.Sprintf("t%d-", time.Now().UnixNano())
	instOne := prefix + "inst-1"
	instCounter := prefix + "inst-counter"

	t.Run("get absent returns ErrNotFound", func(t *testing.T) {
		_, err := st.Get(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update creates from zero record", func(t *testing.T) {
		created, err := st.Update(ctx, instOne, func(cur testRecord) (testRecord, error) {
			if cur.ID != "" {
				t.Errorf("expected zero record for absent id, got %+v", cur)
			}
			cur.ID = instOne
			cur.Status = "active"
			cur.Counter = 1
			return cur, nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if created.Status != "active" || created.Counter != 1 {
			t.Errorf("unexpected created record: %+v", created)
		}

		got, err := st.Get(ctx, instOne)
		if err != nil {
			t.Fatalf("Get after Update failed: %v", err)
		}
		if got != created {
			t.Errorf("Get = %+v, want %+v", got, created)
		}
	})

	t.Run("update sees the committed prior record", func(t *testing.T) {
		_, err := st.Update(ctx, instOne, func(cur testRecord) (testRecord, error) {
			if cur.Counter != 1 {
				t.Errorf("expected counter 1 from prior write, got %d", cur.Counter)
			}
			cur.Counter++
			cur.Status = "wait"
			return cur, nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, _ := st.Get(ctx, instOne)
		if got.Counter != 2 || got.Status != "wait" {
			t.Errorf("unexpected record after second update: %+v", got)
		}
	})

	t.Run("mutator error writes nothing", func(t *testing.T) {
		boom := errors.New("refused")
		_, err := st.Update(ctx, instOne, func(cur testRecord) (testRecord, error) {
			cur.Counter = 999
			return cur, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Update error = %v, want mutator error", err)
		}

		got, _ := st.Get(ctx, instOne)
		if got.Counter == 999 {
			t.Error("mutator error must not commit a write")
		}
	})

	t.Run("concurrent updates on one id are serialized", func(t *testing.T) {
		const workers = 8
		const perWorker = 25

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					_, err := st.Update(ctx, instCounter, func(cur testRecord) (testRecord, error) {
						cur.Counter++
						return cur, nil
					})
					if err != nil {
						t.Errorf("Update failed: %v", err)
						return
					}
				}
			}()
		}
		wg.Wait()

		got, err := st.Get(ctx, instCounter)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Counter != workers*perWorker {
			t.Errorf("counter = %d, want %d (read-modify-write windows interleaved)", got.Counter, workers*perWorker)
		}
	})
}

func TestMemStore_Contract(t *testing.T) {
	runStoreContract(t, NewMemStore[testRecord]())
}
