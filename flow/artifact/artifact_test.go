package artifact

import (
	"context"
	"errors"
	"testing"
)

func runArtifactContract(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("latest draft absent", func(t *testing.T) {
		_, err := st.LatestDraft(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("LatestDraft(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		if err := st.SaveDraft(ctx, "inst-1", "<p>hello</p>"); err != nil {
			t.Fatalf("SaveDraft failed: %v", err)
		}

		got, err := st.LatestDraft(ctx, "inst-1")
		if err != nil {
			t.Fatalf("LatestDraft failed: %v", err)
		}
		if got != "<p>hello</p>" {
			t.Errorf("LatestDraft = %q, want %q", got, "<p>hello</p>")
		}
	})

	t.Run("later save replaces earlier draft", func(t *testing.T) {
		if err := st.SaveDraft(ctx, "inst-1", "<p>shorter</p>"); err != nil {
			t.Fatalf("SaveDraft failed: %v", err)
		}

		got, err := st.LatestDraft(ctx, "inst-1")
		if err != nil {
			t.Fatalf("LatestDraft failed: %v", err)
		}
		if got != "<p>shorter</p>" {
			t.Errorf("LatestDraft = %q, want the replacement draft", got)
		}
	})
}

func TestMemStore(t *testing.T) {
	runArtifactContract(t, NewMemStore())
}

func TestDirStore(t *testing.T) {
	st, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	runArtifactContract(t, st)
}

func TestDirStore_RejectsPathEscapes(t *testing.T) {
	st, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}

	for _, id := range []string{"", "../evil", "a/b", `a\b`} {
		if err := st.SaveDraft(context.Background(), id, "x"); err == nil {
			t.Errorf("SaveDraft(%q) succeeded, want error", id)
		}
	}
}
