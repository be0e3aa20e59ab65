package store

import (
	"os"
	"testing"
)

// TestMySQLStore_Contract runs the shared store contract against a real
// MySQL instance. Set MYSQL_TEST_DSN to enable, e.g.:
//
//	MYSQL_TEST_DSN="user:pass@tcp(localhost:3306)/mailflow_test" go test ./flow/store/
func TestMySQLStore_Contract(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set; skipping MySQL integration test")
	}

	st, err := NewMySQLStore[testRecord](dsn)
	if err != nil {
		t.Fatalf("NewMySQLStore failed: %v", err)
	}
	defer func() { _ = st.Close() }()

	runStoreContract(t, st)
}
