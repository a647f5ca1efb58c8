//go:build integration

package mdpdf

// Notes:
// - Integration test setup: shared ConverterPool for all integration tests
// - testPool is initialized in TestMain and closed after all tests complete
// - Pool size is capped at 4 for CI environments to avoid resource exhaustion

import (
	"bytes"
	"os"
	"testing"
	"time"
)

// testTimeout is the standard timeout for integration test operations.
const testTimeout = 30 * time.Second

// testPool is the shared ConverterPool for all integration tests.
var testPool *ConverterPool

func TestMain(m *testing.M) {
	testPool = NewConverterPool(min(ResolvePoolSize(0), 4), WithTimeout(testTimeout))

	code := m.Run()

	_ = testPool.Close()
	os.Exit(code)
}

func assertValidPDF(t *testing.T, data []byte) {
	t.Helper()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}
