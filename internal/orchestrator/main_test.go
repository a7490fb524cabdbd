package orchestrator

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no goroutines leak from turn execution; the deferred
// save path in particular must finish before Run returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
