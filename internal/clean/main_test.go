package clean

import (
	"testing"

	"go.uber.org/goleak"
)

// The genai client pulled in through classify starts the opencensus view
// worker on package init; it lives for the whole process.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}
