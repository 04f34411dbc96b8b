package must

import (
	"fmt"
	"log/slog"
	"os"
)

// Assert exits the process when cond is false. It is reserved for startup
// invariants such as bundled reference data.
func Assert(cond bool, failMessage string) {
	if !cond {
		slog.Error(failMessage)
		os.Exit(1)
	}
}

func Fail(message string) {
	Assert(false, fmt.Sprintf("assertion failed: %s", message))
}

// NoError exits the process when err is not nil.
func NoError(err error) {
	if err != nil {
		Assert(false, fmt.Sprintf("unexpected error: %s", err.Error()))
	}
}
