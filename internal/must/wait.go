package must

import (
	"context"
	"time"
)

// Wait paces retries. Each call to Linearly sleeps one step longer than the
// previous one, up to max.
type Wait struct {
	max        time.Duration
	occurences int
}

func NewWait(max time.Duration) *Wait {
	return &Wait{
		max:        max,
		occurences: 0,
	}
}

func (w *Wait) Reset() {
	w.occurences = 0
}

// Linearly sleeps step times the number of previous calls. It returns early
// with the context error when ctx is done.
func (w *Wait) Linearly(ctx context.Context, step time.Duration) error {
	sleep := min(step*time.Duration(w.occurences), w.max)
	w.occurences++

	timer := time.NewTimer(sleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
