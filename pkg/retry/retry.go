package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
)

// Policy — явная политика повторов с фиксированной задержкой.
// MaxWait == 0 означает "повторять без ограничения по времени".
type Policy struct {
	Delay   time.Duration
	MaxWait time.Duration
}

// Do выполняет fn до первого успеха. Factor=1 у backoff даёт
// постоянную задержку Delay между попытками.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	b := &backoff.Backoff{
		Min:    p.Delay,
		Max:    p.Delay,
		Factor: 1,
	}

	start := time.Now()
	for {
		err := fn()
		if err == nil {
			return nil
		}

		if p.MaxWait > 0 && time.Since(start)+p.Delay > p.MaxWait {
			return fmt.Errorf("retry budget %s exhausted: %w", p.MaxWait, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}
