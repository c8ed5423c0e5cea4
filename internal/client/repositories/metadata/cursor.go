package metadata

import (
	"context"
	"fmt"
	"time"
)

// PullCursor persists the sync watermark in the metadata table under
// KeyLastPull, encoded as RFC3339Nano.
type PullCursor struct {
	repo Repository
}

func NewPullCursor(repo Repository) *PullCursor {
	return &PullCursor{repo: repo}
}

// LastPull returns the stored watermark, or the zero time when none has
// been written yet.
func (c *PullCursor) LastPull(ctx context.Context) (time.Time, error) {
	raw, err := c.repo.Get(ctx, KeyLastPull)
	if err != nil {
		return time.Time{}, err
	}
	if len(raw) == 0 {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt pull cursor %q: %w", raw, err)
	}
	return t, nil
}

func (c *PullCursor) SetLastPull(ctx context.Context, t time.Time) error {
	return c.repo.Set(ctx, KeyLastPull, []byte(t.UTC().Format(time.RFC3339Nano)))
}
