// Package sequence numbers the events of a stream.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrEmptyStream = errors.New("sequence: empty stream key")

type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Counter hands out strictly increasing positions per stream, starting at 1.
// A position is consumed even if the event it was reserved for is never
// published, so consumers must tolerate gaps but never see reordering.
type Counter struct {
	db Querier
}

func NewCounter(db Querier) *Counter {
	return &Counter{db: db}
}

func (c *Counter) Next(ctx context.Context, stream string) (int64, error) {
	if stream == "" {
		return 0, ErrEmptyStream
	}

	var pos int64
	err := c.db.QueryRow(ctx, `
		INSERT INTO event_stream_positions AS s (stream, position)
		VALUES ($1, 1)
		ON CONFLICT (stream) DO UPDATE
		SET position = s.position + 1, updated_at = now()
		RETURNING s.position
	`, stream).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("advance stream %q: %w", stream, err)
	}
	return pos, nil
}
