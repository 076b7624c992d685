package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// UsersChangedChannel is the NOTIFY channel fired by triggers on users and test_results.
const UsersChangedChannel = "users_changed"

// Listener turns PostgreSQL notifications on a channel into change signals.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	logger  *zap.Logger
}

func NewListener(pool *pgxpool.Pool, channel string, logger *zap.Logger) *Listener {
	return &Listener{
		pool:    pool,
		channel: channel,
		logger:  logger,
	}
}

// Subscribe holds a dedicated connection that LISTENs on the channel.
// The returned channel receives one signal right away and then one per burst
// of notifications; it is closed when ctx is done or the connection fails.
func (l *Listener) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen conn: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", l.channel, err)
	}

	changes := make(chan struct{}, 1)
	changes <- struct{}{}

	go func() {
		defer close(changes)
		defer func() {
			// The session still holds LISTEN state, drop it instead of returning it to the pool.
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					l.logger.Warn("listener stopped",
						zap.String("channel", l.channel),
						zap.Error(err),
					)
				}
				return
			}

			l.logger.Debug("change notification",
				zap.String("channel", n.Channel),
				zap.String("payload", n.Payload),
			)

			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}()

	return changes, nil
}
