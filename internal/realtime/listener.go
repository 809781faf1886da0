package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Channel emitted by the voice_message_recipients insert trigger.
const notifyChannel = "voice_message_recipients_insert"

const reconnectDelay = time.Second

// Listener holds one dedicated connection on LISTEN and feeds the hub.
type Listener struct {
	pool *pgxpool.Pool
	hub  *Hub
	log  *zap.Logger
}

// NewListener constructs a listener over the shared pool.
func NewListener(pool *pgxpool.Pool, hub *Hub, log *zap.Logger) *Listener {
	return &Listener{pool: pool, hub: hub, log: log}
}

// Run listens until the context is canceled, reacquiring the connection
// after transient failures.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn("realtime listener reconnecting", zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var ev Event
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			l.log.Warn("realtime payload decode", zap.Error(err), zap.String("payload", n.Payload))
			continue
		}
		l.hub.Publish(ev)
	}
}
