package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionJournal records gateway sessions that were created but never
// received their order details. It does not clean them up.
type SessionJournal struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionJournal creates a journal that keeps entries for ttl
func NewSessionJournal(client *redis.Client, ttl time.Duration) *SessionJournal {
	return &SessionJournal{client: client, ttl: ttl}
}

func orphanKey(sessionID string) string {
	return fmt.Sprintf("payment_session:orphaned:%s", sessionID)
}

// RecordOrphan stores the session with the order and caller it was opened for
func (j *SessionJournal) RecordOrphan(ctx context.Context, sessionID, orderID, uid string) error {
	key := orphanKey(sessionID)

	data := map[string]interface{}{
		"session_id": sessionID,
		"order_id":   orderID,
		"uid":        uid,
		"created_at": time.Now().Unix(),
	}

	pipe := j.client.TxPipeline()
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, j.ttl)
	_, err := pipe.Exec(ctx)
	return err
}
