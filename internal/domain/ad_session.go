package domain

import (
	"context"
	"time"
)

// AdSession is an ad view started by a user and awaiting its reward event
type AdSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdSessionStore keeps ad sessions until they are consumed or their TTL elapses
type AdSessionStore interface {
	Create(ctx context.Context, session *AdSession, ttl time.Duration) error
	// Consume atomically reads and deletes a session of userID; nil when absent, expired
	// or owned by someone else, in which case it is not deleted.
	Consume(ctx context.Context, userID, sessionID string) (*AdSession, error)
}
