package database

import (
	"context"
	"fmt"
	"time"
)

// HealthTimeout bounds a single readiness ping.
const HealthTimeout = 2 * time.Second

// Pinger is the part of *pgxpool.Pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckHealth pings the database, giving up after HealthTimeout.
func CheckHealth(ctx context.Context, db Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}
