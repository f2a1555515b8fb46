package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckHealth(t *testing.T) {
	t.Run("bounds the ping with a deadline", func(t *testing.T) {
		var deadline time.Time
		err := CheckHealth(context.Background(), pingFunc(func(ctx context.Context) error {
			deadline, _ = ctx.Deadline()
			return nil
		}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if deadline.IsZero() || time.Until(deadline) > HealthTimeout {
			t.Errorf("expected a deadline within %s, got %v", HealthTimeout, deadline)
		}
	})

	t.Run("wraps ping failures", func(t *testing.T) {
		pingErr := errors.New("connection refused")
		err := CheckHealth(context.Background(), pingFunc(func(context.Context) error { return pingErr }))
		if !errors.Is(err, pingErr) {
			t.Errorf("expected wrapped ping error, got %v", err)
		}
	})
}
