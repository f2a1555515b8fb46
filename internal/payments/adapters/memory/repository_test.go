package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/shopspring/decimal"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns sequential ids and defaults status", func(t *testing.T) {
		repo := NewRepository()

		first, err := repo.Create(ctx, domain.Order{Name: "SO001", AmountTotal: decimal.NewFromInt(10), Currency: "HRK"})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		second, err := repo.Create(ctx, domain.Order{Name: "SO002"})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		if first.ID != 1 || second.ID != 2 {
			t.Errorf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
		}
		if first.Status != domain.StatusDraft {
			t.Errorf("expected draft status, got %s", first.Status)
		}
		if first.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("keeps explicit ids and continues the sequence after them", func(t *testing.T) {
		repo := NewRepository()

		if _, err := repo.Create(ctx, domain.Order{ID: 42, Name: "SO042"}); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		next, err := repo.Create(ctx, domain.Order{Name: "SO043"})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if next.ID != 43 {
			t.Errorf("expected id 43, got %d", next.ID)
		}
	})

	t.Run("finds every order sharing a name", func(t *testing.T) {
		repo := NewRepository()
		_, _ = repo.Create(ctx, domain.Order{ID: 7, Name: "SO042"})
		_, _ = repo.Create(ctx, domain.Order{ID: 3, Name: "SO042"})
		_, _ = repo.Create(ctx, domain.Order{ID: 5, Name: "SO099"})

		found, err := repo.FindByName(ctx, "SO042")
		if err != nil {
			t.Fatalf("FindByName() failed: %v", err)
		}
		if len(found) != 2 || found[0].ID != 3 || found[1].ID != 7 {
			t.Errorf("unexpected result %+v", found)
		}

		none, err := repo.FindByName(ctx, "SO404")
		if err != nil {
			t.Fatalf("FindByName() failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("expected no orders, got %d", len(none))
		}
	})

	t.Run("updates status", func(t *testing.T) {
		repo := NewRepository()
		order, _ := repo.Create(ctx, domain.Order{Name: "SO001", Status: domain.StatusSent})

		if err := repo.UpdateStatus(ctx, order.ID, domain.StatusConfirmed); err != nil {
			t.Fatalf("UpdateStatus() failed: %v", err)
		}

		got, err := repo.GetByID(ctx, order.ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.Status != domain.StatusConfirmed {
			t.Errorf("expected status %s, got %s", domain.StatusConfirmed, got.Status)
		}
	})

	t.Run("applies conditional updates only from the expected statuses", func(t *testing.T) {
		repo := NewRepository()
		order, _ := repo.Create(ctx, domain.Order{Name: "SO001", Status: domain.StatusSent})

		if err := repo.UpdateStatus(ctx, order.ID, domain.StatusConfirmed, domain.StatusDraft, domain.StatusSent); err != nil {
			t.Fatalf("UpdateStatus() failed: %v", err)
		}

		err := repo.UpdateStatus(ctx, order.ID, domain.StatusConfirmed, domain.StatusDraft, domain.StatusSent)
		if !errors.Is(err, ports.ErrStatusConflict) {
			t.Fatalf("expected ErrStatusConflict, got %v", err)
		}

		got, _ := repo.GetByID(ctx, order.ID)
		if got.Status != domain.StatusConfirmed {
			t.Errorf("expected status %s, got %s", domain.StatusConfirmed, got.Status)
		}
	})

	t.Run("lets one of several concurrent conditional updates through", func(t *testing.T) {
		repo := NewRepository()
		order, _ := repo.Create(ctx, domain.Order{Name: "SO001", Status: domain.StatusDraft})

		var applied, conflicts atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.UpdateStatus(ctx, order.ID, domain.StatusConfirmed, domain.StatusDraft, domain.StatusSent)
				switch {
				case err == nil:
					applied.Add(1)
				case errors.Is(err, ports.ErrStatusConflict):
					conflicts.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if applied.Load() != 1 || conflicts.Load() != 7 {
			t.Errorf("expected 1 applied and 7 conflicts, got %d and %d", applied.Load(), conflicts.Load())
		}
	})

	t.Run("returns not found for unknown ids", func(t *testing.T) {
		repo := NewRepository()

		if _, err := repo.GetByID(ctx, 99); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.UpdateStatus(ctx, 99, domain.StatusConfirmed); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
