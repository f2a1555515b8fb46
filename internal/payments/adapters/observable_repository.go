package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/wspay/internal/database"
	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/dejobratic/wspay/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableRepository struct {
	repo    ports.OrderRepository
	metrics *database.Metrics
}

func NewObservableRepository(repo ports.OrderRepository, metrics *database.Metrics) *ObservableRepository {
	return &ObservableRepository{
		repo:    repo,
		metrics: metrics,
	}
}

func (r *ObservableRepository) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.Create")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.name", order.Name),
		attribute.String("operation", "create"),
	)

	start := time.Now()
	created, err := r.repo.Create(ctx, order)
	r.metrics.RecordQuery(ctx, database.OpCreateOrder, time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int64("order.id", created.ID))
	telemetry.SetSpanSuccess(span)
	return created, nil
}

func (r *ObservableRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.GetByID")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", id),
		attribute.String("operation", "get_by_id"),
	)

	start := time.Now()
	order, err := r.repo.GetByID(ctx, id)
	r.metrics.RecordQuery(ctx, database.OpGetOrderByID, time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (r *ObservableRepository) FindByName(ctx context.Context, name string) ([]domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.FindByName")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.name", name),
		attribute.String("operation", "find_by_name"),
	)

	start := time.Now()
	orders, err := r.repo.FindByName(ctx, name)
	r.metrics.RecordQuery(ctx, database.OpFindOrdersByName, time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.AddSpanAttributes(span, attribute.Int("result.count", len(orders)))
	telemetry.SetSpanSuccess(span)
	return orders, nil
}

func (r *ObservableRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, from ...domain.OrderStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", id),
		attribute.String("order.new_status", string(status)),
		attribute.Bool("conditional", len(from) > 0),
		attribute.String("operation", "update_status"),
	)

	start := time.Now()
	err := r.repo.UpdateStatus(ctx, id, status, from...)
	r.metrics.RecordQuery(ctx, database.OpUpdateOrderStatus, time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
