package services

import (
	"context"

	"mealbills/internal/amqp"
	"mealbills/internal/core"
	applog "mealbills/internal/log"
	"mealbills/internal/metrics"
	"mealbills/internal/storage"
)

// BillInput is a complete bill as submitted for creation.
type BillInput struct {
	ConsumerID string
	MealType   core.MealType
	Amount     core.Money
	Date       core.Date
}

// BillPatch is a partial update. Nil fields keep their current value.
type BillPatch struct {
	ConsumerID *string
	MealType   *core.MealType
	Amount     *core.Money
	Date       *core.Date
}

// BillService records and edits meal bills.
type BillService struct {
	store     storage.Store
	publisher EventPublisher
	metrics   *metrics.Metrics
}

func NewBillService(store storage.Store, publisher EventPublisher, m *metrics.Metrics) *BillService {
	return &BillService{store: store, publisher: publisher, metrics: m}
}

func (s *BillService) List(ctx context.Context, f core.BillFilter) ([]core.Bill, error) {
	bills, err := s.store.ListBills(ctx, f)
	if err != nil {
		return nil, storeErr(applog.OpList, "Failed to fetch bills", err)
	}
	return bills, nil
}

func (s *BillService) Get(ctx context.Context, id string) (core.Bill, error) {
	b, err := s.store.GetBill(ctx, id)
	if err != nil {
		return core.Bill{}, storeErr(applog.OpRead, "Failed to fetch bill", err)
	}
	return b, nil
}

// Create validates the bill, resolves its consumer and persists it.
func (s *BillService) Create(ctx context.Context, in BillInput) (core.Bill, error) {
	b := core.Bill{
		ConsumerID: in.ConsumerID,
		MealType:   in.MealType,
		Amount:     in.Amount,
		Date:       in.Date,
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	if _, err := s.store.GetConsumer(ctx, b.ConsumerID); err != nil {
		return core.Bill{}, storeErr(applog.OpCreate, "Failed to create bill", err)
	}

	created, err := s.store.CreateBill(ctx, b)
	if err != nil {
		return core.Bill{}, storeErr(applog.OpCreate, "Failed to create bill", err)
	}

	s.metrics.BillCreated(string(created.MealType))
	applog.FromContext(ctx).InfoContext(ctx, "Bill created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithBill(created.ID, created.ConsumerID, string(created.MealType), created.Amount.Cents, created.Date.String()).
			ToSlice()...)
	publishEvent(ctx, s.publisher, amqp.EventBillCreated, created.ID, created.ConsumerID)
	return created, nil
}

// Update applies patch to an existing bill and re-validates the result.
func (s *BillService) Update(ctx context.Context, id string, patch BillPatch) (core.Bill, error) {
	current, err := s.store.GetBill(ctx, id)
	if err != nil {
		return core.Bill{}, storeErr(applog.OpUpdate, "Failed to update bill", err)
	}

	next := current
	if patch.ConsumerID != nil {
		next.ConsumerID = *patch.ConsumerID
	}
	if patch.MealType != nil {
		next.MealType = *patch.MealType
	}
	if patch.Amount != nil {
		next.Amount = *patch.Amount
	}
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if err := next.Validate(); err != nil {
		return core.Bill{}, err
	}
	if next.ConsumerID != current.ConsumerID {
		if _, err := s.store.GetConsumer(ctx, next.ConsumerID); err != nil {
			return core.Bill{}, storeErr(applog.OpUpdate, "Failed to update bill", err)
		}
	}

	updated, err := s.store.UpdateBill(ctx, next)
	if err != nil {
		return core.Bill{}, storeErr(applog.OpUpdate, "Failed to update bill", err)
	}
	publishEvent(ctx, s.publisher, amqp.EventBillUpdated, updated.ID, updated.ConsumerID)
	return updated, nil
}

func (s *BillService) Delete(ctx context.Context, id string) error {
	current, err := s.store.GetBill(ctx, id)
	if err != nil {
		return storeErr(applog.OpDelete, "Failed to delete bill", err)
	}
	if err := s.store.DeleteBill(ctx, id); err != nil {
		return storeErr(applog.OpDelete, "Failed to delete bill", err)
	}
	publishEvent(ctx, s.publisher, amqp.EventBillDeleted, id, current.ConsumerID)
	return nil
}
