// Package storage is the repository access layer for consumers and bills.
package storage

import (
	"context"

	"mealbills/internal/core"
)

// RecentBillsLimit is how many bills the stats view lists.
const RecentBillsLimit = 10

// ConsumerStore persists consumers. Lookups of a missing id return a
// core.KindNotFound error.
type ConsumerStore interface {
	CreateConsumer(ctx context.Context, c core.Consumer) (core.Consumer, error)
	GetConsumer(ctx context.Context, id string) (core.Consumer, error)
	GetConsumerByName(ctx context.Context, name string) (core.Consumer, error)
	// ListConsumers orders by name and fills BillCount.
	ListConsumers(ctx context.Context, f core.ConsumerFilter) ([]core.Consumer, error)
	UpdateConsumer(ctx context.Context, c core.Consumer) (core.Consumer, error)
	DeleteConsumer(ctx context.Context, id string) error
	CountBillsByConsumer(ctx context.Context, consumerID string) (int, error)
}

// BillStore persists bills. Returned bills carry their consumer's name.
type BillStore interface {
	CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)
	GetBill(ctx context.Context, id string) (core.Bill, error)
	UpdateBill(ctx context.Context, b core.Bill) (core.Bill, error)
	DeleteBill(ctx context.Context, id string) error
	// ListBills orders by date descending, newest entry first within a day.
	ListBills(ctx context.Context, f core.BillFilter) ([]core.Bill, error)
	// TotalsByMealType groups matching bills by meal type in canonical order.
	TotalsByMealType(ctx context.Context, f core.BillFilter) ([]core.MealTypeTotal, error)
	// RecentBills returns the most recently created bills.
	RecentBills(ctx context.Context, limit int) ([]core.Bill, error)
}

// Store is everything the services need from persistence.
type Store interface {
	ConsumerStore
	BillStore
	Ping(ctx context.Context) error
	Close() error
}
