package services

import (
	"context"
	"strings"

	"mealbills/internal/amqp"
	"mealbills/internal/core"
	applog "mealbills/internal/log"
	"mealbills/internal/storage"
)

// ConsumerInput carries the writable consumer fields. A nil IsActive
// means true on create and "keep current" on update.
type ConsumerInput struct {
	Name     string
	Email    *string
	Phone    *string
	IsActive *bool
}

// ConsumerService manages the people bills are charged to.
type ConsumerService struct {
	store     storage.ConsumerStore
	publisher EventPublisher
}

func NewConsumerService(store storage.ConsumerStore, publisher EventPublisher) *ConsumerService {
	return &ConsumerService{store: store, publisher: publisher}
}

func (s *ConsumerService) List(ctx context.Context, f core.ConsumerFilter) ([]core.Consumer, error) {
	consumers, err := s.store.ListConsumers(ctx, f)
	if err != nil {
		return nil, storeErr(applog.OpList, "Failed to fetch consumers", err)
	}
	return consumers, nil
}

func (s *ConsumerService) Get(ctx context.Context, id string) (core.Consumer, error) {
	c, err := s.store.GetConsumer(ctx, id)
	if err != nil {
		return core.Consumer{}, storeErr(applog.OpRead, "Failed to fetch consumer", err)
	}
	return c, nil
}

// Create adds a consumer after checking the name is free.
func (s *ConsumerService) Create(ctx context.Context, in ConsumerInput) (core.Consumer, error) {
	c := core.Consumer{
		Name:     strings.TrimSpace(in.Name),
		Email:    optional(in.Email),
		Phone:    optional(in.Phone),
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := c.Validate(); err != nil {
		return core.Consumer{}, err
	}
	if err := s.ensureNameFree(ctx, c.Name, ""); err != nil {
		return core.Consumer{}, storeErr(applog.OpCreate, "Failed to create consumer", err)
	}

	created, err := s.store.CreateConsumer(ctx, c)
	if err != nil {
		return core.Consumer{}, storeErr(applog.OpCreate, "Failed to create consumer", err)
	}
	applog.FromContext(ctx).InfoContext(ctx, "Consumer created",
		applog.FieldConsumerID, created.ID,
		applog.FieldConsumer, created.Name)
	publishEvent(ctx, s.publisher, amqp.EventConsumerCreated, created.ID, created.ID)
	return created, nil
}

// Update replaces name, email and phone. Empty email or phone clears it.
func (s *ConsumerService) Update(ctx context.Context, id string, in ConsumerInput) (core.Consumer, error) {
	current, err := s.store.GetConsumer(ctx, id)
	if err != nil {
		return core.Consumer{}, storeErr(applog.OpUpdate, "Failed to update consumer", err)
	}

	next := current
	next.Name = strings.TrimSpace(in.Name)
	next.Email = optional(in.Email)
	next.Phone = optional(in.Phone)
	if in.IsActive != nil {
		next.IsActive = *in.IsActive
	}
	if err := next.Validate(); err != nil {
		return core.Consumer{}, err
	}
	if err := s.ensureNameFree(ctx, next.Name, id); err != nil {
		return core.Consumer{}, storeErr(applog.OpUpdate, "Failed to update consumer", err)
	}

	updated, err := s.store.UpdateConsumer(ctx, next)
	if err != nil {
		return core.Consumer{}, storeErr(applog.OpUpdate, "Failed to update consumer", err)
	}
	publishEvent(ctx, s.publisher, amqp.EventConsumerUpdated, updated.ID, updated.ID)
	return updated, nil
}

// Delete removes a consumer that has no bills.
func (s *ConsumerService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetConsumer(ctx, id); err != nil {
		return storeErr(applog.OpDelete, "Failed to delete consumer", err)
	}
	n, err := s.store.CountBillsByConsumer(ctx, id)
	if err != nil {
		return storeErr(applog.OpDelete, "Failed to delete consumer", err)
	}
	if n > 0 {
		return core.Conflictf("Cannot delete consumer with existing bills. Please deactivate instead.")
	}
	if err := s.store.DeleteConsumer(ctx, id); err != nil {
		return storeErr(applog.OpDelete, "Failed to delete consumer", err)
	}
	publishEvent(ctx, s.publisher, amqp.EventConsumerDeleted, id, id)
	return nil
}

// EnsureSeeded creates each named consumer that does not exist yet and
// reports how many were added.
func (s *ConsumerService) EnsureSeeded(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		_, err := s.store.GetConsumerByName(ctx, name)
		if err == nil {
			continue
		}
		if !core.IsNotFound(err) {
			return created, storeErr(applog.OpSeed, "Failed to seed consumers", err)
		}
		if _, err := s.Create(ctx, ConsumerInput{Name: name}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *ConsumerService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.store.GetConsumerByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return core.Conflictf("Consumer with this name already exists")
	case err == nil, core.IsNotFound(err):
		return nil
	default:
		return err
	}
}

// optional treats nil and blank strings as absent.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
