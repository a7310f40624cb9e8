// Package memory is an in-process Store used for local runs and as the
// fake behind service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mealbills/internal/core"
	"mealbills/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type billRecord struct {
	bill core.Bill
	seq  int64
}

type Store struct {
	mu        sync.Mutex
	consumers map[string]core.Consumer
	bills     map[string]*billRecord
	seq       int64
	now       func() time.Time
	failWith  error
}

func New() *Store {
	return &Store{
		consumers: make(map[string]core.Consumer),
		bills:     make(map[string]*billRecord),
		now:       time.Now,
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failWith
}

func (s *Store) Close() error { return nil }

func (s *Store) nameTaken(name, exceptID string) bool {
	for id, c := range s.consumers {
		if c.Name == name && id != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) billCount(consumerID string) int {
	n := 0
	for _, r := range s.bills {
		if r.bill.ConsumerID == consumerID {
			n++
		}
	}
	return n
}

func (s *Store) withCount(c core.Consumer) core.Consumer {
	c.BillCount = s.billCount(c.ID)
	return c
}

func (s *Store) CreateConsumer(_ context.Context, c core.Consumer) (core.Consumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return core.Consumer{}, s.failWith
	}
	if s.nameTaken(c.Name, "") {
		return core.Consumer{}, core.Conflictf("Consumer with this name already exists")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	c.BillCount = 0
	s.consumers[c.ID] = c
	return c, nil
}

func (s *Store) GetConsumer(_ context.Context, id string) (core.Consumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return core.Consumer{}, s.failWith
	}
	c, ok := s.consumers[id]
	if !ok {
		return core.Consumer{}, core.NotFoundf("Consumer not found")
	}
	return s.withCount(c), nil
}

func (s *Store) GetConsumerByName(_ context.Context, name string) (core.Consumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return core.Consumer{}, s.failWith
	}
	for _, c := range s.consumers {
		if c.Name == name {
			return s.withCount(c), nil
		}
	}
	return core.Consumer{}, core.NotFoundf("Consumer not found")
}

func (s *Store) ListConsumers(_ context.Context, f core.ConsumerFilter) ([]core.Consumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]core.Consumer, 0, len(s.consumers))
	for _, c := range s.consumers {
		if f.Matches(c) {
			out = append(out, s.withCount(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateConsumer(_ context.Context, c core.Consumer) (core.Consumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return core.Consumer{}, s.failWith
	}
	existing, ok := s.consumers[c.ID]
	if !ok {
		return core.Consumer{}, core.NotFoundf("Consumer not found")
	}
	if s.nameTaken(c.Name, c.ID) {
		return core.Consumer{}, core.Conflictf("Consumer with this name already exists")
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now().UTC()
	s.consumers[c.ID] = c
	return s.withCount(c), nil
}

func (s *Store) DeleteConsumer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.consumers[id]; !ok {
		return core.NotFoundf("Consumer not found")
	}
	if s.billCount(id) > 0 {
		return core.Conflictf("Cannot delete consumer with existing bills. Please deactivate instead.")
	}
	delete(s.consumers, id)
	return nil
}

func (s *Store) CountBillsByConsumer(_ context.Context, consumerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	return s.billCount(consumerID), nil
}

// joined returns a copy of the bill carrying the current consumer name.
func (s *Store) joined(r *billRecord) core.Bill {
	b := r.bill
	b.ConsumerName = s.consumers[b.ConsumerID].Name
	return b
}

func (s *Store) CreateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return core.Bill{}, s.failWith
	}
	if _, ok := s.consumers[b.ConsumerID]; !ok {
		return core.Bill{}, core.NotFoundf("Consumer not found")
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := s.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	s.seq++
	r := &billRecord{bill: b, seq: s.seq}
	s.bills[b.ID] = r
	return s.joined(r), nil
}

func (s *Store) GetBill(_ context.Context, id string) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return core.Bill{}, s.failWith
	}
	r, ok := s.bills[id]
	if !ok {
		return core.Bill{}, core.NotFoundf("Bill not found")
	}
	return s.joined(r), nil
}

func (s *Store) UpdateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return core.Bill{}, s.failWith
	}
	r, ok := s.bills[b.ID]
	if !ok {
		return core.Bill{}, core.NotFoundf("Bill not found")
	}
	if _, ok := s.consumers[b.ConsumerID]; !ok {
		return core.Bill{}, core.NotFoundf("Consumer not found")
	}
	b.CreatedAt = r.bill.CreatedAt
	b.UpdatedAt = s.now().UTC()
	r.bill = b
	return s.joined(r), nil
}

func (s *Store) DeleteBill(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.bills[id]; !ok {
		return core.NotFoundf("Bill not found")
	}
	delete(s.bills, id)
	return nil
}

func (s *Store) matching(f core.BillFilter) []*billRecord {
	out := make([]*billRecord, 0)
	for _, r := range s.bills {
		if f.Matches(s.joined(r)) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) ListBills(_ context.Context, f core.BillFilter) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	recs := s.matching(f)
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].bill.Date.Equal(recs[j].bill.Date.Time) {
			return recs[i].bill.Date.After(recs[j].bill.Date.Time)
		}
		return recs[i].seq > recs[j].seq
	})
	out := make([]core.Bill, 0, len(recs))
	for _, r := range recs {
		out = append(out, s.joined(r))
	}
	return out, nil
}

func (s *Store) RecentBills(_ context.Context, limit int) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	recs := s.matching(core.BillFilter{})
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	if limit >= 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]core.Bill, 0, len(recs))
	for _, r := range recs {
		out = append(out, s.joined(r))
	}
	return out, nil
}

func (s *Store) TotalsByMealType(_ context.Context, f core.BillFilter) ([]core.MealTypeTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	recs := s.matching(f)
	bills := make([]core.Bill, 0, len(recs))
	for _, r := range recs {
		bills = append(bills, r.bill)
	}
	return core.FoldByMealType(bills), nil
}
