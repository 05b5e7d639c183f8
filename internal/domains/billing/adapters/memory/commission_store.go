package memory

import (
	"context"
	"sync"
	"time"

	"github.com/edumartvn/commerce-api/internal/domains/billing/domain"
	"github.com/edumartvn/commerce-api/internal/domains/billing/ports"
)

var _ ports.CommissionStore = (*CommissionStore)(nil)

// CommissionStore keeps commission entries in memory.
type CommissionStore struct {
	mu      sync.Mutex
	byOrder map[string][]domain.CommissionTransaction
	nextID  uint64
}

func NewCommissionStore() *CommissionStore {
	return &CommissionStore{byOrder: map[string][]domain.CommissionTransaction{}}
}

// CreateBatch appends the order's commission entries in one shot.
func (s *CommissionStore) CreateBatch(_ context.Context, transactions []domain.CommissionTransaction) error {
	if len(transactions) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range transactions {
		s.nextID++
		txn.ID = s.nextID
		s.byOrder[txn.OrderNo] = append(s.byOrder[txn.OrderNo], txn)
	}
	return nil
}

// ListByOrder returns the stored entries for one order.
func (s *CommissionStore) ListByOrder(_ context.Context, orderNo string) ([]domain.CommissionTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CommissionTransaction(nil), s.byOrder[orderNo]...), nil
}

// MarkReversed moves every entry of the order to refunded, clawing back the
// full net amount.
func (s *CommissionStore) MarkReversed(_ context.Context, orderNo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.byOrder[orderNo]
	now := time.Now()
	for i := range entries {
		entries[i].Status = domain.CommissionRefunded
		entries[i].RefundAmount = entries[i].NetAmount
		entries[i].UpdatedAt = now
	}
	return nil
}
