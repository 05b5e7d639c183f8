package memory

import (
	"context"
	"sync"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
)

var _ ports.DiscountCodeStore = (*DiscountCodeStore)(nil)

// DiscountCodeStore is an in-memory discount code table.
type DiscountCodeStore struct {
	mu    sync.RWMutex
	codes map[string]domain.DiscountCode
}

func NewDiscountCodeStore(codes ...domain.DiscountCode) *DiscountCodeStore {
	store := &DiscountCodeStore{codes: map[string]domain.DiscountCode{}}
	for _, code := range codes {
		store.codes[code.Code] = code
	}
	return store
}

// Put inserts or replaces a code.
func (s *DiscountCodeStore) Put(code domain.DiscountCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Code] = code
}

// GetByCode returns (nil, nil) for unknown codes.
func (s *DiscountCodeStore) GetByCode(_ context.Context, code string) (*domain.DiscountCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.codes[code]
	if !ok {
		return nil, nil
	}
	clone := found
	return &clone, nil
}
