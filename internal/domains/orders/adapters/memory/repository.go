package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter keyed by order number.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	nextID uint64
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.OrderNo]; ok {
		return nil, ports.ErrDuplicateOrderNo
	}
	clone := cloneOrder(order)
	r.nextID++
	clone.ID = r.nextID
	r.orders[clone.OrderNo] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) GetByOrderNo(_ context.Context, orderNo string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderNo]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) ListByUser(_ context.Context, userID string, page, pageSize int) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			matched = append(matched, cloneOrder(order))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return strings.Compare(matched[i].OrderNo, matched[j].OrderNo) < 0
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *Repository) UpdateGuarded(_ context.Context, order *domain.Order, expect ...domain.Status) error {
	if order == nil {
		return errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.OrderNo]
	if !ok {
		return ports.ErrNotFound
	}
	if len(expect) > 0 && !statusIn(stored.Status, expect) {
		return ports.ErrStaleOrder
	}
	clone := cloneOrder(order)
	clone.ID = stored.ID
	clone.UpdatedAt = time.Now()
	r.orders[clone.OrderNo] = clone
	return nil
}

func statusIn(status domain.Status, set []domain.Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = append([]domain.OrderItem(nil), order.Items...)
	clone.Notes = append([]string(nil), order.Notes...)
	if order.Shipping != nil {
		shipping := *order.Shipping
		clone.Shipping = &shipping
	}
	clone.PaidAt = cloneTime(order.PaidAt)
	clone.CompletedAt = cloneTime(order.CompletedAt)
	clone.CancelledAt = cloneTime(order.CancelledAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
