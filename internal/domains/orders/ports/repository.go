package ports

import (
	"context"
	"errors"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
)

var (
	// ErrNotFound reports a missing order.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrderNo reports a unique-index rejection on the order number.
	ErrDuplicateOrderNo = errors.New("order number already exists")
	// ErrStaleOrder reports that the guarded update matched no row because the
	// stored status moved underneath the caller.
	ErrStaleOrder = errors.New("order changed concurrently")
)

// Repository persists the order aggregate. UpdateGuarded is the single write
// path for mutations: it stamps UpdatedAt and applies the change only while
// the stored status is still one of expect, so two concurrent webhook
// deliveries cannot both transition the same order.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*domain.Order, int64, error)
	UpdateGuarded(ctx context.Context, order *domain.Order, expect ...domain.Status) error
}

// DiscountCodeStore resolves order-level discount codes. An unknown code
// returns (nil, nil); pricing treats it as no discount.
type DiscountCodeStore interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
}
