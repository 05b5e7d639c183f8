package ports

import (
	"context"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
)

// CreateOrderInput carries everything needed to open an order. Shipping.Fee
// is ignored on input; the service computes it from the shipping policy.
type CreateOrderInput struct {
	UserID       string
	Items        []domain.OrderItem
	Shipping     *domain.ShippingInfo
	DiscountCode string
	Notes        string
}

// ConfirmPaymentResult reports whether the settlement actually applied or was
// a replay of an already-settled transaction.
type ConfirmPaymentResult struct {
	Order     *domain.Order
	Duplicate bool
}

// Service exposes the order use cases consumed by the payment context and
// the HTTP transport.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderNo string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string, page, pageSize int) ([]*domain.Order, int64, error)
	BeginPayment(ctx context.Context, orderNo, method, reference string) (*domain.Order, error)
	ConfirmPayment(ctx context.Context, orderNo, transactionID, method string) (*ConfirmPaymentResult, error)
	MarkPaymentFailed(ctx context.Context, orderNo, message string) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderNo, reason string) (*domain.Order, error)
	MarkRefunded(ctx context.Context, orderNo, reason string) (*domain.Order, error)
	AdvanceFulfillment(ctx context.Context, orderNo string, target domain.Status) (*domain.Order, error)
}
