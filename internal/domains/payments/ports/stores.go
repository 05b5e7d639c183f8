package ports

import (
	"context"

	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
)

// WebhookAuditLog records every inbound gateway notification with its
// outcome. Append-only; failures here must never fail the webhook response.
type WebhookAuditLog interface {
	Record(ctx context.Context, entry domain.WebhookEntry) error
}

// Notifier pushes customer-facing messages. Best-effort: callers log
// failures and move on.
type Notifier interface {
	PaymentSucceeded(ctx context.Context, order *ordersdomain.Order) error
	PaymentFailed(ctx context.Context, order *ordersdomain.Order, reason string) error
	RefundProcessed(ctx context.Context, order *ordersdomain.Order, amount int64) error
}

// CommissionReverser undoes partner commission entries when an order is
// refunded. Implemented by the billing context.
type CommissionReverser interface {
	ReverseCommissions(ctx context.Context, orderNo string) error
}

// IPResolver looks up the outward-facing client address forwarded to the
// gateways. Implementations never fail; they fall back to loopback.
type IPResolver interface {
	Lookup(ctx context.Context) string
}
