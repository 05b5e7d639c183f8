package memory

import (
	"context"
	"io"
	"log/slog"
	"sync"

	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
)

var _ ports.Notifier = (*Notifier)(nil)

// Notifier records notifications in memory and logs them. It stands in for
// the email/push channel until one is wired.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	sent   []Notification
}

// Notification is one recorded customer message.
type Notification struct {
	Kind    string
	OrderNo string
	Detail  string
}

func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{logger: logger}
}

// PaymentSucceeded records a payment confirmation message.
func (n *Notifier) PaymentSucceeded(ctx context.Context, order *ordersdomain.Order) error {
	n.record(ctx, "payment_succeeded", order.OrderNo, "")
	return nil
}

// PaymentFailed records a payment failure message.
func (n *Notifier) PaymentFailed(ctx context.Context, order *ordersdomain.Order, reason string) error {
	n.record(ctx, "payment_failed", order.OrderNo, reason)
	return nil
}

// RefundProcessed records a refund confirmation message.
func (n *Notifier) RefundProcessed(ctx context.Context, order *ordersdomain.Order, amount int64) error {
	n.record(ctx, "refund_processed", order.OrderNo, "")
	return nil
}

// Sent snapshots the recorded notifications.
func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

func (n *Notifier) record(ctx context.Context, kind, orderNo, detail string) {
	n.mu.Lock()
	n.sent = append(n.sent, Notification{Kind: kind, OrderNo: orderNo, Detail: detail})
	n.mu.Unlock()
	n.logger.LogAttrs(ctx, slog.LevelInfo, "customer notification",
		slog.String("kind", kind), slog.String("orderNo", orderNo))
}
