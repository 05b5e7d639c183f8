package ports

import (
	"context"

	"github.com/edumartvn/commerce-api/internal/domains/billing/domain"
)

// Service exposes the billing use cases run after a payment settles and
// when a refund reverses it. All operations are idempotent per order.
type Service interface {
	IssueInvoice(ctx context.Context, orderNo string) (*domain.Invoice, error)
	RecordCommissions(ctx context.Context, orderNo string) ([]domain.CommissionTransaction, error)
	ReverseCommissions(ctx context.Context, orderNo string) error
	GetInvoice(ctx context.Context, orderNo string) (*domain.Invoice, error)
}
