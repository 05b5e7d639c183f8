package ports

import (
	"context"
	"errors"
	"time"

	"github.com/edumartvn/commerce-api/internal/domains/billing/domain"
)

var (
	// ErrInvoiceNotFound reports a missing invoice.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrDuplicateInvoice reports that the order already has an invoice.
	ErrDuplicateInvoice = errors.New("invoice already issued for order")
)

// InvoiceStore persists issued invoices. NextSequence hands out the
// month-scoped running number used in the invoice number.
type InvoiceStore interface {
	Create(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*domain.Invoice, error)
	NextSequence(ctx context.Context, period time.Time) (int, error)
}

// CommissionStore persists partner commission entries per order.
type CommissionStore interface {
	CreateBatch(ctx context.Context, transactions []domain.CommissionTransaction) error
	ListByOrder(ctx context.Context, orderNo string) ([]domain.CommissionTransaction, error)
	MarkReversed(ctx context.Context, orderNo string) error
}
