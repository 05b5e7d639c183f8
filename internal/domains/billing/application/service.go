package application

import (
	"context"
	"errors"
	"time"

	"github.com/edumartvn/commerce-api/internal/domains/billing/domain"
	"github.com/edumartvn/commerce-api/internal/domains/billing/ports"
	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	ordersports "github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

var _ ports.Service = (*Service)(nil)

// Service runs the billing use cases against the orders context.
type Service struct {
	orders      ordersports.Service
	invoices    ports.InvoiceStore
	commissions ports.CommissionStore
	company     domain.Company
	now         func() time.Time
}

// NewService wires the billing service with its dependencies.
func NewService(orders ordersports.Service, invoices ports.InvoiceStore, commissions ports.CommissionStore, company domain.Company) *Service {
	return &Service{
		orders:      orders,
		invoices:    invoices,
		commissions: commissions,
		company:     company,
		now:         time.Now,
	}
}

// IssueInvoice generates and persists the invoice for a settled order.
// Re-issuing returns the stored invoice, so post-payment retries are safe.
func (s *Service) IssueInvoice(ctx context.Context, orderNo string) (*domain.Invoice, error) {
	const op = "billing.IssueInvoice"
	existing, err := s.invoices.GetByOrderNo(ctx, orderNo)
	if err != nil && !errors.Is(err, ports.ErrInvoiceNotFound) {
		return nil, apperrors.Wrap(apperrors.KindStorage, op, err, "load invoice")
	}
	if existing != nil {
		return existing, nil
	}
	order, err := s.orders.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	issuedAt := s.now()
	seq, err := s.invoices.NextSequence(ctx, issuedAt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, op, err, "reserve invoice sequence")
	}
	invoice, err := domain.GenerateInvoice(order, customerFromOrder(order), s.company, seq, issuedAt)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotSettled) {
			return nil, apperrors.Wrap(apperrors.KindConflict, op, err, "order has no settled payment")
		}
		return nil, apperrors.Wrap(apperrors.KindValidation, op, err, "generate invoice")
	}
	saved, err := s.invoices.Create(ctx, invoice)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateInvoice) {
			// A concurrent issuer won; hand back its invoice.
			return s.invoices.GetByOrderNo(ctx, orderNo)
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, op, err, "store invoice")
	}
	return saved, nil
}

// RecordCommissions splits each order line between the platform and its
// partner. A second call for the same order returns the stored entries.
func (s *Service) RecordCommissions(ctx context.Context, orderNo string) ([]domain.CommissionTransaction, error) {
	const op = "billing.RecordCommissions"
	existing, err := s.commissions.ListByOrder(ctx, orderNo)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, op, err, "load commissions")
	}
	if len(existing) > 0 {
		return existing, nil
	}
	order, err := s.orders.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order.PaidAt == nil {
		return nil, apperrors.New(apperrors.KindConflict, op, "order has no settled payment")
	}
	now := s.now()
	transactions := make([]domain.CommissionTransaction, 0, len(order.Items))
	for _, item := range order.Items {
		if item.PartnerID == "" {
			continue
		}
		gross := item.UnitPrice*int64(item.Quantity) - item.Discount
		split := domain.CalculateCommission(gross, item.PartnerID, item.Category)
		transactions = append(transactions, domain.CommissionTransaction{
			OrderNo:       order.OrderNo,
			PartnerID:     split.PartnerID,
			Category:      split.Category,
			GrossAmount:   split.Gross,
			PlatformShare: split.PlatformShare,
			PartnerShare:  split.PartnerShare,
			NetAmount:     split.PartnerShare,
			Status:        domain.CommissionPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	if len(transactions) == 0 {
		return nil, nil
	}
	if err := s.commissions.CreateBatch(ctx, transactions); err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, op, err, "store commissions")
	}
	return transactions, nil
}

// ReverseCommissions moves all of an order's entries to refunded after a
// refund, recording the clawed-back net amount. Reversing an order with no
// entries is a no-op.
func (s *Service) ReverseCommissions(ctx context.Context, orderNo string) error {
	const op = "billing.ReverseCommissions"
	if err := s.commissions.MarkReversed(ctx, orderNo); err != nil {
		return apperrors.Wrap(apperrors.KindStorage, op, err, "reverse commissions")
	}
	return nil
}

// GetInvoice loads the issued invoice for an order.
func (s *Service) GetInvoice(ctx context.Context, orderNo string) (*domain.Invoice, error) {
	const op = "billing.GetInvoice"
	invoice, err := s.invoices.GetByOrderNo(ctx, orderNo)
	if err != nil {
		if errors.Is(err, ports.ErrInvoiceNotFound) {
			return nil, apperrors.Wrap(apperrors.KindNotFound, op, err, "invoice not found")
		}
		return nil, apperrors.Wrap(apperrors.KindStorage, op, err, "load invoice")
	}
	return invoice, nil
}

// customerFromOrder derives the billed party from what the order records.
// Physical orders carry the recipient; digital orders fall back to the user
// id until a customer directory is wired in.
func customerFromOrder(order *ordersdomain.Order) domain.Customer {
	customer := domain.Customer{Name: order.UserID}
	if order.Shipping != nil {
		if order.Shipping.Recipient != "" {
			customer.Name = order.Shipping.Recipient
		}
		customer.Phone = order.Shipping.Phone
		customer.Address = order.Shipping.Address
	}
	return customer
}
