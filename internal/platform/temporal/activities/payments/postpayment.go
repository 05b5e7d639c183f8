package payments

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	billingports "github.com/edumartvn/commerce-api/internal/domains/billing/ports"
	ordersports "github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	paymentports "github.com/edumartvn/commerce-api/internal/domains/payments/ports"
)

const (
	// IssueInvoiceActivityName issues and persists the order invoice.
	IssueInvoiceActivityName = "payments.activities.IssueInvoice"
	// RecordCommissionsActivityName records the partner commission splits.
	RecordCommissionsActivityName = "payments.activities.RecordCommissions"
	// NotifyCustomerActivityName pushes the payment confirmation message.
	NotifyCustomerActivityName = "payments.activities.NotifyCustomer"
)

// Activities groups the post-payment side effects run after a settlement.
type Activities struct {
	billing  billingports.Service
	orders   ordersports.Service
	notifier paymentports.Notifier
}

// NewActivities wires the billing and notification collaborators into the
// Temporal activities bundle.
func NewActivities(billing billingports.Service, orders ordersports.Service, notifier paymentports.Notifier) *Activities {
	return &Activities{billing: billing, orders: orders, notifier: notifier}
}

// IssueInvoice generates and stores the invoice for the settled order.
// Idempotent: a retry returns the already-issued invoice.
func (a *Activities) IssueInvoice(ctx context.Context, orderNo string) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.billing == nil {
		logger.Error("invoice activity not initialized", "orderNo", orderNo)
		return errors.New("invoice activity not initialized")
	}
	logger.Info("IssueInvoice activity started", "orderNo", orderNo)
	invoice, err := a.billing.IssueInvoice(ctx, orderNo)
	if err != nil {
		logger.Error("IssueInvoice activity failed", "orderNo", orderNo, "error", err)
		return err
	}
	logger.Info("IssueInvoice activity completed", "orderNo", orderNo, "invoiceNumber", invoice.Number)
	return nil
}

// RecordCommissions splits each order line between platform and partner.
// Idempotent: a retry finds the stored entries.
func (a *Activities) RecordCommissions(ctx context.Context, orderNo string) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.billing == nil {
		logger.Error("commission activity not initialized", "orderNo", orderNo)
		return errors.New("commission activity not initialized")
	}
	logger.Info("RecordCommissions activity started", "orderNo", orderNo)
	transactions, err := a.billing.RecordCommissions(ctx, orderNo)
	if err != nil {
		logger.Error("RecordCommissions activity failed", "orderNo", orderNo, "error", err)
		return err
	}
	logger.Info("RecordCommissions activity completed", "orderNo", orderNo, "entries", len(transactions))
	return nil
}

// NotifyCustomer pushes the payment confirmation. Missing notifier wiring is
// a skip, not a failure.
func (a *Activities) NotifyCustomer(ctx context.Context, orderNo string) error {
	logger := activity.GetLogger(ctx)
	if a == nil {
		logger.Error("notify activity not initialized", "orderNo", orderNo)
		return errors.New("notify activity not initialized")
	}
	if a.notifier == nil {
		logger.Info("notifier not configured; skipping", "orderNo", orderNo)
		return nil
	}
	if a.orders == nil {
		logger.Error("orders service not configured for notification", "orderNo", orderNo)
		return errors.New("orders service not configured for notification")
	}
	order, err := a.orders.GetOrder(ctx, orderNo)
	if err != nil {
		logger.Error("NotifyCustomer failed to load order", "orderNo", orderNo, "error", err)
		return err
	}
	if err := a.notifier.PaymentSucceeded(ctx, order); err != nil {
		logger.Error("NotifyCustomer failed", "orderNo", orderNo, "error", err)
		return err
	}
	logger.Info("NotifyCustomer activity completed", "orderNo", orderNo)
	return nil
}
