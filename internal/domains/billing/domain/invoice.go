package domain

import (
	"errors"
	"fmt"
	"time"

	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
)

var (
	ErrOrderNotSettled = errors.New("invoice requires a settled order")
	ErrNoSequence      = errors.New("invoice sequence must be positive")
)

// Customer is the billed party as printed on the invoice.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	TaxCode string
}

// Company is the issuing party as printed on the invoice.
type Company struct {
	Name    string
	Address string
	TaxCode string
	Email   string
	Phone   string
}

// InvoiceLine is one printed row. Amount is price·qty minus the line-level
// discount; the order-level discount code is surfaced separately on the
// invoice, never folded into lines.
type InvoiceLine struct {
	Description string
	UnitPrice   int64
	Quantity    int
	Discount    int64
	Amount      int64
}

// InvoiceStatus is snapshotted from the order at generation time and never
// synced afterwards: the invoice is the document of record for that moment.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceIssued    InvoiceStatus = "issued"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// invoiceStatusFor maps the order state at generation time onto the invoice.
func invoiceStatusFor(status ordersdomain.Status) InvoiceStatus {
	switch status {
	case ordersdomain.StatusCompleted:
		return InvoicePaid
	case ordersdomain.StatusCancelled, ordersdomain.StatusRefunded:
		return InvoiceCancelled
	default:
		return InvoiceIssued
	}
}

// Invoice is the immutable billing document for a settled order.
type Invoice struct {
	ID            uint64
	Number        string
	OrderNo       string
	Status        InvoiceStatus
	Customer      Customer
	Company       Company
	Lines         []InvoiceLine
	Subtotal      int64
	OrderDiscount int64
	Tax           int64
	ShippingFee   int64
	Total         int64
	Currency      string
	IssuedAt      time.Time
}

// InvoiceNumber renders INV{yy}{mm}{seq} with a zero-padded sequence.
func InvoiceNumber(issuedAt time.Time, seq int) string {
	return fmt.Sprintf("INV%02d%02d%04d", issuedAt.Year()%100, int(issuedAt.Month()), seq)
}

// GenerateInvoice derives the billing document from a settled order. It is a
// pure function; persistence and numbering concurrency live behind the
// invoice store.
func GenerateInvoice(order *ordersdomain.Order, customer Customer, company Company, seq int, issuedAt time.Time) (*Invoice, error) {
	if order == nil || order.PaidAt == nil {
		return nil, ErrOrderNotSettled
	}
	if seq < 1 {
		return nil, ErrNoSequence
	}
	lines := make([]InvoiceLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, InvoiceLine{
			Description: item.Name,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Discount:    item.Discount,
			Amount:      item.UnitPrice*int64(item.Quantity) - item.Discount,
		})
	}
	return &Invoice{
		Number:        InvoiceNumber(issuedAt, seq),
		OrderNo:       order.OrderNo,
		Status:        invoiceStatusFor(order.Status),
		Customer:      customer,
		Company:       company,
		Lines:         lines,
		Subtotal:      order.Subtotal,
		OrderDiscount: order.Discount,
		Tax:           order.Tax,
		ShippingFee:   order.ShippingFee,
		Total:         order.Total,
		Currency:      order.Currency,
		IssuedAt:      issuedAt,
	}, nil
}
