package memory

import (
	"context"
	"sync"
	"time"

	"github.com/edumartvn/commerce-api/internal/domains/billing/domain"
	"github.com/edumartvn/commerce-api/internal/domains/billing/ports"
)

var _ ports.InvoiceStore = (*InvoiceStore)(nil)

// InvoiceStore keeps issued invoices in memory.
type InvoiceStore struct {
	mu        sync.Mutex
	byOrderNo map[string]*domain.Invoice
	sequences map[string]int
	nextID    uint64
}

func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{
		byOrderNo: map[string]*domain.Invoice{},
		sequences: map[string]int{},
	}
}

// Create stores the invoice, rejecting a second invoice for the same order.
func (s *InvoiceStore) Create(_ context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byOrderNo[invoice.OrderNo]; exists {
		return nil, ports.ErrDuplicateInvoice
	}
	s.nextID++
	clone := cloneInvoice(invoice)
	clone.ID = s.nextID
	s.byOrderNo[invoice.OrderNo] = clone
	return cloneInvoice(clone), nil
}

// GetByOrderNo loads the order's invoice.
func (s *InvoiceStore) GetByOrderNo(_ context.Context, orderNo string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.byOrderNo[orderNo]
	if !ok {
		return nil, ports.ErrInvoiceNotFound
	}
	return cloneInvoice(invoice), nil
}

// NextSequence hands out the next month-scoped running number.
func (s *InvoiceStore) NextSequence(_ context.Context, period time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := period.Format("200601")
	s.sequences[key]++
	return s.sequences[key], nil
}

func cloneInvoice(invoice *domain.Invoice) *domain.Invoice {
	clone := *invoice
	clone.Lines = append([]domain.InvoiceLine(nil), invoice.Lines...)
	return &clone
}
