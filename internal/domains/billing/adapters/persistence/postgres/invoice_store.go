package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/edumartvn/commerce-api/internal/domains/billing/domain"
	"github.com/edumartvn/commerce-api/internal/domains/billing/ports"
)

var _ ports.InvoiceStore = (*InvoiceStore)(nil)

// InvoiceStore persists invoices in PostgreSQL.
type InvoiceStore struct {
	db *gorm.DB
}

func NewInvoiceStore(db *gorm.DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

// Create inserts the invoice; the unique order_no index turns a concurrent
// double-issue into ports.ErrDuplicateInvoice.
func (s *InvoiceStore) Create(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	record := toInvoiceRecord(invoice)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateInvoice
		}
		return nil, err
	}
	return toInvoiceDomain(&record), nil
}

// GetByOrderNo loads the order's invoice.
func (s *InvoiceStore) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Invoice, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record invoiceRecord
	if err := s.db.WithContext(ctx).First(&record, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrInvoiceNotFound
		}
		return nil, err
	}
	return toInvoiceDomain(&record), nil
}

// NextSequence counts the month's invoices by number prefix. Two issuers
// racing for the same sequence collide on the unique invoice number and one
// of them retries through the duplicate path.
func (s *InvoiceStore) NextSequence(ctx context.Context, period time.Time) (int, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	prefix := fmt.Sprintf("INV%02d%02d", period.Year()%100, int(period.Month()))
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&invoiceRecord{}).
		Where("number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

func (s *InvoiceStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres invoice store not configured")
	}
	return nil
}

type invoiceLineRecord struct {
	Description string `json:"description"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Discount    int64  `json:"discount"`
	Amount      int64  `json:"amount"`
}

type invoiceRecord struct {
	ID              uint64              `gorm:"primaryKey;column:id"`
	Number          string              `gorm:"column:number;size:32;uniqueIndex"`
	OrderNo         string              `gorm:"column:order_no;size:32;uniqueIndex"`
	Status          string              `gorm:"column:status;type:varchar(16)"`
	CustomerName    string              `gorm:"column:customer_name"`
	CustomerEmail   string              `gorm:"column:customer_email"`
	CustomerPhone   string              `gorm:"column:customer_phone;size:32"`
	CustomerAddress string              `gorm:"column:customer_address"`
	CustomerTaxCode string              `gorm:"column:customer_tax_code;size:32"`
	CompanyName     string              `gorm:"column:company_name"`
	CompanyAddress  string              `gorm:"column:company_address"`
	CompanyTaxCode  string              `gorm:"column:company_tax_code;size:32"`
	CompanyEmail    string              `gorm:"column:company_email"`
	CompanyPhone    string              `gorm:"column:company_phone;size:32"`
	Lines           []invoiceLineRecord `gorm:"column:lines;serializer:json"`
	Subtotal        int64               `gorm:"column:subtotal"`
	OrderDiscount   int64               `gorm:"column:order_discount"`
	Tax             int64               `gorm:"column:tax"`
	ShippingFee     int64               `gorm:"column:shipping_fee"`
	Total           int64               `gorm:"column:total"`
	Currency        string              `gorm:"column:currency;size:8"`
	IssuedAt        time.Time           `gorm:"column:issued_at;index"`
	CreatedAt       time.Time           `gorm:"column:created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at"`
}

func (invoiceRecord) TableName() string { return "invoices" }

func toInvoiceRecord(invoice *domain.Invoice) invoiceRecord {
	lines := make([]invoiceLineRecord, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, invoiceLineRecord{
			Description: line.Description,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Discount:    line.Discount,
			Amount:      line.Amount,
		})
	}
	return invoiceRecord{
		ID:              invoice.ID,
		Number:          invoice.Number,
		OrderNo:         invoice.OrderNo,
		Status:          string(invoice.Status),
		CustomerName:    invoice.Customer.Name,
		CustomerEmail:   invoice.Customer.Email,
		CustomerPhone:   invoice.Customer.Phone,
		CustomerAddress: invoice.Customer.Address,
		CustomerTaxCode: invoice.Customer.TaxCode,
		CompanyName:     invoice.Company.Name,
		CompanyAddress:  invoice.Company.Address,
		CompanyTaxCode:  invoice.Company.TaxCode,
		CompanyEmail:    invoice.Company.Email,
		CompanyPhone:    invoice.Company.Phone,
		Lines:           lines,
		Subtotal:        invoice.Subtotal,
		OrderDiscount:   invoice.OrderDiscount,
		Tax:             invoice.Tax,
		ShippingFee:     invoice.ShippingFee,
		Total:           invoice.Total,
		Currency:        invoice.Currency,
		IssuedAt:        invoice.IssuedAt,
	}
}

func toInvoiceDomain(record *invoiceRecord) *domain.Invoice {
	lines := make([]domain.InvoiceLine, 0, len(record.Lines))
	for _, line := range record.Lines {
		lines = append(lines, domain.InvoiceLine{
			Description: line.Description,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Discount:    line.Discount,
			Amount:      line.Amount,
		})
	}
	return &domain.Invoice{
		ID:      record.ID,
		Number:  record.Number,
		OrderNo: record.OrderNo,
		Status:  domain.InvoiceStatus(record.Status),
		Customer: domain.Customer{
			Name:    record.CustomerName,
			Email:   record.CustomerEmail,
			Phone:   record.CustomerPhone,
			Address: record.CustomerAddress,
			TaxCode: record.CustomerTaxCode,
		},
		Company: domain.Company{
			Name:    record.CompanyName,
			Address: record.CompanyAddress,
			TaxCode: record.CompanyTaxCode,
			Email:   record.CompanyEmail,
			Phone:   record.CompanyPhone,
		},
		Lines:         lines,
		Subtotal:      record.Subtotal,
		OrderDiscount: record.OrderDiscount,
		Tax:           record.Tax,
		ShippingFee:   record.ShippingFee,
		Total:         record.Total,
		Currency:      record.Currency,
		IssuedAt:      record.IssuedAt,
	}
}
