package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace
// adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&discountCodeRecord{},
		&webhookRecord{},
		&invoiceRecord{},
		&commissionRecord{},
	)
}

type orderItemRecord struct {
	Type      string `json:"type"`
	RefID     string `json:"refId"`
	Name      string `json:"name"`
	PartnerID string `json:"partnerId"`
	Category  string `json:"category"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Discount  int64  `json:"discount"`
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID          uint64            `gorm:"primaryKey;column:id"`
	OrderNo     string            `gorm:"column:order_no;size:32;uniqueIndex"`
	UserID      string            `gorm:"column:user_id;size:64;index"`
	Items       []orderItemRecord `gorm:"column:items;serializer:json"`
	Subtotal    int64             `gorm:"column:subtotal"`
	Discount    int64             `gorm:"column:discount"`
	ShippingFee int64             `gorm:"column:shipping_fee"`
	Tax         int64             `gorm:"column:tax"`
	Total       int64             `gorm:"column:total"`
	Currency    string            `gorm:"column:currency;size:8"`

	Status        string `gorm:"column:status;type:varchar(32);index"`
	PaymentStatus string `gorm:"column:payment_status;type:varchar(32)"`

	PaymentMethod    string `gorm:"column:payment_method;size:32"`
	PaymentReference string `gorm:"column:payment_reference;size:128"`
	TransactionID    string `gorm:"column:transaction_id;size:128;index"`

	ShippingRecipient string `gorm:"column:shipping_recipient"`
	ShippingPhone     string `gorm:"column:shipping_phone;size:32"`
	ShippingAddress   string `gorm:"column:shipping_address"`
	ShippingCity      string `gorm:"column:shipping_city;size:64"`
	HasShipping       bool   `gorm:"column:has_shipping"`

	Notes pq.StringArray `gorm:"column:notes;type:text[]"`

	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	PaidAt      *time.Time `gorm:"column:paid_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Discount code schema mirrors the orders discount store.
type discountCodeRecord struct {
	Code        string    `gorm:"primaryKey;column:code;size:64"`
	Type        string    `gorm:"column:type;type:varchar(16)"`
	Value       int64     `gorm:"column:value"`
	MinAmount   int64     `gorm:"column:min_amount"`
	MaxDiscount int64     `gorm:"column:max_discount"`
	Active      bool      `gorm:"column:active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (discountCodeRecord) TableName() string { return "discount_codes" }

// Webhook audit schema mirrors the payments audit log.
type webhookRecord struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	Method     string    `gorm:"column:method;type:varchar(16);index"`
	OrderNo    string    `gorm:"column:order_no;size:32;index"`
	Outcome    string    `gorm:"column:outcome;type:varchar(24);index"`
	Message    string    `gorm:"column:message"`
	RawPayload string    `gorm:"column:raw_payload;type:text"`
	ReceivedAt time.Time `gorm:"column:received_at;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (webhookRecord) TableName() string { return "webhook_log" }

type invoiceLineRecord struct {
	Description string `json:"description"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Discount    int64  `json:"discount"`
	Amount      int64  `json:"amount"`
}

// Invoice schema mirrors the billing invoice store.
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

// Commission schema mirrors the billing commission store.
type commissionRecord struct {
	ID            uint64    `gorm:"primaryKey;column:id"`
	OrderNo       string    `gorm:"column:order_no;size:32;index"`
	PartnerID     string    `gorm:"column:partner_id;size:64;index"`
	Category      string    `gorm:"column:category;size:32"`
	GrossAmount   int64     `gorm:"column:gross_amount"`
	PlatformShare int64     `gorm:"column:platform_share"`
	PartnerShare  int64     `gorm:"column:partner_share"`
	NetAmount     int64     `gorm:"column:net_amount"`
	RefundAmount  int64     `gorm:"column:refund_amount"`
	Status        string    `gorm:"column:status;type:varchar(16);index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (commissionRecord) TableName() string { return "commission_transactions" }
