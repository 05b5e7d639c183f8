package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists order aggregates in PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed order repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the aggregate, translating the unique order_no index
// violation into ports.ErrDuplicateOrderNo so the service can retry with a
// fresh number.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateOrderNo
		}
		return nil, err
	}
	return toDomain(&record), nil
}

// GetByOrderNo loads a single aggregate by its public order number.
func (r *Repository) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return toDomain(&record), nil
}

// ListByUser pages a user's orders newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []orderRecord
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, toDomain(&records[i]))
	}
	return orders, total, nil
}

// UpdateGuarded writes the aggregate only while its stored status is still one
// of expect. A zero-row update means a concurrent writer moved the order first
// and is reported as ports.ErrStaleOrder.
func (r *Repository) UpdateGuarded(ctx context.Context, order *domain.Order, expect ...domain.Status) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(expect) == 0 {
		return ports.ErrStaleOrder
	}
	order.UpdatedAt = time.Now()
	record := toRecord(order)
	statuses := make([]string, 0, len(expect))
	for _, s := range expect {
		statuses = append(statuses, string(s))
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("order_no = ? AND status IN ?", order.OrderNo, statuses).
		Select(
			"status", "payment_status", "payment_method", "payment_reference",
			"transaction_id", "notes", "paid_at", "completed_at", "cancelled_at",
			"updated_at",
		).
		Updates(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).
			Model(&orderRecord{}).
			Where("order_no = ?", order.OrderNo).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ports.ErrNotFound
		}
		return ports.ErrStaleOrder
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
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

func toRecord(order *domain.Order) orderRecord {
	items := make([]orderItemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemRecord{
			Type:      string(item.Type),
			RefID:     item.RefID,
			Name:      item.Name,
			PartnerID: item.PartnerID,
			Category:  item.Category,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
		})
	}
	record := orderRecord{
		ID:               order.ID,
		OrderNo:          order.OrderNo,
		UserID:           order.UserID,
		Items:            items,
		Subtotal:         order.Subtotal,
		Discount:         order.Discount,
		ShippingFee:      order.ShippingFee,
		Tax:              order.Tax,
		Total:            order.Total,
		Currency:         order.Currency,
		Status:           string(order.Status),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentMethod:    order.PaymentMethod,
		PaymentReference: order.PaymentReference,
		TransactionID:    order.TransactionID,
		Notes:            pq.StringArray(order.Notes),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		PaidAt:           order.PaidAt,
		CompletedAt:      order.CompletedAt,
		CancelledAt:      order.CancelledAt,
	}
	if order.Shipping != nil {
		record.HasShipping = true
		record.ShippingRecipient = order.Shipping.Recipient
		record.ShippingPhone = order.Shipping.Phone
		record.ShippingAddress = order.Shipping.Address
		record.ShippingCity = order.Shipping.City
	}
	return record
}

func toDomain(record *orderRecord) *domain.Order {
	if record == nil {
		return nil
	}
	items := make([]domain.OrderItem, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, domain.OrderItem{
			Type:      domain.ItemType(item.Type),
			RefID:     item.RefID,
			Name:      item.Name,
			PartnerID: item.PartnerID,
			Category:  item.Category,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
		})
	}
	order := &domain.Order{
		ID:               record.ID,
		OrderNo:          record.OrderNo,
		UserID:           record.UserID,
		Items:            items,
		Subtotal:         record.Subtotal,
		Discount:         record.Discount,
		ShippingFee:      record.ShippingFee,
		Tax:              record.Tax,
		Total:            record.Total,
		Currency:         record.Currency,
		Status:           domain.Status(record.Status),
		PaymentStatus:    domain.PaymentStatus(record.PaymentStatus),
		PaymentMethod:    record.PaymentMethod,
		PaymentReference: record.PaymentReference,
		TransactionID:    record.TransactionID,
		Notes:            []string(record.Notes),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
		PaidAt:           record.PaidAt,
		CompletedAt:      record.CompletedAt,
		CancelledAt:      record.CancelledAt,
	}
	if record.HasShipping {
		order.Shipping = &domain.ShippingInfo{
			Recipient: record.ShippingRecipient,
			Phone:     record.ShippingPhone,
			Address:   record.ShippingAddress,
			City:      record.ShippingCity,
			Fee:       record.ShippingFee,
		}
	}
	return order
}
