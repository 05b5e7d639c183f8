package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
)

var _ ports.DiscountCodeStore = (*DiscountCodeStore)(nil)

// DiscountCodeStore reads discount codes from PostgreSQL.
type DiscountCodeStore struct {
	db *gorm.DB
}

func NewDiscountCodeStore(db *gorm.DB) *DiscountCodeStore {
	return &DiscountCodeStore{db: db}
}

// GetByCode loads a code, returning (nil, nil) when absent so pricing treats
// unknown codes as no discount.
func (s *DiscountCodeStore) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres discount code store not configured")
	}
	var record discountCodeRecord
	if err := s.db.WithContext(ctx).First(&record, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.DiscountCode{
		Code:        record.Code,
		Type:        domain.DiscountType(record.Type),
		Value:       record.Value,
		MinAmount:   record.MinAmount,
		MaxDiscount: record.MaxDiscount,
		Active:      record.Active,
	}, nil
}

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
