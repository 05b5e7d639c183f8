package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/edumartvn/commerce-api/internal/domains/billing/domain"
	"github.com/edumartvn/commerce-api/internal/domains/billing/ports"
)

var _ ports.CommissionStore = (*CommissionStore)(nil)

// CommissionStore persists commission entries in PostgreSQL.
type CommissionStore struct {
	db *gorm.DB
}

func NewCommissionStore(db *gorm.DB) *CommissionStore {
	return &CommissionStore{db: db}
}

// CreateBatch inserts all of an order's entries in one statement.
func (s *CommissionStore) CreateBatch(ctx context.Context, transactions []domain.CommissionTransaction) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if len(transactions) == 0 {
		return nil
	}
	records := make([]commissionRecord, 0, len(transactions))
	for _, txn := range transactions {
		records = append(records, toCommissionRecord(txn))
	}
	return s.db.WithContext(ctx).Create(&records).Error
}

// ListByOrder returns the stored entries for one order.
func (s *CommissionStore) ListByOrder(ctx context.Context, orderNo string) ([]domain.CommissionTransaction, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []commissionRecord
	if err := s.db.WithContext(ctx).
		Where("order_no = ?", orderNo).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	transactions := make([]domain.CommissionTransaction, 0, len(records))
	for _, record := range records {
		transactions = append(transactions, toCommissionDomain(record))
	}
	return transactions, nil
}

// MarkReversed moves every entry of the order to refunded, clawing back the
// full net amount.
func (s *CommissionStore) MarkReversed(ctx context.Context, orderNo string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Model(&commissionRecord{}).
		Where("order_no = ?", orderNo).
		Updates(map[string]any{
			"status":        string(domain.CommissionRefunded),
			"refund_amount": gorm.Expr("net_amount"),
			"updated_at":    time.Now(),
		}).Error
}

func (s *CommissionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres commission store not configured")
	}
	return nil
}

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

func toCommissionRecord(txn domain.CommissionTransaction) commissionRecord {
	return commissionRecord{
		ID:            txn.ID,
		OrderNo:       txn.OrderNo,
		PartnerID:     txn.PartnerID,
		Category:      txn.Category,
		GrossAmount:   txn.GrossAmount,
		PlatformShare: txn.PlatformShare,
		PartnerShare:  txn.PartnerShare,
		NetAmount:     txn.NetAmount,
		RefundAmount:  txn.RefundAmount,
		Status:        string(txn.Status),
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	}
}

func toCommissionDomain(record commissionRecord) domain.CommissionTransaction {
	return domain.CommissionTransaction{
		ID:            record.ID,
		OrderNo:       record.OrderNo,
		PartnerID:     record.PartnerID,
		Category:      record.Category,
		GrossAmount:   record.GrossAmount,
		PlatformShare: record.PlatformShare,
		PartnerShare:  record.PartnerShare,
		NetAmount:     record.NetAmount,
		RefundAmount:  record.RefundAmount,
		Status:        domain.CommissionStatus(record.Status),
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}
