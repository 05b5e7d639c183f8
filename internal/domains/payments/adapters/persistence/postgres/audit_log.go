package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
)

var _ ports.WebhookAuditLog = (*AuditLog)(nil)

// AuditLog persists webhook entries in PostgreSQL, append-only.
type AuditLog struct {
	db *gorm.DB
}

func NewAuditLog(db *gorm.DB) *AuditLog {
	return &AuditLog{db: db}
}

// Record appends the entry.
func (l *AuditLog) Record(ctx context.Context, entry domain.WebhookEntry) error {
	if l == nil || l.db == nil {
		return errors.New("postgres webhook audit log not configured")
	}
	record := webhookRecord{
		Method:     string(entry.Method),
		OrderNo:    entry.OrderNo,
		Outcome:    string(entry.Outcome),
		Message:    entry.Message,
		RawPayload: entry.RawPayload,
		ReceivedAt: entry.ReceivedAt,
	}
	return l.db.WithContext(ctx).Create(&record).Error
}

// DefaultRetention is how long webhook deliveries are kept before the
// maintenance purge removes them.
const DefaultRetention = 90 * 24 * time.Hour

// PurgeOlderThan deletes webhook entries received before the cutoff and
// reports how many rows went away.
func (l *AuditLog) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if l == nil || l.db == nil {
		return 0, errors.New("postgres webhook audit log not configured")
	}
	result := l.db.WithContext(ctx).Where("received_at < ?", cutoff).Delete(&webhookRecord{})
	return result.RowsAffected, result.Error
}

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
