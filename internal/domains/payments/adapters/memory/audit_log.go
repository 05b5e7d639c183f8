package memory

import (
	"context"
	"sync"

	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
)

var _ ports.WebhookAuditLog = (*AuditLog)(nil)

// AuditLog keeps webhook entries in memory, append-only.
type AuditLog struct {
	mu      sync.Mutex
	entries []domain.WebhookEntry
	nextID  uint64
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends the entry.
func (l *AuditLog) Record(_ context.Context, entry domain.WebhookEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	entry.ID = l.nextID
	l.entries = append(l.entries, entry)
	return nil
}

// Entries snapshots the log, newest last.
func (l *AuditLog) Entries() []domain.WebhookEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.WebhookEntry(nil), l.entries...)
}
