package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	paymentspostgres "github.com/edumartvn/commerce-api/internal/domains/payments/adapters/persistence/postgres"
	platformpostgres "github.com/edumartvn/commerce-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge webhook log")
	}

	auditLog := paymentspostgres.NewAuditLog(db)
	cutoff := time.Now().Add(-retentionFromEnv())
	purged, err := auditLog.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to purge webhook log: %v", err)
	}
	log.Printf("webhook log purge completed, removed %d entries older than %s", purged, cutoff.Format(time.RFC3339))
}

func retentionFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("WEBHOOK_LOG_RETENTION_DAYS"))
	if raw == "" {
		return paymentspostgres.DefaultRetention
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return paymentspostgres.DefaultRetention
	}
	return time.Duration(days) * 24 * time.Hour
}
