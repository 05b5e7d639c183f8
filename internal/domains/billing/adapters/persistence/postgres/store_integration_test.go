//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edumartvn/commerce-api/internal/domains/billing/domain"
	"github.com/edumartvn/commerce-api/internal/domains/billing/ports"
	"github.com/edumartvn/commerce-api/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("commerce_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// Run migrations
	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newTestInvoice(t *testing.T, orderNo string, seq int, issuedAt time.Time) *domain.Invoice {
	t.Helper()
	return &domain.Invoice{
		Number:   domain.InvoiceNumber(issuedAt, seq),
		OrderNo:  orderNo,
		Customer: domain.Customer{Name: "Nguyen Van A", Email: "a@example.com"},
		Company:  domain.Company{Name: "EduMart Vietnam JSC", TaxCode: "0312345678"},
		Lines: []domain.InvoiceLine{
			{Description: "Luyện thi IELTS", UnitPrice: 900000, Quantity: 1, Amount: 900000},
		},
		Subtotal: 900000,
		Tax:      90000,
		Total:    990000,
		Currency: "VND",
		IssuedAt: issuedAt,
	}
}

func TestPostgresInvoiceStore_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := NewInvoiceStore(db)
	ctx := context.Background()
	issuedAt := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	created, err := store.Create(ctx, newTestInvoice(t, "EDM2608310001", 1, issuedAt))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "INV26080001", created.Number)

	retrieved, err := store.GetByOrderNo(ctx, "EDM2608310001")
	require.NoError(t, err)
	assert.Equal(t, "INV26080001", retrieved.Number)
	assert.Equal(t, int64(990000), retrieved.Total)
	require.Len(t, retrieved.Lines, 1)
	assert.Equal(t, "Luyện thi IELTS", retrieved.Lines[0].Description)
}

func TestPostgresInvoiceStore_DuplicateOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := NewInvoiceStore(db)
	ctx := context.Background()
	issuedAt := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	_, err := store.Create(ctx, newTestInvoice(t, "EDM2608310002", 2, issuedAt))
	require.NoError(t, err)

	// Same order, fresh sequence: the order_no unique index still rejects it.
	_, err = store.Create(ctx, newTestInvoice(t, "EDM2608310002", 3, issuedAt))
	assert.ErrorIs(t, err, ports.ErrDuplicateInvoice)
}

func TestPostgresInvoiceStore_NextSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := NewInvoiceStore(db)
	ctx := context.Background()
	august := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	seq, err := store.NextSequence(ctx, august)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	_, err = store.Create(ctx, newTestInvoice(t, "EDM2608310003", seq, august))
	require.NoError(t, err)

	seq, err = store.NextSequence(ctx, august)
	require.NoError(t, err)
	assert.Equal(t, 2, seq)

	// The counter is month-scoped.
	september := august.AddDate(0, 1, 0)
	seq, err = store.NextSequence(ctx, september)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestPostgresCommissionStore_BatchAndReverse(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	store := NewCommissionStore(db)
	ctx := context.Background()

	batch := []domain.CommissionTransaction{
		{OrderNo: "EDM2608310004", PartnerID: "partner-1", Category: "language", GrossAmount: 900000, PlatformShare: 270000, PartnerShare: 630000, NetAmount: 630000, Status: domain.CommissionPending},
		{OrderNo: "EDM2608310004", PartnerID: "partner-2", Category: "it", GrossAmount: 500000, PlatformShare: 100000, PartnerShare: 400000, NetAmount: 400000, Status: domain.CommissionPending},
	}
	require.NoError(t, store.CreateBatch(ctx, batch))

	transactions, err := store.ListByOrder(ctx, "EDM2608310004")
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	for _, txn := range transactions {
		assert.Equal(t, domain.CommissionPending, txn.Status)
		assert.Equal(t, txn.GrossAmount, txn.PlatformShare+txn.PartnerShare)
		assert.Equal(t, txn.PartnerShare, txn.NetAmount)
		assert.Zero(t, txn.RefundAmount)
	}

	require.NoError(t, store.MarkReversed(ctx, "EDM2608310004"))
	transactions, err = store.ListByOrder(ctx, "EDM2608310004")
	require.NoError(t, err)
	for _, txn := range transactions {
		assert.Equal(t, domain.CommissionRefunded, txn.Status)
		assert.Equal(t, txn.NetAmount, txn.RefundAmount)
	}

	// Other orders are untouched.
	other, err := store.ListByOrder(ctx, "EDM2608319999")
	require.NoError(t, err)
	assert.Empty(t, other)
}
