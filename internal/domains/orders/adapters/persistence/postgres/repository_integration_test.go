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

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
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

func newTestOrder(t *testing.T, orderNo string) *domain.Order {
	t.Helper()
	items := []domain.OrderItem{
		{Type: domain.ItemCourse, RefID: "course-1", Name: "Luyện thi IELTS", PartnerID: "partner-1", UnitPrice: 900000, Quantity: 1},
	}
	order, err := domain.NewOrder(orderNo, "user-1", items, domain.CalculatePricing(items, nil), nil)
	require.NoError(t, err)
	return order
}

func TestPostgresRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "EDM2608310001")
	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	retrieved, err := repo.GetByOrderNo(ctx, "EDM2608310001")
	require.NoError(t, err)
	assert.Equal(t, "user-1", retrieved.UserID)
	assert.Equal(t, domain.StatusPending, retrieved.Status)
	assert.Equal(t, int64(990000), retrieved.Total)
	require.Len(t, retrieved.Items, 1)
	assert.Equal(t, "Luyện thi IELTS", retrieved.Items[0].Name)
}

func TestPostgresRepository_DuplicateOrderNo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestOrder(t, "EDM2608310002"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newTestOrder(t, "EDM2608310002"))
	assert.ErrorIs(t, err, ports.ErrDuplicateOrderNo)
}

func TestPostgresRepository_UpdateGuarded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "EDM2608310003")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	require.NoError(t, order.BeginPayment("vnpay", "EDM2608310003_1756600000"))
	require.NoError(t, repo.UpdateGuarded(ctx, order, domain.StatusPending))

	retrieved, err := repo.GetByOrderNo(ctx, "EDM2608310003")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, retrieved.Status)
	assert.Equal(t, "vnpay", retrieved.PaymentMethod)

	// Guard expects the status that was already left behind.
	_, err = order.ConfirmPayment("VNP123", "vnpay")
	require.NoError(t, err)
	err = repo.UpdateGuarded(ctx, order, domain.StatusPending)
	assert.ErrorIs(t, err, ports.ErrStaleOrder)

	// Correct guard succeeds and the settlement sticks.
	require.NoError(t, repo.UpdateGuarded(ctx, order, domain.StatusProcessing))
	retrieved, err = repo.GetByOrderNo(ctx, "EDM2608310003")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, retrieved.Status)
	assert.Equal(t, "VNP123", retrieved.TransactionID)
	assert.NotNil(t, retrieved.PaidAt)
}

func TestPostgresRepository_UpdateGuardedMissingOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "EDM2608319999")
	err := repo.UpdateGuarded(ctx, order, domain.StatusPending)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_ListByUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	orderNos := []string{"EDM2608310010", "EDM2608310011", "EDM2608310012"}
	for _, no := range orderNos {
		_, err := repo.Create(ctx, newTestOrder(t, no))
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	orders, total, err := repo.ListByUser(ctx, "user-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, orders, 2)
	// Newest first.
	assert.Equal(t, "EDM2608310012", orders[0].OrderNo)

	orders, _, err = repo.ListByUser(ctx, "user-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, total, err = repo.ListByUser(ctx, "someone-else", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, orders)
}

func TestPostgresDiscountCodeStore_GetByCode(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	require.NoError(t, db.Create(&discountCodeRecord{
		Code:        "SUMMER10",
		Type:        string(domain.DiscountPercentage),
		Value:       10,
		MaxDiscount: 100000,
		Active:      true,
	}).Error)

	store := NewDiscountCodeStore(db)
	ctx := context.Background()

	code, err := store.GetByCode(ctx, "SUMMER10")
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, domain.DiscountPercentage, code.Type)
	assert.True(t, code.Active)

	missing, err := store.GetByCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
