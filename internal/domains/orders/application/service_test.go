package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	ordermemory "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/memory"
	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

func newTestService(codes ...domain.DiscountCode) (*Service, *ordermemory.Repository) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, ordermemory.NewDiscountCodeStore(codes...), nil)
	return svc, repo
}

func courseInput() ports.CreateOrderInput {
	return ports.CreateOrderInput{
		UserID: "user-1",
		Items: []domain.OrderItem{
			{Type: domain.ItemCourse, RefID: "course-1", Name: "Luyện thi IELTS", PartnerID: "p1", UnitPrice: 900000, Quantity: 1},
		},
	}
}

func bookInput() ports.CreateOrderInput {
	return ports.CreateOrderInput{
		UserID: "user-1",
		Items: []domain.OrderItem{
			{Type: domain.ItemProduct, RefID: "book-1", Name: "Sách giáo trình", PartnerID: "p2", UnitPrice: 150000, Quantity: 2},
		},
		Shipping: &domain.ShippingInfo{Recipient: "Nguyễn Văn A", Phone: "0901234567", Address: "1 Lê Lợi", City: "Hà Nội"},
	}
}

func TestCreateOrder_DigitalCourse(t *testing.T) {
	svc, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), courseInput())
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, int64(900000), order.Subtotal)
	require.Equal(t, int64(90000), order.Tax)
	require.Equal(t, int64(0), order.ShippingFee)
	require.Equal(t, int64(990000), order.Total)
	require.Nil(t, order.Shipping)
}

func TestCreateOrder_PhysicalAddsShippingFee(t *testing.T) {
	svc, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), bookInput())
	require.NoError(t, err)
	require.Equal(t, int64(300000), order.Subtotal)
	require.Equal(t, int64(30000), order.ShippingFee)
	require.NotNil(t, order.Shipping)
	require.Equal(t, int64(30000), order.Shipping.Fee)
	// subtotal 300000 + tax 30000 + shipping 30000
	require.Equal(t, int64(360000), order.Total)
}

func TestCreateOrder_MixedCartWithLineDiscount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	input := ports.CreateOrderInput{
		UserID: "user-1",
		Items: []domain.OrderItem{
			{Type: domain.ItemCourse, RefID: "course-1", Name: "Luyện thi IELTS", PartnerID: "p1", UnitPrice: 500000, Quantity: 1},
			{Type: domain.ItemProduct, RefID: "book-1", Name: "Sách giáo trình", PartnerID: "p2", UnitPrice: 200000, Quantity: 2, Discount: 50000},
		},
		Shipping: &domain.ShippingInfo{Recipient: "Nguyễn Văn A", Phone: "0901234567", Address: "1 Lê Lợi", City: "TP. Hồ Chí Minh"},
	}
	order, err := svc.CreateOrder(ctx, input)
	require.NoError(t, err)

	// Line-level discounts stay on the line; the order-level discount only
	// ever comes from a code.
	require.Equal(t, int64(900000), order.Subtotal)
	require.Equal(t, int64(0), order.Discount)
	require.Equal(t, int64(90000), order.Tax)
	require.Equal(t, int64(30000), order.ShippingFee)
	require.Equal(t, int64(1020000), order.Total)

	// The physical line keeps the order at paid on settlement.
	_, err = svc.BeginPayment(ctx, order.OrderNo, "vnpay", "ref-1")
	require.NoError(t, err)
	confirmation, err := svc.ConfirmPayment(ctx, order.OrderNo, "VNP001", "vnpay")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, confirmation.Order.Status)
}

func TestCreateOrder_AppliesDiscountCode(t *testing.T) {
	svc, _ := newTestService(domain.DiscountCode{
		Code: "SALE10", Type: domain.DiscountPercentage, Value: 10, Active: true,
	})

	input := courseInput()
	input.DiscountCode = "SALE10"
	order, err := svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(90000), order.Discount)
	require.Equal(t, int64(891000), order.Total)
}

func TestCreateOrder_UnknownCodeIgnored(t *testing.T) {
	svc, _ := newTestService()

	input := courseInput()
	input.DiscountCode = "NOPE"
	order, err := svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(0), order.Discount)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), ports.CreateOrderInput{UserID: "user-1"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, courseInput())
	require.NoError(t, err)
	_, err = svc.BeginPayment(ctx, order.OrderNo, "vnpay", order.OrderNo+"_1756600000")
	require.NoError(t, err)

	first, err := svc.ConfirmPayment(ctx, order.OrderNo, "VNP001", "vnpay")
	require.NoError(t, err)
	require.False(t, first.Duplicate)
	require.Equal(t, domain.StatusCompleted, first.Order.Status)

	replay, err := svc.ConfirmPayment(ctx, order.OrderNo, "VNP001", "vnpay")
	require.NoError(t, err)
	require.True(t, replay.Duplicate)

	_, err = svc.ConfirmPayment(ctx, order.OrderNo, "VNP002", "vnpay")
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestConfirmPayment_UnknownOrder(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ConfirmPayment(context.Background(), "EDM0000000000", "VNP001", "vnpay")
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestMarkPaymentFailed_ThenRepeatNoOp(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, courseInput())
	require.NoError(t, err)
	_, err = svc.BeginPayment(ctx, order.OrderNo, "momo", "req-1")
	require.NoError(t, err)

	failed, err := svc.MarkPaymentFailed(ctx, order.OrderNo, "resultCode=1006")
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed, failed.Status)

	again, err := svc.MarkPaymentFailed(ctx, order.OrderNo, "resultCode=1006")
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed, again.Status)
}

func TestCancelOrder_RejectsPaid(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, bookInput())
	require.NoError(t, err)
	_, err = svc.BeginPayment(ctx, order.OrderNo, "vnpay", "ref-1")
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, order.OrderNo, "VNP001", "vnpay")
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, order.OrderNo, "too late")
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCancelOrder_PendingSucceeds(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, courseInput())
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(ctx, order.OrderNo, "ordered twice")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Contains(t, cancelled.Notes, "cancelled: ordered twice")
}

func TestMarkRefunded_FromCompleted(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, courseInput())
	require.NoError(t, err)
	_, err = svc.BeginPayment(ctx, order.OrderNo, "vnpay", "ref-1")
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, order.OrderNo, "VNP001", "vnpay")
	require.NoError(t, err)

	refunded, err := svc.MarkRefunded(ctx, order.OrderNo, "customer request")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRefunded, refunded.Status)
	require.Contains(t, refunded.Notes, "refunded: customer request")
}

func TestAdvanceFulfillment_DrivesDeliveryChain(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, bookInput())
	require.NoError(t, err)
	_, err = svc.BeginPayment(ctx, order.OrderNo, "momo", "req-1")
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, order.OrderNo, "MOMO001", "momo")
	require.NoError(t, err)

	for _, target := range []domain.Status{domain.StatusConfirmed, domain.StatusDelivering, domain.StatusDelivered, domain.StatusCompleted} {
		updated, err := svc.AdvanceFulfillment(ctx, order.OrderNo, target)
		require.NoError(t, err)
		require.Equal(t, target, updated.Status)
	}
}

func TestListOrders_Pagination(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(ctx, courseInput())
		require.NoError(t, err)
	}

	orders, total, err := svc.ListOrders(ctx, "user-1", 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, orders, 2)
}
