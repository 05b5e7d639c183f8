package application

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordersmemory "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/edumartvn/commerce-api/internal/domains/orders/application"
	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	ordersports "github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/memory"
	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

// fakeGateway stands in for a signed provider: a callback verifies when its
// "signature" param is the literal "good".
type fakeGateway struct {
	method    domain.Method
	createErr error
	refundErr error
	refunds   []domain.RefundOrder
}

func (g *fakeGateway) Method() domain.Method { return g.method }

func (g *fakeGateway) CreatePayment(_ context.Context, intent domain.PaymentIntent) (*domain.PaymentLink, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &domain.PaymentLink{
		Method:      g.method,
		RedirectURL: "https://pay.example.test/" + intent.OrderNo,
		Reference:   "ref-" + intent.OrderNo,
	}, nil
}

func (g *fakeGateway) VerifyCallback(params map[string]string) (*domain.CallbackResult, error) {
	valid := params["signature"] == "good"
	result := &domain.CallbackResult{
		Method:        g.method,
		Valid:         valid,
		OrderNo:       params["orderNo"],
		TransactionID: params["transId"],
		ResponseCode:  params["code"],
		Message:       params["message"],
	}
	if !valid {
		result.Message = "invalid signature"
		return result, nil
	}
	if raw := params["amount"]; raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		result.Amount = amount
	}
	result.Success = params["code"] == "00"
	return result, nil
}

func (g *fakeGateway) Refund(_ context.Context, refund domain.RefundOrder) error {
	g.refunds = append(g.refunds, refund)
	return g.refundErr
}

type fakeSideEffects struct {
	runs []ports.PostPaymentInput
	err  error
}

func (f *fakeSideEffects) RunPostPayment(_ context.Context, input ports.PostPaymentInput) error {
	f.runs = append(f.runs, input)
	return f.err
}

type fakeReverser struct {
	reversed []string
	err      error
}

func (f *fakeReverser) ReverseCommissions(_ context.Context, orderNo string) error {
	f.reversed = append(f.reversed, orderNo)
	return f.err
}

type fixture struct {
	repo     *ordersmemory.Repository
	orders   ordersports.Service
	svc      *Service
	gateway  *fakeGateway
	audit    *memory.AuditLog
	notifier *memory.Notifier
	side     *fakeSideEffects
	reverser *fakeReverser
}

func newFixture(opts ...Option) *fixture {
	repo := ordersmemory.NewRepository()
	f := &fixture{
		repo:     repo,
		orders:   ordersapp.NewService(repo, ordersmemory.NewDiscountCodeStore(), nil),
		gateway:  &fakeGateway{method: domain.MethodVNPay},
		audit:    memory.NewAuditLog(),
		notifier: memory.NewNotifier(nil),
		side:     &fakeSideEffects{},
		reverser: &fakeReverser{},
	}
	base := []Option{
		WithNotifier(f.notifier),
		WithSideEffects(f.side),
		WithCommissionReverser(f.reverser),
	}
	f.svc = NewService(f.orders, f.audit, []ports.Gateway{f.gateway}, append(base, opts...)...)
	return f
}

// placeOrder opens a digital-course order: 500000 subtotal, 50000 VAT,
// 550000 total, no shipping.
func (f *fixture) placeOrder(t *testing.T) *ordersdomain.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), ordersports.CreateOrderInput{
		UserID: "user-1",
		Items: []ordersdomain.OrderItem{
			{Type: ordersdomain.ItemCourse, RefID: "course-1", Name: "Lập trình Go", PartnerID: "p1", UnitPrice: 500000, Quantity: 1},
		},
	})
	require.NoError(t, err)
	return order
}

// startPayment walks the order into processing through CreatePayment.
func (f *fixture) startPayment(t *testing.T) *ordersdomain.Order {
	t.Helper()
	order := f.placeOrder(t)
	_, err := f.svc.CreatePayment(context.Background(), ports.CreatePaymentInput{
		OrderNo: order.OrderNo,
		Method:  domain.MethodVNPay,
	})
	require.NoError(t, err)
	current, err := f.orders.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	return current
}

func successParams(orderNo string) map[string]string {
	return map[string]string{
		"signature": "good",
		"orderNo":   orderNo,
		"transId":   "TXN-001",
		"code":      "00",
		"message":   "payment successful",
	}
}

func TestCreatePayment_RecordsProcessingBeforeRedirect(t *testing.T) {
	f := newFixture()
	order := f.placeOrder(t)

	link, err := f.svc.CreatePayment(context.Background(), ports.CreatePaymentInput{
		OrderNo: order.OrderNo,
		Method:  domain.MethodVNPay,
	})
	require.NoError(t, err)
	require.Equal(t, "https://pay.example.test/"+order.OrderNo, link.RedirectURL)

	current, err := f.orders.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.StatusProcessing, current.Status)
	require.Equal(t, string(domain.MethodVNPay), current.PaymentMethod)
	require.Equal(t, link.Reference, current.PaymentReference)
}

func TestCreatePayment_OnlyPendingOrders(t *testing.T) {
	f := newFixture()
	order := f.startPayment(t)

	_, err := f.svc.CreatePayment(context.Background(), ports.CreatePaymentInput{
		OrderNo: order.OrderNo,
		Method:  domain.MethodVNPay,
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCreatePayment_UnsupportedMethod(t *testing.T) {
	f := newFixture()
	order := f.placeOrder(t)

	_, err := f.svc.CreatePayment(context.Background(), ports.CreatePaymentInput{
		OrderNo: order.OrderNo,
		Method:  domain.Method("zalopay"),
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestHandleCallback_InvalidSignatureLeavesOrderUntouched(t *testing.T) {
	f := newFixture()
	order := f.startPayment(t)

	params := successParams(order.OrderNo)
	params["signature"] = "forged"

	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, params)
	require.NoError(t, err)
	require.Equal(t, domain.WebhookInvalid, ack.Outcome)
	require.Nil(t, ack.Order)

	current, err := f.orders.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.StatusProcessing, current.Status)
	require.Empty(t, current.TransactionID)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.WebhookInvalid, entries[0].Outcome)
	assert.NotContains(t, entries[0].RawPayload, "signature")
	require.Empty(t, f.side.runs)
}

func TestHandleCallback_VerifiedFailureMarksOrderFailed(t *testing.T) {
	f := newFixture()
	order := f.startPayment(t)

	params := successParams(order.OrderNo)
	params["code"] = "24"
	params["message"] = "customer cancelled the payment"

	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, params)
	require.NoError(t, err)
	require.Equal(t, domain.WebhookFailed, ack.Outcome)
	require.NotNil(t, ack.Order)
	require.Equal(t, ordersdomain.StatusFailed, ack.Order.Status)
	require.Equal(t, ordersdomain.PaymentFailed, ack.Order.PaymentStatus)
	require.NotEmpty(t, ack.Order.Notes)
	assert.Contains(t, ack.Order.Notes[len(ack.Order.Notes)-1], "customer cancelled the payment")
	require.Empty(t, f.side.runs)
}

func TestHandleCallback_SuccessSettlesAndRunsSideEffects(t *testing.T) {
	f := newFixture()
	order := f.startPayment(t)

	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, successParams(order.OrderNo))
	require.NoError(t, err)
	require.Equal(t, domain.WebhookConfirmed, ack.Outcome)
	require.NotNil(t, ack.Order)
	// All-digital orders complete on settlement.
	require.Equal(t, ordersdomain.StatusCompleted, ack.Order.Status)
	require.Equal(t, ordersdomain.PaymentCompleted, ack.Order.PaymentStatus)
	require.Equal(t, "TXN-001", ack.Order.TransactionID)
	require.NotNil(t, ack.Order.PaidAt)

	require.Len(t, f.side.runs, 1)
	assert.Equal(t, order.OrderNo, f.side.runs[0].OrderNo)
	assert.Equal(t, "TXN-001", f.side.runs[0].TransactionID)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.WebhookConfirmed, entries[0].Outcome)
}

func TestHandleCallback_MatchingAmountSettles(t *testing.T) {
	f := newFixture()
	order := f.startPayment(t)

	params := successParams(order.OrderNo)
	params["amount"] = strconv.FormatInt(order.Total, 10)

	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, params)
	require.NoError(t, err)
	require.Equal(t, domain.WebhookConfirmed, ack.Outcome)
}

func TestHandleCallback_AmountMismatchDoesNotSettle(t *testing.T) {
	f := newFixture()
	order := f.startPayment(t)

	params := successParams(order.OrderNo)
	params["amount"] = strconv.FormatInt(order.Total-100000, 10)

	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, params)
	require.NoError(t, err)
	require.Equal(t, domain.WebhookAmountMismatch, ack.Outcome)
	require.Nil(t, ack.Order)

	current, err := f.orders.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.StatusProcessing, current.Status)
	require.Empty(t, current.TransactionID)
	require.Empty(t, f.side.runs)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.WebhookAmountMismatch, entries[0].Outcome)
}

func TestHandleCallback_ReplayIsDuplicateWithoutSideEffects(t *testing.T) {
	f := newFixture()
	order := f.startPayment(t)
	params := successParams(order.OrderNo)

	_, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, params)
	require.NoError(t, err)

	// Return URL and IPN both deliver the same settlement.
	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, params)
	require.NoError(t, err)
	require.Equal(t, domain.WebhookDuplicate, ack.Outcome)
	require.Len(t, f.side.runs, 1)
}

func TestHandleCallback_SideEffectFailureStillAcks(t *testing.T) {
	f := newFixture()
	f.side.err = apperrors.New(apperrors.KindUnknown, "test", "temporal unavailable")
	order := f.startPayment(t)

	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, successParams(order.OrderNo))
	require.NoError(t, err)
	require.Equal(t, domain.WebhookConfirmed, ack.Outcome)

	current, err := f.orders.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.PaymentCompleted, current.PaymentStatus)
}

func TestHandleCallback_UnknownOrder(t *testing.T) {
	f := newFixture()

	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, successParams("EDM0000000000"))
	require.NoError(t, err)
	require.Equal(t, domain.WebhookOrderNotFound, ack.Outcome)
}

func TestHandleCallback_UnsupportedMethod(t *testing.T) {
	f := newFixture()

	_, err := f.svc.HandleCallback(context.Background(), domain.Method("zalopay"), successParams("EDM1"))
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func (f *fixture) settleOrder(t *testing.T) *ordersdomain.Order {
	t.Helper()
	order := f.startPayment(t)
	ack, err := f.svc.HandleCallback(context.Background(), domain.MethodVNPay, successParams(order.OrderNo))
	require.NoError(t, err)
	require.Equal(t, domain.WebhookConfirmed, ack.Outcome)
	return ack.Order
}

func TestProcessRefund_FullRefund(t *testing.T) {
	f := newFixture()
	order := f.settleOrder(t)

	result, err := f.svc.ProcessRefund(context.Background(), domain.RefundOrder{
		OrderNo:     order.OrderNo,
		Reason:      "khách yêu cầu hoàn tiền",
		RequestedBy: "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RefundCompleted, result.Status)
	// Zero amount means refund the whole order.
	require.Equal(t, order.Total, result.Amount)

	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, order.TransactionID, f.gateway.refunds[0].TransactionID)
	assert.Equal(t, order.PaymentReference, f.gateway.refunds[0].Reference)

	current, err := f.orders.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.StatusRefunded, current.Status)
	require.Equal(t, ordersdomain.PaymentRefunded, current.PaymentStatus)

	require.Equal(t, []string{order.OrderNo}, f.reverser.reversed)
	sent := f.notifier.Sent()
	require.NotEmpty(t, sent)
	assert.Equal(t, "refund_processed", sent[len(sent)-1].Kind)
}

func TestProcessRefund_GatewayDeclineLeavesOrderSettled(t *testing.T) {
	f := newFixture()
	f.gateway.refundErr = apperrors.New(apperrors.KindPayment, "test", "refund declined: window exceeded")
	order := f.settleOrder(t)

	result, err := f.svc.ProcessRefund(context.Background(), domain.RefundOrder{OrderNo: order.OrderNo})
	require.NoError(t, err)
	require.Equal(t, domain.RefundFailed, result.Status)
	require.Equal(t, "The payment provider declined the refund.", result.Message)

	current, err := f.orders.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.StatusCompleted, current.Status)
	require.Empty(t, f.reverser.reversed)
}

func TestProcessRefund_OutsideWindow(t *testing.T) {
	f := newFixture(WithRefundWindow(time.Nanosecond))
	order := f.settleOrder(t)

	_, err := f.svc.ProcessRefund(context.Background(), domain.RefundOrder{OrderNo: order.OrderNo})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	appErr := apperrors.AsError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "The refund period for this order has expired.", appErr.User())

	current, err := f.orders.GetOrder(context.Background(), order.OrderNo)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.StatusCompleted, current.Status)
}

func TestProcessRefund_WindowRunsFromOrderCreation(t *testing.T) {
	f := newFixture()
	order := f.settleOrder(t)

	// Age the order itself: a long-lived order that only settled moments ago
	// is still past its refund period.
	aged, err := f.repo.GetByOrderNo(context.Background(), order.OrderNo)
	require.NoError(t, err)
	aged.CreatedAt = time.Now().AddDate(0, 0, -45)
	require.NoError(t, f.repo.UpdateGuarded(context.Background(), aged))

	_, err = f.svc.ProcessRefund(context.Background(), domain.RefundOrder{OrderNo: order.OrderNo})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	appErr := apperrors.AsError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "The refund period for this order has expired.", appErr.User())
	require.Empty(t, f.gateway.refunds)
}

func TestProcessRefund_UnsettledOrder(t *testing.T) {
	f := newFixture()
	order := f.startPayment(t)

	_, err := f.svc.ProcessRefund(context.Background(), domain.RefundOrder{OrderNo: order.OrderNo})
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestProcessRefund_AmountExceedsTotal(t *testing.T) {
	f := newFixture()
	order := f.settleOrder(t)

	_, err := f.svc.ProcessRefund(context.Background(), domain.RefundOrder{
		OrderNo: order.OrderNo,
		Amount:  order.Total + 1,
	})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	require.Empty(t, f.gateway.refunds)
}

func TestPaymentStatus_ProjectsOrder(t *testing.T) {
	f := newFixture()
	order := f.settleOrder(t)

	view, err := f.svc.PaymentStatus(context.Background(), order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNo, view.OrderNo)
	assert.Equal(t, ordersdomain.StatusCompleted, view.Status)
	assert.Equal(t, ordersdomain.PaymentCompleted, view.PaymentStatus)
	assert.Equal(t, order.Total, view.Total)
	require.NotNil(t, view.PaidAt)
}
