package ports

import (
	"context"
	"time"

	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
)

// CreatePaymentInput asks for a redirect URL for a pending order.
type CreatePaymentInput struct {
	OrderNo  string
	Method   domain.Method
	Customer domain.Customer
	BankCode string
	Locale   string
	// ClientIP overrides the best-effort lookup when the transport already
	// knows the caller's address.
	ClientIP string
}

// CallbackAck is what the transport turns into the gateway-shaped response.
type CallbackAck struct {
	Result  domain.CallbackResult
	Outcome domain.WebhookOutcome
	Order   *ordersdomain.Order
}

// PaymentStatusView is the public payment-status projection of an order.
type PaymentStatusView struct {
	OrderNo       string
	Status        ordersdomain.Status
	PaymentStatus ordersdomain.PaymentStatus
	Method        string
	Total         int64
	Currency      string
	PaidAt        *time.Time
	UpdatedAt     time.Time
}

// Service exposes the payment use cases consumed by the HTTP transport.
type Service interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.PaymentLink, error)
	HandleCallback(ctx context.Context, method domain.Method, params map[string]string) (*CallbackAck, error)
	PaymentStatus(ctx context.Context, orderNo string) (*PaymentStatusView, error)
	ProcessRefund(ctx context.Context, refund domain.RefundOrder) (*domain.RefundResult, error)
}
