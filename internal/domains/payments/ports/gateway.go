package ports

import (
	"context"

	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
)

// Gateway abstracts one payment provider. Implementations translate the
// gateway-agnostic commands into each provider's signed wire format and
// verify inbound payloads before anything downstream may trust them.
type Gateway interface {
	Method() domain.Method
	// CreatePayment builds the signed redirect/payment request for the order.
	CreatePayment(ctx context.Context, intent domain.PaymentIntent) (*domain.PaymentLink, error)
	// VerifyCallback strips the signature field, recomputes it over the
	// remaining parameters, and only then interprets the result code. A
	// signature mismatch yields Valid=false, Success=false.
	VerifyCallback(params map[string]string) (*domain.CallbackResult, error)
	// Refund asks the provider to return the money for a settled order.
	Refund(ctx context.Context, refund domain.RefundOrder) error
}
