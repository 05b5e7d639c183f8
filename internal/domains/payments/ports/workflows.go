package ports

import "context"

// PostPaymentInput identifies the settlement whose side effects should run.
type PostPaymentInput struct {
	OrderNo       string
	TransactionID string
}

// SideEffectOrchestrator runs the post-payment side effects (invoice,
// commissions, customer notification). Implementations may be durable
// (Temporal) or inline; either way the caller treats failures as
// best-effort and never propagates them to the gateway response.
type SideEffectOrchestrator interface {
	RunPostPayment(ctx context.Context, input PostPaymentInput) error
}
