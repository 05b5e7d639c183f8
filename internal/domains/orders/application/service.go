package application

import (
	"context"
	"errors"
	"time"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

// Service orchestrates the orders bounded context use cases.
type Service struct {
	repo     ports.Repository
	codes    ports.DiscountCodeStore
	shipping domain.ShippingPolicy
}

// NewService wires the orders service with its dependencies. A nil shipping
// policy falls back to the built-in city table.
func NewService(repo ports.Repository, codes ports.DiscountCodeStore, shipping domain.ShippingPolicy) *Service {
	if shipping == nil {
		shipping = domain.DefaultShippingPolicy()
	}
	return &Service{repo: repo, codes: codes, shipping: shipping}
}

// CreateOrder prices the items, resolves shipping, and persists a pending
// order. An unknown or inactive discount code silently yields no discount.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	const op = "orders.CreateOrder"
	if len(input.Items) == 0 {
		return nil, mapDomainError(op, domain.ErrEmptyItems)
	}
	code, err := s.lookupCode(ctx, input.DiscountCode)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	pricing := domain.CalculatePricing(input.Items, code)

	shipping := cloneShipping(input.Shipping)
	fee := s.shipping.Fee(input.Items, shipping)
	if shipping != nil {
		shipping.Fee = fee
	} else if fee > 0 {
		shipping = &domain.ShippingInfo{Fee: fee}
	}

	// The unique index on order_no is the final arbiter for number
	// collisions; one retry with a fresh number covers the realistic case.
	for attempt := 0; attempt < 2; attempt++ {
		order, err := domain.NewOrder(domain.NewOrderNumber(time.Now()), input.UserID, input.Items, pricing, shipping)
		if err != nil {
			return nil, mapDomainError(op, err)
		}
		if input.Notes != "" {
			order.AppendNote(input.Notes)
		}
		saved, err := s.repo.Create(ctx, order)
		if err != nil {
			if errors.Is(err, ports.ErrDuplicateOrderNo) && attempt == 0 {
				continue
			}
			return nil, mapRepoError(op, err)
		}
		return saved, nil
	}
	return nil, apperrors.New(apperrors.KindStorage, op, "order number collision persisted across retries")
}

// GetOrder loads a single order by its number.
func (s *Service) GetOrder(ctx context.Context, orderNo string) (*domain.Order, error) {
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, mapRepoError("orders.GetOrder", err)
	}
	return order, nil
}

// ListOrders pages through a user's orders.
func (s *Service) ListOrders(ctx context.Context, userID string, page, pageSize int) ([]*domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	result, total, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, mapRepoError("orders.ListOrders", err)
	}
	return result, total, nil
}

// BeginPayment records the gateway handoff before the caller redirects the
// user, so a webhook always finds a processing order.
func (s *Service) BeginPayment(ctx context.Context, orderNo, method, reference string) (*domain.Order, error) {
	const op = "orders.BeginPayment"
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	if err := order.BeginPayment(method, reference); err != nil {
		return nil, mapDomainError(op, err)
	}
	if err := s.repo.UpdateGuarded(ctx, order, domain.StatusPending); err != nil {
		return nil, mapRepoError(op, err)
	}
	return order, nil
}

// ConfirmPayment settles the payment leg idempotently. Replays with the same
// transaction id return Duplicate=true without a second write; a settled
// order reporting a different transaction id surfaces as CONFLICT so the
// caller can log the anomaly.
func (s *Service) ConfirmPayment(ctx context.Context, orderNo, transactionID, method string) (*ports.ConfirmPaymentResult, error) {
	const op = "orders.ConfirmPayment"
	for attempt := 0; attempt < 2; attempt++ {
		order, err := s.repo.GetByOrderNo(ctx, orderNo)
		if err != nil {
			return nil, mapRepoError(op, err)
		}
		previous := order.Status
		state, derr := order.ConfirmPayment(transactionID, method)
		if derr != nil {
			return nil, mapDomainError(op, derr)
		}
		if state == domain.SettlementDuplicate {
			return &ports.ConfirmPaymentResult{Order: order, Duplicate: true}, nil
		}
		if err := s.repo.UpdateGuarded(ctx, order, previous); err != nil {
			if errors.Is(err, ports.ErrStaleOrder) && attempt == 0 {
				// A concurrent delivery won the race; reload and re-evaluate,
				// which resolves to the duplicate or mismatch path.
				continue
			}
			return nil, mapRepoError(op, err)
		}
		return &ports.ConfirmPaymentResult{Order: order, Duplicate: false}, nil
	}
	return nil, apperrors.New(apperrors.KindConflict, op, "order kept changing concurrently")
}

// MarkPaymentFailed records a gateway-reported failure. Repeated failure
// callbacks for an already-failed order are a no-op.
func (s *Service) MarkPaymentFailed(ctx context.Context, orderNo, message string) (*domain.Order, error) {
	const op = "orders.MarkPaymentFailed"
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	if order.Status == domain.StatusFailed {
		return order, nil
	}
	previous := order.Status
	if err := order.MarkPaymentFailed(message); err != nil {
		return nil, mapDomainError(op, err)
	}
	if err := s.repo.UpdateGuarded(ctx, order, previous); err != nil {
		return nil, mapRepoError(op, err)
	}
	return order, nil
}

// CancelOrder rejects cancellation once money has settled and appends the
// reason to the order notes.
func (s *Service) CancelOrder(ctx context.Context, orderNo, reason string) (*domain.Order, error) {
	const op = "orders.CancelOrder"
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	previous := order.Status
	if err := order.Cancel(reason); err != nil {
		return nil, mapDomainError(op, err)
	}
	if err := s.repo.UpdateGuarded(ctx, order, previous); err != nil {
		return nil, mapRepoError(op, err)
	}
	return order, nil
}

// MarkRefunded moves a settled order to refunded on behalf of the refund
// manager.
func (s *Service) MarkRefunded(ctx context.Context, orderNo, reason string) (*domain.Order, error) {
	const op = "orders.MarkRefunded"
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	previous := order.Status
	if err := order.Refund(); err != nil {
		return nil, mapDomainError(op, err)
	}
	if reason != "" {
		order.AppendNote("refunded: " + reason)
	}
	if err := s.repo.UpdateGuarded(ctx, order, previous); err != nil {
		return nil, mapRepoError(op, err)
	}
	return order, nil
}

// AdvanceFulfillment drives the physical delivery sub-chain for external
// fulfillment systems.
func (s *Service) AdvanceFulfillment(ctx context.Context, orderNo string, target domain.Status) (*domain.Order, error) {
	const op = "orders.AdvanceFulfillment"
	order, err := s.repo.GetByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	previous := order.Status
	if err := order.AdvanceFulfillment(target); err != nil {
		return nil, mapDomainError(op, err)
	}
	if err := s.repo.UpdateGuarded(ctx, order, previous); err != nil {
		return nil, mapRepoError(op, err)
	}
	return order, nil
}

func (s *Service) lookupCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	if code == "" || s.codes == nil {
		return nil, nil
	}
	return s.codes.GetByCode(ctx, code)
}

func cloneShipping(info *domain.ShippingInfo) *domain.ShippingInfo {
	if info == nil {
		return nil
	}
	clone := *info
	return &clone
}

var _ ports.Service = (*Service)(nil)
