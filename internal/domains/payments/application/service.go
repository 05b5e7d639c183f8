package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	ordersports "github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

// DefaultRefundWindow bounds how long after an order is placed a refund is
// accepted.
const DefaultRefundWindow = 30 * 24 * time.Hour

var _ ports.Service = (*Service)(nil)

// Service orchestrates payment creation, callback handling, and refunds on
// top of the orders context and the registered gateways.
type Service struct {
	orders       ordersports.Service
	gateways     map[domain.Method]ports.Gateway
	audit        ports.WebhookAuditLog
	notifier     ports.Notifier
	sideEffects  ports.SideEffectOrchestrator
	commissions  ports.CommissionReverser
	ipResolver   ports.IPResolver
	refundWindow time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithNotifier wires customer notifications.
func WithNotifier(notifier ports.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithSideEffects wires the post-payment side-effect orchestrator.
func WithSideEffects(orchestrator ports.SideEffectOrchestrator) Option {
	return func(s *Service) { s.sideEffects = orchestrator }
}

// WithCommissionReverser wires the billing reversal hook used on refunds.
func WithCommissionReverser(reverser ports.CommissionReverser) Option {
	return func(s *Service) { s.commissions = reverser }
}

// WithIPResolver wires the client address lookup.
func WithIPResolver(resolver ports.IPResolver) Option {
	return func(s *Service) { s.ipResolver = resolver }
}

// WithRefundWindow overrides the refund eligibility window.
func WithRefundWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.refundWindow = window
		}
	}
}

// WithLogger injects a slog logger for the best-effort branches.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the payments service. Gateways register by their method.
func NewService(orders ordersports.Service, audit ports.WebhookAuditLog, gateways []ports.Gateway, opts ...Option) *Service {
	registered := make(map[domain.Method]ports.Gateway, len(gateways))
	for _, gateway := range gateways {
		if gateway != nil {
			registered[gateway.Method()] = gateway
		}
	}
	s := &Service{
		orders:       orders,
		gateways:     registered,
		audit:        audit,
		refundWindow: DefaultRefundWindow,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreatePayment hands a pending order to the chosen gateway and records the
// processing state before returning the redirect URL, so a webhook always
// finds a processing order.
func (s *Service) CreatePayment(ctx context.Context, input ports.CreatePaymentInput) (*domain.PaymentLink, error) {
	const op = "payments.CreatePayment"
	order, err := s.orders.GetOrder(ctx, input.OrderNo)
	if err != nil {
		return nil, err
	}
	if order.Status != ordersdomain.StatusPending {
		return nil, apperrors.New(apperrors.KindConflict, op,
			fmt.Sprintf("order %s is %s, only pending orders can start a payment", order.OrderNo, order.Status))
	}
	gateway, ok := s.gateways[input.Method]
	if !ok {
		return nil, apperrors.New(apperrors.KindValidation, op,
			fmt.Sprintf("unsupported payment method %q", input.Method)).
			WithUser("This payment method is not supported.")
	}
	clientIP := input.ClientIP
	if clientIP == "" {
		clientIP = s.lookupClientIP(ctx)
	}
	link, err := gateway.CreatePayment(ctx, domain.PaymentIntent{
		OrderNo:  order.OrderNo,
		Amount:   order.Total,
		ClientIP: clientIP,
		Customer: input.Customer,
		BankCode: input.BankCode,
		Locale:   input.Locale,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.orders.BeginPayment(ctx, order.OrderNo, string(input.Method), link.Reference); err != nil {
		return nil, err
	}
	return link, nil
}

// PaymentStatus projects the payment leg of an order.
func (s *Service) PaymentStatus(ctx context.Context, orderNo string) (*ports.PaymentStatusView, error) {
	order, err := s.orders.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	return &ports.PaymentStatusView{
		OrderNo:       order.OrderNo,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Method:        order.PaymentMethod,
		Total:         order.Total,
		Currency:      order.Currency,
		PaidAt:        order.PaidAt,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

func (s *Service) lookupClientIP(ctx context.Context) string {
	if s.ipResolver == nil {
		return "127.0.0.1"
	}
	return s.ipResolver.Lookup(ctx)
}
