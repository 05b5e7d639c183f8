package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
)

const tracerName = "github.com/edumartvn/commerce-api/internal/domains/orders/adapters/observability/service"

// Service decorates an orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateOrder prices and persists a new order with instrumentation.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateOrder",
		attribute.String("user.id", input.UserID),
		attribute.Int("order.items", len(input.Items)),
	)
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("userId", input.UserID), slog.Int("items", len(input.Items)))
	order, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("userId", input.UserID))
	}
	span.SetAttributes(attribute.String("order.no", order.OrderNo))
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "order created",
		slog.String("orderNo", order.OrderNo),
		slog.Int64("total", order.Total))
	return order, nil
}

// GetOrder loads an order with instrumentation.
func (s *Service) GetOrder(ctx context.Context, orderNo string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.no", orderNo))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("orderNo", orderNo))
	}
	return order, nil
}

// ListOrders pages a user's order history with instrumentation.
func (s *Service) ListOrders(ctx context.Context, userID string, page, pageSize int) ([]*domain.Order, int64, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders",
		attribute.String("user.id", userID),
		attribute.Int("page", page),
	)
	defer span.End()

	orders, total, err := s.inner.ListOrders(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, s.handleError(ctx, span, err, "failed to list orders", slog.String("userId", userID))
	}
	span.SetAttributes(attribute.Int64("orders.total", total))
	return orders, total, nil
}

// BeginPayment moves an order into processing with instrumentation.
func (s *Service) BeginPayment(ctx context.Context, orderNo, method, reference string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.BeginPayment",
		attribute.String("order.no", orderNo),
		attribute.String("payment.method", method),
	)
	defer span.End()

	order, err := s.inner.BeginPayment(ctx, orderNo, method, reference)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to begin payment", slog.String("orderNo", orderNo))
	}
	s.logInfo(ctx, "payment started", slog.String("orderNo", orderNo), slog.String("method", method))
	return order, nil
}

// ConfirmPayment settles an order with instrumentation.
func (s *Service) ConfirmPayment(ctx context.Context, orderNo, transactionID, method string) (*ports.ConfirmPaymentResult, error) {
	ctx, span := s.startSpan(ctx, "Service.ConfirmPayment",
		attribute.String("order.no", orderNo),
		attribute.String("payment.method", method),
	)
	defer span.End()

	result, err := s.inner.ConfirmPayment(ctx, orderNo, transactionID, method)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to confirm payment", slog.String("orderNo", orderNo))
	}
	span.SetAttributes(attribute.Bool("payment.duplicate", result.Duplicate))
	s.metrics.recordSettled(ctx, result.Duplicate)
	s.logInfo(ctx, "payment confirmed",
		slog.String("orderNo", orderNo),
		slog.Bool("duplicate", result.Duplicate))
	return result, nil
}

// MarkPaymentFailed records a gateway failure with instrumentation.
func (s *Service) MarkPaymentFailed(ctx context.Context, orderNo, message string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.MarkPaymentFailed", attribute.String("order.no", orderNo))
	defer span.End()

	order, err := s.inner.MarkPaymentFailed(ctx, orderNo, message)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to mark payment failed", slog.String("orderNo", orderNo))
	}
	s.logInfo(ctx, "payment marked failed", slog.String("orderNo", orderNo))
	return order, nil
}

// CancelOrder cancels an order with instrumentation.
func (s *Service) CancelOrder(ctx context.Context, orderNo, reason string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.CancelOrder", attribute.String("order.no", orderNo))
	defer span.End()

	order, err := s.inner.CancelOrder(ctx, orderNo, reason)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.String("orderNo", orderNo))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.String("orderNo", orderNo))
	return order, nil
}

// MarkRefunded moves a settled order to refunded with instrumentation.
func (s *Service) MarkRefunded(ctx context.Context, orderNo, reason string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.MarkRefunded", attribute.String("order.no", orderNo))
	defer span.End()

	order, err := s.inner.MarkRefunded(ctx, orderNo, reason)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to mark order refunded", slog.String("orderNo", orderNo))
	}
	s.logInfo(ctx, "order refunded", slog.String("orderNo", orderNo))
	return order, nil
}

// AdvanceFulfillment steps the fulfillment chain with instrumentation.
func (s *Service) AdvanceFulfillment(ctx context.Context, orderNo string, target domain.Status) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.AdvanceFulfillment",
		attribute.String("order.no", orderNo),
		attribute.String("order.target", string(target)),
	)
	defer span.End()

	order, err := s.inner.AdvanceFulfillment(ctx, orderNo, target)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to advance fulfillment",
			slog.String("orderNo", orderNo), slog.String("target", string(target)))
	}
	s.logInfo(ctx, "fulfillment advanced", slog.String("orderNo", orderNo), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated   metric.Int64Counter
	ordersSettled   metric.Int64Counter
	ordersCancelled metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	settled, _ := m.Int64Counter("orders.service.settled", metric.WithDescription("Number of payment settlements applied"))
	cancelled, _ := m.Int64Counter("orders.service.cancelled", metric.WithDescription("Number of orders cancelled"))
	return serviceMetrics{
		ordersCreated:   created,
		ordersSettled:   settled,
		ordersCancelled: cancelled,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	addCounter(ctx, m.ordersCreated, 1)
}

func (m serviceMetrics) recordSettled(ctx context.Context, duplicate bool) {
	addCounter(ctx, m.ordersSettled, 1, attribute.Bool("payment.duplicate", duplicate))
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	addCounter(ctx, m.ordersCancelled, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
