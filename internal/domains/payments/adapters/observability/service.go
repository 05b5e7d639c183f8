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

	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
)

const tracerName = "github.com/edumartvn/commerce-api/internal/domains/payments/adapters/observability/service"

// Service decorates a payments application port with tracing, logging, and metrics.
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

// CreatePayment hands the order to the gateway with instrumentation.
func (s *Service) CreatePayment(ctx context.Context, input ports.CreatePaymentInput) (*domain.PaymentLink, error) {
	ctx, span := s.startSpan(ctx, "Service.CreatePayment",
		attribute.String("order.no", input.OrderNo),
		attribute.String("payment.method", string(input.Method)),
	)
	defer span.End()

	s.logInfo(ctx, "creating payment", slog.String("orderNo", input.OrderNo), slog.String("method", string(input.Method)))
	result, err := s.inner.CreatePayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create payment", slog.String("orderNo", input.OrderNo))
	}
	s.metrics.recordCreated(ctx, input.Method)
	s.logInfo(ctx, "payment created", slog.String("orderNo", input.OrderNo), slog.String("reference", result.Reference))
	return result, nil
}

// HandleCallback verifies and applies a gateway notification with instrumentation.
func (s *Service) HandleCallback(ctx context.Context, method domain.Method, params map[string]string) (*ports.CallbackAck, error) {
	ctx, span := s.startSpan(ctx, "Service.HandleCallback", attribute.String("payment.method", string(method)))
	defer span.End()

	s.logInfo(ctx, "handling gateway callback", slog.String("method", string(method)))
	ack, err := s.inner.HandleCallback(ctx, method, params)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to handle callback", slog.String("method", string(method)))
	}
	span.SetAttributes(
		attribute.String("webhook.outcome", string(ack.Outcome)),
		attribute.String("order.no", ack.Result.OrderNo),
	)
	s.metrics.recordCallback(ctx, method, ack.Outcome)
	s.logInfo(ctx, "gateway callback handled",
		slog.String("method", string(method)),
		slog.String("orderNo", ack.Result.OrderNo),
		slog.String("outcome", string(ack.Outcome)))
	return ack, nil
}

// PaymentStatus projects the payment leg of an order with instrumentation.
func (s *Service) PaymentStatus(ctx context.Context, orderNo string) (*ports.PaymentStatusView, error) {
	ctx, span := s.startSpan(ctx, "Service.PaymentStatus", attribute.String("order.no", orderNo))
	defer span.End()

	result, err := s.inner.PaymentStatus(ctx, orderNo)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load payment status", slog.String("orderNo", orderNo))
	}
	span.SetAttributes(attribute.String("order.status", string(result.Status)))
	return result, nil
}

// ProcessRefund dispatches a refund with instrumentation.
func (s *Service) ProcessRefund(ctx context.Context, refund domain.RefundOrder) (*domain.RefundResult, error) {
	ctx, span := s.startSpan(ctx, "Service.ProcessRefund",
		attribute.String("order.no", refund.OrderNo),
		attribute.Int64("refund.amount", refund.Amount),
	)
	defer span.End()

	s.logInfo(ctx, "processing refund", slog.String("orderNo", refund.OrderNo), slog.Int64("amount", refund.Amount))
	result, err := s.inner.ProcessRefund(ctx, refund)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to process refund", slog.String("orderNo", refund.OrderNo))
	}
	span.SetAttributes(attribute.String("refund.status", string(result.Status)))
	s.metrics.recordRefund(ctx, result.Status)
	s.logInfo(ctx, "refund processed",
		slog.String("orderNo", refund.OrderNo),
		slog.String("status", string(result.Status)))
	return result, nil
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
	paymentsCreated metric.Int64Counter
	callbacks       metric.Int64Counter
	refunds         metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	paymentsCreated, _ := m.Int64Counter("payments.service.created", metric.WithDescription("Number of payment requests created"))
	callbacks, _ := m.Int64Counter("payments.service.callbacks", metric.WithDescription("Number of gateway callbacks handled"))
	refunds, _ := m.Int64Counter("payments.service.refunds", metric.WithDescription("Number of refund requests processed"))
	return serviceMetrics{
		paymentsCreated: paymentsCreated,
		callbacks:       callbacks,
		refunds:         refunds,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, method domain.Method) {
	addCounter(ctx, m.paymentsCreated, 1, attribute.String("payment.method", string(method)))
}

func (m serviceMetrics) recordCallback(ctx context.Context, method domain.Method, outcome domain.WebhookOutcome) {
	addCounter(ctx, m.callbacks, 1,
		attribute.String("payment.method", string(method)),
		attribute.String("webhook.outcome", string(outcome)),
	)
}

func (m serviceMetrics) recordRefund(ctx context.Context, status domain.RefundStatus) {
	addCounter(ctx, m.refunds, 1, attribute.String("refund.status", string(status)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
