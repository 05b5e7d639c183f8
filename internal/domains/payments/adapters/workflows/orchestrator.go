package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	billingports "github.com/edumartvn/commerce-api/internal/domains/billing/ports"
	ordersports "github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
	paymentworkflows "github.com/edumartvn/commerce-api/internal/platform/temporal/workflows/payments"
)

var (
	_ ports.SideEffectOrchestrator = (*TemporalPostPayment)(nil)
	_ ports.SideEffectOrchestrator = (*InlinePostPayment)(nil)
)

// TemporalPostPayment starts the post-payment workflow on a Temporal cluster.
type TemporalPostPayment struct {
	client    client.Client
	taskQueue string
}

// NewTemporalPostPayment wires a Temporal client into the orchestrator.
func NewTemporalPostPayment(c client.Client) *TemporalPostPayment {
	return &TemporalPostPayment{client: c, taskQueue: paymentworkflows.PostPaymentTaskQueue}
}

// RunPostPayment starts the workflow and returns without waiting for it: the
// worker owns completion, the webhook ack must not. The workflow ID derives
// from the order number and transaction id so a repeated webhook delivery
// attaches to the already-started run instead of spawning a second one.
func (o *TemporalPostPayment) RunPostPayment(ctx context.Context, input ports.PostPaymentInput) error {
	if o == nil || o.client == nil {
		return errors.New("temporal post-payment orchestrator not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        buildPostPaymentWorkflowID(input),
		TaskQueue: o.taskQueue,
	}
	_, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		paymentworkflows.PostPaymentWorkflow,
		paymentworkflows.PostPaymentWorkflowInput{
			OrderNo:       input.OrderNo,
			TransactionID: input.TransactionID,
			TraceID:       workflowTraceID(ctx),
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			// A previous delivery already kicked off the run.
			return nil
		}
		return err
	}
	return nil
}

// InlinePostPayment runs the side effects in-process without Temporal, useful
// for dev setups without a cluster. Steps run on their own goroutine so the
// webhook ack never waits on them.
type InlinePostPayment struct {
	billing  billingports.Service
	orders   ordersports.Service
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewInlinePostPayment wraps the billing collaborators for in-process
// execution.
func NewInlinePostPayment(billing billingports.Service, orders ordersports.Service, notifier ports.Notifier, logger *slog.Logger) *InlinePostPayment {
	if logger == nil {
		logger = slog.Default()
	}
	return &InlinePostPayment{billing: billing, orders: orders, notifier: notifier, logger: logger}
}

// RunPostPayment dispatches the same steps as the workflow and returns
// immediately. The detached context keeps the steps alive after the webhook
// request that triggered them is done.
func (o *InlinePostPayment) RunPostPayment(ctx context.Context, input ports.PostPaymentInput) error {
	if o == nil || o.billing == nil {
		return errors.New("inline post-payment orchestrator not configured")
	}
	go o.run(context.WithoutCancel(ctx), input)
	return nil
}

func (o *InlinePostPayment) run(ctx context.Context, input ports.PostPaymentInput) {
	if err := o.runSteps(ctx, input); err != nil {
		o.logger.LogAttrs(ctx, slog.LevelError, "post-payment side effects failed",
			slog.String("orderNo", input.OrderNo),
			slog.String("transactionId", input.TransactionID),
			slog.String("error", err.Error()))
	}
}

func (o *InlinePostPayment) runSteps(ctx context.Context, input ports.PostPaymentInput) error {
	if _, err := o.billing.IssueInvoice(ctx, input.OrderNo); err != nil {
		return fmt.Errorf("issue invoice: %w", err)
	}
	if _, err := o.billing.RecordCommissions(ctx, input.OrderNo); err != nil {
		return fmt.Errorf("record commissions: %w", err)
	}
	if o.notifier != nil && o.orders != nil {
		order, err := o.orders.GetOrder(ctx, input.OrderNo)
		if err != nil {
			return fmt.Errorf("load order for notification: %w", err)
		}
		if err := o.notifier.PaymentSucceeded(ctx, order); err != nil {
			return fmt.Errorf("notify customer: %w", err)
		}
	}
	return nil
}

func buildPostPaymentWorkflowID(input ports.PostPaymentInput) string {
	sum := sha256.Sum256([]byte(input.TransactionID))
	// First 16 hex chars keep workflow IDs readable while remaining deterministic.
	return fmt.Sprintf("post-payment-%s-%s", input.OrderNo, hex.EncodeToString(sum[:8]))
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return spanCtx.TraceID().String()
}
