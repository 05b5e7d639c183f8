package payments

import (
	"go.temporal.io/sdk/workflow"

	"github.com/edumartvn/commerce-api/internal/platform/temporal/sequences"
)

const (
	// PostPaymentWorkflowName is the public identifier for registering the workflow.
	PostPaymentWorkflowName = "payments.workflows.PostPayment"
	// PostPaymentTaskQueue is the queue consumed by the worker processing payment side effects.
	PostPaymentTaskQueue = "POST_PAYMENT"
)

// PostPaymentWorkflowInput captures the settlement whose side effects run.
type PostPaymentWorkflowInput struct {
	OrderNo       string
	TransactionID string
	TraceID       string
}

// PostPaymentWorkflow orchestrates the side effects of a settled payment.
func PostPaymentWorkflow(ctx workflow.Context, input PostPaymentWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("PostPaymentWorkflow started", withTraceID(input.TraceID, "orderNo", input.OrderNo, "transactionId", input.TransactionID)...)
	if err := sequences.RunPostPaymentSequence(ctx, input.OrderNo); err != nil {
		logger.Error("PostPaymentWorkflow failed", withTraceID(input.TraceID, "orderNo", input.OrderNo, "error", err)...)
		return err
	}
	logger.Info("PostPaymentWorkflow completed", withTraceID(input.TraceID, "orderNo", input.OrderNo)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
