package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	paymentactivities "github.com/edumartvn/commerce-api/internal/platform/temporal/activities/payments"
)

// RunPostPaymentSequence executes the ordered side effects of a settled
// payment: invoice, commissions, customer notification. Each activity is
// idempotent so retries cannot double-issue.
func RunPostPaymentSequence(ctx workflow.Context, orderNo string) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("post-payment sequence started", "orderNo", orderNo)

	billingOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	notifyOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, billingOptions), paymentactivities.IssueInvoiceActivityName, orderNo).Get(ctx, nil); err != nil {
		logger.Error("post-payment sequence invoice failed", "orderNo", orderNo, "error", err)
		return err
	}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, billingOptions), paymentactivities.RecordCommissionsActivityName, orderNo).Get(ctx, nil); err != nil {
		logger.Error("post-payment sequence commissions failed", "orderNo", orderNo, "error", err)
		return err
	}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, notifyOptions), paymentactivities.NotifyCustomerActivityName, orderNo).Get(ctx, nil); err != nil {
		logger.Error("post-payment sequence notification failed", "orderNo", orderNo, "error", err)
		return err
	}
	logger.Info("post-payment sequence completed", "orderNo", orderNo)
	return nil
}
