package application

import (
	"context"
	"fmt"
	"log/slog"

	ordersdomain "github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

// ProcessRefund checks eligibility, dispatches to the gateway that took the
// payment, and on success moves the order to refunded with best-effort
// commission reversal and notification. A gateway decline leaves the order
// untouched and comes back as a failed result, not an error.
func (s *Service) ProcessRefund(ctx context.Context, refund domain.RefundOrder) (*domain.RefundResult, error) {
	const op = "payments.ProcessRefund"
	order, err := s.orders.GetOrder(ctx, refund.OrderNo)
	if err != nil {
		return nil, err
	}
	if order.Status != ordersdomain.StatusPaid && order.Status != ordersdomain.StatusCompleted {
		return nil, apperrors.New(apperrors.KindConflict, op,
			fmt.Sprintf("order %s is %s, only paid or completed orders can be refunded", order.OrderNo, order.Status)).
			WithUser("This order cannot be refunded.")
	}
	// The window runs from order creation, not settlement: an old order that
	// only settled recently is still past its refund period.
	if s.now().Sub(order.CreatedAt) > s.refundWindow {
		return nil, apperrors.New(apperrors.KindValidation, op,
			fmt.Sprintf("order %s is outside the %d-day refund window", order.OrderNo, int(s.refundWindow.Hours()/24))).
			WithUser("The refund period for this order has expired.")
	}
	if refund.Amount == 0 {
		refund.Amount = order.Total
	}
	if refund.Amount < 0 || refund.Amount > order.Total {
		return nil, apperrors.New(apperrors.KindValidation, op,
			fmt.Sprintf("refund amount %d exceeds order total %d", refund.Amount, order.Total))
	}
	method := domain.Method(order.PaymentMethod)
	gateway, ok := s.gateways[method]
	if !ok {
		return nil, apperrors.New(apperrors.KindValidation, op,
			fmt.Sprintf("no gateway registered for recorded payment method %q", order.PaymentMethod))
	}
	refund.Reference = order.PaymentReference
	refund.TransactionID = order.TransactionID

	if err := gateway.Refund(ctx, refund); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "gateway declined refund",
			slog.String("orderNo", refund.OrderNo),
			slog.String("method", string(method)),
			slog.String("error", err.Error()))
		s.recordRefundAudit(ctx, method, refund, domain.WebhookError, err.Error())
		return &domain.RefundResult{
			OrderNo:     refund.OrderNo,
			Amount:      refund.Amount,
			Status:      domain.RefundFailed,
			Message:     userFacingRefundMessage(err),
			ProcessedAt: s.now(),
		}, nil
	}

	if _, err := s.orders.MarkRefunded(ctx, refund.OrderNo, refund.Reason); err != nil {
		// The gateway already returned the money; surface the storage
		// failure so the state mismatch gets operator attention.
		s.logger.LogAttrs(ctx, slog.LevelError, "refund settled at gateway but order update failed",
			slog.String("orderNo", refund.OrderNo),
			slog.String("error", err.Error()))
		return nil, err
	}
	s.reverseCommissions(ctx, refund.OrderNo)
	s.notifyRefund(ctx, refund)
	s.recordRefundAudit(ctx, method, refund, domain.WebhookConfirmed, "refund completed")

	return &domain.RefundResult{
		OrderNo:     refund.OrderNo,
		Amount:      refund.Amount,
		Status:      domain.RefundCompleted,
		Message:     "refund completed",
		ProcessedAt: s.now(),
	}, nil
}

func (s *Service) reverseCommissions(ctx context.Context, orderNo string) {
	if s.commissions == nil {
		return
	}
	if err := s.commissions.ReverseCommissions(ctx, orderNo); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "commission reversal failed",
			slog.String("orderNo", orderNo),
			slog.String("error", err.Error()))
	}
}

func (s *Service) notifyRefund(ctx context.Context, refund domain.RefundOrder) {
	if s.notifier == nil {
		return
	}
	order, err := s.orders.GetOrder(ctx, refund.OrderNo)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "refund notification skipped, order reload failed",
			slog.String("orderNo", refund.OrderNo),
			slog.String("error", err.Error()))
		return
	}
	if err := s.notifier.RefundProcessed(ctx, order, refund.Amount); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "refund notification failed",
			slog.String("orderNo", refund.OrderNo),
			slog.String("error", err.Error()))
	}
}

func (s *Service) recordRefundAudit(ctx context.Context, method domain.Method, refund domain.RefundOrder, outcome domain.WebhookOutcome, message string) {
	if s.audit == nil {
		return
	}
	entry := domain.WebhookEntry{
		Method:     method,
		OrderNo:    refund.OrderNo,
		Outcome:    outcome,
		Message:    message,
		RawPayload: fmt.Sprintf("refund&amount=%d&requestedBy=%s", refund.Amount, refund.RequestedBy),
		ReceivedAt: s.now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "refund audit record failed",
			slog.String("orderNo", refund.OrderNo),
			slog.String("error", err.Error()))
	}
}

// userFacingRefundMessage keeps gateway failure detail out of the message
// shown to the requester.
func userFacingRefundMessage(err error) string {
	if appErr := apperrors.AsError(err); appErr != nil && apperrors.IsKind(err, apperrors.KindNetwork) {
		return "The payment provider could not be reached. Please try again later."
	}
	return "The payment provider declined the refund."
}
