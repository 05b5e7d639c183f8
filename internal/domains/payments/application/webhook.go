package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	"github.com/edumartvn/commerce-api/internal/domains/payments/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

// signatureParams are stripped from audit payloads so secrets-adjacent
// material never lands in the log.
var signatureParams = map[string]bool{
	"signature":          true,
	"vnp_SecureHash":     true,
	"vnp_SecureHashType": true,
}

// HandleCallback is the shared verification path for both the async notify
// endpoint and the browser return endpoint of every gateway. The ack policy
// is asymmetric: an unverifiable payload is rejected without touching the
// order, while side-effect failures after a verified settlement still ack
// success to stop gateway retries.
func (s *Service) HandleCallback(ctx context.Context, method domain.Method, params map[string]string) (*ports.CallbackAck, error) {
	const op = "payments.HandleCallback"
	gateway, ok := s.gateways[method]
	if !ok {
		return nil, apperrors.New(apperrors.KindValidation, op,
			fmt.Sprintf("unsupported payment method %q", method))
	}
	result, err := gateway.VerifyCallback(params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPayment, op, err, "verify callback")
	}
	ack := &ports.CallbackAck{Result: *result}

	if !result.Valid {
		ack.Outcome = domain.WebhookInvalid
		s.recordWebhook(ctx, method, result, ack.Outcome, params)
		return ack, nil
	}

	if !result.Success {
		order, err := s.orders.MarkPaymentFailed(ctx, result.OrderNo,
			fmt.Sprintf("payment failed at gateway: %s (code %s)", result.Message, result.ResponseCode))
		ack.Outcome = webhookOutcomeForError(err, domain.WebhookFailed)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failure callback could not be applied",
				slog.String("orderNo", result.OrderNo),
				slog.String("method", string(method)),
				slog.String("error", err.Error()))
		}
		ack.Order = order
		s.recordWebhook(ctx, method, result, ack.Outcome, params)
		return ack, nil
	}

	if result.Amount > 0 {
		order, err := s.orders.GetOrder(ctx, result.OrderNo)
		if err != nil {
			ack.Outcome = webhookOutcomeForError(err, domain.WebhookError)
			s.recordWebhook(ctx, method, result, ack.Outcome, params)
			return ack, nil
		}
		// A verified signature with the wrong amount is a tampered or
		// misrouted delivery: never settle on it.
		if result.Amount != order.Total {
			ack.Outcome = domain.WebhookAmountMismatch
			s.logger.LogAttrs(ctx, slog.LevelWarn, "callback amount does not match order total",
				slog.String("orderNo", result.OrderNo),
				slog.String("method", string(method)),
				slog.Int64("callbackAmount", result.Amount),
				slog.Int64("orderTotal", order.Total))
			s.recordWebhook(ctx, method, result, ack.Outcome, params)
			return ack, nil
		}
	}

	confirmation, err := s.orders.ConfirmPayment(ctx, result.OrderNo, result.TransactionID, string(method))
	if err != nil {
		ack.Outcome = webhookOutcomeForError(err, domain.WebhookError)
		s.logger.LogAttrs(ctx, slog.LevelError, "success callback could not settle order",
			slog.String("orderNo", result.OrderNo),
			slog.String("transactionId", result.TransactionID),
			slog.String("method", string(method)),
			slog.String("error", err.Error()))
		s.recordWebhook(ctx, method, result, ack.Outcome, params)
		return ack, nil
	}
	ack.Order = confirmation.Order
	if confirmation.Duplicate {
		// Out-of-order return/notify delivery: the first one settled the
		// order, this one is a no-op.
		ack.Outcome = domain.WebhookDuplicate
		s.recordWebhook(ctx, method, result, ack.Outcome, params)
		return ack, nil
	}
	ack.Outcome = domain.WebhookConfirmed
	s.recordWebhook(ctx, method, result, ack.Outcome, params)
	s.runPostPayment(ctx, result.OrderNo, result.TransactionID)
	return ack, nil
}

// runPostPayment kicks off invoice, commissions, and notification. Failures
// are logged distinctly and retried out-of-band; they never fail the ack.
func (s *Service) runPostPayment(ctx context.Context, orderNo, transactionID string) {
	if s.sideEffects == nil {
		return
	}
	input := ports.PostPaymentInput{OrderNo: orderNo, TransactionID: transactionID}
	if err := s.sideEffects.RunPostPayment(ctx, input); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "post-payment side effects failed",
			slog.String("orderNo", orderNo),
			slog.String("transactionId", transactionID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) recordWebhook(ctx context.Context, method domain.Method, result *domain.CallbackResult, outcome domain.WebhookOutcome, params map[string]string) {
	if s.audit == nil {
		return
	}
	entry := domain.WebhookEntry{
		Method:     method,
		OrderNo:    result.OrderNo,
		Outcome:    outcome,
		Message:    result.Message,
		RawPayload: redactedPayload(params),
		ReceivedAt: s.now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "webhook audit record failed",
			slog.String("orderNo", result.OrderNo),
			slog.String("outcome", string(outcome)),
			slog.String("error", err.Error()))
	}
}

func webhookOutcomeForError(err error, fallback domain.WebhookOutcome) domain.WebhookOutcome {
	switch {
	case err == nil:
		return fallback
	case apperrors.IsKind(err, apperrors.KindNotFound):
		return domain.WebhookOrderNotFound
	default:
		return domain.WebhookError
	}
}

// redactedPayload renders the delivery as a sorted key=value string with the
// signature fields removed.
func redactedPayload(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if signatureParams[key] {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}
	return strings.Join(pairs, "&")
}
