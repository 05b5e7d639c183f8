package application

import (
	"errors"

	"github.com/edumartvn/commerce-api/internal/domains/orders/domain"
	"github.com/edumartvn/commerce-api/internal/domains/orders/ports"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

// mapDomainError re-wraps aggregate rule violations into the taxonomy so
// callers can branch on kind instead of matching sentinel errors.
func mapDomainError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyItems),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidItemType),
		errors.Is(err, domain.ErrNegativeTotal):
		return apperrors.Wrap(apperrors.KindValidation, op, err, "order input rejected").
			WithUser("The order could not be created: " + err.Error() + ".")
	case errors.Is(err, domain.ErrNotCancellable):
		return apperrors.Wrap(apperrors.KindConflict, op, err, "order is past the point of cancellation").
			WithUser("This order can no longer be cancelled.")
	case errors.Is(err, domain.ErrNotRefundable):
		return apperrors.Wrap(apperrors.KindConflict, op, err, "order is not refundable in its current state").
			WithUser("This order is not eligible for a refund.")
	case errors.Is(err, domain.ErrTransactionMismatch):
		return apperrors.Wrap(apperrors.KindConflict, op, err, "settled order reported with a different transaction id")
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperrors.Wrap(apperrors.KindConflict, op, err, "order status does not allow this operation")
	default:
		return apperrors.Wrap(apperrors.KindUnknown, op, err, "order operation failed")
	}
}

// mapRepoError re-wraps store failures, keeping NOT_FOUND and CONFLICT
// distinguishable from infrastructure faults.
func mapRepoError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return apperrors.Wrap(apperrors.KindNotFound, op, err, "order not found")
	case errors.Is(err, ports.ErrDuplicateOrderNo):
		return apperrors.Wrap(apperrors.KindConflict, op, err, "order number collision")
	case errors.Is(err, ports.ErrStaleOrder):
		return apperrors.Wrap(apperrors.KindConflict, op, err, "order changed concurrently")
	default:
		return apperrors.Wrap(apperrors.KindStorage, op, err, "order store failure")
	}
}
