package application

import (
	"errors"

	apperrors "github.com/wms-platform/coordination-service/pkg/errors"

	"github.com/wms-platform/coordination-service/internal/domain"
)

// taskError maps task domain errors to application errors. Unexpected errors
// are treated as store unavailability so callers can retry with backoff.
func taskError(err error) error {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return apperrors.ErrNotFound("task").Wrap(err)
	case errors.Is(err, domain.ErrTaskAlreadyClaimed),
		errors.Is(err, domain.ErrTaskAlreadyCompleted),
		errors.Is(err, domain.ErrTaskNotClaimedByCaller):
		return apperrors.ErrConflict(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrUnknownTaskKind),
		errors.Is(err, domain.ErrNegativeCountedQty),
		errors.Is(err, domain.ErrNotCountTask):
		return apperrors.ErrValidation(err.Error()).Wrap(err)
	default:
		return apperrors.ErrStoreUnavailable("task store").Wrap(err)
	}
}

// waveError maps wave domain errors to application errors
func waveError(err error) error {
	switch {
	case errors.Is(err, domain.ErrWaveNotFound):
		return apperrors.ErrNotFound("wave").Wrap(err)
	case errors.Is(err, domain.ErrWaveAlreadyReleased):
		return apperrors.ErrConflict(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrWaveHasNoShipments):
		return apperrors.ErrValidation(err.Error()).Wrap(err)
	default:
		return apperrors.ErrStoreUnavailable("wave store").Wrap(err)
	}
}

// shipmentError maps shipment domain errors to application errors
func shipmentError(err error) error {
	switch {
	case errors.Is(err, domain.ErrShipmentNotFound):
		return apperrors.ErrNotFound("shipment").Wrap(err)
	case errors.Is(err, domain.ErrShipmentLineNotFound):
		return apperrors.ErrNotFound("shipment line").Wrap(err)
	case errors.Is(err, domain.ErrShipmentLinesNotPicked),
		errors.Is(err, domain.ErrShipmentNotPacked),
		errors.Is(err, domain.ErrShipmentAlreadyPacked):
		return apperrors.ErrConflict(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrUnknownCarrier):
		return apperrors.ErrValidation(err.Error()).Wrap(err)
	default:
		return apperrors.ErrStoreUnavailable("shipment store").Wrap(err)
	}
}

// ticketError maps ticket domain errors to application errors
func ticketError(err error) error {
	switch {
	case errors.Is(err, domain.ErrTicketNotFound):
		return apperrors.ErrNotFound("ticket").Wrap(err)
	case errors.Is(err, domain.ErrTicketNotOpen),
		errors.Is(err, domain.ErrTicketNotInProgress),
		errors.Is(err, domain.ErrTicketNotResolved),
		errors.Is(err, domain.ErrTicketAlreadyOpen):
		return apperrors.ErrConflict(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrResolutionRequired),
		errors.Is(err, domain.ErrAssigneeRequired),
		errors.Is(err, domain.ErrUnknownTicketType):
		return apperrors.ErrValidation(err.Error()).Wrap(err)
	default:
		return apperrors.ErrStoreUnavailable("ticket store").Wrap(err)
	}
}
