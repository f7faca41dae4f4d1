package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/repository"
)

// Verify handles GET /api/tickets/verify/:ticketId.  Gate staff scan
// the QR code, which resolves here.  An expired ticket is flipped to
// the expired status on the first check past its validity window; the
// status guard in the repository keeps the write from repeating, but
// every later check still reports failure.
func (h *TicketHandler) Verify(c echo.Context) error {
	ref, ok := parseTicketRef(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid Ticket ID")
	}
	ctx := c.Request().Context()
	detail, err := h.Bookings.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return fail(c, http.StatusNotFound, "Ticket not found")
		}
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	switch detail.Status {
	case model.StatusCancelled:
		return fail(c, http.StatusBadRequest, "Ticket has been cancelled")
	case model.StatusExpired:
		return fail(c, http.StatusBadRequest, "Ticket has expired")
	}

	if time.Now().UTC().After(detail.ValidUntil) {
		if err := h.Bookings.MarkExpired(ctx, ref); err != nil {
			return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
		}
		return fail(c, http.StatusBadRequest, "Ticket has expired")
	}

	return respond(c, http.StatusOK, "Ticket is valid", echo.Map{"booking": detail})
}

// Cancel handles POST /api/tickets/:ticketId/cancel.  Only the owner
// of the museum the booking belongs to may cancel it, and only while
// it is still in the booked state.
func (h *TicketHandler) Cancel(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	ref, ok := parseTicketRef(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid Ticket ID")
	}
	err = h.Bookings.CancelForOwner(c.Request().Context(), ref, ownerID)
	switch {
	case err == nil:
		return respond(c, http.StatusOK, "Ticket cancelled", nil)
	case errors.Is(err, repository.ErrBookingNotFound):
		return fail(c, http.StatusNotFound, "Ticket not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, sql.ErrNoRows):
		return fail(c, http.StatusConflict, "Ticket is not in a cancellable state")
	}
	return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
}
