package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/queue"
	"github.com/zeno-labs/museum-companion/internal/repository"
	queue_publisher "github.com/zeno-labs/museum-companion/internal/service"
	"github.com/zeno-labs/museum-companion/internal/ticket"
)

// TicketHandler groups the dependencies for booking, verification and
// the visitor's booking list.  Authentication and role checks happen
// in middleware; handlers only read the injected identity.
type TicketHandler struct {
	Issuer   *ticket.Issuer
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
}

// NewTicketHandler constructs a TicketHandler. All dependencies must
// be non-nil.
func NewTicketHandler(issuer *ticket.Issuer, bookings *repository.BookingRepo, users *repository.UserRepo) *TicketHandler {
	if issuer == nil || bookings == nil || users == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Issuer: issuer, Bookings: bookings, Users: users}
}

// Book handles POST /api/tickets/book-ticket.  The body names a
// museum, the attendees, and per-section quantities; all prices come
// from the museum's stored section prices, never from the request.
func (h *TicketHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	var body struct {
		MuseumID  string `json:"museumId"`
		Attendees []struct {
			Name     string `json:"name"`
			AgeGroup string `json:"ageGroup"`
		} `json:"attendees"`
		Sections []ticket.SectionRequest `json:"sections"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	museumID, err := strconv.ParseUint(strings.TrimSpace(body.MuseumID), 10, 64)
	if err != nil || museumID == 0 {
		return fail(c, http.StatusBadRequest, "Invalid Museum ID")
	}
	attendees := make([]model.Attendee, 0, len(body.Attendees))
	for _, a := range body.Attendees {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return fail(c, http.StatusBadRequest, "Attendee name is required")
		}
		if !model.ValidAgeGroup(a.AgeGroup) {
			return fail(c, http.StatusBadRequest, "Unknown attendee age group")
		}
		attendees = append(attendees, model.Attendee{Name: name, AgeGroup: a.AgeGroup})
	}
	for _, s := range body.Sections {
		if s.Quantity > ticket.MaxQuantity {
			return fail(c, http.StatusBadRequest, "Quantity exceeds the per-booking limit")
		}
	}

	ctx := c.Request().Context()
	purchaser := ""
	if u, err := h.Users.GetByID(ctx, userID); err == nil {
		purchaser = u.Name
	}

	result, err := h.Issuer.IssueSections(ctx, museumID, &userID, purchaser, attendees, body.Sections, model.SourceAPI)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMuseumNotFound):
			return fail(c, http.StatusNotFound, "Museum not found")
		case errors.Is(err, repository.ErrSectionMismatch):
			return fail(c, http.StatusBadRequest, "Section does not belong to this museum")
		case errors.Is(err, ticket.ErrNoAttendees),
			errors.Is(err, ticket.ErrNoSections),
			errors.Is(err, ticket.ErrBadQuantity),
			errors.Is(err, ticket.ErrTotalTooLarge):
			return fail(c, http.StatusBadRequest, err.Error())
		}
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	publishBookingCreated(result.Booking)

	return respond(c, http.StatusOK, "Ticket booked successfully", echo.Map{
		"bookingId":  result.Booking.Reference,
		"totalCost":  float64(result.Booking.TotalCostCents) / 100.0,
		"validUntil": result.Booking.ValidUntil.Format(time.RFC3339),
		"pdfUrl":     result.PDFURL,
	})
}

// publishBookingCreated emits the booking.created event for a booking
// from either flow.  Failures are logged and swallowed; the booking
// already committed.
func publishBookingCreated(b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ev := queue.BookingCreatedEvent{
		Reference:      b.Reference,
		MuseumID:       b.MuseumID,
		TotalCostCents: b.TotalCostCents,
		Source:         b.Source,
		ValidUntil:     b.ValidUntil.UTC().Format(time.RFC3339),
		CreatedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.UserID != nil {
		ev.UserID = *b.UserID
	}
	if err := queue_publisher.PublishBookingCreated(ctx, ev); err != nil {
		log.Printf("booking: publish event failed for %s: %v", b.Reference, err)
	}
}

// ListMine handles GET /api/bookings and returns the caller's
// bookings, newest first.
func (h *TicketHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	return respond(c, http.StatusOK, "Bookings fetched successfully", echo.Map{"items": details})
}
