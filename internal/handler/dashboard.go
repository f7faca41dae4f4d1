package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zeno-labs/museum-companion/internal/repository"
)

// DashboardHandler serves the owner sales dashboard.
type DashboardHandler struct {
	Museums   *repository.MuseumRepo
	Dashboard *repository.DashboardRepo
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(museums *repository.MuseumRepo, dashboard *repository.DashboardRepo) *DashboardHandler {
	if museums == nil || dashboard == nil {
		panic("nil repository passed to NewDashboardHandler")
	}
	return &DashboardHandler{Museums: museums, Dashboard: dashboard}
}

// recentBookingsLimit caps the dashboard's recent-bookings list.
const recentBookingsLimit = 10

// Summary handles GET /api/dashboard/:museumId.  The caller must own
// the museum.  Every aggregate returns a zero-valued default instead
// of failing when the museum has no matching bookings.
func (h *DashboardHandler) Summary(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	museumID, ok := parseMuseumID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid museum ID")
	}
	ctx := c.Request().Context()
	museum, err := h.Museums.GetByID(ctx, museumID)
	if err != nil {
		if errors.Is(err, repository.ErrMuseumNotFound) {
			return fail(c, http.StatusNotFound, "Museum not found")
		}
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	if museum.OwnerID != ownerID {
		return fail(c, http.StatusForbidden, "Forbidden")
	}

	now := time.Now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	peakMonth, err := h.Dashboard.PeakHourSince(ctx, museumID, startOfMonth)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	peakDay, err := h.Dashboard.PeakHourSince(ctx, museumID, startOfDay)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	recent, err := h.Dashboard.RecentBookings(ctx, museumID, recentBookingsLimit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	sales, err := h.Dashboard.SalesSince(ctx, museumID, startOfMonth)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	return respond(c, http.StatusOK, "Data fetched successfully", echo.Map{
		"peakHourMonth":   peakMonth,
		"peakHourDay":     peakDay,
		"recentBookings":  recent,
		"totalSalesMonth": sales,
	})
}
