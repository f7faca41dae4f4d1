package handler

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/repository"
)

// OnboardingHandler lets museum owners create and maintain their
// venue profile.  An owner holds one museum: the first POST creates
// it, later POSTs update it in place.
type OnboardingHandler struct {
	Museums *repository.MuseumRepo
	Users   *repository.UserRepo
}

// NewOnboardingHandler constructs an OnboardingHandler.
func NewOnboardingHandler(museums *repository.MuseumRepo, users *repository.UserRepo) *OnboardingHandler {
	if museums == nil || users == nil {
		panic("nil repository passed to NewOnboardingHandler")
	}
	return &OnboardingHandler{Museums: museums, Users: users}
}

// maxPrice is the largest accepted ticket price in whole currency
// units.
const maxPrice = 1_000_000

// priceToCents converts a price in whole currency units to cents,
// rounding to the nearest cent.  Prices like 19.99 have no exact
// float64 representation, so truncation would quietly shave a cent
// off.  Negative or out-of-range prices are rejected.
func priceToCents(price float64) (uint32, bool) {
	if math.IsNaN(price) || price < 0 || price > maxPrice {
		return 0, false
	}
	return uint32(math.Round(price * 100)), true
}

type onboardingBody struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	PhoneNumber    string   `json:"phoneNumber"`
	Email          string   `json:"email"`
	Timings        string   `json:"timings"`
	GoogleMapsLink string   `json:"googleMapsLink"`
	Instagram      string   `json:"instagram"`
	Facebook       string   `json:"facebook"`
	Website        string   `json:"website"`
	About          string   `json:"about"`
	Images         []string `json:"images"`
	TicketDetails  struct {
		IsSubTicketing bool    `json:"isSubTicketing"`
		EntryPrice     float64 `json:"entryPrice"`
		Sections       []struct {
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"sections"`
	} `json:"ticketDetails"`
}

// Upsert handles POST /api/onboarding.
func (h *OnboardingHandler) Upsert(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	if _, err := h.Users.GetByID(c.Request().Context(), ownerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "Museum owner not found")
		}
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	var body onboardingBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "Museum name is required")
	}
	if strings.TrimSpace(body.Address) == "" {
		return fail(c, http.StatusBadRequest, "Address is required")
	}
	if body.TicketDetails.IsSubTicketing && len(body.TicketDetails.Sections) == 0 {
		return fail(c, http.StatusBadRequest, "Sub-ticketing museums need at least one section")
	}
	entryCents, ok := priceToCents(body.TicketDetails.EntryPrice)
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid entry price")
	}

	museum := &model.Museum{
		OwnerID:        ownerID,
		Name:           name,
		Address:        strings.TrimSpace(body.Address),
		City:           strings.TrimSpace(body.City),
		State:          strings.TrimSpace(body.State),
		PhoneNumber:    strings.TrimSpace(body.PhoneNumber),
		Email:          strings.TrimSpace(body.Email),
		Timings:        strings.TrimSpace(body.Timings),
		GoogleMapsLink: strings.TrimSpace(body.GoogleMapsLink),
		Instagram:      strings.TrimSpace(body.Instagram),
		Facebook:       strings.TrimSpace(body.Facebook),
		Website:        strings.TrimSpace(body.Website),
		About:          body.About,
		Images:         body.Images,
		IsSubTicketing: body.TicketDetails.IsSubTicketing,
		// Stored in cents; the API speaks whole currency units.
		EntryPriceCents: entryCents,
	}
	sections := make([]model.Section, 0, len(body.TicketDetails.Sections))
	for _, s := range body.TicketDetails.Sections {
		sname := strings.TrimSpace(s.Name)
		if sname == "" {
			return fail(c, http.StatusBadRequest, "Section name is required")
		}
		cents, ok := priceToCents(s.Price)
		if !ok {
			return fail(c, http.StatusBadRequest, "Invalid section price")
		}
		sections = append(sections, model.Section{Name: sname, PriceCents: cents})
	}

	ctx := c.Request().Context()
	existing, err := h.Museums.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		museum.ID = existing.ID
		if err := h.Museums.Update(ctx, museum, sections); err != nil {
			return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
		}
	case errors.Is(err, repository.ErrMuseumNotFound):
		if err := h.Museums.Create(ctx, museum, sections); err != nil {
			return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
		}
	default:
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	return respond(c, http.StatusOK, "Museum profile saved", echo.Map{"museumId": museum.ID})
}

// Get handles GET /api/onboarding and returns the caller's museum, or
// null when onboarding has not been completed yet.
func (h *OnboardingHandler) Get(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx := c.Request().Context()
	museum, err := h.Museums.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrMuseumNotFound) {
			return respond(c, http.StatusOK, "No museum onboarded yet", echo.Map{"museum": nil})
		}
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	sections, err := h.Museums.SectionsByMuseum(ctx, museum.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	return respond(c, http.StatusOK, "Museum fetched successfully", echo.Map{
		"museum": newMuseumProjection(museum, sections),
	})
}
