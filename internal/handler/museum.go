package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zeno-labs/museum-companion/internal/model"
	"github.com/zeno-labs/museum-companion/internal/repository"
)

// MuseumHandler serves the public museum directory.
type MuseumHandler struct {
	Museums *repository.MuseumRepo
}

// NewMuseumHandler constructs a MuseumHandler.
func NewMuseumHandler(museums *repository.MuseumRepo) *MuseumHandler {
	if museums == nil {
		panic("nil repository passed to NewMuseumHandler")
	}
	return &MuseumHandler{Museums: museums}
}

// museumProjection is the public view of a museum: everything a
// visitor page needs, nothing owner-facing.
type museumProjection struct {
	ID             uint64            `json:"id"`
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	City           string            `json:"city"`
	State          string            `json:"state"`
	PhoneNumber    string            `json:"phoneNumber"`
	Email          string            `json:"email"`
	Timings        string            `json:"timings"`
	GoogleMapsLink string            `json:"googleMapsLink"`
	Socials        map[string]string `json:"socials"`
	Images         []string          `json:"images"`
	About          string            `json:"about"`
	IsSubTicketing bool              `json:"isSubTicketing"`
	EntryPrice     float64           `json:"entryPrice"`
	Sections       []sectionView     `json:"sections"`
}

type sectionView struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Get handles GET /api/museums/:museumId and returns the public
// projection with ticketing sections joined in.
func (h *MuseumHandler) Get(c echo.Context) error {
	museumID, ok := parseMuseumID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "Invalid Museum ID")
	}
	ctx := c.Request().Context()
	m, err := h.Museums.GetByID(ctx, museumID)
	if err != nil {
		if errors.Is(err, repository.ErrMuseumNotFound) {
			return fail(c, http.StatusNotFound, "Museum not found")
		}
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	sections, err := h.Museums.SectionsByMuseum(ctx, museumID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	proj := newMuseumProjection(m, sections)
	return respond(c, http.StatusOK, "Museum details fetched successfully", proj)
}

// newMuseumProjection flattens a museum row and its sections into the
// API shape shared by the public directory and owner onboarding.
func newMuseumProjection(m *model.Museum, sections []model.Section) museumProjection {
	proj := museumProjection{
		ID:             m.ID,
		Name:           m.Name,
		Address:        m.Address,
		City:           m.City,
		State:          m.State,
		PhoneNumber:    m.PhoneNumber,
		Email:          m.Email,
		Timings:        m.Timings,
		GoogleMapsLink: m.GoogleMapsLink,
		Socials: map[string]string{
			"instagram": m.Instagram,
			"facebook":  m.Facebook,
			"website":   m.Website,
		},
		Images:         m.Images,
		About:          m.About,
		IsSubTicketing: m.IsSubTicketing,
		EntryPrice:     float64(m.EntryPriceCents) / 100.0,
		Sections:       make([]sectionView, 0, len(sections)),
	}
	for _, s := range sections {
		proj.Sections = append(proj.Sections, sectionView{
			ID:    s.ID,
			Name:  s.Name,
			Price: float64(s.PriceCents) / 100.0,
		})
	}
	return proj
}
