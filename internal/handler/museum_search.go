package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zeno-labs/museum-companion/internal/repository"
)

// Search handles GET /api/searchMuseum?query=.  A missing or empty
// query is a validation failure; zero matches is a distinct "no
// results" outcome carrying an empty list, not a hard error.
func (h *MuseumHandler) Search(c echo.Context) error {
	text := strings.TrimSpace(c.QueryParam("query"))
	if text == "" {
		return fail(c, http.StatusBadRequest, "Query parameter is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	items, total, err := h.Museums.Search(c.Request().Context(), repository.MuseumSearchQuery{
		Text:     text,
		Page:     page,
		PageSize: ps,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
	if total == 0 {
		return c.JSON(http.StatusNotFound, envelope{
			Message: "No results found",
			Status:  http.StatusNotFound,
			Success: false,
			Data:    []repository.MuseumSearchRow{},
		})
	}
	return respond(c, http.StatusOK, "Museums fetched successfully", echo.Map{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}
