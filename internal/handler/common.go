package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT claims decode numbers as float64, so several source
// types are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// optionalUserID is getUserID for routes that accept anonymous
// callers: it returns nil instead of an error when no identity is
// present.
func optionalUserID(c echo.Context) *uint64 {
	id, err := getUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// parseMuseumID validates the :museumId path parameter.  Malformed
// identifiers are rejected before any database access.
func parseMuseumID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("museumId"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// parseTicketRef validates the :ticketId path parameter, which is a
// booking reference UUID.
func parseTicketRef(c echo.Context) (string, bool) {
	ref := c.Param("ticketId")
	if _, err := uuid.Parse(ref); err != nil {
		return "", false
	}
	return ref, true
}
