package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetUserID(t *testing.T) {
	c := newContext(t)

	_, err := getUserID(c)
	require.Error(t, err)

	// JWT claims arrive as float64.
	c.Set("user_id", float64(42))
	id, err := getUserID(c)
	require.NoError(t, err)
	require.Equal(t, uint64(42), id)

	c.Set("user_id", "17")
	id, err = getUserID(c)
	require.NoError(t, err)
	require.Equal(t, uint64(17), id)

	c.Set("user_id", "not-a-number")
	_, err = getUserID(c)
	require.Error(t, err)
}

func TestOptionalUserID(t *testing.T) {
	c := newContext(t)
	require.Nil(t, optionalUserID(c))

	c.Set("user_id", float64(9))
	id := optionalUserID(c)
	require.NotNil(t, id)
	require.Equal(t, uint64(9), *id)
}

func TestParseMuseumID(t *testing.T) {
	c := newContext(t)
	c.SetParamNames("museumId")

	c.SetParamValues("15")
	id, ok := parseMuseumID(c)
	require.True(t, ok)
	require.Equal(t, uint64(15), id)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		c.SetParamValues(bad)
		_, ok := parseMuseumID(c)
		require.False(t, ok, "museumId %q should be rejected", bad)
	}
}

func TestParseTicketRef(t *testing.T) {
	c := newContext(t)
	c.SetParamNames("ticketId")

	c.SetParamValues("6a0f2f83-9a31-44bd-a1b2-57b7f5f5a0fd")
	ref, ok := parseTicketRef(c)
	require.True(t, ok)
	require.Equal(t, "6a0f2f83-9a31-44bd-a1b2-57b7f5f5a0fd", ref)

	for _, bad := range []string{"", "123", "not-a-uuid", "6a0f2f83-9a31-44bd-a1b2"} {
		c.SetParamValues(bad)
		_, ok := parseTicketRef(c)
		require.False(t, ok, "ticketId %q should be rejected", bad)
	}
}
