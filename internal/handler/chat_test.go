package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestSSEEmitterCommitsLazily(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	resp := c.Response()
	_ = sseEmitter(resp)

	// Nothing committed until the first chunk, so an early failure can
	// still respond with its own status code.
	require.False(t, resp.Committed)
	require.NoError(t, fail(c, http.StatusBadGateway, "Assistant unavailable"))
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSSEEmitterStreamsChunks(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	resp := c.Response()
	emit := sseEmitter(resp)

	require.NoError(t, emit("Hello"))
	require.True(t, resp.Committed)
	require.NoError(t, emit("[DONE]"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	require.Equal(t, "data: Hello\n\ndata: [DONE]\n\n", rec.Body.String())
}
