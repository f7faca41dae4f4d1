package handler

import "github.com/labstack/echo/v4"

// envelope is the uniform JSON body every API endpoint returns.  Data
// is set on success, Error on failure; the HTTP status is mirrored in
// the body so frontend code can inspect one place.
type envelope struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// respond writes a success envelope.
func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, envelope{Message: message, Status: status, Success: true, Data: data})
}

// fail writes a failure envelope.  detail is optional diagnostic
// information attached under "error".
func fail(c echo.Context, status int, message string, detail ...interface{}) error {
	env := envelope{Message: message, Status: status, Success: false}
	if len(detail) > 0 {
		env.Error = detail[0]
	}
	return c.JSON(status, env)
}
