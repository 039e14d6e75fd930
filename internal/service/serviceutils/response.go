package serviceutils

import (
	"github.com/labstack/echo/v4"

	"github.com/locvowork/xlfilecreator/internal/logger"
)

// Response is the JSON envelope of every API answer.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResponseSuccess writes a successful envelope.
func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// ResponseError logs err and writes a failed envelope.
func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := Response{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		logger.ErrorErr(c.Request().Context(), err, "%s", message)
	}
	return c.JSON(status, resp)
}
