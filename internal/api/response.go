package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the envelope of every API reply.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// DataResponse writes data with the given status code.
func DataResponse(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, Response{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

func SuccessResponse(c echo.Context, data any) error {
	return DataResponse(c, http.StatusOK, data)
}

func BadRequestResponse(c echo.Context, data any) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

func ConflictResponse(c echo.Context, msg string) error {
	return DataResponse(c, http.StatusConflict, []ValidationError{{Code: "ERR_CONFLICT", Message: msg}})
}

func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, "Something went wrong")
}
