package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-borrowing/library/internal/errs"
	"github.com/Astemirdum/library-borrowing/library/internal/model"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	msgInternal = "internal error"
)

type response struct {
	Status     string            `json:"status"`
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func success(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, response{Status: statusSuccess, Message: message, Data: data})
}

func successPage(c echo.Context, message string, data interface{}, p model.Pagination) error {
	return c.JSON(http.StatusOK, response{Status: statusSuccess, Message: message, Data: data, Pagination: &p})
}

// errorHandler renders every error in the error envelope. Domain not found and
// conflict errors are reported as 400 on these routes.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := h.httpError(err)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Status: statusError, Message: msg})
	}
	if err != nil {
		h.log.Error("write error response", zap.Error(err))
	}
}

func (h *Handler) httpError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			h.log.Debug("http error", zap.Error(he.Internal))
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	msg, ok := errs.Message(err)
	switch {
	case !ok:
	case errors.Is(err, errs.ErrAuth):
		return http.StatusUnauthorized, msg
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, msg
	}
	h.log.Error("internal", zap.Error(err))
	return http.StatusInternalServerError, msgInternal
}
