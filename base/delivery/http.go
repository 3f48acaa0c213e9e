package delivery

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
	Code   string             `json:"code,omitempty"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindAuthorization:     http.StatusForbidden,
	domain.KindValidation:        http.StatusBadRequest,
	domain.KindStateConflict:     http.StatusConflict,
	domain.KindValueMismatch:     http.StatusPaymentRequired,
	domain.KindInsufficientFunds: http.StatusPaymentRequired,
	domain.KindNotFound:          http.StatusNotFound,
}

// StatusOf maps an error to the http status a client should see.
func StatusOf(err error) int {
	var ve validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, query.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParams), errors.As(err, &ve):
		return http.StatusBadRequest
	}
	if s, ok := kindStatus[domain.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// MakeJsonResp writes data with status. An error is written as a failure whose
// status is derived from the error unless status is already a failure.
func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	code := ""
	if err, ok := data.(error); ok {
		if status < 400 {
			status = StatusOf(err)
		} else if s := StatusOf(err); s != http.StatusInternalServerError {
			status = s
		}
		code = domain.CodeOf(err)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{Data: data, Status: JsonResponseStatusFail, Code: code})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{Data: data, Status: JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

// BindAndValidate binds path, query and body into p and runs the echo validator.
// Both failures are returned wrapping domain.ErrInvalidParams.
func BindAndValidate(c echo.Context, p interface{}) error {
	if err := c.Bind(p); err != nil {
		return xerrors.Errorf("%v: %w", err, domain.ErrInvalidParams)
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(p); err != nil {
		return xerrors.Errorf("%v: %w", err, domain.ErrInvalidParams)
	}
	return nil
}
