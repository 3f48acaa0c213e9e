package delivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/service/query"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrCallerNotSeller, http.StatusForbidden},
		{xerrors.Errorf("leg 1: %w", domain.ErrAmountIsZero), http.StatusBadRequest},
		{domain.ErrReentrantCall, http.StatusConflict},
		{domain.ErrValueNotEqualPrice, http.StatusPaymentRequired},
		{domain.ErrTransferAmountExceedsAllowance, http.StatusPaymentRequired},
		{domain.ErrSellOrderNotFound, http.StatusNotFound},
		{query.ErrNotFound, http.StatusNotFound},
		{xerrors.Errorf("bad: %w", domain.ErrInvalidParams), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, StatusOf(tc.err), tc.err.Error())
	}
}

func TestMakeJsonResp(t *testing.T) {
	req := require.New(t)
	e := echo.New()

	rec := httptest.NewRecorder()
	req.NoError(MakeJsonResp(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), http.StatusOK, xerrors.Errorf("buy: %w", domain.ErrSellOrderNotActive)))
	req.Equal(http.StatusConflict, rec.Code)
	res := JsonResponse{}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	req.Equal(JsonResponseStatusFail, res.Status)
	req.Equal("SELL_ORDER_NOT_ACTIVE", res.Code)

	rec = httptest.NewRecorder()
	req.NoError(MakeJsonResp(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), http.StatusUnauthorized, errors.New("no token")))
	req.Equal(http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req.NoError(MakeJsonResp(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), http.StatusOK, 3))
	req.Equal(http.StatusOK, rec.Code)
	req.JSONEq(`{"data":3,"status":"success"}`, rec.Body.String())
}
