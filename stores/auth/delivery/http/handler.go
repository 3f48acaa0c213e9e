package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/delivery"
	"github.com/mochi-xyz/market/base/ethereum"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/middleware"
)

type authHandler struct {
	auth domain.AuthUsecase
}

func New(e *echo.Echo, auth domain.AuthUsecase) {
	handler := &authHandler{auth: auth}
	g := e.Group("/auth")
	g.GET("/nonce/:address", handler.nonce, middleware.IsValidAddress("address"))
	g.POST("/sign", handler.sign)
}

// nonce issues a nonce and the message the wallet has to sign with it.
func (h *authHandler) nonce(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := domain.Address(c.Param("address"))

	nonce, err := h.auth.Nonce(ctx, address)
	if err != nil {
		ctx.WithField("err", err).Error("auth.Nonce failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := struct {
		Nonce   string `json:"nonce"`
		Message string `json:"message"`
	}{
		Nonce:   nonce,
		Message: string(ethereum.SignInMessage(string(address), nonce)),
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *authHandler) sign(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address   string `json:"address" validate:"required,eth_addr"`
		Signature string `json:"signature" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Warn("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	tkn, err := h.auth.SignToken(ctx, domain.Address(p.Address), p.Signature)
	if err != nil {
		ctx.WithField("err", err).Warn("auth.SignToken failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, tkn)
}
