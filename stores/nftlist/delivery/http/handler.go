package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/delivery"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/nftlist"
	authMiddleware "github.com/mochi-xyz/market/stores/auth/delivery/http/middleware"
)

type handler struct {
	nftList nftlist.Usecase
}

func New(e *echo.Echo, nftList nftlist.Usecase, auth *authMiddleware.AuthMiddleware) {
	h := &handler{nftList: nftList}

	g := e.Group("/nfts")
	g.GET("/count", h.count)
	g.GET("/accepted", h.accepted)
	g.GET("/:address", h.info)
	g.POST("", h.register, auth.Auth())
	g.POST("/:address/accept", h.accept, auth.Auth(), auth.IsAdmin())
	g.POST("/:address/revoke", h.revoke, auth.Auth(), auth.IsAdmin())
}

type addressParam struct {
	Address string `param:"address" validate:"eth_addr"`
}

func (h *handler) count(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.nftList.GetNFTCount(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) accepted(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.nftList.GetAcceptedNFTs(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) info(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := addressParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.nftList.GetNFTInfo(ctx, domain.Address(p.Address))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address   string `json:"address" validate:"required,eth_addr"`
		IsERC1155 bool   `json:"isERC1155"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.nftList.RegisterNFT(ctx, authMiddleware.Caller(c), domain.Address(p.Address), p.IsERC1155); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, p.Address)
}

func (h *handler) accept(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := addressParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.nftList.AcceptNFT(ctx, authMiddleware.Caller(c), domain.Address(p.Address)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, p.Address)
}

func (h *handler) revoke(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := addressParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.nftList.RevokeNFT(ctx, authMiddleware.Caller(c), domain.Address(p.Address)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, p.Address)
}
