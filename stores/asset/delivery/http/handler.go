package http

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/labstack/echo/v4"
	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/delivery"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/asset"
	authMiddleware "github.com/mochi-xyz/market/stores/auth/delivery/http/middleware"
)

type handler struct {
	assets asset.Usecase
}

// New serves the asset ledger: fungible tokens under /tokens and NFT collections under /collections.
func New(e *echo.Echo, assets asset.Usecase, auth *authMiddleware.AuthMiddleware) {
	h := &handler{assets: assets}

	t := e.Group("/tokens")
	t.GET("/:token", h.metadata)
	t.GET("/:token/supply", h.totalSupply)
	t.GET("/:token/balances/:owner", h.balanceOf)
	t.GET("/:token/allowances/:owner/:spender", h.allowance)
	t.POST("", h.createToken, auth.Auth())
	t.POST("/:token/mint", h.mint, auth.Auth())
	t.POST("/:token/approve", h.approve, auth.Auth())
	t.POST("/:token/transfer", h.transfer, auth.Auth())

	col := e.Group("/collections")
	col.GET("/:nft", h.collection)
	col.GET("/:nft/tokens/:tokenId/owner", h.ownerOf)
	col.GET("/:nft/tokens/:tokenId/balances/:owner", h.nftBalanceOf)
	col.GET("/:nft/operators/:owner/:operator", h.isApprovedForAll)
	col.POST("", h.createCollection, auth.Auth())
	col.POST("/:nft/mint", h.mintNFT, auth.Auth())
	col.PUT("/:nft/operators/:operator", h.setApprovalForAll, auth.Auth())
	col.POST("/:nft/tokens/:tokenId/transfer", h.transferNFT, auth.Auth())
}

func respond(c echo.Context, res interface{}, err error) error {
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

type tokenParam struct {
	Token string `param:"token" validate:"eth_addr"`
}

type nftParam struct {
	Nft     string `param:"nft" validate:"eth_addr"`
	TokenId string `param:"tokenId" validate:"omitempty,uint256"`
	Owner   string `param:"owner" validate:"omitempty,eth_addr"`
}

// fungible tokens

func (h *handler) metadata(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.assets.Metadata(ctx, domain.Address(p.Token))
	return respond(c, res, err)
}

func (h *handler) totalSupply(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.assets.TotalSupply(ctx, domain.Address(p.Token))
	return respond(c, res, err)
}

func (h *handler) balanceOf(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Token string `param:"token" validate:"eth_addr"`
		Owner string `param:"owner" validate:"eth_addr"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.assets.BalanceOf(ctx, domain.Address(p.Token), domain.Address(p.Owner))
	return respond(c, res, err)
}

func (h *handler) allowance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Token   string `param:"token" validate:"eth_addr"`
		Owner   string `param:"owner" validate:"eth_addr"`
		Spender string `param:"spender" validate:"eth_addr"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.assets.Allowance(ctx, domain.Address(p.Token), domain.Address(p.Owner), domain.Address(p.Spender))
	return respond(c, res, err)
}

// createToken makes the caller the only minter of the new token.
func (h *handler) createToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address  string `json:"address" validate:"required,eth_addr"`
		Name     string `json:"name" validate:"required"`
		Symbol   string `json:"symbol" validate:"required"`
		Decimals int32  `json:"decimals" validate:"min=0,max=36"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	meta := domain.TokenMetadata{Name: p.Name, Symbol: p.Symbol, Decimals: p.Decimals}
	if err := h.assets.CreateToken(ctx, domain.Address(p.Address), meta, authMiddleware.Caller(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, domain.Address(p.Address).ToLower())
}

type transferParams struct {
	Token  string `param:"token" validate:"eth_addr"`
	To     string `json:"to" validate:"required,eth_addr"`
	Amount string `json:"amount" validate:"required,uint256"`
}

func (h *handler) mint(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := transferParams{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, _ := domain.ParseBigInt(p.Amount)
	return respond(c, amount, h.assets.Mint(ctx, authMiddleware.Caller(c), domain.Address(p.Token), domain.Address(p.To), amount))
}

func (h *handler) transfer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := transferParams{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, _ := domain.ParseBigInt(p.Amount)
	return respond(c, amount, h.assets.Transfer(ctx, domain.Address(p.Token), authMiddleware.Caller(c), domain.Address(p.To), amount))
}

func (h *handler) approve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Token   string `param:"token" validate:"eth_addr"`
		Spender string `json:"spender" validate:"required,eth_addr"`
		Amount  string `json:"amount" validate:"required,uint256"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, _ := domain.ParseBigInt(p.Amount)
	return respond(c, amount, h.assets.Approve(ctx, authMiddleware.Caller(c), domain.Address(p.Token), domain.Address(p.Spender), amount))
}

// collections

func (h *handler) collection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := nftParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.assets.Collection(ctx, domain.Address(p.Nft))
	return respond(c, res, err)
}

func (h *handler) ownerOf(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := nftParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.assets.OwnerOf(ctx, domain.Address(p.Nft), domain.TokenId(p.TokenId))
	return respond(c, res, err)
}

func (h *handler) nftBalanceOf(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := nftParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.assets.NFTBalanceOf(ctx, domain.Address(p.Nft), domain.Address(p.Owner), domain.TokenId(p.TokenId))
	return respond(c, res, err)
}

func (h *handler) isApprovedForAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Nft      string `param:"nft" validate:"eth_addr"`
		Owner    string `param:"owner" validate:"eth_addr"`
		Operator string `param:"operator" validate:"eth_addr"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.assets.IsApprovedForAll(ctx, domain.Address(p.Nft), domain.Address(p.Owner), domain.Address(p.Operator))
	return respond(c, res, err)
}

func (h *handler) createCollection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address   string           `json:"address" validate:"required,eth_addr"`
		Name      string           `json:"name" validate:"required"`
		Symbol    string           `json:"symbol" validate:"required"`
		TokenType domain.TokenType `json:"tokenType" validate:"oneof=721 1155"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	col := asset.Collection{
		Address:   domain.Address(p.Address),
		Name:      p.Name,
		Symbol:    p.Symbol,
		TokenType: p.TokenType,
	}
	if err := h.assets.CreateCollection(ctx, authMiddleware.Caller(c), col); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, col.Address.ToLower())
}

func (h *handler) mintNFT(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Nft     string `param:"nft" validate:"eth_addr"`
		To      string `json:"to" validate:"required,eth_addr"`
		TokenId string `json:"tokenId" validate:"required,uint256"`
		Amount  uint64 `json:"amount" validate:"required"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	err := h.assets.MintNFT(ctx, authMiddleware.Caller(c), domain.Address(p.Nft), domain.Address(p.To), domain.TokenId(p.TokenId), p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, p.TokenId)
}

func (h *handler) setApprovalForAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Nft      string `param:"nft" validate:"eth_addr"`
		Operator string `param:"operator" validate:"eth_addr"`
		Approved bool   `json:"approved"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return respond(c, p.Approved, h.assets.SetApprovalForAll(ctx, authMiddleware.Caller(c), domain.Address(p.Nft), domain.Address(p.Operator), p.Approved))
}

// transferNFT moves units out of from, which defaults to the caller. Moving
// someone else's units requires operator approval.
func (h *handler) transferNFT(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Nft     string `param:"nft" validate:"eth_addr"`
		TokenId string `param:"tokenId" validate:"uint256"`
		From    string `json:"from" validate:"omitempty,eth_addr"`
		To      string `json:"to" validate:"required,eth_addr"`
		Amount  uint64 `json:"amount" validate:"required"`
		Data    string `json:"data"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	caller := authMiddleware.Caller(c)
	from := caller
	if p.From != "" {
		from = domain.Address(p.From)
	}
	var data []byte
	if p.Data != "" {
		b, err := hexutil.Decode(p.Data)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, xerrors.Errorf("data %v: %w", err, domain.ErrInvalidParams))
		}
		data = b
	}
	return respond(c, p.Amount, h.assets.SafeTransferFrom(ctx, caller, domain.Address(p.Nft), from, domain.Address(p.To), domain.TokenId(p.TokenId), p.Amount, data))
}
