package http

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/labstack/echo/v4"
	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/delivery"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/market"
	"github.com/mochi-xyz/market/domain/vault"
	authMiddleware "github.com/mochi-xyz/market/stores/auth/delivery/http/middleware"
)

type handler struct {
	market market.Usecase
}

func New(e *echo.Echo, m market.Usecase, auth *authMiddleware.AuthMiddleware) {
	h := &handler{market: m}

	g := e.Group("/market")
	g.GET("/address", h.address)
	g.PUT("/fee", h.updateFee, auth.Auth(), auth.IsAdmin())
	g.POST("/tokens/:token", h.acceptToken, auth.Auth(), auth.IsAdmin())
	g.DELETE("/tokens/:token", h.revokeToken, auth.Auth(), auth.IsAdmin())

	so := g.Group("/sell-orders")
	so.POST("", h.createSellOrder, auth.Auth())
	so.GET("", h.getSellOrdersByIds)
	so.GET("/count", h.getSellOrderCount)
	so.GET("/available", h.getAvailableSellOrderIds)
	so.GET("/user/:address", h.getSellOrderIdsByUser)
	so.GET("/nft/:address", h.getSellOrderIdsByNft)
	so.GET("/latest/:nft/:tokenId", h.getLatestSellId)
	so.GET("/duplicate/:nft/:tokenId", h.checkDuplicateSell)
	so.GET("/:id", h.getSellOrder)
	so.PUT("/:id/price", h.updatePrice, auth.Auth())
	so.DELETE("/:id", h.cancelSellOrder, auth.Auth())
	so.POST("/:id/buy", h.buy, auth.Auth())

	eo := g.Group("/exchange-orders")
	eo.POST("", h.createExchangeOrder, auth.Auth())
	eo.GET("", h.getExchangeOrdersByIds)
	eo.GET("/count", h.getExchangeOrderCount)
	eo.GET("/available", h.getAvailableExchangeOrderIds)
	eo.GET("/user/:address", h.getExchangeOrderIdsByUser)
	eo.GET("/nft/:address", h.getExchangeOrderIdsByNft)
	eo.GET("/latest/:nft/:tokenId", h.getLatestExchangeId)
	eo.GET("/duplicate/:nft/:tokenId", h.checkDuplicateExchange)
	eo.GET("/:id", h.getExchangeOrder)
	eo.DELETE("/:id", h.cancelExchangeOrder, auth.Auth())
	eo.POST("/:id/exchange", h.exchange, auth.Auth())
}

func respond(c echo.Context, res interface{}, err error) error {
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// optionalBig parses an optional decimal amount, empty means zero.
func optionalBig(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, err := domain.ParseBigInt(s)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, domain.ErrInvalidParams)
	}
	return v, nil
}

func optionalBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, xerrors.Errorf("data %v: %w", err, domain.ErrInvalidParams)
	}
	return b, nil
}

type idParam struct {
	Id uint64 `param:"id"`
}

type idsParam struct {
	Ids []uint64 `query:"ids" validate:"required"`
}

type listParam struct {
	Address   string `param:"address" validate:"eth_addr"`
	Available bool   `query:"available"`
}

type tokenParam struct {
	Nft     string `param:"nft" validate:"eth_addr"`
	TokenId string `param:"tokenId" validate:"uint256"`
	Seller  string `query:"seller" validate:"omitempty,eth_addr"`
	User    string `query:"user" validate:"omitempty,eth_addr"`
}

func (h *handler) address(c echo.Context) error {
	return delivery.MakeJsonResp(c, http.StatusOK, h.market.Address())
}

func (h *handler) updateFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := vault.Fraction{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return respond(c, p, h.market.UpdateFee(ctx, authMiddleware.Caller(c), p))
}

func (h *handler) acceptToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	token := domain.Address(c.Param("token"))
	return respond(c, token, h.market.AcceptToken(ctx, authMiddleware.Caller(c), token))
}

func (h *handler) revokeToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	token := domain.Address(c.Param("token"))
	return respond(c, token, h.market.RevokeToken(ctx, authMiddleware.Caller(c), token))
}

// sell orders

func (h *handler) createSellOrder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		NftAddress   string `json:"nftAddress" validate:"required,eth_addr"`
		TokenId      string `json:"tokenId" validate:"required,uint256"`
		Amount       uint64 `json:"amount"`
		Price        string `json:"price" validate:"required,uint256"`
		PaymentToken string `json:"paymentToken" validate:"required,eth_addr"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, _ := domain.ParseBigInt(p.Price)

	id, err := h.market.CreateSellOrder(ctx, authMiddleware.Caller(c), domain.Address(p.NftAddress), domain.TokenId(p.TokenId), p.Amount, price, domain.Address(p.PaymentToken))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, id)
}

func (h *handler) updatePrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Id    uint64 `param:"id"`
		Price string `json:"price" validate:"required,uint256"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, _ := domain.ParseBigInt(p.Price)
	return respond(c, p.Id, h.market.UpdatePrice(ctx, authMiddleware.Caller(c), p.Id, price))
}

func (h *handler) cancelSellOrder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := idParam{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return respond(c, p.Id, h.market.CancelSellOrder(ctx, authMiddleware.Caller(c), p.Id))
}

func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Id        uint64 `param:"id"`
		Amount    uint64 `json:"amount"`
		Recipient string `json:"recipient" validate:"omitempty,eth_addr"`
		Value     string `json:"value" validate:"omitempty,uint256"`
		Data      string `json:"data"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	value, err := optionalBig(p.Value)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	data, err := optionalBytes(p.Data)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return respond(c, p.Id, h.market.Buy(ctx, authMiddleware.Caller(c), p.Id, p.Amount, domain.Address(p.Recipient), value, data))
}

func (h *handler) getSellOrder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := idParam{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.market.GetSellOrder(ctx, p.Id)
	return respond(c, res, err)
}

func (h *handler) getSellOrdersByIds(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := idsParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.market.GetSellOrdersByIds(ctx, p.Ids)
	return respond(c, res, err)
}

func (h *handler) getSellOrderCount(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.market.GetSellOrderCount(ctx)
	return respond(c, res, err)
}

func (h *handler) getAvailableSellOrderIds(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.market.GetAvailableSellOrderIds(ctx)
	return respond(c, res, err)
}

func (h *handler) getSellOrderIdsByUser(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := listParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	get := h.market.GetAllSellOrderIdsByUser
	if p.Available {
		get = h.market.GetAvailableSellOrderIdsByUser
	}
	res, err := get(ctx, domain.Address(p.Address))
	return respond(c, res, err)
}

func (h *handler) getSellOrderIdsByNft(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := listParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	get := h.market.GetAllSellOrderIdsByNft
	if p.Available {
		get = h.market.GetAvailableSellOrderIdsByNft
	}
	res, err := get(ctx, domain.Address(p.Address))
	return respond(c, res, err)
}

// getLatestSellId looks up ERC1155 listings when seller is given, ERC721 otherwise.
func (h *handler) getLatestSellId(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if p.Seller != "" {
		res, err := h.market.GetLatestSellIdERC1155(ctx, domain.Address(p.Seller), domain.Address(p.Nft), domain.TokenId(p.TokenId))
		return respond(c, res, err)
	}
	res, err := h.market.GetLatestSellIdERC721(ctx, domain.Address(p.Nft), domain.TokenId(p.TokenId))
	return respond(c, res, err)
}

func (h *handler) checkDuplicateSell(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Nft      string           `param:"nft" validate:"eth_addr"`
		TokenId  string           `param:"tokenId" validate:"uint256"`
		Seller   string           `query:"seller" validate:"omitempty,eth_addr"`
		Standard domain.TokenType `query:"standard"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if p.Seller == "" {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "seller is required")
	}
	check := h.market.CheckDuplicateERC721
	if p.Standard == domain.TokenType1155 {
		check = h.market.CheckDuplicateERC1155
	}
	res, err := check(ctx, domain.Address(p.Nft), domain.TokenId(p.TokenId), domain.Address(p.Seller))
	return respond(c, res, err)
}

// exchange orders

func (h *handler) createExchangeOrder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		NftAddresses  []string `json:"nftAddresses" validate:"required,dive,eth_addr"`
		TokenIds      []string `json:"tokenIds" validate:"required,dive,uint256"`
		Amounts       []uint64 `json:"amounts" validate:"required"`
		PaymentTokens []string `json:"paymentTokens" validate:"required,dive,eth_addr"`
		Prices        []string `json:"prices" validate:"required,dive,uint256"`
		InitialUsers  []string `json:"initialUsers" validate:"dive,eth_addr"`
		ExtraData     []string `json:"extraData"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	caller := authMiddleware.Caller(c)
	req := market.ExchangeOrderParams{Amounts: p.Amounts}
	for i := range p.NftAddresses {
		req.NftAddresses = append(req.NftAddresses, domain.Address(p.NftAddresses[i]))
	}
	for i := range p.TokenIds {
		req.TokenIds = append(req.TokenIds, domain.TokenId(p.TokenIds[i]))
	}
	for i := range p.PaymentTokens {
		req.PaymentTokens = append(req.PaymentTokens, domain.Address(p.PaymentTokens[i]))
	}
	for i := range p.Prices {
		v, _ := domain.ParseBigInt(p.Prices[i])
		req.Prices = append(req.Prices, v)
	}
	if len(p.InitialUsers) == 0 {
		req.InitialUsers = []domain.Address{caller}
	}
	for i := range p.InitialUsers {
		req.InitialUsers = append(req.InitialUsers, domain.Address(p.InitialUsers[i]))
	}
	for i := range p.ExtraData {
		b, err := optionalBytes(p.ExtraData[i])
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
		}
		req.ExtraData = append(req.ExtraData, b)
	}

	id, err := h.market.CreateExchangeOrder(ctx, caller, req)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, id)
}

func (h *handler) cancelExchangeOrder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := idParam{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return respond(c, p.Id, h.market.CancelExchangeOrder(ctx, authMiddleware.Caller(c), p.Id))
}

func (h *handler) exchange(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Id        uint64 `param:"id"`
		LegIndex  int    `json:"legIndex"`
		Recipient string `json:"recipient" validate:"omitempty,eth_addr"`
		Value     string `json:"value" validate:"omitempty,uint256"`
		Data      string `json:"data"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	value, err := optionalBig(p.Value)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	data, err := optionalBytes(p.Data)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return respond(c, p.Id, h.market.Exchange(ctx, authMiddleware.Caller(c), p.Id, p.LegIndex, domain.Address(p.Recipient), value, data))
}

func (h *handler) getExchangeOrder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := idParam{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.market.GetExchangeOrder(ctx, p.Id)
	return respond(c, res, err)
}

func (h *handler) getExchangeOrdersByIds(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := idsParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.market.GetExchangeOrdersByIds(ctx, p.Ids)
	return respond(c, res, err)
}

func (h *handler) getExchangeOrderCount(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.market.GetExchangeOrderCount(ctx)
	return respond(c, res, err)
}

func (h *handler) getAvailableExchangeOrderIds(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.market.GetAvailableExchangeOrderIds(ctx)
	return respond(c, res, err)
}

func (h *handler) getExchangeOrderIdsByUser(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := listParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	get := h.market.GetAllExchangeOrderIdsByUser
	if p.Available {
		get = h.market.GetAvailableExchangeOrderIdsByUser
	}
	res, err := get(ctx, domain.Address(p.Address))
	return respond(c, res, err)
}

func (h *handler) getExchangeOrderIdsByNft(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := listParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	get := h.market.GetAllExchangeOrderIdsByNft
	if p.Available {
		get = h.market.GetAvailableExchangeOrderIdsByNft
	}
	res, err := get(ctx, domain.Address(p.Address))
	return respond(c, res, err)
}

func (h *handler) getLatestExchangeId(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if p.User != "" {
		res, err := h.market.GetLatestExchangeIdERC1155(ctx, domain.Address(p.User), domain.Address(p.Nft), domain.TokenId(p.TokenId))
		return respond(c, res, err)
	}
	res, err := h.market.GetLatestExchangeIdERC721(ctx, domain.Address(p.Nft), domain.TokenId(p.TokenId))
	return respond(c, res, err)
}

func (h *handler) checkDuplicateExchange(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Nft      string           `param:"nft" validate:"eth_addr"`
		TokenId  string           `param:"tokenId" validate:"uint256"`
		User     string           `query:"user" validate:"omitempty,eth_addr"`
		Standard domain.TokenType `query:"standard"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if p.User == "" {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "user is required")
	}
	check := h.market.CheckDuplicateExchangeERC721
	if p.Standard == domain.TokenType1155 {
		check = h.market.CheckDuplicateExchangeERC1155
	}
	res, err := check(ctx, domain.Address(p.Nft), domain.TokenId(p.TokenId), domain.Address(p.User))
	return respond(c, res, err)
}
