package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/delivery"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/vault"
	authMiddleware "github.com/mochi-xyz/market/stores/auth/delivery/http/middleware"
)

type handler struct {
	vault vault.Usecase
}

func New(e *echo.Echo, v vault.Usecase, auth *authMiddleware.AuthMiddleware) {
	h := &handler{vault: v}

	g := e.Group("/vault")
	g.GET("/address", h.address)
	g.GET("/tokens", h.acceptedTokens)
	g.GET("/tokens/:token", h.isAcceptedToken)
	g.GET("/tokens/:token/fund", h.fund)
	g.GET("/tokens/:token/deposited", h.deposited)
	g.GET("/tokens/:token/fee", h.fee)
	g.GET("/tokens/:token/reward-token", h.rewardToken)
	g.GET("/royalty/:nft/:token", h.royalty)
	g.GET("/fees", h.fees)
	g.GET("/reward", h.reward)
	g.GET("/reward/:rewardToken/balance/:user", h.rewardBalance)

	g.POST("/royalty/:nft/:token/claim", h.claimRoyalty, auth.Auth())
	g.POST("/reward/:rewardToken/burn", h.burnReward, auth.Auth())

	admin := g.Group("", auth.Auth(), auth.IsAdmin())
	admin.POST("/tokens/:token/withdraw", h.withdrawFund)
	admin.PUT("/fees/regular", h.updateFee)
	admin.PUT("/fees/moma", h.updateMomaFee)
	admin.PUT("/fees/royalty", h.updateRoyalty)
	admin.PUT("/reward", h.setupReward)
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

func (p tokenParam) token() domain.Address {
	return domain.Address(p.Token).ToLower()
}

// parseAmount reads a validated amount, recipient defaults to the caller.
func parseAmount(amount, recipient string, caller domain.Address) (*big.Int, domain.Address) {
	v, _ := domain.ParseBigInt(amount)
	if recipient == "" {
		return v, caller
	}
	return v, domain.Address(recipient).ToLower()
}

func (h *handler) address(c echo.Context) error {
	return delivery.MakeJsonResp(c, http.StatusOK, h.vault.Address())
}

func (h *handler) acceptedTokens(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res, err := h.vault.AcceptedTokens(ctx)
	return respond(c, res, err)
}

func (h *handler) isAcceptedToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.vault.IsAcceptedToken(ctx, p.token())
	return respond(c, res, err)
}

func (h *handler) fund(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.vault.MochiFund(ctx, p.token())
	return respond(c, res, err)
}

func (h *handler) deposited(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.vault.TotalDeposited(ctx, p.token())
	return respond(c, res, err)
}

func (h *handler) fee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.vault.Fee(ctx, p.token())
	return respond(c, res, err)
}

func (h *handler) rewardToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := tokenParam{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.vault.RewardToken(ctx, p.token())
	return respond(c, res, err)
}

func (h *handler) royalty(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Token string `param:"token" validate:"eth_addr"`
		Nft   string `param:"nft" validate:"eth_addr"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.vault.Royalty(ctx, domain.Address(p.Nft).ToLower(), domain.Address(p.Token).ToLower())
	return respond(c, res, err)
}

type feesResponse struct {
	Regular vault.Fraction `json:"regular"`
	Moma    vault.Fraction `json:"moma"`
	Royalty vault.Fraction `json:"royalty"`
}

func (h *handler) fees(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	res := feesResponse{}
	var err error
	if res.Regular, err = h.vault.RegularFee(ctx); err != nil {
		return respond(c, nil, err)
	}
	if res.Moma, err = h.vault.MomaFee(ctx); err != nil {
		return respond(c, nil, err)
	}
	res.Royalty, err = h.vault.RoyaltyParameters(ctx)
	return respond(c, res, err)
}

type rewardResponse struct {
	Parameters  *vault.RewardParameters `json:"parameters"`
	CurrentRate *big.Int                `json:"currentRate"`
}

func (h *handler) reward(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	params, err := h.vault.RewardParameters(ctx)
	if err != nil {
		return respond(c, nil, err)
	}
	rate, err := h.vault.CurrentRewardRate(ctx)
	return respond(c, rewardResponse{Parameters: params, CurrentRate: rate}, err)
}

func (h *handler) rewardBalance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		RewardToken string `param:"rewardToken" validate:"eth_addr"`
		User        string `param:"user" validate:"eth_addr"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	res, err := h.vault.RewardTokenBalance(ctx, domain.Address(p.User).ToLower(), domain.Address(p.RewardToken).ToLower())
	return respond(c, res, err)
}

func (h *handler) claimRoyalty(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Token     string `param:"token" validate:"eth_addr"`
		Nft       string `param:"nft" validate:"eth_addr"`
		Amount    string `json:"amount" validate:"required,uint256"`
		Recipient string `json:"recipient" validate:"omitempty,eth_addr"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	caller := authMiddleware.Caller(c)
	amount, recipient := parseAmount(p.Amount, p.Recipient, caller)
	return respond(c, amount, h.vault.ClaimRoyalty(ctx, caller, domain.Address(p.Nft).ToLower(), domain.Address(p.Token).ToLower(), amount, recipient))
}

func (h *handler) burnReward(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		RewardToken string `param:"rewardToken" validate:"eth_addr"`
		Amount      string `json:"amount" validate:"required,uint256"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, _ := domain.ParseBigInt(p.Amount)
	return respond(c, amount, h.vault.BurnRewardToken(ctx, authMiddleware.Caller(c), domain.Address(p.RewardToken).ToLower(), amount))
}

func (h *handler) withdrawFund(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Token     string `param:"token" validate:"eth_addr"`
		Amount    string `json:"amount" validate:"required,uint256"`
		Recipient string `json:"recipient" validate:"omitempty,eth_addr"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	caller := authMiddleware.Caller(c)
	amount, recipient := parseAmount(p.Amount, p.Recipient, caller)
	return respond(c, amount, h.vault.WithdrawFund(ctx, caller, domain.Address(p.Token).ToLower(), amount, recipient))
}

func (h *handler) bindFraction(c echo.Context, update func(ctx.Ctx, domain.Address, vault.Fraction) error) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := vault.Fraction{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return respond(c, p, update(ctx, authMiddleware.Caller(c), p))
}

func (h *handler) updateFee(c echo.Context) error {
	return h.bindFraction(c, h.vault.UpdateFee)
}

func (h *handler) updateMomaFee(c echo.Context) error {
	return h.bindFraction(c, h.vault.UpdateMomaFee)
}

func (h *handler) updateRoyalty(c echo.Context) error {
	return h.bindFraction(c, h.vault.UpdateRoyaltyParameters)
}

func (h *handler) setupReward(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		PeriodLength  uint64 `json:"periodLength"`
		NumberOfCycle uint64 `json:"numberOfCycle"`
		StartTime     uint64 `json:"startTime"`
		FirstRate     string `json:"firstRate" validate:"required,uint256"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	rate, _ := domain.ParseBigInt(p.FirstRate)
	req := vault.RewardParameters{
		PeriodLength:  p.PeriodLength,
		NumberOfCycle: p.NumberOfCycle,
		StartTime:     p.StartTime,
		FirstRate:     rate,
	}
	return respond(c, req, h.vault.SetupRewardParameters(ctx, authMiddleware.Caller(c), req))
}
