package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/delivery"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/activity"
	"github.com/mochi-xyz/market/middleware"
	"github.com/mochi-xyz/market/service/cache/provider"
)

const (
	defaultLimit = 20
	cacheTtl     = 5 * time.Second
)

type handler struct {
	activities activity.Usecase
}

// New serves the activity feed. Responses are cached in p when it is not nil.
func New(e *echo.Echo, activities activity.Usecase, p provider.Provider) {
	h := &handler{activities: activities}

	mws := []echo.MiddlewareFunc{}
	if p != nil {
		mws = append(mws, middleware.CacheHttp(p, cacheTtl))
	}
	e.GET("/activities", h.find, mws...)
}

type findResponse struct {
	Items []activity.Activity `json:"items"`
	Count int                 `json:"count"`
}

func (h *handler) find(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Account string   `query:"account" validate:"omitempty,eth_addr"`
		Nft     string   `query:"nft" validate:"omitempty,eth_addr"`
		TokenId string   `query:"tokenId" validate:"omitempty,uint256"`
		OrderId string   `query:"orderId" validate:"omitempty,number"`
		Types   []string `query:"types"`
		Offset  int      `query:"offset" validate:"min=0"`
		Limit   int      `query:"limit" validate:"min=0,max=100"`
	}

	p := params{}
	if err := delivery.BindAndValidate(c, &p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	filters := []activity.FindActivityOptions{}
	if p.Account != "" {
		filters = append(filters, activity.ActivityWithAccount(domain.Address(p.Account)))
	}
	if p.TokenId != "" && p.Nft == "" {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "tokenId requires nft")
	}
	if p.TokenId != "" {
		filters = append(filters, activity.ActivityWithToken(domain.Address(p.Nft), domain.TokenId(p.TokenId)))
	} else if p.Nft != "" {
		filters = append(filters, activity.ActivityWithNft(domain.Address(p.Nft)))
	}
	if p.OrderId != "" {
		id, err := strconv.ParseUint(p.OrderId, 10, 64)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidParams)
		}
		filters = append(filters, activity.ActivityWithOrderId(id))
	}
	if len(p.Types) > 0 {
		types := make([]domain.EventType, 0, len(p.Types))
		for _, t := range p.Types {
			types = append(types, domain.EventType(t))
		}
		filters = append(filters, activity.ActivityWithTypes(types...))
	}

	limit := p.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	items, err := h.activities.FindActivities(ctx, append([]activity.FindActivityOptions{activity.ActivityWithPagination(p.Offset, limit)}, filters...)...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	count, err := h.activities.CountActivities(ctx, filters...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	if items == nil {
		items = []activity.Activity{}
	}
	return delivery.MakeJsonResp(c, http.StatusOK, findResponse{Items: items, Count: count})
}
