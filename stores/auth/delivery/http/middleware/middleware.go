package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/delivery"
	"github.com/mochi-xyz/market/domain"
)

// AddressKey is the echo context key holding the authenticated address.
const AddressKey = "address"

type AuthMiddleware struct {
	auth   domain.AuthUsecase
	admins domain.AdminRegistry
}

func New(auth domain.AuthUsecase, admins domain.AdminRegistry) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		admins: admins,
	}
}

// Auth requires a bearer token and stores its address under AddressKey.
func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: m.validateAuthToken,
		ErrorHandler: func(err error, c echo.Context) error {
			return delivery.MakeJsonResp(c, http.StatusUnauthorized, err)
		},
	})
}

// IsAdmin must run after Auth.
func (m *AuthMiddleware) IsAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Get("ctx").(ctx.Ctx)
			address, _ := c.Get(AddressKey).(domain.Address)
			if !m.admins.IsMarketAdmin(ctx, address) {
				return delivery.MakeJsonResp(c, http.StatusForbidden, domain.ErrCallerNotMarketAdmin)
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	ctx := c.Get("ctx").(ctx.Ctx)
	ads, err := m.auth.ParseToken(ctx, key)
	if err != nil {
		ctx.WithField("err", err).Warn("auth.ParseToken failed")
		return false, err
	}
	c.Set(AddressKey, domain.Address(ads))
	return true, nil
}

// Caller returns the address set by Auth.
func Caller(c echo.Context) domain.Address {
	address, _ := c.Get(AddressKey).(domain.Address)
	return address
}
