// Package apitest drives echo handlers in tests.
package apitest

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mochi-xyz/market/base/validator"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/keys"
	"github.com/mochi-xyz/market/middleware"
	"github.com/mochi-xyz/market/service/cache"
	"github.com/mochi-xyz/market/service/cache/provider/primitive"
	authMiddleware "github.com/mochi-xyz/market/stores/auth/delivery/http/middleware"
	authUsecase "github.com/mochi-xyz/market/stores/auth/usecase"
)

// Response mirrors delivery.JsonResponse with the data left raw.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Status string          `json:"status"`
	Code   string          `json:"code"`
}

// Token signs an hour long bearer token for address.
func Token(secret string, address domain.Address) string {
	claims := domain.JwtCustomClaims{
		Address:        address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	tkn, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return tkn
}

// NewServer returns an echo instance set up like the api server and the auth
// middleware accepting tokens signed with secret.
func NewServer(secret string, admins domain.AdminRegistry) (*echo.Echo, *authMiddleware.AuthMiddleware) {
	auth := authUsecase.New(secret, cache.New(cache.ServiceConfig{
		Ttl:   time.Minute,
		Pfx:   keys.PfxNonce,
		Cache: primitive.NewPrimitive("apitestNonce", 1),
	}))

	e := echo.New()
	e.Validator = validator.NewCustomValidator(validator.New())
	e.Use(middleware.InitMiddleware(nil).AddContext())
	return e, authMiddleware.New(auth, admins)
}

// Client sends requests to an echo instance, signing them when a caller is given.
type Client struct {
	T      *testing.T
	E      *echo.Echo
	Secret string
}

func (cl *Client) Do(method, target string, caller domain.Address, body string) (int, Response) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if caller != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+Token(cl.Secret, caller))
	}
	rec := httptest.NewRecorder()
	cl.E.ServeHTTP(rec, req)

	res := Response{}
	require.NoError(cl.T, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return rec.Code, res
}
