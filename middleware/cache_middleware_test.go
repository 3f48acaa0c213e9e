package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/service/cache/provider"
	"github.com/mochi-xyz/market/service/cache/provider/primitive"
)

type cacheMiddlewareSuite struct {
	suite.Suite

	e     *echo.Echo
	cache provider.Provider
}

func (s *cacheMiddlewareSuite) SetupTest() {
	s.e = echo.New()
	s.cache = primitive.NewPrimitive("httpCacheTest", 1)
}

func TestCacheMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(cacheMiddlewareSuite))
}

func (s *cacheMiddlewareSuite) serve(method, target string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := s.e.NewContext(httptest.NewRequest(method, target, nil), rec)
	c.Set("ctx", ctx.Background())
	s.Require().NoError(CacheHttp(s.cache, 30*time.Second)(h)(c))
	return rec
}

func (s *cacheMiddlewareSuite) TestCacheMiddleware() {
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "hello")
	}

	rec := s.serve(http.MethodGet, "/activities?b=2&a=1", h)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("hello", rec.Body.String())

	// query order does not matter
	rec = s.serve(http.MethodGet, "/activities?a=1&b=2", func(c echo.Context) error {
		return c.String(http.StatusOK, "again")
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("hello", rec.Body.String())
	s.Equal(1, calls)

	_, _, err := s.cache.Get(ctx.Background(), "httpCacheMiddleware:"+generateKey("/activities?a=1&b=2"))
	s.NoError(err)
}

func (s *cacheMiddlewareSuite) TestSkipsFailuresAndWrites() {
	calls := 0
	fail := func(c echo.Context) error {
		calls++
		return c.String(http.StatusNotFound, "missing")
	}
	s.Equal(http.StatusNotFound, s.serve(http.MethodGet, "/x", fail).Code)
	s.Equal(http.StatusNotFound, s.serve(http.MethodGet, "/x", fail).Code)
	s.Equal(2, calls)

	post := func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}
	s.serve(http.MethodPost, "/y", post)
	s.serve(http.MethodPost, "/y", post)
	s.Equal(4, calls)
}
