package redis

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/database/redisclient"
	"github.com/mochi-xyz/market/base/metrics"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	im Service
}

func Test(t *testing.T) {
	uri := os.Getenv("REDIS_URI")
	if uri == "" {
		t.Skip("REDIS_URI not set")
	}
	pool, err := redisclient.ConnectRedis(uri, os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		t.Fatal(err)
	}
	suite.Run(t, &testsuite{im: New("test", metrics.NewNoop(), pool)})
}

func (ts *testsuite) TestSetGetDel() {
	k := "test:redis:setget"
	ts.NoError(ts.im.Set(mockCtx, k, []byte("v"), time.Minute))

	v, err := ts.im.Get(mockCtx, k)
	ts.NoError(err)
	ts.Equal([]byte("v"), v)

	ttl, err := ts.im.TTL(mockCtx, k)
	ts.NoError(err)
	ts.True(ttl > 0)

	n, err := ts.im.Del(mockCtx, k)
	ts.NoError(err)
	ts.Equal(1, n)

	_, err = ts.im.Get(mockCtx, k)
	ts.Equal(ErrNotFound, err)
}

func (ts *testsuite) TestPublish() {
	_, err := ts.im.Publish(mockCtx, "test:redis:channel", []byte("{}"))
	ts.NoError(err)
}
