package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mochi-xyz/market/base/ctx"
	hcdomain "github.com/mochi-xyz/market/domain/healthcheck"
	"github.com/mochi-xyz/market/domain/healthcheck/mocks"
)

func TestCheck(t *testing.T) {
	errDown := errors.New("connection refused")

	cases := []struct {
		name   string
		db     error
		cache  error
		report hcdomain.Report
		err    bool
	}{
		{
			name:   "all ok",
			report: hcdomain.Report{"mongo": hcdomain.StatusOk, "redis": hcdomain.StatusOk},
		},
		{
			name:   "in memory only",
			db:     hcdomain.ErrDisabled,
			cache:  hcdomain.ErrDisabled,
			report: hcdomain.Report{"mongo": hcdomain.StatusDisabled, "redis": hcdomain.StatusDisabled},
		},
		{
			name:   "redis down",
			db:     hcdomain.ErrDisabled,
			cache:  errDown,
			report: hcdomain.Report{"mongo": hcdomain.StatusDisabled, "redis": errDown.Error()},
			err:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			repo := &mocks.HealthCheckRepo{}
			repo.On("PingDB", mock.Anything).Return(tc.db).Once()
			repo.On("PingCache", mock.Anything).Return(tc.cache).Once()

			report, err := New(repo).Check(ctx.Background())
			req.Equal(tc.report, report)
			if tc.err {
				req.ErrorIs(err, errDown)
			} else {
				req.NoError(err)
			}
			repo.AssertExpectations(t)
		})
	}
}
