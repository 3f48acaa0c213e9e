package usecase

import (
	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	hcdomain "github.com/mochi-xyz/market/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) Check(c ctx.Ctx) (hcdomain.Report, error) {
	report := hcdomain.Report{}
	var failure error
	probe := func(name string, ping func(ctx.Ctx) error) {
		err := ping(c)
		switch {
		case err == nil:
			report[name] = hcdomain.StatusOk
		case xerrors.Is(err, hcdomain.ErrDisabled):
			report[name] = hcdomain.StatusDisabled
		default:
			report[name] = err.Error()
			if failure == nil {
				failure = xerrors.Errorf("%s: %w", name, err)
			}
		}
	}
	probe("mongo", im.repo.PingDB)
	probe("redis", im.repo.PingCache)
	return report, failure
}
