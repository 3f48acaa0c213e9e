package healthcheck

import (
	"github.com/mochi-xyz/market/base/ctx"
)

const (
	StatusOk       = "ok"
	StatusDisabled = "disabled"
)

// Report maps a backing store to StatusOk, StatusDisabled or the failure message.
type Report map[string]string

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	// Check returns the report together with the first failure, if any.
	Check(c ctx.Ctx) (Report, error)
}

// HealthCheckRepo is repository layer of healthCheck. A backend that isn't
// configured reports ErrDisabled.
type HealthCheckRepo interface {
	PingDB(c ctx.Ctx) error
	PingCache(c ctx.Ctx) error
}
