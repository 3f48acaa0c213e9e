package usecase

import (
	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
)

type adminRegistry struct {
	admins map[domain.Address]bool
}

// NewAdminRegistry treats every listed address as a market admin.
func NewAdminRegistry(addresses []string) domain.AdminRegistry {
	admins := map[domain.Address]bool{}
	for _, a := range addresses {
		admins[domain.Address(a).ToLower()] = true
	}
	return &adminRegistry{admins}
}

func (r *adminRegistry) IsMarketAdmin(c ctx.Ctx, address domain.Address) bool {
	return r.admins[address.ToLower()]
}
