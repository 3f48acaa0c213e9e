package repository

import (
	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/nftlist"
)

type impl struct {
	j     *journal.Journal
	infos map[domain.Address]nftlist.NFTInfo
	// order keeps registration order for listing
	order []domain.Address
}

func NewNFTListRepo(j *journal.Journal) nftlist.Repo {
	return &impl{
		j:     j,
		infos: map[domain.Address]nftlist.NFTInfo{},
	}
}

func (im *impl) Get(c ctx.Ctx, nft domain.Address) (*nftlist.NFTInfo, error) {
	info, ok := im.infos[nft.ToLower()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &info, nil
}

func (im *impl) Put(c ctx.Ctx, info nftlist.NFTInfo) error {
	addr := info.Address.ToLower()
	info.Address = addr
	prev, existed := im.infos[addr]
	im.infos[addr] = info
	if !existed {
		im.order = append(im.order, addr)
	}
	im.j.Append(func() {
		if existed {
			im.infos[addr] = prev
			return
		}
		delete(im.infos, addr)
		im.order = im.order[:len(im.order)-1]
	})
	return nil
}

func (im *impl) Count(c ctx.Ctx) int {
	return len(im.order)
}

func (im *impl) FindAll(c ctx.Ctx, onlyAccepted bool) []domain.Address {
	res := []domain.Address{}
	for _, addr := range im.order {
		if onlyAccepted && !im.infos[addr].IsAccepted {
			continue
		}
		res = append(res, addr)
	}
	return res
}
