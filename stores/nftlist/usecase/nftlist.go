package usecase

import (
	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/base/log"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/nftlist"
)

type impl struct {
	j      *journal.Journal
	repo   nftlist.Repo
	admins domain.AdminRegistry
}

func New(j *journal.Journal, repo nftlist.Repo, admins domain.AdminRegistry) nftlist.Usecase {
	return &impl{
		j:      j,
		repo:   repo,
		admins: admins,
	}
}

func (im *impl) info(c ctx.Ctx, nft domain.Address) (*nftlist.NFTInfo, error) {
	info, err := im.repo.Get(c, nft)
	if err == domain.ErrNotFound {
		return &nftlist.NFTInfo{Address: nft.ToLower()}, nil
	} else if err != nil {
		c.WithField("err", err).Error("repo.Get failed")
		return nil, err
	}
	return info, nil
}

func (im *impl) RegisterNFT(c ctx.Ctx, caller, nft domain.Address, isERC1155 bool) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if nft.IsEmpty() {
			return domain.ErrInvalidAddress
		}
		info, err := im.info(c, nft)
		if err != nil {
			return err
		}
		if info.IsRegistered {
			return domain.ErrNFTAlreadyRegistered
		}
		info.IsRegistered = true
		info.IsERC1155 = isERC1155
		if err := im.repo.Put(c, *info); err != nil {
			return err
		}
		c.WithFields(log.Fields{"nft": nft, "caller": caller, "isERC1155": isERC1155}).Info("nft registered")
		return nil
	})
}

func (im *impl) AcceptNFT(c ctx.Ctx, caller, nft domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if !im.admins.IsMarketAdmin(c, caller) {
			return domain.ErrCallerNotMarketAdmin
		}
		info, err := im.info(c, nft)
		if err != nil {
			return err
		}
		if !info.IsRegistered {
			return domain.ErrNFTNotRegistered
		}
		if info.IsAccepted {
			return domain.ErrNFTAlreadyAccepted
		}
		info.IsAccepted = true
		return im.repo.Put(c, *info)
	})
}

func (im *impl) RevokeNFT(c ctx.Ctx, caller, nft domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if !im.admins.IsMarketAdmin(c, caller) {
			return domain.ErrCallerNotMarketAdmin
		}
		info, err := im.info(c, nft)
		if err != nil {
			return err
		}
		if !info.IsAccepted {
			return domain.ErrNFTNotAccepted
		}
		info.IsAccepted = false
		return im.repo.Put(c, *info)
	})
}

func (im *impl) GetNFTInfo(c ctx.Ctx, nft domain.Address) (*nftlist.NFTInfo, error) {
	var res *nftlist.NFTInfo
	err := im.j.View(c, func(c ctx.Ctx) (err error) {
		res, err = im.info(c, nft)
		return err
	})
	return res, err
}

func (im *impl) GetNFTCount(c ctx.Ctx) (int, error) {
	n := 0
	err := im.j.View(c, func(c ctx.Ctx) error {
		n = im.repo.Count(c)
		return nil
	})
	return n, err
}

func (im *impl) GetAcceptedNFTs(c ctx.Ctx) ([]domain.Address, error) {
	var res []domain.Address
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.repo.FindAll(c, true)
		return nil
	})
	return res, err
}

func (im *impl) IsRegistered(c ctx.Ctx, nft domain.Address) (bool, error) {
	info, err := im.GetNFTInfo(c, nft)
	if err != nil {
		return false, err
	}
	return info.IsRegistered, nil
}

func (im *impl) IsAccepted(c ctx.Ctx, nft domain.Address) (bool, error) {
	info, err := im.GetNFTInfo(c, nft)
	if err != nil {
		return false, err
	}
	return info.IsAccepted, nil
}

func (im *impl) IsERC1155(c ctx.Ctx, nft domain.Address) (bool, error) {
	info, err := im.GetNFTInfo(c, nft)
	if err != nil {
		return false, err
	}
	return info.IsERC1155, nil
}
