package nftlist

import (
	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
)

type NFTInfo struct {
	Address      domain.Address `json:"address"`
	IsRegistered bool           `json:"isRegistered"`
	IsAccepted   bool           `json:"isAccepted"`
	IsERC1155    bool           `json:"isERC1155"`
}

type Repo interface {
	Get(c ctx.Ctx, nft domain.Address) (*NFTInfo, error)
	Put(c ctx.Ctx, info NFTInfo) error
	Count(c ctx.Ctx) int
	FindAll(c ctx.Ctx, onlyAccepted bool) []domain.Address
}

type Usecase interface {
	domain.NFTRegistry

	RegisterNFT(c ctx.Ctx, caller, nft domain.Address, isERC1155 bool) error
	AcceptNFT(c ctx.Ctx, caller, nft domain.Address) error
	RevokeNFT(c ctx.Ctx, caller, nft domain.Address) error
	GetNFTInfo(c ctx.Ctx, nft domain.Address) (*NFTInfo, error)
	GetNFTCount(c ctx.Ctx) (int, error)
	GetAcceptedNFTs(c ctx.Ctx) ([]domain.Address, error)
}
