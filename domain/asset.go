package domain

import (
	"math/big"

	"github.com/mochi-xyz/market/base/ctx"
)

// NFTRegistry is the allow-list of tradeable collections.
type NFTRegistry interface {
	IsRegistered(c ctx.Ctx, nft Address) (bool, error)
	IsAccepted(c ctx.Ctx, nft Address) (bool, error)
	IsERC1155(c ctx.Ctx, nft Address) (bool, error)
}

// AdminRegistry resolves privileged principals.
type AdminRegistry interface {
	IsMarketAdmin(c ctx.Ctx, address Address) bool
}

// NFTCustody covers ERC721 and ERC1155 ownership. For ERC721 amount is always 1.
type NFTCustody interface {
	OwnerOf(c ctx.Ctx, nft Address, tokenId TokenId) (Address, error)
	NFTBalanceOf(c ctx.Ctx, nft Address, owner Address, tokenId TokenId) (uint64, error)
	IsApprovedForAll(c ctx.Ctx, nft Address, owner, operator Address) (bool, error)
	// SafeTransferFrom moves units and invokes the receiver hook of `to`, if any.
	SafeTransferFrom(c ctx.Ctx, operator Address, nft Address, from, to Address, tokenId TokenId, amount uint64, data []byte) error
	CollectionOwner(c ctx.Ctx, nft Address) (Address, error)
}

// TokenMetadata describes a fungible token.
type TokenMetadata struct {
	Address  Address `json:"address"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Decimals int32   `json:"decimals"`
}

// FungibleLedger covers the native coin (NativeToken) and ERC20-like tokens.
type FungibleLedger interface {
	Metadata(c ctx.Ctx, token Address) (*TokenMetadata, error)
	BalanceOf(c ctx.Ctx, token Address, owner Address) (*big.Int, error)
	Allowance(c ctx.Ctx, token Address, owner, spender Address) (*big.Int, error)
	Transfer(c ctx.Ctx, token Address, from, to Address, amount *big.Int) error
	TransferFrom(c ctx.Ctx, token Address, spender, from, to Address, amount *big.Int) error
	// CreateToken registers a token whose supply only minter may change.
	CreateToken(c ctx.Ctx, token Address, meta TokenMetadata, minter Address) error
	Mint(c ctx.Ctx, minter Address, token Address, to Address, amount *big.Int) error
	Burn(c ctx.Ctx, token Address, from Address, amount *big.Int) error
}
