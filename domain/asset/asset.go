package asset

import (
	"math/big"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
)

type Collection struct {
	Address   domain.Address   `json:"address"`
	Name      string           `json:"name"`
	Symbol    string           `json:"symbol"`
	TokenType domain.TokenType `json:"tokenType"`
	Owner     domain.Address   `json:"owner"`
}

// ReceiverHook runs when an NFT is safely transferred to the address it is registered for.
// Returning an error rejects the transfer and reverts the enclosing call. Hooks must use
// the ctx they are given when calling back into the market.
type ReceiverHook func(c ctx.Ctx, operator, from domain.Address, nft domain.Address, tokenId domain.TokenId, amount uint64, data []byte) error

// Usecase is the in-process ledger of NFT collections and fungible tokens.
type Usecase interface {
	domain.NFTCustody
	domain.FungibleLedger

	CreateCollection(c ctx.Ctx, caller domain.Address, col Collection) error
	Collection(c ctx.Ctx, nft domain.Address) (*Collection, error)
	// MintNFT is restricted to the collection owner.
	MintNFT(c ctx.Ctx, caller, nft, to domain.Address, tokenId domain.TokenId, amount uint64) error
	SetApprovalForAll(c ctx.Ctx, owner, nft, operator domain.Address, approved bool) error
	Approve(c ctx.Ctx, owner, token, spender domain.Address, amount *big.Int) error
	TotalSupply(c ctx.Ctx, token domain.Address) (*big.Int, error)

	RegisterReceiver(address domain.Address, hook ReceiverHook)
	UnregisterReceiver(address domain.Address)
}
