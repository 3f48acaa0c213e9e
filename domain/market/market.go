package market

import (
	"math/big"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/exchangeorder"
	"github.com/mochi-xyz/market/domain/sellorder"
	"github.com/mochi-xyz/market/domain/vault"
)

// ExchangeOrderParams lists the legs of a new exchange order. Leg 0 is what the caller offers.
type ExchangeOrderParams struct {
	NftAddresses  []domain.Address
	TokenIds      []domain.TokenId
	Amounts       []uint64
	PaymentTokens []domain.Address
	Prices        []*big.Int
	// InitialUsers[0] must be the caller; further entries reserve the matching legs.
	InitialUsers []domain.Address
	// ExtraData is empty or has one entry per leg.
	ExtraData [][]byte
}

// Usecase is the settlement engine. Native value attached to a call is passed as value.
type Usecase interface {
	Address() domain.Address

	CreateSellOrder(c ctx.Ctx, caller, nft domain.Address, tokenId domain.TokenId, amount uint64, price *big.Int, paymentToken domain.Address) (uint64, error)
	UpdatePrice(c ctx.Ctx, caller domain.Address, id uint64, price *big.Int) error
	CancelSellOrder(c ctx.Ctx, caller domain.Address, id uint64) error
	Buy(c ctx.Ctx, caller domain.Address, id uint64, amount uint64, recipient domain.Address, value *big.Int, data []byte) error

	CreateExchangeOrder(c ctx.Ctx, caller domain.Address, p ExchangeOrderParams) (uint64, error)
	CancelExchangeOrder(c ctx.Ctx, caller domain.Address, id uint64) error
	Exchange(c ctx.Ctx, caller domain.Address, id uint64, legIndex int, recipient domain.Address, value *big.Int, data []byte) error

	UpdateFee(c ctx.Ctx, caller domain.Address, f vault.Fraction) error
	AcceptToken(c ctx.Ctx, caller, token domain.Address) error
	RevokeToken(c ctx.Ctx, caller, token domain.Address) error

	GetSellOrder(c ctx.Ctx, id uint64) (*sellorder.SellOrder, error)
	GetSellOrdersByIds(c ctx.Ctx, ids []uint64) ([]*sellorder.SellOrder, error)
	GetSellOrderCount(c ctx.Ctx) (uint64, error)
	GetAvailableSellOrderIds(c ctx.Ctx) (sellorder.IdList, error)
	GetAllSellOrderIdsByUser(c ctx.Ctx, user domain.Address) (sellorder.IdList, error)
	GetAvailableSellOrderIdsByUser(c ctx.Ctx, user domain.Address) (sellorder.IdList, error)
	GetAllSellOrderIdsByNft(c ctx.Ctx, nft domain.Address) (sellorder.IdList, error)
	GetAvailableSellOrderIdsByNft(c ctx.Ctx, nft domain.Address) (sellorder.IdList, error)
	GetLatestSellIdERC721(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId) (sellorder.LatestId, error)
	GetLatestSellIdERC1155(c ctx.Ctx, seller, nft domain.Address, tokenId domain.TokenId) (sellorder.LatestId, error)
	CheckDuplicateERC721(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId, seller domain.Address) (bool, error)
	CheckDuplicateERC1155(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId, seller domain.Address) (bool, error)

	GetExchangeOrder(c ctx.Ctx, id uint64) (*exchangeorder.ExchangeOrder, error)
	GetExchangeOrdersByIds(c ctx.Ctx, ids []uint64) ([]*exchangeorder.ExchangeOrder, error)
	GetExchangeOrderCount(c ctx.Ctx) (uint64, error)
	GetAvailableExchangeOrderIds(c ctx.Ctx) (sellorder.IdList, error)
	GetAllExchangeOrderIdsByUser(c ctx.Ctx, user domain.Address) (sellorder.IdList, error)
	GetAvailableExchangeOrderIdsByUser(c ctx.Ctx, user domain.Address) (sellorder.IdList, error)
	GetAllExchangeOrderIdsByNft(c ctx.Ctx, nft domain.Address) (sellorder.IdList, error)
	GetAvailableExchangeOrderIdsByNft(c ctx.Ctx, nft domain.Address) (sellorder.IdList, error)
	GetLatestExchangeIdERC721(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId) (sellorder.LatestId, error)
	GetLatestExchangeIdERC1155(c ctx.Ctx, user, nft domain.Address, tokenId domain.TokenId) (sellorder.LatestId, error)
	CheckDuplicateExchangeERC721(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId, user domain.Address) (bool, error)
	CheckDuplicateExchangeERC1155(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId, user domain.Address) (bool, error)
}
