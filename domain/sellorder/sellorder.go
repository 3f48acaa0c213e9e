package sellorder

import (
	"math/big"
	"time"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
)

type Purchase struct {
	Buyer  domain.Address `json:"buyer"`
	Amount uint64         `json:"amount"`
	Time   time.Time      `json:"time"`
}

type SellOrder struct {
	Id           uint64           `json:"id"`
	NftAddress   domain.Address   `json:"nftAddress"`
	TokenId      domain.TokenId   `json:"tokenId"`
	TokenType    domain.TokenType `json:"tokenType"`
	TotalAmount  uint64           `json:"totalAmount"`
	SoldAmount   uint64           `json:"soldAmount"`
	Seller       domain.Address   `json:"seller"`
	Price        *big.Int         `json:"price"`
	PaymentToken domain.Address   `json:"paymentToken"`
	IsActive     bool             `json:"isActive"`
	Purchases    []Purchase       `json:"purchases"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func (o *SellOrder) Remaining() uint64 {
	return o.TotalAmount - o.SoldAmount
}

// Clone returns a deep copy so callers can't mutate stored orders.
func (o *SellOrder) Clone() *SellOrder {
	if o == nil {
		return nil
	}
	c := *o
	c.Price = domain.CopyBig(o.Price)
	c.Purchases = make([]Purchase, len(o.Purchases))
	copy(c.Purchases, o.Purchases)
	return &c
}

// IdList splits order ids by NFT standard.
type IdList struct {
	ERC721  []uint64 `json:"erc721"`
	ERC1155 []uint64 `json:"erc1155"`
}

// LatestId is the result of a latest-listing lookup.
type LatestId struct {
	Found bool   `json:"found"`
	Id    uint64 `json:"id"`
}

// Repo is the sell order book. It moves no funds and holds no custody.
// Writes must run inside the market journal.
type Repo interface {
	Create(c ctx.Ctx, order *SellOrder) (uint64, error)
	Get(c ctx.Ctx, id uint64) (*SellOrder, error)
	GetByIds(c ctx.Ctx, ids []uint64) ([]*SellOrder, error)
	Count(c ctx.Ctx) uint64

	UpdatePrice(c ctx.Ctx, id uint64, price *big.Int) error
	// RecordPurchase appends a fill and deactivates the order once sold out.
	RecordPurchase(c ctx.Ctx, id uint64, p Purchase) (*SellOrder, error)
	Deactivate(c ctx.Ctx, id uint64) error

	AllIds(c ctx.Ctx) IdList
	AvailableIds(c ctx.Ctx) IdList
	IdsBySeller(c ctx.Ctx, seller domain.Address, onlyAvailable bool) IdList
	IdsByNftAddress(c ctx.Ctx, nft domain.Address, onlyAvailable bool) IdList
	// LatestId keys ERC721 by (nft, tokenId) and ERC1155 by (seller, nft, tokenId).
	LatestId(c ctx.Ctx, tokenType domain.TokenType, seller, nft domain.Address, tokenId domain.TokenId) LatestId
}
