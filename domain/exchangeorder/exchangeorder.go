package exchangeorder

import (
	"math/big"
	"time"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/sellorder"
)

// Leg is one side of a barter. Leg 0 is what the initiator offers.
type Leg struct {
	NftAddress   domain.Address   `json:"nftAddress"`
	TokenId      domain.TokenId   `json:"tokenId"`
	TokenType    domain.TokenType `json:"tokenType"`
	NftAmount    uint64           `json:"nftAmount"`
	PaymentToken domain.Address   `json:"paymentToken"`
	Price        *big.Int         `json:"price"`
	// User is the initiator on leg 0 and the counterpart once the leg is filled.
	User domain.Address `json:"user"`
	// Reserved restricts who may fill the leg when set.
	Reserved domain.Address `json:"reserved,omitempty"`
	Data     []byte         `json:"data,omitempty"`
	FilledAt *time.Time     `json:"filledAt,omitempty"`
}

func (l *Leg) IsFilled() bool {
	return !l.User.IsEmpty()
}

type ExchangeOrder struct {
	Id        uint64    `json:"id"`
	Legs      []Leg     `json:"legs"`
	IsActive  bool      `json:"isActive"`
	Cancelled bool      `json:"cancelled"`
	CreatedAt time.Time `json:"createdAt"`
}

func (o *ExchangeOrder) Initiator() domain.Address {
	return o.Legs[0].User
}

// AllFilled reports whether every requested leg has a counterpart.
func (o *ExchangeOrder) AllFilled() bool {
	for i := 1; i < len(o.Legs); i++ {
		if !o.Legs[i].IsFilled() {
			return false
		}
	}
	return true
}

// Share returns how many leg-0 units the filler of leg i receives.
// Units are split evenly; the remainder goes to the lowest legs.
func (o *ExchangeOrder) Share(i int) uint64 {
	n := uint64(len(o.Legs) - 1)
	total := o.Legs[0].NftAmount
	share := total / n
	if uint64(i-1) < total%n {
		share++
	}
	return share
}

// Escrowed returns the leg-0 units still held for unfilled legs.
func (o *ExchangeOrder) Escrowed() uint64 {
	var res uint64
	for i := 1; i < len(o.Legs); i++ {
		if !o.Legs[i].IsFilled() {
			res += o.Share(i)
		}
	}
	return res
}

func (o *ExchangeOrder) Clone() *ExchangeOrder {
	if o == nil {
		return nil
	}
	c := *o
	c.Legs = make([]Leg, len(o.Legs))
	for i, l := range o.Legs {
		l.Price = domain.CopyBig(l.Price)
		if l.Data != nil {
			l.Data = append([]byte{}, l.Data...)
		}
		if l.FilledAt != nil {
			t := *l.FilledAt
			l.FilledAt = &t
		}
		c.Legs[i] = l
	}
	return &c
}

// Repo is the exchange order book. Indexes are split by the standard of leg 0.
type Repo interface {
	Create(c ctx.Ctx, order *ExchangeOrder) (uint64, error)
	Get(c ctx.Ctx, id uint64) (*ExchangeOrder, error)
	GetByIds(c ctx.Ctx, ids []uint64) ([]*ExchangeOrder, error)
	Count(c ctx.Ctx) uint64

	// FillLeg records the counterpart of a leg and deactivates the order when all legs are filled.
	FillLeg(c ctx.Ctx, id uint64, leg int, user domain.Address, at time.Time) (*ExchangeOrder, error)
	Cancel(c ctx.Ctx, id uint64) error

	AllIds(c ctx.Ctx) sellorder.IdList
	AvailableIds(c ctx.Ctx) sellorder.IdList
	IdsByUser(c ctx.Ctx, user domain.Address, onlyAvailable bool) sellorder.IdList
	IdsByNftAddress(c ctx.Ctx, nft domain.Address, onlyAvailable bool) sellorder.IdList
	// LatestId keys by the leg-0 token: ERC721 by (nft, tokenId), ERC1155 by (initiator, nft, tokenId).
	LatestId(c ctx.Ctx, tokenType domain.TokenType, user, nft domain.Address, tokenId domain.TokenId) sellorder.LatestId
}
