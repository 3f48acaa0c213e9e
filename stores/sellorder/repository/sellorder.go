package repository

import (
	"math/big"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/index"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/sellorder"
)

type impl struct {
	j      *journal.Journal
	orders []*sellorder.SellOrder
	books  map[domain.TokenType]*index.Book
}

func NewSellOrderRepo(j *journal.Journal) sellorder.Repo {
	return &impl{
		j: j,
		books: map[domain.TokenType]*index.Book{
			domain.TokenType721:  index.NewBook(j),
			domain.TokenType1155: index.NewBook(j),
		},
	}
}

func (im *impl) get(id uint64) (*sellorder.SellOrder, error) {
	if id >= uint64(len(im.orders)) {
		return nil, domain.ErrSellOrderNotFound
	}
	return im.orders[id], nil
}

func latestKey(o *sellorder.SellOrder) []string {
	if o.TokenType == domain.TokenType721 {
		return []string{string(o.NftAddress), o.TokenId.String()}
	}
	return []string{string(o.Seller), string(o.NftAddress), o.TokenId.String()}
}

func (im *impl) Create(c ctx.Ctx, order *sellorder.SellOrder) (uint64, error) {
	book, ok := im.books[order.TokenType]
	if !ok {
		return 0, domain.ErrInvalidTokenType
	}

	o := order.Clone()
	o.Id = uint64(len(im.orders))
	o.SoldAmount = 0
	o.IsActive = true
	o.Purchases = []sellorder.Purchase{}

	im.orders = append(im.orders, o)
	im.j.Append(func() { im.orders = im.orders[:len(im.orders)-1] })

	book.Add(o.Id, string(o.Seller), []string{string(o.NftAddress)})
	book.SetLatest(o.Id, latestKey(o)...)
	return o.Id, nil
}

func (im *impl) Get(c ctx.Ctx, id uint64) (*sellorder.SellOrder, error) {
	o, err := im.get(id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

func (im *impl) GetByIds(c ctx.Ctx, ids []uint64) ([]*sellorder.SellOrder, error) {
	res := make([]*sellorder.SellOrder, 0, len(ids))
	for _, id := range ids {
		o, err := im.get(id)
		if err != nil {
			return nil, err
		}
		res = append(res, o.Clone())
	}
	return res, nil
}

func (im *impl) Count(c ctx.Ctx) uint64 {
	return uint64(len(im.orders))
}

func (im *impl) UpdatePrice(c ctx.Ctx, id uint64, price *big.Int) error {
	o, err := im.get(id)
	if err != nil {
		return err
	}
	if !o.IsActive {
		return domain.ErrSellOrderNotActive
	}
	prev := o.Price
	o.Price = domain.CopyBig(price)
	im.j.Append(func() { o.Price = prev })
	return nil
}

func (im *impl) RecordPurchase(c ctx.Ctx, id uint64, p sellorder.Purchase) (*sellorder.SellOrder, error) {
	o, err := im.get(id)
	if err != nil {
		return nil, err
	}
	if !o.IsActive {
		return nil, domain.ErrSellOrderNotActive
	}
	if p.Amount == 0 {
		return nil, domain.ErrAmountIsZero
	}
	if p.Amount > o.Remaining() {
		return nil, domain.ErrAmountIsNotEnough
	}

	prevSold, prevLen := o.SoldAmount, len(o.Purchases)
	o.SoldAmount += p.Amount
	o.Purchases = append(o.Purchases, p)
	im.j.Append(func() {
		o.SoldAmount = prevSold
		o.Purchases = o.Purchases[:prevLen]
	})

	if o.SoldAmount == o.TotalAmount {
		im.deactivate(o)
	}
	return o.Clone(), nil
}

func (im *impl) Deactivate(c ctx.Ctx, id uint64) error {
	o, err := im.get(id)
	if err != nil {
		return err
	}
	if !o.IsActive {
		return domain.ErrSellOrderNotActive
	}
	im.deactivate(o)
	return nil
}

func (im *impl) deactivate(o *sellorder.SellOrder) {
	o.IsActive = false
	im.j.Append(func() { o.IsActive = true })
	im.books[o.TokenType].Deactivate(o.Id, string(o.Seller), []string{string(o.NftAddress)})
}

func (im *impl) list(fn func(b *index.Book) []uint64) sellorder.IdList {
	return sellorder.IdList{
		ERC721:  fn(im.books[domain.TokenType721]),
		ERC1155: fn(im.books[domain.TokenType1155]),
	}
}

func (im *impl) AllIds(c ctx.Ctx) sellorder.IdList {
	return im.list(func(b *index.Book) []uint64 { return b.All() })
}

func (im *impl) AvailableIds(c ctx.Ctx) sellorder.IdList {
	return im.list(func(b *index.Book) []uint64 { return b.Available() })
}

func (im *impl) IdsBySeller(c ctx.Ctx, seller domain.Address, onlyAvailable bool) sellorder.IdList {
	return im.list(func(b *index.Book) []uint64 { return b.ByUser(string(seller), onlyAvailable) })
}

func (im *impl) IdsByNftAddress(c ctx.Ctx, nft domain.Address, onlyAvailable bool) sellorder.IdList {
	return im.list(func(b *index.Book) []uint64 { return b.ByNft(string(nft), onlyAvailable) })
}

func (im *impl) LatestId(c ctx.Ctx, tokenType domain.TokenType, seller, nft domain.Address, tokenId domain.TokenId) sellorder.LatestId {
	book, ok := im.books[tokenType]
	if !ok {
		return sellorder.LatestId{}
	}
	key := latestKey(&sellorder.SellOrder{TokenType: tokenType, Seller: seller, NftAddress: nft, TokenId: tokenId})
	id, found := book.Latest(key...)
	return sellorder.LatestId{Found: found, Id: id}
}
