package repository

import (
	"time"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/index"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/exchangeorder"
	"github.com/mochi-xyz/market/domain/sellorder"
)

type impl struct {
	j      *journal.Journal
	orders []*exchangeorder.ExchangeOrder
	books  map[domain.TokenType]*index.Book
}

func NewExchangeOrderRepo(j *journal.Journal) exchangeorder.Repo {
	return &impl{
		j: j,
		books: map[domain.TokenType]*index.Book{
			domain.TokenType721:  index.NewBook(j),
			domain.TokenType1155: index.NewBook(j),
		},
	}
}

func (im *impl) get(id uint64) (*exchangeorder.ExchangeOrder, error) {
	if id >= uint64(len(im.orders)) {
		return nil, domain.ErrExchangeOrderNotFound
	}
	return im.orders[id], nil
}

// contracts lists every distinct nft contract referenced by the order.
func contracts(o *exchangeorder.ExchangeOrder) []string {
	seen := map[string]bool{}
	res := []string{}
	for _, l := range o.Legs {
		k := l.NftAddress.ToLowerStr()
		if !seen[k] {
			seen[k] = true
			res = append(res, k)
		}
	}
	return res
}

// latestKey keys ERC721 offers by (nft, tokenId) and ERC1155 offers by (initiator, nft, tokenId).
func latestKey(tokenType domain.TokenType, user, nft domain.Address, tokenId domain.TokenId) []string {
	if tokenType == domain.TokenType721 {
		return []string{string(nft), tokenId.String()}
	}
	return []string{string(user), string(nft), tokenId.String()}
}

func (im *impl) book(o *exchangeorder.ExchangeOrder) *index.Book {
	return im.books[o.Legs[0].TokenType]
}

func (im *impl) Create(c ctx.Ctx, order *exchangeorder.ExchangeOrder) (uint64, error) {
	if len(order.Legs) < 2 {
		return 0, domain.ErrInvalidLegCount
	}
	for _, l := range order.Legs {
		if !l.TokenType.IsValid() {
			return 0, domain.ErrInvalidTokenType
		}
	}

	o := order.Clone()
	o.Id = uint64(len(im.orders))
	o.IsActive = true
	o.Cancelled = false
	for i := 1; i < len(o.Legs); i++ {
		o.Legs[i].User = ""
		o.Legs[i].FilledAt = nil
	}

	im.orders = append(im.orders, o)
	im.j.Append(func() { im.orders = im.orders[:len(im.orders)-1] })

	leg0 := o.Legs[0]
	b := im.book(o)
	b.Add(o.Id, string(leg0.User), contracts(o))
	b.SetLatest(o.Id, latestKey(leg0.TokenType, leg0.User, leg0.NftAddress, leg0.TokenId)...)
	return o.Id, nil
}

func (im *impl) Get(c ctx.Ctx, id uint64) (*exchangeorder.ExchangeOrder, error) {
	o, err := im.get(id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

func (im *impl) GetByIds(c ctx.Ctx, ids []uint64) ([]*exchangeorder.ExchangeOrder, error) {
	res := make([]*exchangeorder.ExchangeOrder, 0, len(ids))
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

func (im *impl) FillLeg(c ctx.Ctx, id uint64, leg int, user domain.Address, at time.Time) (*exchangeorder.ExchangeOrder, error) {
	o, err := im.get(id)
	if err != nil {
		return nil, err
	}
	if !o.IsActive {
		return nil, domain.ErrExchangeOrderNotActive
	}
	if leg < 1 || leg >= len(o.Legs) {
		return nil, domain.ErrInvalidLegIndex
	}
	l := &o.Legs[leg]
	if l.IsFilled() {
		return nil, domain.ErrExchangeLegAlreadyFilled
	}

	filledAt := at
	l.User = user
	l.FilledAt = &filledAt
	im.j.Append(func() {
		l.User = ""
		l.FilledAt = nil
	})

	if o.AllFilled() {
		im.deactivate(o)
	}
	return o.Clone(), nil
}

func (im *impl) Cancel(c ctx.Ctx, id uint64) error {
	o, err := im.get(id)
	if err != nil {
		return err
	}
	if !o.IsActive {
		return domain.ErrExchangeOrderNotActive
	}
	o.Cancelled = true
	im.j.Append(func() { o.Cancelled = false })
	im.deactivate(o)
	return nil
}

func (im *impl) deactivate(o *exchangeorder.ExchangeOrder) {
	o.IsActive = false
	im.j.Append(func() { o.IsActive = true })
	im.book(o).Deactivate(o.Id, string(o.Initiator()), contracts(o))
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

func (im *impl) IdsByUser(c ctx.Ctx, user domain.Address, onlyAvailable bool) sellorder.IdList {
	return im.list(func(b *index.Book) []uint64 { return b.ByUser(string(user), onlyAvailable) })
}

func (im *impl) IdsByNftAddress(c ctx.Ctx, nft domain.Address, onlyAvailable bool) sellorder.IdList {
	return im.list(func(b *index.Book) []uint64 { return b.ByNft(string(nft), onlyAvailable) })
}

func (im *impl) LatestId(c ctx.Ctx, tokenType domain.TokenType, user, nft domain.Address, tokenId domain.TokenId) sellorder.LatestId {
	book, ok := im.books[tokenType]
	if !ok {
		return sellorder.LatestId{}
	}
	id, found := book.Latest(latestKey(tokenType, user, nft, tokenId)...)
	return sellorder.LatestId{Found: found, Id: id}
}
