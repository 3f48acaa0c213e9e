package repository

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/exchangeorder"
	"github.com/mochi-xyz/market/domain/sellorder"
)

const (
	nftA  = domain.Address("0x00000000000000000000000000000000000000a1")
	nftB  = domain.Address("0x00000000000000000000000000000000000000b1")
	nftC  = domain.Address("0x00000000000000000000000000000000000000c1")
	alice = domain.Address("0x00000000000000000000000000000000000a11ce")
	bob   = domain.Address("0x0000000000000000000000000000000000000b0b")
	carol = domain.Address("0x00000000000000000000000000000000000ca401")
)

type exchangeOrderSuite struct {
	suite.Suite

	j   *journal.Journal
	ctx ctx.Ctx
	im  *impl
}

func TestExchangeOrderSuite(t *testing.T) {
	suite.Run(t, new(exchangeOrderSuite))
}

func (s *exchangeOrderSuite) SetupTest() {
	s.j = journal.New()
	s.ctx = ctx.Background()
	s.im = NewExchangeOrderRepo(s.j).(*impl)
}

func threeLegs() *exchangeorder.ExchangeOrder {
	return &exchangeorder.ExchangeOrder{
		Legs: []exchangeorder.Leg{
			{NftAddress: nftA, TokenId: "0", TokenType: domain.TokenType1155, NftAmount: 5, User: alice},
			{NftAddress: nftB, TokenId: "0", TokenType: domain.TokenType721, NftAmount: 1, Price: big.NewInt(0)},
			{NftAddress: nftC, TokenId: "3", TokenType: domain.TokenType1155, NftAmount: 2, Price: big.NewInt(100), PaymentToken: domain.NativeToken},
		},
	}
}

func (s *exchangeOrderSuite) create(o *exchangeorder.ExchangeOrder) uint64 {
	var id uint64
	s.Require().NoError(s.j.Atomic(s.ctx, func(c ctx.Ctx) (err error) {
		id, err = s.im.Create(c, o)
		return err
	}))
	return id
}

func (s *exchangeOrderSuite) fill(id uint64, leg int, user domain.Address) (*exchangeorder.ExchangeOrder, error) {
	var res *exchangeorder.ExchangeOrder
	err := s.j.Atomic(s.ctx, func(c ctx.Ctx) (err error) {
		res, err = s.im.FillLeg(c, id, leg, user, time.Unix(1700000000, 0))
		return err
	})
	return res, err
}

func (s *exchangeOrderSuite) TestShare() {
	req := s.Require()
	o := threeLegs()
	req.Equal(uint64(3), o.Share(1))
	req.Equal(uint64(2), o.Share(2))
	req.Equal(uint64(5), o.Escrowed())

	o.Legs[1].User = bob
	req.Equal(uint64(2), o.Escrowed())
}

func (s *exchangeOrderSuite) TestCreateIndexesEveryContract() {
	req := s.Require()
	id := s.create(threeLegs())
	req.Equal(uint64(0), id)

	for _, nft := range []domain.Address{nftA, nftB, nftC} {
		req.ElementsMatch([]uint64{0}, s.im.IdsByNftAddress(s.ctx, nft, true).ERC1155, nft)
	}
	req.ElementsMatch([]uint64{0}, s.im.IdsByUser(s.ctx, alice, true).ERC1155)
	req.Empty(s.im.AvailableIds(s.ctx).ERC721)

	res := s.im.LatestId(s.ctx, domain.TokenType1155, alice, nftA, "0")
	req.True(res.Found)
	req.Equal(uint64(0), res.Id)
	req.False(s.im.LatestId(s.ctx, domain.TokenType1155, bob, nftA, "0").Found)
	req.False(s.im.LatestId(s.ctx, domain.TokenType721, "", nftA, "0").Found)
}

func (s *exchangeOrderSuite) TestLatestIdByStandard() {
	req := s.Require()
	offer721 := threeLegs()
	offer721.Legs[0] = exchangeorder.Leg{NftAddress: nftB, TokenId: "4", TokenType: domain.TokenType721, NftAmount: 1, User: alice}
	first := s.create(offer721)

	// an ERC721 offer is found without knowing who listed it
	res := s.im.LatestId(s.ctx, domain.TokenType721, "", nftB, "4")
	req.Equal(sellorder.LatestId{Found: true, Id: first}, res)

	relisted := threeLegs()
	relisted.Legs[0] = exchangeorder.Leg{NftAddress: nftB, TokenId: "4", TokenType: domain.TokenType721, NftAmount: 1, User: bob}
	second := s.create(relisted)
	req.Equal(sellorder.LatestId{Found: true, Id: second}, s.im.LatestId(s.ctx, domain.TokenType721, "", nftB, "4"))

	req.False(s.im.LatestId(s.ctx, domain.TokenType1155, bob, nftB, "4").Found)
}

func (s *exchangeOrderSuite) TestCreateRejectsSingleLeg() {
	o := threeLegs()
	o.Legs = o.Legs[:1]
	err := s.j.Atomic(s.ctx, func(c ctx.Ctx) error {
		_, err := s.im.Create(c, o)
		return err
	})
	s.Require().ErrorIs(err, domain.ErrInvalidLegCount)
}

func (s *exchangeOrderSuite) TestFillAllLegs() {
	req := s.Require()
	s.create(threeLegs())

	o, err := s.fill(0, 2, bob)
	req.NoError(err)
	req.True(o.IsActive)
	req.Equal(bob, o.Legs[2].User)
	req.NotNil(o.Legs[2].FilledAt)

	_, err = s.fill(0, 2, carol)
	req.ErrorIs(err, domain.ErrExchangeLegAlreadyFilled)
	_, err = s.fill(0, 0, carol)
	req.ErrorIs(err, domain.ErrInvalidLegIndex)
	_, err = s.fill(0, 3, carol)
	req.ErrorIs(err, domain.ErrInvalidLegIndex)

	o, err = s.fill(0, 1, carol)
	req.NoError(err)
	req.False(o.IsActive)
	req.False(o.Cancelled)
	req.True(o.AllFilled())
	req.Empty(s.im.AvailableIds(s.ctx).ERC1155)
	req.Empty(s.im.IdsByNftAddress(s.ctx, nftC, true).ERC1155)
	req.ElementsMatch([]uint64{0}, s.im.IdsByNftAddress(s.ctx, nftC, false).ERC1155)

	_, err = s.fill(0, 1, carol)
	req.ErrorIs(err, domain.ErrExchangeOrderNotActive)
}

func (s *exchangeOrderSuite) TestCancel() {
	req := s.Require()
	s.create(threeLegs())

	req.NoError(s.j.Atomic(s.ctx, func(c ctx.Ctx) error { return s.im.Cancel(c, 0) }))
	o, err := s.im.Get(s.ctx, 0)
	req.NoError(err)
	req.False(o.IsActive)
	req.True(o.Cancelled)

	req.ErrorIs(s.j.Atomic(s.ctx, func(c ctx.Ctx) error { return s.im.Cancel(c, 0) }), domain.ErrExchangeOrderNotActive)
	req.ErrorIs(s.j.Atomic(s.ctx, func(c ctx.Ctx) error { return s.im.Cancel(c, 1) }), domain.ErrExchangeOrderNotFound)
}

func (s *exchangeOrderSuite) TestRollback() {
	req := s.Require()
	s.create(threeLegs())

	err := s.j.Atomic(s.ctx, func(c ctx.Ctx) error {
		if _, err := s.im.FillLeg(c, 0, 1, bob, time.Now()); err != nil {
			return err
		}
		if _, err := s.im.FillLeg(c, 0, 2, carol, time.Now()); err != nil {
			return err
		}
		return errors.New("abort")
	})
	req.Error(err)

	o, err := s.im.Get(s.ctx, 0)
	req.NoError(err)
	req.True(o.IsActive)
	req.False(o.Legs[1].IsFilled())
	req.False(o.Legs[2].IsFilled())
	req.ElementsMatch([]uint64{0}, s.im.AvailableIds(s.ctx).ERC1155)
}
