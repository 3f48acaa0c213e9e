package usecase

import (
	"math/big"

	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/log"
	"github.com/mochi-xyz/market/base/ptr"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/exchangeorder"
	"github.com/mochi-xyz/market/domain/market"
)

func priceOf(prices []*big.Int, i int) *big.Int {
	if prices[i] == nil {
		return new(big.Int)
	}
	return prices[i]
}

// validateLegShape checks array lengths, leg count and initial users.
func (im *impl) validateLegShape(caller domain.Address, p market.ExchangeOrderParams) error {
	n := len(p.NftAddresses)
	if len(p.TokenIds) != n || len(p.Amounts) != n || len(p.PaymentTokens) != n || len(p.Prices) != n {
		return domain.ErrArrayLengthMismatch
	}
	if n < 2 || n > im.maxLegs {
		return domain.ErrInvalidLegCount
	}
	if len(p.InitialUsers) < 1 || len(p.InitialUsers) > n || !p.InitialUsers[0].Equals(caller) {
		return domain.ErrInvalidInitialUsers
	}
	if len(p.ExtraData) != 0 && len(p.ExtraData) != n {
		return domain.ErrArrayLengthMismatch
	}
	for i := range p.Prices {
		if priceOf(p.Prices, i).Sign() < 0 {
			return xerrors.Errorf("negative price on leg %d: %w", i, domain.ErrInvalidParams)
		}
	}
	return nil
}

func (im *impl) CreateExchangeOrder(c ctx.Ctx, caller domain.Address, p market.ExchangeOrderParams) (uint64, error) {
	caller = caller.ToLower()
	if err := im.validateLegShape(caller, p); err != nil {
		return 0, err
	}
	n := len(p.NftAddresses)

	var id uint64
	err := im.j.Atomic(c, func(c ctx.Ctx) error {
		legs := make([]exchangeorder.Leg, n)
		for i := 0; i < n; i++ {
			nft := p.NftAddresses[i].ToLower()
			if ok, err := im.isAccepted(c, nft); err != nil {
				return err
			} else if !ok {
				return domain.ErrNFTNotAccepted
			}
			legs[i] = exchangeorder.Leg{
				NftAddress:   nft,
				TokenId:      p.TokenIds[i].Canonical(),
				NftAmount:    p.Amounts[i],
				PaymentToken: p.PaymentTokens[i].ToLower(),
				Price:        domain.CopyBig(priceOf(p.Prices, i)),
			}
			if i > 0 && i < len(p.InitialUsers) {
				legs[i].Reserved = p.InitialUsers[i].ToLower()
			}
			if len(p.ExtraData) == n && len(p.ExtraData[i]) > 0 {
				legs[i].Data = append([]byte{}, p.ExtraData[i]...)
			}
		}

		for i := range legs {
			tokenType, err := im.tokenType(c, legs[i].NftAddress)
			if err != nil {
				return err
			}
			legs[i].TokenType = tokenType
			if tokenType == domain.TokenType721 && legs[i].NftAmount != 1 {
				return domain.ErrAmountIsNotEqualOne
			}
			if tokenType == domain.TokenType1155 && legs[i].NftAmount == 0 {
				return domain.ErrAmountIsZero
			}
		}
		if legs[0].NftAmount < uint64(n-1) {
			return domain.ErrAmountIsNotEnough
		}

		for i := range legs {
			if legs[i].Price.Sign() == 0 {
				continue
			}
			if ok, err := im.isAcceptedToken(c, legs[i].PaymentToken); err != nil {
				return err
			} else if !ok {
				return domain.ErrTokenNotAccepted
			}
		}
		if legs[0].Price.Sign() != 0 {
			return domain.ErrInvalidLegPrice
		}

		offer := legs[0]
		if !im.ownsAtLeast(c, offer.TokenType, offer.NftAddress, caller, offer.TokenId, offer.NftAmount) {
			return domain.ErrCallerNotNFTOwner
		}
		if !im.isApproved(c, offer.NftAddress, caller) {
			return domain.ErrNFTNotApprovedForMarket
		}

		legs[0].User = caller
		var err error
		id, err = im.exchanges.Create(c, &exchangeorder.ExchangeOrder{
			Legs:      legs,
			CreatedAt: im.now(),
		})
		if err != nil {
			return err
		}
		if err := im.custody.SafeTransferFrom(c, im.address, offer.NftAddress, caller, im.address, offer.TokenId, offer.NftAmount, offer.Data); err != nil {
			return xerrors.Errorf("escrow offer: %w", err)
		}

		im.emit(c, domain.Event{
			Type:       domain.EventExchangeOrderCreated,
			OrderId:    ptr.Uint64(id),
			NftAddress: offer.NftAddress,
			TokenId:    offer.TokenId,
			Amount:     offer.NftAmount,
			From:       caller,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	im.met.BumpSum("exchange_order.created", 1)
	c.WithFields(log.Fields{
		"id":        id,
		"initiator": caller,
		"legs":      n,
	}).Info("exchange order created")
	return id, nil
}

func (im *impl) CancelExchangeOrder(c ctx.Ctx, caller domain.Address, id uint64) error {
	caller = caller.ToLower()
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		leave, err := im.guard.Enter(nonReentrant)
		if err != nil {
			return err
		}
		defer leave()

		o, err := im.exchanges.Get(c, id)
		if err != nil {
			return err
		}
		if !o.Initiator().Equals(caller) {
			return domain.ErrCallerNotSeller
		}
		if !o.IsActive {
			return domain.ErrExchangeOrderNotActive
		}

		escrowed := o.Escrowed()
		if err := im.exchanges.Cancel(c, id); err != nil {
			return err
		}
		offer := o.Legs[0]
		if escrowed > 0 {
			if err := im.custody.SafeTransferFrom(c, im.address, offer.NftAddress, im.address, caller, offer.TokenId, escrowed, nil); err != nil {
				return xerrors.Errorf("return escrow: %w", err)
			}
		}

		im.emit(c, domain.Event{
			Type:       domain.EventExchangeOrderCancelled,
			OrderId:    ptr.Uint64(id),
			NftAddress: offer.NftAddress,
			TokenId:    offer.TokenId,
			Amount:     escrowed,
			To:         caller,
		})
		return nil
	})
}

func (im *impl) Exchange(c ctx.Ctx, caller domain.Address, id uint64, legIndex int, recipient domain.Address, value *big.Int, data []byte) error {
	caller, recipient = caller.ToLower(), recipient.ToLower()
	if recipient.IsEmpty() {
		recipient = caller
	}

	var share uint64
	err := im.j.Atomic(c, func(c ctx.Ctx) error {
		leave, err := im.guard.Enter(nonReentrant)
		if err != nil {
			return err
		}
		defer leave()

		paid, err := im.receive(c, caller, value)
		if err != nil {
			return err
		}

		o, err := im.exchanges.Get(c, id)
		if err != nil {
			return err
		}
		if !o.IsActive {
			return domain.ErrExchangeOrderNotActive
		}
		initiator := o.Initiator()
		if initiator.Equals(caller) {
			return domain.ErrCallerIsSeller
		}
		if legIndex < 1 || legIndex >= len(o.Legs) {
			return domain.ErrInvalidLegIndex
		}
		leg := o.Legs[legIndex]
		if leg.IsFilled() {
			return domain.ErrExchangeLegAlreadyFilled
		}
		if !leg.Reserved.IsEmpty() && !leg.Reserved.Equals(caller) {
			return domain.ErrCallerNotReservedUser
		}
		if !im.ownsAtLeast(c, leg.TokenType, leg.NftAddress, caller, leg.TokenId, leg.NftAmount) {
			return domain.ErrCallerNotNFTOwner
		}
		if !im.isApproved(c, leg.NftAddress, caller) {
			return domain.ErrNFTNotApprovedForMarket
		}
		if leg.Price.Sign() > 0 {
			if ok, err := im.isAcceptedToken(c, leg.PaymentToken); err != nil {
				return err
			} else if !ok {
				return domain.ErrTokenNotAccepted
			}
		}
		if err := checkValue(leg.PaymentToken, leg.Price, paid); err != nil {
			return err
		}

		updated, err := im.exchanges.FillLeg(c, id, legIndex, caller, im.now())
		if err != nil {
			return err
		}

		offer := o.Legs[0]
		if _, err := im.settle(c, offer.NftAddress, caller, initiator, leg.PaymentToken, leg.Price); err != nil {
			return err
		}
		if err := im.custody.SafeTransferFrom(c, im.address, leg.NftAddress, caller, initiator, leg.TokenId, leg.NftAmount, leg.Data); err != nil {
			return xerrors.Errorf("deliver leg %d: %w", legIndex, err)
		}
		share = o.Share(legIndex)
		if err := im.custody.SafeTransferFrom(c, im.address, offer.NftAddress, im.address, recipient, offer.TokenId, share, data); err != nil {
			return xerrors.Errorf("deliver offer share: %w", err)
		}

		im.emit(c, domain.Event{
			Type:         domain.EventExchangeLegFilled,
			OrderId:      ptr.Uint64(id),
			LegIndex:     ptr.Int(legIndex),
			NftAddress:   leg.NftAddress,
			TokenId:      leg.TokenId,
			Amount:       leg.NftAmount,
			From:         caller,
			To:           initiator,
			PaymentToken: leg.PaymentToken,
			Value:        leg.Price.String(),
		})
		if !updated.IsActive {
			im.emit(c, domain.Event{
				Type:       domain.EventExchangeOrderCompleted,
				OrderId:    ptr.Uint64(id),
				NftAddress: offer.NftAddress,
				TokenId:    offer.TokenId,
				Amount:     offer.NftAmount,
				From:       initiator,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	im.met.BumpSum("exchange_order.filled", 1)
	c.WithFields(log.Fields{
		"id":    id,
		"leg":   legIndex,
		"user":  caller,
		"share": share,
	}).Info("exchange leg filled")
	return nil
}
