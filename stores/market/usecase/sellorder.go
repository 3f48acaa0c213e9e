package usecase

import (
	"math/big"

	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/log"
	"github.com/mochi-xyz/market/base/ptr"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/sellorder"
)

// every guarded entry point shares one lock, a hook may not call back into any of them
const nonReentrant = "market"

func (im *impl) CreateSellOrder(c ctx.Ctx, caller, nft domain.Address, tokenId domain.TokenId, amount uint64, price *big.Int, paymentToken domain.Address) (uint64, error) {
	caller, nft, paymentToken = caller.ToLower(), nft.ToLower(), paymentToken.ToLower()
	tokenId = tokenId.Canonical()

	var id uint64
	err := im.j.Atomic(c, func(c ctx.Ctx) error {
		if ok, err := im.isAccepted(c, nft); err != nil {
			return err
		} else if !ok {
			return domain.ErrNFTNotAccepted
		}
		if price == nil || price.Sign() <= 0 {
			return domain.ErrPriceIsZero
		}
		if ok, err := im.isAcceptedToken(c, paymentToken); err != nil {
			return err
		} else if !ok {
			return domain.ErrTokenNotAccepted
		}

		tokenType, err := im.tokenType(c, nft)
		if err != nil {
			return err
		}
		if tokenType == domain.TokenType721 && amount != 1 {
			return domain.ErrAmountIsNotEqualOne
		}
		if tokenType == domain.TokenType1155 && amount == 0 {
			return domain.ErrAmountIsZero
		}
		if !im.ownsAtLeast(c, tokenType, nft, caller, tokenId, amount) {
			return domain.ErrCallerNotNFTOwner
		}
		if !im.isApproved(c, nft, caller) {
			return domain.ErrNFTNotApprovedForMarket
		}
		if im.hasActiveSellOrder(c, tokenType, nft, tokenId, caller) {
			return domain.ErrSellOrderDuplicate
		}

		id, err = im.sellOrders.Create(c, &sellorder.SellOrder{
			NftAddress:   nft,
			TokenId:      tokenId,
			TokenType:    tokenType,
			TotalAmount:  amount,
			Seller:       caller,
			Price:        price,
			PaymentToken: paymentToken,
			CreatedAt:    im.now(),
		})
		if err != nil {
			return err
		}

		if err := im.custody.SafeTransferFrom(c, im.address, nft, caller, im.address, tokenId, amount, nil); err != nil {
			return xerrors.Errorf("escrow nft: %w", err)
		}

		im.emit(c, domain.Event{
			Type:         domain.EventSellOrderCreated,
			OrderId:      ptr.Uint64(id),
			NftAddress:   nft,
			TokenId:      tokenId,
			Amount:       amount,
			From:         caller,
			PaymentToken: paymentToken,
			Value:        price.String(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	im.met.BumpSum("sell_order.created", 1)
	c.WithFields(log.Fields{
		"id":     id,
		"nft":    nft,
		"seller": caller,
	}).Info("sell order created")
	return id, nil
}

// hasActiveSellOrder reports whether seller already lists the token.
func (im *impl) hasActiveSellOrder(c ctx.Ctx, tokenType domain.TokenType, nft domain.Address, tokenId domain.TokenId, seller domain.Address) bool {
	latest := im.sellOrders.LatestId(c, tokenType, seller, nft, tokenId)
	if !latest.Found {
		return false
	}
	o, err := im.sellOrders.Get(c, latest.Id)
	if err != nil {
		return false
	}
	return o.IsActive && o.Seller.Equals(seller)
}

func (im *impl) UpdatePrice(c ctx.Ctx, caller domain.Address, id uint64, price *big.Int) error {
	caller = caller.ToLower()
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		o, err := im.sellOrders.Get(c, id)
		if err != nil {
			return err
		}
		if !o.Seller.Equals(caller) {
			return domain.ErrCallerNotSeller
		}
		if !o.IsActive {
			return domain.ErrSellOrderNotActive
		}
		if price != nil && o.Price.Cmp(price) == 0 {
			return domain.ErrPriceNotChange
		}
		if price == nil || price.Sign() <= 0 {
			return domain.ErrPriceIsZero
		}

		if err := im.sellOrders.UpdatePrice(c, id, price); err != nil {
			return err
		}
		im.emit(c, domain.Event{
			Type:         domain.EventSellOrderPriceUpdated,
			OrderId:      ptr.Uint64(id),
			NftAddress:   o.NftAddress,
			TokenId:      o.TokenId,
			From:         caller,
			PaymentToken: o.PaymentToken,
			Value:        price.String(),
		})
		return nil
	})
}

func (im *impl) CancelSellOrder(c ctx.Ctx, caller domain.Address, id uint64) error {
	caller = caller.ToLower()
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		leave, err := im.guard.Enter(nonReentrant)
		if err != nil {
			return err
		}
		defer leave()

		o, err := im.sellOrders.Get(c, id)
		if err != nil {
			return err
		}
		if !o.Seller.Equals(caller) {
			return domain.ErrCallerNotSeller
		}
		if !o.IsActive {
			return domain.ErrSellOrderNotActive
		}

		if err := im.sellOrders.Deactivate(c, id); err != nil {
			return err
		}
		if remaining := o.Remaining(); remaining > 0 {
			if err := im.custody.SafeTransferFrom(c, im.address, o.NftAddress, im.address, o.Seller, o.TokenId, remaining, nil); err != nil {
				return xerrors.Errorf("return escrow: %w", err)
			}
		}

		im.emit(c, domain.Event{
			Type:       domain.EventSellOrderCancelled,
			OrderId:    ptr.Uint64(id),
			NftAddress: o.NftAddress,
			TokenId:    o.TokenId,
			Amount:     o.Remaining(),
			To:         o.Seller,
		})
		return nil
	})
}

func (im *impl) Buy(c ctx.Ctx, caller domain.Address, id uint64, amount uint64, recipient domain.Address, value *big.Int, data []byte) error {
	caller, recipient = caller.ToLower(), recipient.ToLower()
	if recipient.IsEmpty() {
		recipient = caller
	}

	var total *big.Int
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

		o, err := im.sellOrders.Get(c, id)
		if err != nil {
			return err
		}
		if !o.IsActive {
			return domain.ErrSellOrderNotActive
		}
		if o.Seller.Equals(caller) {
			return domain.ErrCallerIsSeller
		}
		if amount == 0 {
			return domain.ErrAmountIsZero
		}
		if amount > o.Remaining() {
			return domain.ErrAmountIsNotEnough
		}
		total = new(big.Int).Mul(o.Price, new(big.Int).SetUint64(amount))
		if err := checkValue(o.PaymentToken, total, paid); err != nil {
			return err
		}

		updated, err := im.sellOrders.RecordPurchase(c, id, sellorder.Purchase{
			Buyer:  recipient,
			Amount: amount,
			Time:   im.now(),
		})
		if err != nil {
			return err
		}

		if _, err := im.settle(c, o.NftAddress, caller, o.Seller, o.PaymentToken, total); err != nil {
			return err
		}
		if err := im.custody.SafeTransferFrom(c, im.address, o.NftAddress, im.address, recipient, o.TokenId, amount, data); err != nil {
			return xerrors.Errorf("deliver nft: %w", err)
		}

		im.emit(c, domain.Event{
			Type:         domain.EventSellOrderBought,
			OrderId:      ptr.Uint64(id),
			NftAddress:   o.NftAddress,
			TokenId:      o.TokenId,
			Amount:       amount,
			From:         o.Seller,
			To:           recipient,
			PaymentToken: o.PaymentToken,
			Value:        total.String(),
		})
		if !updated.IsActive {
			im.emit(c, domain.Event{
				Type:       domain.EventSellOrderFilled,
				OrderId:    ptr.Uint64(id),
				NftAddress: o.NftAddress,
				TokenId:    o.TokenId,
				Amount:     updated.SoldAmount,
				From:       o.Seller,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	im.met.BumpSum("sell_order.bought", float64(amount))
	c.WithFields(log.Fields{
		"id":     id,
		"buyer":  caller,
		"amount": amount,
		"total":  total,
	}).Info("sell order bought")
	return nil
}
