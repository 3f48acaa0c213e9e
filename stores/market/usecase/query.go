package usecase

import (
	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/exchangeorder"
	"github.com/mochi-xyz/market/domain/sellorder"
)

func (im *impl) idList(c ctx.Ctx, fn func(c ctx.Ctx) sellorder.IdList) (sellorder.IdList, error) {
	var res sellorder.IdList
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = fn(c)
		return nil
	})
	return res, err
}

func (im *impl) latest(c ctx.Ctx, fn func(c ctx.Ctx) sellorder.LatestId) (sellorder.LatestId, error) {
	var res sellorder.LatestId
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = fn(c)
		return nil
	})
	return res, err
}

// sell orders

func (im *impl) GetSellOrder(c ctx.Ctx, id uint64) (*sellorder.SellOrder, error) {
	var res *sellorder.SellOrder
	err := im.j.View(c, func(c ctx.Ctx) (err error) {
		res, err = im.sellOrders.Get(c, id)
		return
	})
	return res, err
}

func (im *impl) GetSellOrdersByIds(c ctx.Ctx, ids []uint64) ([]*sellorder.SellOrder, error) {
	var res []*sellorder.SellOrder
	err := im.j.View(c, func(c ctx.Ctx) (err error) {
		res, err = im.sellOrders.GetByIds(c, ids)
		return
	})
	return res, err
}

func (im *impl) GetSellOrderCount(c ctx.Ctx) (uint64, error) {
	var res uint64
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.sellOrders.Count(c)
		return nil
	})
	return res, err
}

func (im *impl) GetAvailableSellOrderIds(c ctx.Ctx) (sellorder.IdList, error) {
	return im.idList(c, im.sellOrders.AvailableIds)
}

func (im *impl) GetAllSellOrderIdsByUser(c ctx.Ctx, user domain.Address) (sellorder.IdList, error) {
	return im.idList(c, func(c ctx.Ctx) sellorder.IdList {
		return im.sellOrders.IdsBySeller(c, user.ToLower(), false)
	})
}

func (im *impl) GetAvailableSellOrderIdsByUser(c ctx.Ctx, user domain.Address) (sellorder.IdList, error) {
	return im.idList(c, func(c ctx.Ctx) sellorder.IdList {
		return im.sellOrders.IdsBySeller(c, user.ToLower(), true)
	})
}

func (im *impl) GetAllSellOrderIdsByNft(c ctx.Ctx, nft domain.Address) (sellorder.IdList, error) {
	return im.idList(c, func(c ctx.Ctx) sellorder.IdList {
		return im.sellOrders.IdsByNftAddress(c, nft.ToLower(), false)
	})
}

func (im *impl) GetAvailableSellOrderIdsByNft(c ctx.Ctx, nft domain.Address) (sellorder.IdList, error) {
	return im.idList(c, func(c ctx.Ctx) sellorder.IdList {
		return im.sellOrders.IdsByNftAddress(c, nft.ToLower(), true)
	})
}

func (im *impl) GetLatestSellIdERC721(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId) (sellorder.LatestId, error) {
	return im.latest(c, func(c ctx.Ctx) sellorder.LatestId {
		return im.sellOrders.LatestId(c, domain.TokenType721, "", nft.ToLower(), tokenId.Canonical())
	})
}

func (im *impl) GetLatestSellIdERC1155(c ctx.Ctx, seller, nft domain.Address, tokenId domain.TokenId) (sellorder.LatestId, error) {
	return im.latest(c, func(c ctx.Ctx) sellorder.LatestId {
		return im.sellOrders.LatestId(c, domain.TokenType1155, seller.ToLower(), nft.ToLower(), tokenId.Canonical())
	})
}

func (im *impl) checkDuplicateSell(c ctx.Ctx, tokenType domain.TokenType, nft domain.Address, tokenId domain.TokenId, seller domain.Address) (bool, error) {
	var res bool
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.hasActiveSellOrder(c, tokenType, nft.ToLower(), tokenId.Canonical(), seller.ToLower())
		return nil
	})
	return res, err
}

func (im *impl) CheckDuplicateERC721(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId, seller domain.Address) (bool, error) {
	return im.checkDuplicateSell(c, domain.TokenType721, nft, tokenId, seller)
}

func (im *impl) CheckDuplicateERC1155(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId, seller domain.Address) (bool, error) {
	return im.checkDuplicateSell(c, domain.TokenType1155, nft, tokenId, seller)
}

// exchange orders

func (im *impl) GetExchangeOrder(c ctx.Ctx, id uint64) (*exchangeorder.ExchangeOrder, error) {
	var res *exchangeorder.ExchangeOrder
	err := im.j.View(c, func(c ctx.Ctx) (err error) {
		res, err = im.exchanges.Get(c, id)
		return
	})
	return res, err
}

func (im *impl) GetExchangeOrdersByIds(c ctx.Ctx, ids []uint64) ([]*exchangeorder.ExchangeOrder, error) {
	var res []*exchangeorder.ExchangeOrder
	err := im.j.View(c, func(c ctx.Ctx) (err error) {
		res, err = im.exchanges.GetByIds(c, ids)
		return
	})
	return res, err
}

func (im *impl) GetExchangeOrderCount(c ctx.Ctx) (uint64, error) {
	var res uint64
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.exchanges.Count(c)
		return nil
	})
	return res, err
}

func (im *impl) GetAvailableExchangeOrderIds(c ctx.Ctx) (sellorder.IdList, error) {
	return im.idList(c, im.exchanges.AvailableIds)
}

func (im *impl) GetAllExchangeOrderIdsByUser(c ctx.Ctx, user domain.Address) (sellorder.IdList, error) {
	return im.idList(c, func(c ctx.Ctx) sellorder.IdList {
		return im.exchanges.IdsByUser(c, user.ToLower(), false)
	})
}

func (im *impl) GetAvailableExchangeOrderIdsByUser(c ctx.Ctx, user domain.Address) (sellorder.IdList, error) {
	return im.idList(c, func(c ctx.Ctx) sellorder.IdList {
		return im.exchanges.IdsByUser(c, user.ToLower(), true)
	})
}

func (im *impl) GetAllExchangeOrderIdsByNft(c ctx.Ctx, nft domain.Address) (sellorder.IdList, error) {
	return im.idList(c, func(c ctx.Ctx) sellorder.IdList {
		return im.exchanges.IdsByNftAddress(c, nft.ToLower(), false)
	})
}

func (im *impl) GetAvailableExchangeOrderIdsByNft(c ctx.Ctx, nft domain.Address) (sellorder.IdList, error) {
	return im.idList(c, func(c ctx.Ctx) sellorder.IdList {
		return im.exchanges.IdsByNftAddress(c, nft.ToLower(), true)
	})
}

func (im *impl) GetLatestExchangeIdERC721(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId) (sellorder.LatestId, error) {
	return im.latest(c, func(c ctx.Ctx) sellorder.LatestId {
		return im.exchanges.LatestId(c, domain.TokenType721, "", nft.ToLower(), tokenId.Canonical())
	})
}

func (im *impl) GetLatestExchangeIdERC1155(c ctx.Ctx, user, nft domain.Address, tokenId domain.TokenId) (sellorder.LatestId, error) {
	return im.latest(c, func(c ctx.Ctx) sellorder.LatestId {
		return im.exchanges.LatestId(c, domain.TokenType1155, user.ToLower(), nft.ToLower(), tokenId.Canonical())
	})
}

// checkDuplicateExchange reports whether user has an active exchange order offering the token.
func (im *impl) checkDuplicateExchange(c ctx.Ctx, tokenType domain.TokenType, nft domain.Address, tokenId domain.TokenId, user domain.Address) (bool, error) {
	user = user.ToLower()
	var res bool
	err := im.j.View(c, func(c ctx.Ctx) error {
		latest := im.exchanges.LatestId(c, tokenType, user, nft.ToLower(), tokenId.Canonical())
		if !latest.Found {
			return nil
		}
		o, err := im.exchanges.Get(c, latest.Id)
		if err != nil {
			return err
		}
		res = o.IsActive && o.Initiator().Equals(user)
		return nil
	})
	return res, err
}

func (im *impl) CheckDuplicateExchangeERC721(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId, user domain.Address) (bool, error) {
	return im.checkDuplicateExchange(c, domain.TokenType721, nft, tokenId, user)
}

func (im *impl) CheckDuplicateExchangeERC1155(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId, user domain.Address) (bool, error) {
	return im.checkDuplicateExchange(c, domain.TokenType1155, nft, tokenId, user)
}
