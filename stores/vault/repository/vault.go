package repository

import (
	"math/big"
	"sort"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/vault"
)

type impl struct {
	j         *journal.Journal
	funds     map[domain.Address]*big.Int
	royalties map[domain.Address]map[domain.Address]*big.Int
	deposited map[domain.Address]*big.Int
	rewards   map[domain.Address]domain.Address
	rewardSet map[domain.Address]bool
	accepted  map[domain.Address]bool
}

func NewVaultRepo(j *journal.Journal) vault.Repo {
	return &impl{
		j:         j,
		funds:     map[domain.Address]*big.Int{},
		royalties: map[domain.Address]map[domain.Address]*big.Int{},
		deposited: map[domain.Address]*big.Int{},
		rewards:   map[domain.Address]domain.Address{},
		rewardSet: map[domain.Address]bool{},
		accepted:  map[domain.Address]bool{},
	}
}

func read(m map[domain.Address]*big.Int, k domain.Address) *big.Int {
	if v, ok := m[k.ToLower()]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// add applies delta and refuses to go below zero.
func (im *impl) add(m map[domain.Address]*big.Int, k domain.Address, delta *big.Int) error {
	k = k.ToLower()
	prev, existed := m[k]
	next := new(big.Int).Add(read(m, k), delta)
	if next.Sign() < 0 {
		return domain.ErrInsufficientBalance
	}
	m[k] = next
	im.j.Append(func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
	return nil
}

func (im *impl) Fund(c ctx.Ctx, token domain.Address) *big.Int {
	return read(im.funds, token)
}

func (im *impl) AddFund(c ctx.Ctx, token domain.Address, delta *big.Int) error {
	return im.add(im.funds, token, delta)
}

func (im *impl) Royalty(c ctx.Ctx, nft, token domain.Address) *big.Int {
	return read(im.royalties[nft.ToLower()], token)
}

func (im *impl) AddRoyalty(c ctx.Ctx, nft, token domain.Address, delta *big.Int) error {
	nft = nft.ToLower()
	m, ok := im.royalties[nft]
	if !ok {
		m = map[domain.Address]*big.Int{}
		im.royalties[nft] = m
		im.j.Append(func() { delete(im.royalties, nft) })
	}
	return im.add(m, token, delta)
}

func (im *impl) TotalDeposited(c ctx.Ctx, token domain.Address) *big.Int {
	return read(im.deposited, token)
}

func (im *impl) AddDeposited(c ctx.Ctx, token domain.Address, delta *big.Int) error {
	return im.add(im.deposited, token, delta)
}

func (im *impl) RewardToken(c ctx.Ctx, token domain.Address) (domain.Address, bool) {
	r, ok := im.rewards[token.ToLower()]
	return r, ok
}

func (im *impl) SetRewardToken(c ctx.Ctx, token, rewardToken domain.Address) {
	token, rewardToken = token.ToLower(), rewardToken.ToLower()
	prev, existed := im.rewards[token]
	im.rewards[token] = rewardToken
	im.rewardSet[rewardToken] = true
	im.j.Append(func() {
		delete(im.rewardSet, rewardToken)
		if existed {
			im.rewards[token] = prev
		} else {
			delete(im.rewards, token)
		}
	})
}

func (im *impl) IsRewardToken(c ctx.Ctx, rewardToken domain.Address) bool {
	return im.rewardSet[rewardToken.ToLower()]
}

func (im *impl) AcceptedTokens(c ctx.Ctx) []domain.Address {
	res := make([]domain.Address, 0, len(im.accepted))
	for k := range im.accepted {
		res = append(res, k)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func (im *impl) IsAcceptedToken(c ctx.Ctx, token domain.Address) bool {
	return im.accepted[token.ToLower()]
}

func (im *impl) SetAcceptedToken(c ctx.Ctx, token domain.Address, accepted bool) {
	token = token.ToLower()
	prev := im.accepted[token]
	if prev == accepted {
		return
	}
	if accepted {
		im.accepted[token] = true
	} else {
		delete(im.accepted, token)
	}
	im.j.Append(func() {
		if prev {
			im.accepted[token] = true
		} else {
			delete(im.accepted, token)
		}
	})
}
