package usecase

import (
	"math/big"
	"time"

	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/ethereum"
	"github.com/mochi-xyz/market/base/guard"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/base/log"
	"github.com/mochi-xyz/market/base/metrics"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/vault"
	"github.com/mochi-xyz/market/service/cache"
)

const (
	rewardNamePrefix   = "rMOCHI for "
	rewardSymbolPrefix = "rMOCHI_"
	rewardDecimals     = 18
)

var (
	// rateUnit scales reward rates
	rateUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

type VaultUseCaseCfg struct {
	Address   domain.Address
	Market    domain.Address
	MomaToken domain.Address

	RegularFee      vault.Fraction
	MomaFee         vault.Fraction
	Royalty         vault.Fraction
	RewardRecipient vault.RecipientPolicy

	Repo     vault.Repo
	Journal  *journal.Journal
	Ledger   domain.FungibleLedger
	Custody  domain.NFTCustody
	Admins   domain.AdminRegistry
	Emitter  domain.EventEmitter
	Metadata cache.Service
	Metrics  metrics.Service
	// Now defaults to time.Now
	Now func() time.Time
}

type impl struct {
	address   domain.Address
	market    domain.Address
	momaToken domain.Address

	fee     vault.Fraction
	momaFee vault.Fraction
	royalty vault.Fraction
	reward  *vault.RewardParameters
	policy  vault.RecipientPolicy

	repo     vault.Repo
	j        *journal.Journal
	ledger   domain.FungibleLedger
	custody  domain.NFTCustody
	admins   domain.AdminRegistry
	emitter  domain.EventEmitter
	metadata cache.Service
	met      metrics.Service
	now      func() time.Time
	guard    *guard.Guard
}

func New(cfg *VaultUseCaseCfg) vault.Usecase {
	im := &impl{
		address:   cfg.Address.ToLower(),
		market:    cfg.Market.ToLower(),
		momaToken: cfg.MomaToken.ToLower(),
		fee:       cfg.RegularFee,
		momaFee:   cfg.MomaFee,
		royalty:   cfg.Royalty,
		policy:    cfg.RewardRecipient,
		repo:      cfg.Repo,
		j:         cfg.Journal,
		ledger:    cfg.Ledger,
		custody:   cfg.Custody,
		admins:    cfg.Admins,
		emitter:   cfg.Emitter,
		metadata:  cfg.Metadata,
		met:       cfg.Metrics,
		now:       cfg.Now,
		guard:     guard.New(domain.ErrReentrantCall),
	}
	if !im.policy.IsValid() {
		im.policy = vault.RewardToSeller
	}
	if im.emitter == nil {
		im.emitter = domain.NoopEmitter{}
	}
	if im.met == nil {
		im.met = metrics.NewNoop()
	}
	if im.now == nil {
		im.now = time.Now
	}
	return im
}

func (im *impl) Address() domain.Address {
	return im.address
}

func (im *impl) onlyAdmin(c ctx.Ctx, caller domain.Address) error {
	if !im.admins.IsMarketAdmin(c, caller) {
		return domain.ErrCallerNotMarketAdmin
	}
	return nil
}

func (im *impl) feeOf(token domain.Address) vault.Fraction {
	if !im.momaToken.IsEmpty() && token.Equals(im.momaToken) {
		return im.momaFee
	}
	return im.fee
}

func (im *impl) rate() *big.Int {
	return im.reward.RateAt(uint64(im.now().Unix()))
}

func (im *impl) emit(c ctx.Ctx, e domain.Event) {
	e.Time = im.now()
	im.emitter.Emit(c, e)
}

func (im *impl) Deposit(c ctx.Ctx, caller, nft, payer, seller, token domain.Address, amount *big.Int) (*vault.Settlement, error) {
	var res *vault.Settlement
	err := im.j.Atomic(c, func(c ctx.Ctx) error {
		leave, err := im.guard.Enter("Deposit")
		if err != nil {
			return err
		}
		defer leave()

		if !caller.Equals(im.market) {
			return domain.ErrCallerNotMarket
		}
		if amount == nil || amount.Sign() <= 0 {
			return domain.ErrAmountIsZero
		}

		fee := im.feeOf(token).Of(amount)
		royalty := im.royalty.Of(fee)
		s := &vault.Settlement{
			Gross:   new(big.Int).Set(amount),
			Fee:     fee,
			Royalty: royalty,
			Fund:    new(big.Int).Sub(fee, royalty),
			Net:     new(big.Int).Sub(amount, fee),
			Reward:  new(big.Int),
		}

		if err := im.repo.AddDeposited(c, token, amount); err != nil {
			return err
		}
		if err := im.repo.AddFund(c, token, s.Fund); err != nil {
			return err
		}
		if err := im.repo.AddRoyalty(c, nft, token, s.Royalty); err != nil {
			return err
		}

		if s.Net.Sign() > 0 {
			if err := im.ledger.Transfer(c, token, im.address, seller, s.Net); err != nil {
				return xerrors.Errorf("forward to seller: %w", err)
			}
		}

		if err := im.mintReward(c, s, payer, seller, token); err != nil {
			return err
		}

		im.emit(c, domain.Event{
			Type:         domain.EventDeposited,
			NftAddress:   nft.ToLower(),
			From:         payer.ToLower(),
			To:           seller.ToLower(),
			PaymentToken: token.ToLower(),
			Value:        amount.String(),
		})
		res = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.met.BumpSum("deposit", 1, "token", token.ToLowerStr())
	c.WithFields(log.Fields{
		"nft":   nft,
		"token": token,
		"gross": res.Gross,
		"fee":   res.Fee,
	}).Info("deposit settled")
	return res, nil
}

type rewardShare struct {
	to     domain.Address
	amount *big.Int
}

// mintReward credits fee * rate / 1e18 reward tokens according to the recipient policy.
func (im *impl) mintReward(c ctx.Ctx, s *vault.Settlement, payer, seller, token domain.Address) error {
	rewardToken, ok := im.repo.RewardToken(c, token)
	if !ok {
		return nil
	}
	s.RewardToken = rewardToken

	total := new(big.Int).Mul(s.Fee, im.rate())
	total.Quo(total, rateUnit)
	if total.Sign() == 0 {
		return nil
	}
	s.Reward = total

	var shares []rewardShare
	switch im.policy {
	case vault.RewardToPayer:
		shares = []rewardShare{{payer, total}}
	case vault.RewardToBoth:
		half := new(big.Int).Rsh(total, 1)
		// the odd unit stays with the seller
		shares = []rewardShare{{seller, new(big.Int).Sub(total, half)}, {payer, half}}
	default:
		shares = []rewardShare{{seller, total}}
	}

	for _, sh := range shares {
		if sh.amount.Sign() == 0 {
			continue
		}
		if err := im.ledger.Mint(c, im.address, rewardToken, sh.to, sh.amount); err != nil {
			return xerrors.Errorf("mint reward: %w", err)
		}
		im.emit(c, domain.Event{
			Type:         domain.EventRewardMinted,
			To:           sh.to.ToLower(),
			PaymentToken: rewardToken,
			Value:        sh.amount.String(),
		})
	}
	return nil
}

func (im *impl) ClaimRoyalty(c ctx.Ctx, caller, nft, token domain.Address, amount *big.Int, recipient domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		leave, err := im.guard.Enter("ClaimRoyalty")
		if err != nil {
			return err
		}
		defer leave()

		if !im.admins.IsMarketAdmin(c, caller) {
			owner, err := im.custody.CollectionOwner(c, nft)
			if err != nil || !owner.Equals(caller) {
				return domain.ErrCallerNotCollectionOwner
			}
		}
		if amount == nil || amount.Sign() < 0 {
			return domain.ErrInvalidParams
		}
		if im.repo.Royalty(c, nft, token).Cmp(amount) < 0 {
			return domain.ErrInsufficientBalance
		}

		if err := im.repo.AddRoyalty(c, nft, token, new(big.Int).Neg(amount)); err != nil {
			return err
		}
		if err := im.ledger.Transfer(c, token, im.address, recipient, amount); err != nil {
			return err
		}

		im.emit(c, domain.Event{
			Type:         domain.EventRoyaltyClaimed,
			NftAddress:   nft.ToLower(),
			From:         caller.ToLower(),
			To:           recipient.ToLower(),
			PaymentToken: token.ToLower(),
			Value:        amount.String(),
		})
		return nil
	})
}

func (im *impl) WithdrawFund(c ctx.Ctx, caller, token domain.Address, amount *big.Int, recipient domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		leave, err := im.guard.Enter("WithdrawFund")
		if err != nil {
			return err
		}
		defer leave()

		if err := im.onlyAdmin(c, caller); err != nil {
			return err
		}
		if amount == nil || amount.Sign() < 0 {
			return domain.ErrInvalidParams
		}
		if im.repo.Fund(c, token).Cmp(amount) < 0 {
			return domain.ErrInsufficientBalance
		}

		if err := im.repo.AddFund(c, token, new(big.Int).Neg(amount)); err != nil {
			return err
		}
		if err := im.ledger.Transfer(c, token, im.address, recipient, amount); err != nil {
			return err
		}

		im.emit(c, domain.Event{
			Type:         domain.EventFundWithdrawn,
			From:         caller.ToLower(),
			To:           recipient.ToLower(),
			PaymentToken: token.ToLower(),
			Value:        amount.String(),
		})
		return nil
	})
}

func (im *impl) BurnRewardToken(c ctx.Ctx, caller, rewardToken domain.Address, amount *big.Int) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if !im.repo.IsRewardToken(c, rewardToken) {
			return xerrors.Errorf("reward token %s: %w", rewardToken, domain.ErrAssetNotFound)
		}
		return im.ledger.Burn(c, rewardToken, caller, amount)
	})
}

func (im *impl) setFraction(c ctx.Ctx, caller domain.Address, dst *vault.Fraction, f vault.Fraction) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if err := im.onlyAdmin(c, caller); err != nil {
			return err
		}
		if !f.IsValid() {
			return domain.ErrInvalidFraction
		}
		prev := *dst
		*dst = f
		im.j.Append(func() { *dst = prev })
		return nil
	})
}

func (im *impl) UpdateRoyaltyParameters(c ctx.Ctx, caller domain.Address, f vault.Fraction) error {
	return im.setFraction(c, caller, &im.royalty, f)
}

func (im *impl) UpdateFee(c ctx.Ctx, caller domain.Address, f vault.Fraction) error {
	return im.setFraction(c, caller, &im.fee, f)
}

func (im *impl) UpdateMomaFee(c ctx.Ctx, caller domain.Address, f vault.Fraction) error {
	return im.setFraction(c, caller, &im.momaFee, f)
}

func (im *impl) SetupRewardParameters(c ctx.Ctx, caller domain.Address, p vault.RewardParameters) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if err := im.onlyAdmin(c, caller); err != nil {
			return err
		}
		if p.PeriodLength == 0 {
			return domain.ErrPeriodIsZero
		}
		if p.NumberOfCycle == 0 {
			return domain.ErrNumberOfCycleIsZero
		}
		now := uint64(im.now().Unix())
		if p.StartTime == 0 {
			p.StartTime = now
		} else if p.StartTime < now {
			return domain.ErrInvalidStartTime
		}
		if p.FirstRate == nil || p.FirstRate.Sign() <= 0 {
			return domain.ErrFirstRateIsZero
		}

		p.FirstRate = new(big.Int).Set(p.FirstRate)
		prev := im.reward
		im.reward = &p
		im.j.Append(func() { im.reward = prev })

		c.WithFields(log.Fields{
			"period": p.PeriodLength,
			"cycles": p.NumberOfCycle,
			"start":  p.StartTime,
			"rate":   p.FirstRate,
		}).Info("reward parameters updated")
		return nil
	})
}

func (im *impl) tokenMetadata(c ctx.Ctx, token domain.Address) (*domain.TokenMetadata, error) {
	if im.metadata == nil {
		return im.ledger.Metadata(c, token)
	}
	meta := &domain.TokenMetadata{}
	getter := func() (interface{}, error) {
		return im.ledger.Metadata(c, token)
	}
	if err := im.metadata.GetByFunc(c, token.ToLowerStr(), meta, getter); err != nil {
		return nil, err
	}
	return meta, nil
}

func (im *impl) AcceptToken(c ctx.Ctx, caller, token domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if err := im.onlyAdmin(c, caller); err != nil {
			return err
		}
		if im.repo.IsAcceptedToken(c, token) {
			return domain.ErrTokenAlreadyAccepted
		}
		meta, err := im.tokenMetadata(c, token)
		if err != nil {
			return err
		}
		im.repo.SetAcceptedToken(c, token, true)

		if _, ok := im.repo.RewardToken(c, token); ok {
			return nil
		}
		rewardToken := domain.Address(ethereum.DeriveAddress(string(im.address), string(token)))
		if err := im.ledger.CreateToken(c, rewardToken, domain.TokenMetadata{
			Name:     rewardNamePrefix + meta.Name,
			Symbol:   rewardSymbolPrefix + meta.Symbol,
			Decimals: rewardDecimals,
		}, im.address); err != nil {
			return xerrors.Errorf("create reward token: %w", err)
		}
		im.repo.SetRewardToken(c, token, rewardToken)

		c.WithFields(log.Fields{"token": token, "rewardToken": rewardToken}).Info("reward token created")
		return nil
	})
}

func (im *impl) RevokeToken(c ctx.Ctx, caller, token domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if err := im.onlyAdmin(c, caller); err != nil {
			return err
		}
		if !im.repo.IsAcceptedToken(c, token) {
			return domain.ErrTokenNotAccepted
		}
		im.repo.SetAcceptedToken(c, token, false)
		return nil
	})
}

// views

func (im *impl) MochiFund(c ctx.Ctx, token domain.Address) (*big.Int, error) {
	var res *big.Int
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.repo.Fund(c, token)
		return nil
	})
	return res, err
}

func (im *impl) Royalty(c ctx.Ctx, nft, token domain.Address) (*big.Int, error) {
	var res *big.Int
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.repo.Royalty(c, nft, token)
		return nil
	})
	return res, err
}

func (im *impl) TotalDeposited(c ctx.Ctx, token domain.Address) (*big.Int, error) {
	var res *big.Int
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.repo.TotalDeposited(c, token)
		return nil
	})
	return res, err
}

func (im *impl) Fee(c ctx.Ctx, token domain.Address) (vault.Fraction, error) {
	var res vault.Fraction
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.feeOf(token)
		return nil
	})
	return res, err
}

func (im *impl) RegularFee(c ctx.Ctx) (vault.Fraction, error) {
	var res vault.Fraction
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.fee
		return nil
	})
	return res, err
}

func (im *impl) MomaFee(c ctx.Ctx) (vault.Fraction, error) {
	var res vault.Fraction
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.momaFee
		return nil
	})
	return res, err
}

func (im *impl) RoyaltyParameters(c ctx.Ctx) (vault.Fraction, error) {
	var res vault.Fraction
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.royalty
		return nil
	})
	return res, err
}

func (im *impl) RewardParameters(c ctx.Ctx) (*vault.RewardParameters, error) {
	var res *vault.RewardParameters
	err := im.j.View(c, func(c ctx.Ctx) error {
		if im.reward == nil {
			return domain.ErrNotFound
		}
		p := *im.reward
		p.FirstRate = domain.CopyBig(p.FirstRate)
		res = &p
		return nil
	})
	return res, err
}

func (im *impl) CurrentRewardRate(c ctx.Ctx) (*big.Int, error) {
	var res *big.Int
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.rate()
		return nil
	})
	return res, err
}

func (im *impl) RewardToken(c ctx.Ctx, token domain.Address) (domain.Address, error) {
	var res domain.Address
	err := im.j.View(c, func(c ctx.Ctx) error {
		r, ok := im.repo.RewardToken(c, token)
		if !ok {
			return domain.ErrNotFound
		}
		res = r
		return nil
	})
	return res, err
}

func (im *impl) RewardTokenBalance(c ctx.Ctx, user, rewardToken domain.Address) (*big.Int, error) {
	return im.ledger.BalanceOf(c, rewardToken, user)
}

func (im *impl) AcceptedTokens(c ctx.Ctx) ([]domain.Address, error) {
	var res []domain.Address
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.repo.AcceptedTokens(c)
		return nil
	})
	return res, err
}

func (im *impl) IsAcceptedToken(c ctx.Ctx, token domain.Address) (bool, error) {
	var res bool
	err := im.j.View(c, func(c ctx.Ctx) error {
		res = im.repo.IsAcceptedToken(c, token)
		return nil
	})
	return res, err
}
