package usecase

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/asset"
	"github.com/mochi-xyz/market/domain/keys"
	"github.com/mochi-xyz/market/domain/vault"
	"github.com/mochi-xyz/market/service/cache"
	"github.com/mochi-xyz/market/service/cache/provider/primitive"
	assetUsecase "github.com/mochi-xyz/market/stores/asset/usecase"
	authUsecase "github.com/mochi-xyz/market/stores/auth/usecase"
	"github.com/mochi-xyz/market/stores/vault/repository"
)

const (
	admin     = domain.Address("0x00000000000000000000000000000000000000ad")
	market    = domain.Address("0x000000000000000000000000000000000000beef")
	vaultAddr = domain.Address("0x000000000000000000000000000000000000fa17")
	faucet    = domain.Address("0x00000000000000000000000000000000000000fc")
	alice     = domain.Address("0x00000000000000000000000000000000000a11ce")
	bob       = domain.Address("0x0000000000000000000000000000000000000b0b")
	creator   = domain.Address("0x00000000000000000000000000000000000000c7")
	nftX      = domain.Address("0x00000000000000000000000000000000000000a1")
	moma      = domain.Address("0x00000000000000000000000000000000000000d1")
	native    = domain.NativeToken

	day = 24 * time.Hour
)

var (
	e18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

type vaultSuite struct {
	suite.Suite

	j      *journal.Journal
	ctx    ctx.Ctx
	assets asset.Usecase
	now    time.Time
	im     *impl
}

func TestVaultSuite(t *testing.T) {
	suite.Run(t, new(vaultSuite))
}

func (s *vaultSuite) SetupTest() {
	s.j = journal.New()
	s.ctx = ctx.Background()
	s.now = time.Unix(1700000000, 0)
	s.assets = assetUsecase.New(s.j, assetUsecase.NativeConfig{Name: "Ether", Symbol: "ETH", Decimals: 18, Minter: faucet})
	s.im = s.newVault(authUsecase.NewAdminRegistry([]string{string(admin)}), vault.RewardToSeller)

	s.Require().NoError(s.assets.CreateToken(s.ctx, moma, domain.TokenMetadata{Name: "Mochi", Symbol: "MOMA", Decimals: 18}, faucet))
	s.Require().NoError(s.assets.CreateCollection(s.ctx, creator, asset.Collection{Address: nftX, Name: "X", Symbol: "X", TokenType: domain.TokenType721}))
}

func (s *vaultSuite) newVault(admins domain.AdminRegistry, policy vault.RecipientPolicy) *impl {
	return New(&VaultUseCaseCfg{
		Address:         vaultAddr,
		Market:          market,
		MomaToken:       moma,
		RegularFee:      vault.Fraction{Numerator: 25, Denominator: 1000},
		MomaFee:         vault.Fraction{Numerator: 10, Denominator: 1000},
		Royalty:         vault.Fraction{Numerator: 20, Denominator: 100},
		RewardRecipient: policy,
		Repo:            repository.NewVaultRepo(s.j),
		Journal:         s.j,
		Ledger:          s.assets,
		Custody:         s.assets,
		Admins:          admins,
		Metadata: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   keys.PfxTokenMeta,
			Cache: primitive.NewPrimitive("tokenMeta", 1),
		}),
		Now: func() time.Time { return s.now },
	}).(*impl)
}

// fund puts amount of token into the vault, as the market does before Deposit.
func (s *vaultSuite) fund(token domain.Address, amount int64) {
	s.Require().NoError(s.assets.Mint(s.ctx, faucet, token, vaultAddr, big.NewInt(amount)))
}

func (s *vaultSuite) balance(token, owner domain.Address) *big.Int {
	b, err := s.assets.BalanceOf(s.ctx, token, owner)
	s.Require().NoError(err)
	return b
}

func (s *vaultSuite) deposit(token domain.Address, amount int64) *vault.Settlement {
	s.fund(token, amount)
	st, err := s.im.Deposit(s.ctx, market, nftX, bob, alice, token, big.NewInt(amount))
	s.Require().NoError(err)
	return st
}

func (s *vaultSuite) TestDepositSplit() {
	st := s.deposit(native, 1000000)

	s.Equal(big.NewInt(1000000), st.Gross)
	s.Equal(big.NewInt(25000), st.Fee)
	s.Equal(big.NewInt(5000), st.Royalty)
	s.Equal(big.NewInt(20000), st.Fund)
	s.Equal(big.NewInt(975000), st.Net)
	s.Equal(0, st.Reward.Sign())

	s.Equal(big.NewInt(975000), s.balance(native, alice))
	s.Equal(big.NewInt(25000), s.balance(native, vaultAddr))

	f, err := s.im.MochiFund(s.ctx, native)
	s.NoError(err)
	s.Equal(big.NewInt(20000), f)
	r, err := s.im.Royalty(s.ctx, nftX, native)
	s.NoError(err)
	s.Equal(big.NewInt(5000), r)
	d, err := s.im.TotalDeposited(s.ctx, native)
	s.NoError(err)
	s.Equal(big.NewInt(1000000), d)

	// ledger never exceeds custody
	s.True(new(big.Int).Add(f, r).Cmp(s.balance(native, vaultAddr)) <= 0)
}

func (s *vaultSuite) TestDepositMomaFee() {
	fee, err := s.im.Fee(s.ctx, moma)
	s.NoError(err)
	s.Equal(vault.Fraction{Numerator: 10, Denominator: 1000}, fee)

	st := s.deposit(moma, 1000)
	s.Equal(big.NewInt(10), st.Fee)
	s.Equal(big.NewInt(2), st.Royalty)
	s.Equal(big.NewInt(8), st.Fund)
	s.Equal(big.NewInt(990), s.balance(moma, alice))
}

func (s *vaultSuite) TestDepositRoundsDown() {
	st := s.deposit(native, 39)
	s.Equal(0, st.Fee.Sign())
	s.Equal(big.NewInt(39), st.Net)
}

func (s *vaultSuite) TestDepositErrors() {
	s.fund(native, 100)

	_, err := s.im.Deposit(s.ctx, alice, nftX, bob, alice, native, big.NewInt(100))
	s.Equal(domain.ErrCallerNotMarket, err)

	_, err = s.im.Deposit(s.ctx, market, nftX, bob, alice, native, big.NewInt(0))
	s.Equal(domain.ErrAmountIsZero, err)

	// forwarding fails, nothing is booked
	_, err = s.im.Deposit(s.ctx, market, nftX, bob, domain.EmptyAddress, native, big.NewInt(100))
	s.True(errors.Is(err, domain.ErrTransferToZeroAddr))
	f, _ := s.im.MochiFund(s.ctx, native)
	s.Equal(0, f.Sign())
	d, _ := s.im.TotalDeposited(s.ctx, native)
	s.Equal(0, d.Sign())
}

func (s *vaultSuite) TestRewardMinting() {
	s.Require().NoError(s.im.AcceptToken(s.ctx, admin, native))
	rewardToken, err := s.im.RewardToken(s.ctx, native)
	s.Require().NoError(err)

	meta, err := s.assets.Metadata(s.ctx, rewardToken)
	s.Require().NoError(err)
	s.Equal("rMOCHI for Ether", meta.Name)
	s.Equal("rMOCHI_ETH", meta.Symbol)

	// no schedule, no reward
	st := s.deposit(native, 1000000)
	s.Equal(0, st.Reward.Sign())

	s.Require().NoError(s.im.SetupRewardParameters(s.ctx, admin, vault.RewardParameters{
		PeriodLength:  uint64((7 * day).Seconds()),
		NumberOfCycle: 59,
		FirstRate:     new(big.Int).Mul(big.NewInt(2), e18),
	}))

	st = s.deposit(native, 1000000)
	s.Equal(big.NewInt(50000), st.Reward)
	s.Equal(rewardToken, st.RewardToken)

	bal, err := s.im.RewardTokenBalance(s.ctx, alice, rewardToken)
	s.NoError(err)
	s.Equal(big.NewInt(50000), bal)

	s.Require().NoError(s.im.BurnRewardToken(s.ctx, alice, rewardToken, big.NewInt(50000)))
	bal, _ = s.im.RewardTokenBalance(s.ctx, alice, rewardToken)
	s.Equal(0, bal.Sign())

	s.True(errors.Is(s.im.BurnRewardToken(s.ctx, alice, moma, big.NewInt(1)), domain.ErrAssetNotFound))
}

func (s *vaultSuite) TestRewardRecipientPolicy() {
	cases := []struct {
		Desc   string
		Policy vault.RecipientPolicy
		Seller int64
		Payer  int64
	}{
		{"seller", vault.RewardToSeller, 25, 0},
		{"payer", vault.RewardToPayer, 0, 25},
		{"both, odd unit to seller", vault.RewardToBoth, 13, 12},
	}

	for _, c := range cases {
		s.SetupTest()
		s.im = s.newVault(authUsecase.NewAdminRegistry([]string{string(admin)}), c.Policy)
		s.Require().NoError(s.im.AcceptToken(s.ctx, admin, native), c.Desc)
		s.Require().NoError(s.im.SetupRewardParameters(s.ctx, admin, vault.RewardParameters{
			PeriodLength:  100,
			NumberOfCycle: 1,
			FirstRate:     e18,
		}), c.Desc)
		rewardToken, _ := s.im.RewardToken(s.ctx, native)

		st := s.deposit(native, 1000)
		s.Equal(big.NewInt(25), st.Reward, c.Desc)
		s.Equal(big.NewInt(c.Seller), s.balance(rewardToken, alice), c.Desc)
		s.Equal(big.NewInt(c.Payer), s.balance(rewardToken, bob), c.Desc)
	}
}

func (s *vaultSuite) TestRewardHalving() {
	s.Require().NoError(s.im.SetupRewardParameters(s.ctx, admin, vault.RewardParameters{
		PeriodLength:  604800,
		NumberOfCycle: 59,
		StartTime:     uint64(s.now.Unix()),
		FirstRate:     e18,
	}))

	start := s.now
	cases := []struct {
		Desc  string
		After time.Duration
		Rate  *big.Int
	}{
		{"at start", 0, e18},
		{"after 6 days", 6 * day, e18},
		{"after 16 days", 16 * day, new(big.Int).Div(e18, big.NewInt(4))},
	}
	for _, c := range cases {
		s.now = start.Add(c.After)
		rate, err := s.im.CurrentRewardRate(s.ctx)
		s.NoError(err, c.Desc)
		s.Equal(0, c.Rate.Cmp(rate), c.Desc)
	}

	p, err := s.im.RewardParameters(s.ctx)
	s.NoError(err)
	s.Equal(uint64(59), p.NumberOfCycle)
}

func (s *vaultSuite) TestSetupRewardParametersErrors() {
	now := uint64(s.now.Unix())
	cases := []struct {
		Desc   string
		Caller domain.Address
		Params vault.RewardParameters
		Err    error
	}{
		{"not admin", alice, vault.RewardParameters{}, domain.ErrCallerNotMarketAdmin},
		{"zero period", admin, vault.RewardParameters{NumberOfCycle: 1, FirstRate: e18}, domain.ErrPeriodIsZero},
		{"zero cycles", admin, vault.RewardParameters{PeriodLength: 1, FirstRate: e18}, domain.ErrNumberOfCycleIsZero},
		{"start in the past", admin, vault.RewardParameters{PeriodLength: 1, NumberOfCycle: 1, StartTime: now - 1, FirstRate: e18}, domain.ErrInvalidStartTime},
		{"nil rate", admin, vault.RewardParameters{PeriodLength: 1, NumberOfCycle: 1, StartTime: now}, domain.ErrFirstRateIsZero},
		{"zero rate", admin, vault.RewardParameters{PeriodLength: 1, NumberOfCycle: 1, FirstRate: big.NewInt(0)}, domain.ErrFirstRateIsZero},
	}
	for _, c := range cases {
		s.Equal(c.Err, s.im.SetupRewardParameters(s.ctx, c.Caller, c.Params), c.Desc)
	}

	_, err := s.im.RewardParameters(s.ctx)
	s.Equal(domain.ErrNotFound, err)

	// future start, repeatable
	s.NoError(s.im.SetupRewardParameters(s.ctx, admin, vault.RewardParameters{PeriodLength: 1, NumberOfCycle: 1, StartTime: now + 10, FirstRate: e18}))
	rate, _ := s.im.CurrentRewardRate(s.ctx)
	s.Equal(0, rate.Sign())
	s.NoError(s.im.SetupRewardParameters(s.ctx, admin, vault.RewardParameters{PeriodLength: 1, NumberOfCycle: 1, FirstRate: e18}))
	rate, _ = s.im.CurrentRewardRate(s.ctx)
	s.Equal(0, e18.Cmp(rate))
}

func (s *vaultSuite) TestClaimRoyalty() {
	s.deposit(native, 1000000)

	s.Equal(domain.ErrCallerNotCollectionOwner, s.im.ClaimRoyalty(s.ctx, bob, nftX, native, big.NewInt(1), bob))
	s.Equal(domain.ErrCallerNotCollectionOwner, s.im.ClaimRoyalty(s.ctx, bob, moma, native, big.NewInt(1), bob))
	s.Equal(domain.ErrInsufficientBalance, s.im.ClaimRoyalty(s.ctx, creator, nftX, native, big.NewInt(5001), creator))

	s.NoError(s.im.ClaimRoyalty(s.ctx, creator, nftX, native, big.NewInt(3000), creator))
	s.Equal(big.NewInt(3000), s.balance(native, creator))

	// admin may claim on behalf of the collection
	s.NoError(s.im.ClaimRoyalty(s.ctx, admin, nftX, native, big.NewInt(2000), creator))
	s.Equal(big.NewInt(5000), s.balance(native, creator))

	r, _ := s.im.Royalty(s.ctx, nftX, native)
	s.Equal(0, r.Sign())
}

func (s *vaultSuite) TestWithdrawFund() {
	s.deposit(native, 1000000)

	s.Equal(domain.ErrCallerNotMarketAdmin, s.im.WithdrawFund(s.ctx, alice, native, big.NewInt(1), alice))
	s.Equal(domain.ErrInsufficientBalance, s.im.WithdrawFund(s.ctx, admin, native, big.NewInt(20001), admin))

	s.NoError(s.im.WithdrawFund(s.ctx, admin, native, big.NewInt(20000), admin))
	s.Equal(big.NewInt(20000), s.balance(native, admin))
	f, _ := s.im.MochiFund(s.ctx, native)
	s.Equal(0, f.Sign())

	// royalty share stays in custody
	s.Equal(big.NewInt(5000), s.balance(native, vaultAddr))
}

func (s *vaultSuite) TestFeeParameters() {
	s.Equal(domain.ErrCallerNotMarketAdmin, s.im.UpdateFee(s.ctx, alice, vault.Fraction{Numerator: 1, Denominator: 100}))
	s.Equal(domain.ErrInvalidFraction, s.im.UpdateFee(s.ctx, admin, vault.Fraction{Numerator: 1, Denominator: 0}))
	s.Equal(domain.ErrInvalidFraction, s.im.UpdateMomaFee(s.ctx, admin, vault.Fraction{Numerator: 2, Denominator: 1}))
	s.Equal(domain.ErrInvalidFraction, s.im.UpdateRoyaltyParameters(s.ctx, admin, vault.Fraction{Numerator: 101, Denominator: 100}))

	s.NoError(s.im.UpdateFee(s.ctx, admin, vault.Fraction{Numerator: 1, Denominator: 100}))
	s.NoError(s.im.UpdateMomaFee(s.ctx, admin, vault.Fraction{Numerator: 0, Denominator: 1}))
	s.NoError(s.im.UpdateRoyaltyParameters(s.ctx, admin, vault.Fraction{Numerator: 1, Denominator: 2}))

	f, _ := s.im.RegularFee(s.ctx)
	s.Equal(vault.Fraction{Numerator: 1, Denominator: 100}, f)
	f, _ = s.im.MomaFee(s.ctx)
	s.Equal(vault.Fraction{Numerator: 0, Denominator: 1}, f)
	f, _ = s.im.RoyaltyParameters(s.ctx)
	s.Equal(vault.Fraction{Numerator: 1, Denominator: 2}, f)

	st := s.deposit(native, 1000)
	s.Equal(big.NewInt(10), st.Fee)
	s.Equal(big.NewInt(5), st.Royalty)

	st = s.deposit(moma, 1000)
	s.Equal(0, st.Fee.Sign())
}

func (s *vaultSuite) TestAcceptRevokeToken() {
	s.Equal(domain.ErrCallerNotMarketAdmin, s.im.AcceptToken(s.ctx, alice, native))
	s.True(errors.Is(s.im.AcceptToken(s.ctx, admin, bob), domain.ErrAssetNotFound))
	s.Equal(domain.ErrTokenNotAccepted, s.im.RevokeToken(s.ctx, admin, native))

	s.NoError(s.im.AcceptToken(s.ctx, admin, native))
	s.NoError(s.im.AcceptToken(s.ctx, admin, moma))
	s.Equal(domain.ErrTokenAlreadyAccepted, s.im.AcceptToken(s.ctx, admin, native))

	tokens, err := s.im.AcceptedTokens(s.ctx)
	s.NoError(err)
	s.Equal([]domain.Address{native, moma}, tokens)

	first, _ := s.im.RewardToken(s.ctx, native)
	s.NoError(s.im.RevokeToken(s.ctx, admin, native))
	ok, _ := s.im.IsAcceptedToken(s.ctx, native)
	s.False(ok)

	// the reward token binding survives a revoke
	s.NoError(s.im.AcceptToken(s.ctx, admin, native))
	second, _ := s.im.RewardToken(s.ctx, native)
	s.Equal(first, second)

	_, err = s.im.RewardToken(s.ctx, bob)
	s.Equal(domain.ErrNotFound, err)
}

// reentrantAdmins calls back into the vault while a guarded call runs.
type reentrantAdmins struct {
	im  *impl
	err error
}

func (r *reentrantAdmins) IsMarketAdmin(c ctx.Ctx, address domain.Address) bool {
	if r.err == nil {
		r.err = r.im.ClaimRoyalty(c, address, nftX, native, big.NewInt(0), address)
	}
	return true
}

func (s *vaultSuite) TestClaimRoyaltyReentrancy() {
	admins := &reentrantAdmins{}
	s.im = s.newVault(admins, vault.RewardToSeller)
	admins.im = s.im

	s.NoError(s.im.ClaimRoyalty(s.ctx, admin, nftX, native, big.NewInt(0), admin))
	s.Equal(domain.ErrReentrantCall, admins.err)
}
