package vault

import (
	"math/big"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
)

// Fraction is Numerator/Denominator with Numerator <= Denominator.
type Fraction struct {
	Numerator   uint64 `json:"numerator" mapstructure:"numerator"`
	Denominator uint64 `json:"denominator" mapstructure:"denominator"`
}

func (f Fraction) IsValid() bool {
	return f.Denominator > 0 && f.Numerator <= f.Denominator
}

// Of returns floor(v * Numerator / Denominator).
func (f Fraction) Of(v *big.Int) *big.Int {
	res := new(big.Int).Mul(v, new(big.Int).SetUint64(f.Numerator))
	return res.Quo(res, new(big.Int).SetUint64(f.Denominator))
}

// RewardParameters is the halving schedule of reward emission.
// Rate is scaled by 1e18.
type RewardParameters struct {
	PeriodLength  uint64   `json:"periodLength"`
	NumberOfCycle uint64   `json:"numberOfCycle"`
	StartTime     uint64   `json:"startTime"`
	FirstRate     *big.Int `json:"firstRate"`
}

func (p *RewardParameters) IsSet() bool {
	return p != nil && p.PeriodLength > 0 && p.FirstRate != nil
}

// RateAt returns the emission rate at unix time t.
func (p *RewardParameters) RateAt(t uint64) *big.Int {
	if !p.IsSet() || t < p.StartTime {
		return new(big.Int)
	}
	halvings := (t - p.StartTime) / p.PeriodLength
	if halvings > p.NumberOfCycle {
		halvings = p.NumberOfCycle
	}
	if halvings >= 256 {
		return new(big.Int)
	}
	return new(big.Int).Rsh(p.FirstRate, uint(halvings))
}

type RecipientPolicy string

const (
	RewardToSeller RecipientPolicy = "seller"
	RewardToPayer  RecipientPolicy = "payer"
	RewardToBoth   RecipientPolicy = "both"
)

func (p RecipientPolicy) IsValid() bool {
	return p == RewardToSeller || p == RewardToPayer || p == RewardToBoth
}

// Settlement is the split of one deposit.
type Settlement struct {
	Gross       *big.Int       `json:"gross"`
	Fee         *big.Int       `json:"fee"`
	Royalty     *big.Int       `json:"royalty"`
	Fund        *big.Int       `json:"fund"`
	Net         *big.Int       `json:"net"`
	Reward      *big.Int       `json:"reward"`
	RewardToken domain.Address `json:"rewardToken"`
}

// Repo holds the vault balances. Writes must run inside the market journal.
type Repo interface {
	Fund(c ctx.Ctx, token domain.Address) *big.Int
	AddFund(c ctx.Ctx, token domain.Address, delta *big.Int) error
	Royalty(c ctx.Ctx, nft, token domain.Address) *big.Int
	AddRoyalty(c ctx.Ctx, nft, token domain.Address, delta *big.Int) error
	TotalDeposited(c ctx.Ctx, token domain.Address) *big.Int
	AddDeposited(c ctx.Ctx, token domain.Address, delta *big.Int) error

	RewardToken(c ctx.Ctx, token domain.Address) (domain.Address, bool)
	SetRewardToken(c ctx.Ctx, token, rewardToken domain.Address)
	IsRewardToken(c ctx.Ctx, rewardToken domain.Address) bool

	AcceptedTokens(c ctx.Ctx) []domain.Address
	IsAcceptedToken(c ctx.Ctx, token domain.Address) bool
	SetAcceptedToken(c ctx.Ctx, token domain.Address, accepted bool)
}

type Usecase interface {
	Address() domain.Address

	// Deposit splits amount, already held by the vault, into fee and the seller's net.
	Deposit(c ctx.Ctx, caller, nft, payer, seller, token domain.Address, amount *big.Int) (*Settlement, error)
	ClaimRoyalty(c ctx.Ctx, caller, nft, token domain.Address, amount *big.Int, recipient domain.Address) error
	WithdrawFund(c ctx.Ctx, caller, token domain.Address, amount *big.Int, recipient domain.Address) error
	BurnRewardToken(c ctx.Ctx, caller, rewardToken domain.Address, amount *big.Int) error

	UpdateRoyaltyParameters(c ctx.Ctx, caller domain.Address, f Fraction) error
	UpdateFee(c ctx.Ctx, caller domain.Address, f Fraction) error
	UpdateMomaFee(c ctx.Ctx, caller domain.Address, f Fraction) error
	SetupRewardParameters(c ctx.Ctx, caller domain.Address, p RewardParameters) error
	AcceptToken(c ctx.Ctx, caller, token domain.Address) error
	RevokeToken(c ctx.Ctx, caller, token domain.Address) error

	MochiFund(c ctx.Ctx, token domain.Address) (*big.Int, error)
	Royalty(c ctx.Ctx, nft, token domain.Address) (*big.Int, error)
	TotalDeposited(c ctx.Ctx, token domain.Address) (*big.Int, error)
	Fee(c ctx.Ctx, token domain.Address) (Fraction, error)
	RegularFee(c ctx.Ctx) (Fraction, error)
	MomaFee(c ctx.Ctx) (Fraction, error)
	RoyaltyParameters(c ctx.Ctx) (Fraction, error)
	RewardParameters(c ctx.Ctx) (*RewardParameters, error)
	CurrentRewardRate(c ctx.Ctx) (*big.Int, error)
	RewardToken(c ctx.Ctx, token domain.Address) (domain.Address, error)
	RewardTokenBalance(c ctx.Ctx, user, rewardToken domain.Address) (*big.Int, error)
	AcceptedTokens(c ctx.Ctx) ([]domain.Address, error)
	IsAcceptedToken(c ctx.Ctx, token domain.Address) (bool, error)
}
