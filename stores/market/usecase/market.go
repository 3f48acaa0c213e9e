package usecase

import (
	"math/big"
	"time"

	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/guard"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/base/metrics"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/exchangeorder"
	"github.com/mochi-xyz/market/domain/market"
	"github.com/mochi-xyz/market/domain/sellorder"
	"github.com/mochi-xyz/market/domain/vault"
)

const DefaultMaxLegs = 10

type MarketUseCaseCfg struct {
	Address domain.Address
	// MaxLegs bounds exchange orders, DefaultMaxLegs when zero
	MaxLegs int

	Journal           *journal.Journal
	SellOrderRepo     sellorder.Repo
	ExchangeOrderRepo exchangeorder.Repo
	Vault             vault.Usecase
	Registry          domain.NFTRegistry
	Custody           domain.NFTCustody
	Ledger            domain.FungibleLedger
	Admins            domain.AdminRegistry
	Emitter           domain.EventEmitter
	Metrics           metrics.Service
	Now               func() time.Time
}

type impl struct {
	address domain.Address
	maxLegs int

	j          *journal.Journal
	sellOrders sellorder.Repo
	exchanges  exchangeorder.Repo
	vault      vault.Usecase
	registry   domain.NFTRegistry
	custody    domain.NFTCustody
	ledger     domain.FungibleLedger
	admins     domain.AdminRegistry
	emitter    domain.EventEmitter
	met        metrics.Service
	now        func() time.Time
	guard      *guard.Guard
}

func New(cfg *MarketUseCaseCfg) market.Usecase {
	im := &impl{
		address:    cfg.Address.ToLower(),
		maxLegs:    cfg.MaxLegs,
		j:          cfg.Journal,
		sellOrders: cfg.SellOrderRepo,
		exchanges:  cfg.ExchangeOrderRepo,
		vault:      cfg.Vault,
		registry:   cfg.Registry,
		custody:    cfg.Custody,
		ledger:     cfg.Ledger,
		admins:     cfg.Admins,
		emitter:    cfg.Emitter,
		met:        cfg.Metrics,
		now:        cfg.Now,
		guard:      guard.New(domain.ErrReentrantCall),
	}
	if im.maxLegs < 2 {
		im.maxLegs = DefaultMaxLegs
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

func (im *impl) emit(c ctx.Ctx, e domain.Event) {
	e.Time = im.now()
	im.emitter.Emit(c, e)
}

// receive moves the native value attached to a call into market custody.
func (im *impl) receive(c ctx.Ctx, caller domain.Address, value *big.Int) (*big.Int, error) {
	if value == nil {
		return new(big.Int), nil
	}
	if value.Sign() < 0 {
		return nil, domain.ErrInvalidParams
	}
	if value.Sign() == 0 {
		return value, nil
	}
	if err := im.ledger.Transfer(c, domain.NativeToken, caller, im.address, value); err != nil {
		return nil, err
	}
	return value, nil
}

// checkValue enforces that native payments carry exactly total and token payments carry nothing.
func checkValue(token domain.Address, total, value *big.Int) error {
	if token.IsNative() {
		if value.Cmp(total) != 0 {
			return domain.ErrValueNotEqualPrice
		}
		return nil
	}
	if value.Sign() != 0 {
		return domain.ErrValueNotEqualPrice
	}
	return nil
}

// settle moves total from payer into the vault and lets it split the payment.
func (im *impl) settle(c ctx.Ctx, nft, payer, seller, token domain.Address, total *big.Int) (*vault.Settlement, error) {
	if total.Sign() == 0 {
		return nil, nil
	}
	var err error
	if token.IsNative() {
		err = im.ledger.Transfer(c, token, im.address, im.vault.Address(), total)
	} else {
		err = im.ledger.TransferFrom(c, token, im.address, payer, im.vault.Address(), total)
	}
	if err != nil {
		return nil, xerrors.Errorf("collect payment: %w", err)
	}
	s, err := im.vault.Deposit(c, im.address, nft, payer, seller, token, total)
	if err != nil {
		return nil, err
	}
	im.met.BumpSum("settle.count", 1, "token", token.ToLowerStr())
	return s, nil
}

// ownsAtLeast reports whether owner holds amount units of the token.
func (im *impl) ownsAtLeast(c ctx.Ctx, tokenType domain.TokenType, nft, owner domain.Address, tokenId domain.TokenId, amount uint64) bool {
	if tokenType == domain.TokenType721 {
		o, err := im.custody.OwnerOf(c, nft, tokenId)
		return err == nil && o.Equals(owner)
	}
	bal, err := im.custody.NFTBalanceOf(c, nft, owner, tokenId)
	return err == nil && bal >= amount
}

func (im *impl) isApproved(c ctx.Ctx, nft, owner domain.Address) bool {
	ok, err := im.custody.IsApprovedForAll(c, nft, owner, im.address)
	return err == nil && ok
}

func (im *impl) tokenType(c ctx.Ctx, nft domain.Address) (domain.TokenType, error) {
	is1155, err := im.registry.IsERC1155(c, nft)
	if err != nil {
		return 0, err
	}
	if is1155 {
		return domain.TokenType1155, nil
	}
	return domain.TokenType721, nil
}

func (im *impl) isAccepted(c ctx.Ctx, nft domain.Address) (bool, error) {
	return im.registry.IsAccepted(c, nft)
}

func (im *impl) isAcceptedToken(c ctx.Ctx, token domain.Address) (bool, error) {
	return im.vault.IsAcceptedToken(c, token)
}

func (im *impl) onlyAdmin(c ctx.Ctx, caller domain.Address) error {
	if !im.admins.IsMarketAdmin(c, caller) {
		return domain.ErrCallerNotMarketAdmin
	}
	return nil
}

func (im *impl) UpdateFee(c ctx.Ctx, caller domain.Address, f vault.Fraction) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if err := im.onlyAdmin(c, caller); err != nil {
			return err
		}
		return im.vault.UpdateFee(c, caller, f)
	})
}

func (im *impl) AcceptToken(c ctx.Ctx, caller, token domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if err := im.onlyAdmin(c, caller); err != nil {
			return err
		}
		return im.vault.AcceptToken(c, caller, token.ToLower())
	})
}

func (im *impl) RevokeToken(c ctx.Ctx, caller, token domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if err := im.onlyAdmin(c, caller); err != nil {
			return err
		}
		return im.vault.RevokeToken(c, caller, token.ToLower())
	})
}
