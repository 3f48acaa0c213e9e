package usecase

import (
	"math/big"
	"sync"

	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/asset"
)

type collection struct {
	meta      asset.Collection
	owners    map[domain.TokenId]domain.Address
	balances  map[domain.TokenId]map[domain.Address]uint64
	operators map[domain.Address]map[domain.Address]bool
}

type token struct {
	meta       domain.TokenMetadata
	minter     domain.Address
	supply     *big.Int
	balances   map[domain.Address]*big.Int
	allowances map[domain.Address]map[domain.Address]*big.Int
}

type impl struct {
	j           *journal.Journal
	collections map[domain.Address]*collection
	tokens      map[domain.Address]*token

	hooksMu sync.RWMutex
	hooks   map[domain.Address]asset.ReceiverHook
}

type NativeConfig struct {
	Name     string
	Symbol   string
	Decimals int32
	// Minter may mint native coin, usually the faucet admin.
	Minter domain.Address
}

func New(j *journal.Journal, native NativeConfig) asset.Usecase {
	im := &impl{
		j:           j,
		collections: map[domain.Address]*collection{},
		tokens:      map[domain.Address]*token{},
		hooks:       map[domain.Address]asset.ReceiverHook{},
	}
	im.tokens[domain.NativeToken] = newToken(domain.TokenMetadata{
		Address:  domain.NativeToken,
		Name:     native.Name,
		Symbol:   native.Symbol,
		Decimals: native.Decimals,
	}, native.Minter.ToLower())
	return im
}

func newToken(meta domain.TokenMetadata, minter domain.Address) *token {
	return &token{
		meta:       meta,
		minter:     minter,
		supply:     new(big.Int),
		balances:   map[domain.Address]*big.Int{},
		allowances: map[domain.Address]map[domain.Address]*big.Int{},
	}
}

func (im *impl) RegisterReceiver(address domain.Address, hook asset.ReceiverHook) {
	im.hooksMu.Lock()
	defer im.hooksMu.Unlock()
	im.hooks[address.ToLower()] = hook
}

func (im *impl) UnregisterReceiver(address domain.Address) {
	im.hooksMu.Lock()
	defer im.hooksMu.Unlock()
	delete(im.hooks, address.ToLower())
}

func (im *impl) hook(address domain.Address) asset.ReceiverHook {
	im.hooksMu.RLock()
	defer im.hooksMu.RUnlock()
	return im.hooks[address.ToLower()]
}

// collections

func (im *impl) collection(nft domain.Address) (*collection, error) {
	col, ok := im.collections[nft.ToLower()]
	if !ok {
		return nil, xerrors.Errorf("collection %s: %w", nft, domain.ErrAssetNotFound)
	}
	return col, nil
}

func (im *impl) CreateCollection(c ctx.Ctx, caller domain.Address, meta asset.Collection) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		if !meta.TokenType.IsValid() {
			return domain.ErrInvalidTokenType
		}
		addr := meta.Address.ToLower()
		if addr.IsEmpty() {
			return domain.ErrInvalidAddress
		}
		if _, ok := im.collections[addr]; ok {
			return domain.ErrAssetAlreadyExists
		}
		if _, ok := im.tokens[addr]; ok {
			return domain.ErrAssetAlreadyExists
		}
		meta.Address = addr
		meta.Owner = caller.ToLower()
		im.collections[addr] = &collection{
			meta:      meta,
			owners:    map[domain.TokenId]domain.Address{},
			balances:  map[domain.TokenId]map[domain.Address]uint64{},
			operators: map[domain.Address]map[domain.Address]bool{},
		}
		im.j.Append(func() { delete(im.collections, addr) })
		return nil
	})
}

func (im *impl) Collection(c ctx.Ctx, nft domain.Address) (*asset.Collection, error) {
	var res *asset.Collection
	err := im.j.View(c, func(c ctx.Ctx) error {
		col, err := im.collection(nft)
		if err != nil {
			return err
		}
		meta := col.meta
		res = &meta
		return nil
	})
	return res, err
}

func (im *impl) CollectionOwner(c ctx.Ctx, nft domain.Address) (domain.Address, error) {
	col, err := im.Collection(c, nft)
	if err != nil {
		return "", err
	}
	return col.Owner, nil
}

func (im *impl) MintNFT(c ctx.Ctx, caller, nft, to domain.Address, tokenId domain.TokenId, amount uint64) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		col, err := im.collection(nft)
		if err != nil {
			return err
		}
		if !col.meta.Owner.Equals(caller) {
			return domain.ErrCallerNotCollectionOwner
		}
		if to.IsEmpty() {
			return domain.ErrTransferToZeroAddr
		}
		if _, err := tokenId.BigInt(); err != nil {
			return xerrors.Errorf("%v: %w", err, domain.ErrInvalidParams)
		}
		tokenId = tokenId.Canonical()
		if col.meta.TokenType == domain.TokenType721 {
			if amount != 1 {
				return domain.ErrAmountIsNotEqualOne
			}
			if _, ok := col.owners[tokenId]; ok {
				return domain.ErrTokenAlreadyMinted
			}
			im.setOwner(col, tokenId, to.ToLower())
			return nil
		}
		if amount == 0 {
			return domain.ErrAmountIsZero
		}
		im.setBalance(col, tokenId, to.ToLower(), col.balances[tokenId][to.ToLower()]+amount)
		return nil
	})
}

func (im *impl) setOwner(col *collection, tokenId domain.TokenId, owner domain.Address) {
	prev, existed := col.owners[tokenId]
	col.owners[tokenId] = owner
	im.j.Append(func() {
		if existed {
			col.owners[tokenId] = prev
		} else {
			delete(col.owners, tokenId)
		}
	})
}

func (im *impl) setBalance(col *collection, tokenId domain.TokenId, owner domain.Address, amount uint64) {
	m, ok := col.balances[tokenId]
	if !ok {
		m = map[domain.Address]uint64{}
		col.balances[tokenId] = m
	}
	prev := m[owner]
	m[owner] = amount
	im.j.Append(func() { m[owner] = prev })
}

func (im *impl) OwnerOf(c ctx.Ctx, nft domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	var res domain.Address
	err := im.j.View(c, func(c ctx.Ctx) error {
		col, err := im.collection(nft)
		if err != nil {
			return err
		}
		if col.meta.TokenType != domain.TokenType721 {
			return domain.ErrInvalidTokenType
		}
		owner, ok := col.owners[tokenId.Canonical()]
		if !ok {
			return domain.ErrTokenNotMinted
		}
		res = owner
		return nil
	})
	return res, err
}

func (im *impl) NFTBalanceOf(c ctx.Ctx, nft domain.Address, owner domain.Address, tokenId domain.TokenId) (uint64, error) {
	var res uint64
	err := im.j.View(c, func(c ctx.Ctx) error {
		col, err := im.collection(nft)
		if err != nil {
			return err
		}
		tokenId = tokenId.Canonical()
		if col.meta.TokenType == domain.TokenType721 {
			if o, ok := col.owners[tokenId]; ok && o.Equals(owner) {
				res = 1
			}
			return nil
		}
		res = col.balances[tokenId][owner.ToLower()]
		return nil
	})
	return res, err
}

func (im *impl) IsApprovedForAll(c ctx.Ctx, nft domain.Address, owner, operator domain.Address) (bool, error) {
	var res bool
	err := im.j.View(c, func(c ctx.Ctx) error {
		col, err := im.collection(nft)
		if err != nil {
			return err
		}
		res = col.operators[owner.ToLower()][operator.ToLower()]
		return nil
	})
	return res, err
}

func (im *impl) SetApprovalForAll(c ctx.Ctx, owner, nft, operator domain.Address, approved bool) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		col, err := im.collection(nft)
		if err != nil {
			return err
		}
		owner, operator := owner.ToLower(), operator.ToLower()
		m, ok := col.operators[owner]
		if !ok {
			m = map[domain.Address]bool{}
			col.operators[owner] = m
		}
		prev := m[operator]
		m[operator] = approved
		im.j.Append(func() { m[operator] = prev })
		return nil
	})
}

func (im *impl) SafeTransferFrom(c ctx.Ctx, operator domain.Address, nft domain.Address, from, to domain.Address, tokenId domain.TokenId, amount uint64, data []byte) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		col, err := im.collection(nft)
		if err != nil {
			return err
		}
		if to.IsEmpty() {
			return domain.ErrTransferToZeroAddr
		}
		from, to, operator = from.ToLower(), to.ToLower(), operator.ToLower()
		tokenId = tokenId.Canonical()
		if !operator.Equals(from) && !col.operators[from][operator] {
			return domain.ErrNFTNotApprovedForMarket
		}

		if col.meta.TokenType == domain.TokenType721 {
			if amount != 1 {
				return domain.ErrAmountIsNotEqualOne
			}
			owner, ok := col.owners[tokenId]
			if !ok {
				return domain.ErrTokenNotMinted
			}
			if !owner.Equals(from) {
				return domain.ErrCallerNotNFTOwner
			}
			im.setOwner(col, tokenId, to)
		} else {
			bal := col.balances[tokenId][from]
			if bal < amount {
				return domain.ErrTransferAmountExceedsBalance
			}
			im.setBalance(col, tokenId, from, bal-amount)
			im.setBalance(col, tokenId, to, col.balances[tokenId][to]+amount)
		}

		if hook := im.hook(to); hook != nil {
			if err := hook(c, operator, from, col.meta.Address, tokenId, amount, data); err != nil {
				return xerrors.Errorf("receiver %s rejected transfer: %w", to, err)
			}
		}
		return nil
	})
}

// fungible tokens

func (im *impl) token(addr domain.Address) (*token, error) {
	t, ok := im.tokens[addr.ToLower()]
	if !ok {
		return nil, xerrors.Errorf("token %s: %w", addr, domain.ErrAssetNotFound)
	}
	return t, nil
}

func (im *impl) CreateToken(c ctx.Ctx, addr domain.Address, meta domain.TokenMetadata, minter domain.Address) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		addr = addr.ToLower()
		if addr.IsEmpty() {
			return domain.ErrInvalidAddress
		}
		if _, ok := im.tokens[addr]; ok {
			return domain.ErrAssetAlreadyExists
		}
		if _, ok := im.collections[addr]; ok {
			return domain.ErrAssetAlreadyExists
		}
		meta.Address = addr
		im.tokens[addr] = newToken(meta, minter.ToLower())
		im.j.Append(func() { delete(im.tokens, addr) })
		return nil
	})
}

func (im *impl) Metadata(c ctx.Ctx, addr domain.Address) (*domain.TokenMetadata, error) {
	var res *domain.TokenMetadata
	err := im.j.View(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		meta := t.meta
		res = &meta
		return nil
	})
	return res, err
}

func (im *impl) balance(t *token, owner domain.Address) *big.Int {
	if b, ok := t.balances[owner]; ok {
		return b
	}
	return domain.Big0
}

func (im *impl) setTokenBalance(t *token, owner domain.Address, amount *big.Int) {
	prev, existed := t.balances[owner]
	t.balances[owner] = amount
	im.j.Append(func() {
		if existed {
			t.balances[owner] = prev
		} else {
			delete(t.balances, owner)
		}
	})
}

func (im *impl) setSupply(t *token, supply *big.Int) {
	prev := t.supply
	t.supply = supply
	im.j.Append(func() { t.supply = prev })
}

func (im *impl) TotalSupply(c ctx.Ctx, addr domain.Address) (*big.Int, error) {
	var res *big.Int
	err := im.j.View(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		res = new(big.Int).Set(t.supply)
		return nil
	})
	return res, err
}

func (im *impl) BalanceOf(c ctx.Ctx, addr domain.Address, owner domain.Address) (*big.Int, error) {
	var res *big.Int
	err := im.j.View(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		res = new(big.Int).Set(im.balance(t, owner.ToLower()))
		return nil
	})
	return res, err
}

func (im *impl) Allowance(c ctx.Ctx, addr domain.Address, owner, spender domain.Address) (*big.Int, error) {
	var res *big.Int
	err := im.j.View(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		res = new(big.Int)
		if a, ok := t.allowances[owner.ToLower()][spender.ToLower()]; ok {
			res.Set(a)
		}
		return nil
	})
	return res, err
}

func (im *impl) setAllowance(t *token, owner, spender domain.Address, amount *big.Int) {
	m, ok := t.allowances[owner]
	if !ok {
		m = map[domain.Address]*big.Int{}
		t.allowances[owner] = m
	}
	prev, existed := m[spender]
	m[spender] = amount
	im.j.Append(func() {
		if existed {
			m[spender] = prev
		} else {
			delete(m, spender)
		}
	})
}

func (im *impl) Approve(c ctx.Ctx, owner, addr, spender domain.Address, amount *big.Int) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() < 0 {
			return domain.ErrInvalidParams
		}
		im.setAllowance(t, owner.ToLower(), spender.ToLower(), new(big.Int).Set(amount))
		return nil
	})
}

func (im *impl) transfer(t *token, from, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidParams
	}
	if to.IsEmpty() {
		return domain.ErrTransferToZeroAddr
	}
	fromBal := im.balance(t, from)
	if fromBal.Cmp(amount) < 0 {
		return domain.ErrTransferAmountExceedsBalance
	}
	im.setTokenBalance(t, from, new(big.Int).Sub(fromBal, amount))
	im.setTokenBalance(t, to, new(big.Int).Add(im.balance(t, to), amount))
	return nil
}

func (im *impl) Transfer(c ctx.Ctx, addr domain.Address, from, to domain.Address, amount *big.Int) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		return im.transfer(t, from.ToLower(), to.ToLower(), amount)
	})
}

func (im *impl) TransferFrom(c ctx.Ctx, addr domain.Address, spender, from, to domain.Address, amount *big.Int) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		spender, from, to = spender.ToLower(), from.ToLower(), to.ToLower()
		if !spender.Equals(from) {
			allowance := t.allowances[from][spender]
			if allowance == nil || allowance.Cmp(amount) < 0 {
				return domain.ErrTransferAmountExceedsAllowance
			}
			im.setAllowance(t, from, spender, new(big.Int).Sub(allowance, amount))
		}
		return im.transfer(t, from, to, amount)
	})
}

func (im *impl) Mint(c ctx.Ctx, minter domain.Address, addr domain.Address, to domain.Address, amount *big.Int) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		if t.minter.IsEmpty() || !t.minter.Equals(minter) {
			return domain.ErrCallerNotTokenMinter
		}
		if to.IsEmpty() {
			return domain.ErrTransferToZeroAddr
		}
		if amount == nil || amount.Sign() < 0 {
			return domain.ErrInvalidParams
		}
		to = to.ToLower()
		im.setTokenBalance(t, to, new(big.Int).Add(im.balance(t, to), amount))
		im.setSupply(t, new(big.Int).Add(t.supply, amount))
		return nil
	})
}

func (im *impl) Burn(c ctx.Ctx, addr domain.Address, from domain.Address, amount *big.Int) error {
	return im.j.Atomic(c, func(c ctx.Ctx) error {
		t, err := im.token(addr)
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() < 0 {
			return domain.ErrInvalidParams
		}
		from = from.ToLower()
		bal := im.balance(t, from)
		if bal.Cmp(amount) < 0 {
			return domain.ErrTransferAmountExceedsBalance
		}
		im.setTokenBalance(t, from, new(big.Int).Sub(bal, amount))
		im.setSupply(t, new(big.Int).Sub(t.supply, amount))
		return nil
	})
}
