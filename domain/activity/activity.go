package activity

import (
	"time"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
)

// Activity is the stored form of a committed market or vault event.
type Activity struct {
	Id           string           `json:"id" bson:"_id"`
	Type         domain.EventType `json:"type" bson:"type"`
	OrderId      *uint64          `json:"orderId,omitempty" bson:"orderId,omitempty"`
	LegIndex     *int             `json:"legIndex,omitempty" bson:"legIndex,omitempty"`
	NftAddress   domain.Address   `json:"nftAddress,omitempty" bson:"nftAddress,omitempty"`
	TokenId      domain.TokenId   `json:"tokenId,omitempty" bson:"tokenId,omitempty"`
	Amount       uint64           `json:"amount,omitempty" bson:"amount,omitempty"`
	From         domain.Address   `json:"from,omitempty" bson:"from,omitempty"`
	To           domain.Address   `json:"to,omitempty" bson:"to,omitempty"`
	PaymentToken domain.Address   `json:"paymentToken,omitempty" bson:"paymentToken,omitempty"`
	Value        string           `json:"value,omitempty" bson:"value,omitempty"`
	// ValueInToken is Value scaled down by the payment token decimals.
	ValueInToken float64   `json:"valueInToken" bson:"valueInToken"`
	Time         time.Time `json:"time" bson:"time"`
}

type findActivityOptions struct {
	Offset     *int
	Limit      *int
	Account    *domain.Address
	NftAddress *domain.Address
	TokenId    *domain.TokenId
	OrderId    *uint64
	Types      []domain.EventType
}

type FindActivityOptions func(*findActivityOptions) error

func GetFindActivityOptions(opts ...FindActivityOptions) (*findActivityOptions, error) {
	res := &findActivityOptions{}
	for _, opt := range opts {
		if err := opt(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func ActivityWithPagination(offset, limit int) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrInvalidParams
		}
		opts.Offset = &offset
		opts.Limit = &limit
		return nil
	}
}

// ActivityWithAccount matches activities where account is either side.
func ActivityWithAccount(account domain.Address) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		a := account.ToLower()
		opts.Account = &a
		return nil
	}
}

func ActivityWithNft(nft domain.Address) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		a := nft.ToLower()
		opts.NftAddress = &a
		return nil
	}
}

func ActivityWithToken(nft domain.Address, tokenId domain.TokenId) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		a, id := nft.ToLower(), tokenId.Canonical()
		opts.NftAddress = &a
		opts.TokenId = &id
		return nil
	}
}

func ActivityWithOrderId(id uint64) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.OrderId = &id
		return nil
	}
}

func ActivityWithTypes(types ...domain.EventType) FindActivityOptions {
	return func(opts *findActivityOptions) error {
		opts.Types = types
		return nil
	}
}

type Repo interface {
	// InsertMany stores activities, skipping ones already stored.
	InsertMany(c ctx.Ctx, activities []Activity) error
	FindActivities(c ctx.Ctx, opts ...FindActivityOptions) ([]Activity, error)
	CountActivities(c ctx.Ctx, opts ...FindActivityOptions) (int, error)
}

type Usecase interface {
	domain.EventSink

	FindActivities(c ctx.Ctx, opts ...FindActivityOptions) ([]Activity, error)
	CountActivities(c ctx.Ctx, opts ...FindActivityOptions) (int, error)
}
