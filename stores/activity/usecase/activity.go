package usecase

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/log"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/activity"
	"github.com/mochi-xyz/market/service/cache"
)

type ActivityUseCaseCfg struct {
	Repo   activity.Repo
	Ledger domain.FungibleLedger
	// Metadata caches token metadata by address, optional
	Metadata cache.Service
}

type impl struct {
	repo     activity.Repo
	ledger   domain.FungibleLedger
	metadata cache.Service
}

func New(cfg *ActivityUseCaseCfg) activity.Usecase {
	return &impl{
		repo:     cfg.Repo,
		ledger:   cfg.Ledger,
		metadata: cfg.Metadata,
	}
}

func (im *impl) Name() string {
	return "activity"
}

func (im *impl) Consume(c ctx.Ctx, events []domain.Event) error {
	acts := make([]activity.Activity, 0, len(events))
	for _, e := range events {
		acts = append(acts, im.toActivity(c, e))
	}
	if err := im.repo.InsertMany(c, acts); err != nil {
		c.WithField("err", err).Error("repo.InsertMany failed")
		return err
	}
	return nil
}

func (im *impl) toActivity(c ctx.Ctx, e domain.Event) activity.Activity {
	a := activity.Activity{
		Id:           e.Id,
		Type:         e.Type,
		OrderId:      e.OrderId,
		LegIndex:     e.LegIndex,
		NftAddress:   e.NftAddress.ToLower(),
		TokenId:      e.TokenId,
		Amount:       e.Amount,
		From:         e.From.ToLower(),
		To:           e.To.ToLower(),
		PaymentToken: e.PaymentToken.ToLower(),
		Value:        e.Value,
		Time:         e.Time,
	}
	if e.Value == "" {
		return a
	}
	v, err := im.valueInToken(c, e.PaymentToken, e.Value)
	if err != nil {
		// the raw value is still stored
		c.WithFields(log.Fields{"event": e.Id, "err": err}).Warn("valueInToken failed")
		return a
	}
	a.ValueInToken = v
	return a
}

func (im *impl) valueInToken(c ctx.Ctx, token domain.Address, value string) (float64, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return 0, domain.ErrInvalidParams
	}
	meta, err := im.tokenMetadata(c, token)
	if err != nil {
		return 0, err
	}
	f, _ := decimal.NewFromBigInt(v, -meta.Decimals).Float64()
	return f, nil
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

func (im *impl) FindActivities(c ctx.Ctx, opts ...activity.FindActivityOptions) ([]activity.Activity, error) {
	return im.repo.FindActivities(c, opts...)
}

func (im *impl) CountActivities(c ctx.Ctx, opts ...activity.FindActivityOptions) (int, error) {
	return im.repo.CountActivities(c, opts...)
}
