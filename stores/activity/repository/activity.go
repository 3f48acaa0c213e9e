package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/database/mongoclient"
	"github.com/mochi-xyz/market/base/log"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/activity"
	"github.com/mochi-xyz/market/service/query"
)

var indexes = []query.Index{
	{Keys: []string{"-time"}},
	{Keys: []string{"from", "-time"}},
	{Keys: []string{"to", "-time"}},
	{Keys: []string{"nftAddress", "tokenId", "-time"}},
	{Keys: []string{"orderId", "-time"}},
}

// selector holds the plain equality fields of a query.
type selector struct {
	NftAddress *domain.Address    `bson:"nftAddress,omitempty"`
	TokenId    *domain.TokenId    `bson:"tokenId,omitempty"`
	OrderId    *uint64            `bson:"orderId,omitempty"`
	Types      []domain.EventType `bson:"type,omitempty"`
}

func makeFindQuery(optFns ...activity.FindActivityOptions) (bson.M, error) {
	opts, err := activity.GetFindActivityOptions(optFns...)
	if err != nil {
		return nil, err
	}

	qry, err := mongoclient.MakeBsonM(selector{
		NftAddress: opts.NftAddress,
		TokenId:    opts.TokenId,
		OrderId:    opts.OrderId,
		Types:      opts.Types,
	})
	if err != nil {
		return nil, err
	}

	if opts.Account != nil {
		qry["$or"] = bson.A{
			bson.M{"from": *opts.Account},
			bson.M{"to": *opts.Account},
		}
	}
	return qry, nil
}

type impl struct {
	q query.Mongo
}

// New ensures the activity indexes and returns the repo.
func New(c ctx.Ctx, q query.Mongo) (activity.Repo, error) {
	if err := q.EnsureIndexes(c, domain.TableActivities, indexes); err != nil {
		c.WithField("err", err).Error("q.EnsureIndexes failed")
		return nil, err
	}
	return &impl{q: q}, nil
}

func (im *impl) InsertMany(c ctx.Ctx, activities []activity.Activity) error {
	docs := make([]interface{}, 0, len(activities))
	for _, a := range activities {
		docs = append(docs, a)
	}
	// ids are event ids, so a duplicate means the batch was redelivered
	if err := im.q.InsertMany(c, domain.TableActivities, docs); err != nil && err != query.ErrDuplicateKey {
		c.WithFields(log.Fields{
			"activities": len(activities),
			"err":        err,
		}).Error("q.InsertMany failed")
		return err
	}
	return nil
}

func (im *impl) FindActivities(c ctx.Ctx, optFns ...activity.FindActivityOptions) ([]activity.Activity, error) {
	opts, err := activity.GetFindActivityOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("activity.GetFindActivityOptions failed")
		return nil, err
	}

	qry, err := makeFindQuery(optFns...)
	if err != nil {
		c.WithField("err", err).Error("makeFindQuery failed")
		return nil, err
	}

	offset, limit := 0, 0
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	res := []activity.Activity{}
	if err := im.q.Search(c, domain.TableActivities, offset, limit, []string{"-time", "_id"}, qry, &res); err != nil {
		c.WithFields(log.Fields{"err": err, "query": qry}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) CountActivities(c ctx.Ctx, optFns ...activity.FindActivityOptions) (int, error) {
	qry, err := makeFindQuery(optFns...)
	if err != nil {
		c.WithField("err", err).Error("makeFindQuery failed")
		return 0, err
	}

	cnt, err := im.q.Count(c, domain.TableActivities, qry)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "query": qry}).Error("q.Count failed")
		return 0, err
	}
	return cnt, nil
}
