package usecase

import (
	"encoding/json"

	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/domain/keys"
	"github.com/mochi-xyz/market/service/redis"
)

type redisSink struct {
	redis   redis.Service
	channel string
}

// NewRedisSink publishes each event as JSON on the events channel of the given topic.
func NewRedisSink(r redis.Service, topic string) domain.EventSink {
	return &redisSink{
		redis:   r,
		channel: keys.RedisKey(keys.PfxEvents, topic),
	}
}

func (s *redisSink) Name() string {
	return "redis"
}

func (s *redisSink) Consume(c ctx.Ctx, events []domain.Event) error {
	for _, e := range events {
		msg, err := json.Marshal(e)
		if err != nil {
			return xerrors.Errorf("marshal event %s: %w", e.Id, err)
		}
		if _, err := s.redis.Publish(c, s.channel, msg); err != nil {
			c.WithField("err", err).Error("redis.Publish failed")
			return err
		}
	}
	return nil
}
