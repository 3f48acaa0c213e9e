package usecase

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
)

type memSink struct {
	name string
	err  error
	boom bool

	mu     sync.Mutex
	events []domain.Event
}

func (s *memSink) Name() string {
	return s.name
}

func (s *memSink) Consume(c ctx.Ctx, events []domain.Event) error {
	if s.boom {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return s.err
}

func (s *memSink) types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []domain.EventType{}
	for _, e := range s.events {
		res = append(res, e.Type)
	}
	return res
}

func TestDispatchOutsideTx(t *testing.T) {
	req := require.New(t)
	a, b := &memSink{name: "a"}, &memSink{name: "b"}
	d := New(&EventUseCaseCfg{Journal: journal.New(), Sinks: []domain.EventSink{a, b}, BatchSize: 2})

	d.Emit(ctx.Background(), domain.Event{Type: domain.EventSellOrderCreated})
	d.Emit(ctx.Background(), domain.Event{Type: domain.EventSellOrderBought})
	d.Emit(ctx.Background(), domain.Event{Type: domain.EventSellOrderFilled})
	d.Close()

	want := []domain.EventType{domain.EventSellOrderCreated, domain.EventSellOrderBought, domain.EventSellOrderFilled}
	req.Equal(want, a.types())
	req.Equal(want, b.types())
	req.NotEmpty(a.events[0].Id)
	req.NotEqual(a.events[0].Id, a.events[1].Id)
}

func TestDispatchAfterCommit(t *testing.T) {
	req := require.New(t)
	j := journal.New()
	sink := &memSink{name: "mem"}
	d := New(&EventUseCaseCfg{Journal: j, Sinks: []domain.EventSink{sink}})

	errFail := errors.New("fail")
	req.Equal(errFail, j.Atomic(ctx.Background(), func(c ctx.Ctx) error {
		d.Emit(c, domain.Event{Type: domain.EventSellOrderCancelled})
		return errFail
	}))
	req.NoError(j.Atomic(ctx.Background(), func(c ctx.Ctx) error {
		d.Emit(c, domain.Event{Type: domain.EventExchangeOrderCreated})
		return j.Atomic(c, func(c ctx.Ctx) error {
			d.Emit(c, domain.Event{Type: domain.EventExchangeLegFilled})
			return nil
		})
	}))
	d.Close()

	req.Equal([]domain.EventType{domain.EventExchangeOrderCreated, domain.EventExchangeLegFilled}, sink.types())
}

func TestDispatchSinkFailures(t *testing.T) {
	req := require.New(t)
	good := &memSink{name: "good"}
	failing := &memSink{name: "failing", err: errors.New("down")}
	panicking := &memSink{name: "panicking", boom: true}
	d := New(&EventUseCaseCfg{Journal: journal.New(), Sinks: []domain.EventSink{failing, panicking, good}})

	d.Emit(ctx.Background(), domain.Event{Type: domain.EventDeposited})
	d.Emit(ctx.Background(), domain.Event{Type: domain.EventRewardMinted})
	d.Close()

	req.Equal([]domain.EventType{domain.EventDeposited, domain.EventRewardMinted}, good.types())
	req.Len(failing.types(), 2)
}

func TestEmitAfterClose(t *testing.T) {
	sink := &memSink{name: "mem"}
	d := New(&EventUseCaseCfg{Sinks: []domain.EventSink{sink}})
	d.Close()
	d.Close()

	d.Emit(ctx.Background(), domain.Event{Type: domain.EventDeposited})
	require.Empty(t, sink.types())
}
