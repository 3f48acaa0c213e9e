package usecase

import (
	"sync"

	"github.com/google/uuid"
	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/goroutine"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/base/log"
	"github.com/mochi-xyz/market/base/metrics"
	"github.com/mochi-xyz/market/domain"
)

const (
	defaultQueueSize = 1024
	defaultBatchSize = 64
	defaultWorkers   = 4
)

type EventUseCaseCfg struct {
	Journal   *journal.Journal
	Sinks     []domain.EventSink
	QueueSize int
	BatchSize int
	// Workers bounds how many sinks consume a batch at once
	Workers int
	Metrics metrics.Service
}

type impl struct {
	j         *journal.Journal
	sinks     []domain.EventSink
	batchSize int
	workers   int
	met       metrics.Service

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Event
	done   chan struct{}
}

// New starts a dispatcher that delivers committed events to every sink in batches.
func New(cfg *EventUseCaseCfg) domain.EventDispatcher {
	im := &impl{
		j:         cfg.Journal,
		sinks:     cfg.Sinks,
		batchSize: cfg.BatchSize,
		workers:   cfg.Workers,
		met:       cfg.Metrics,
		done:      make(chan struct{}),
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if im.batchSize <= 0 {
		im.batchSize = defaultBatchSize
	}
	if im.workers <= 0 {
		im.workers = defaultWorkers
	}
	if im.met == nil {
		im.met = metrics.NewNoop()
	}
	im.queue = make(chan domain.Event, queueSize)
	im.start()
	return im
}

func (im *impl) Emit(c ctx.Ctx, e domain.Event) {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	if im.j != nil && im.j.InTx(c) {
		im.j.OnCommit(func() { im.enqueue(e) })
		return
	}
	im.enqueue(e)
}

func (im *impl) enqueue(e domain.Event) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	if im.closed {
		log.Log().WithFields(log.Fields{"id": e.Id, "type": e.Type}).Warn("dispatcher closed, event dropped")
		return
	}
	im.queue <- e
}

// Close stops accepting events and waits until queued ones are delivered.
func (im *impl) Close() {
	im.mu.Lock()
	if im.closed {
		im.mu.Unlock()
		return
	}
	im.closed = true
	close(im.queue)
	im.mu.Unlock()
	<-im.done
}

func (im *impl) start() {
	go func() {
		defer close(im.done)
		for {
			// a closed channel without event means run returned normally
			if ev := <-goroutine.RecoverableGo(im.run); ev == nil {
				return
			}
			im.met.BumpSum("event.dispatcher.panic", 1)
		}
	}()
}

func (im *impl) run() {
	for e := range im.queue {
		im.dispatch(im.collect(e))
	}
}

// collect gathers up to batchSize events without waiting for more.
func (im *impl) collect(first domain.Event) []domain.Event {
	batch := []domain.Event{first}
	for len(batch) < im.batchSize {
		select {
		case e, ok := <-im.queue:
			if !ok {
				return batch
			}
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

func (im *impl) dispatch(events []domain.Event) {
	if len(im.sinks) == 0 {
		return
	}
	c := ctx.Background()

	b := goroutines.NewBatch(im.workers, goroutines.WithBatchSize(len(im.sinks)))
	defer b.Close()
	for _, s := range im.sinks {
		sink := s
		b.Queue(func() (res interface{}, err error) {
			res = sink.Name()
			defer func() {
				if p := recover(); p != nil {
					err = xerrors.Errorf("sink %s panicked: %v", res, p)
				}
			}()
			return res, sink.Consume(c, events)
		})
	}
	b.QueueComplete()

	for ret := range b.Results() {
		name, _ := ret.Value().(string)
		if err := ret.Error(); err != nil {
			im.met.BumpSum("event.sink.err", 1, "sink", name)
			c.WithFields(log.Fields{
				"sink":   name,
				"events": len(events),
				"err":    err,
			}).Error("sink.Consume failed")
			continue
		}
		im.met.BumpSum("event.sink.delivered", float64(len(events)), "sink", name)
	}
}
