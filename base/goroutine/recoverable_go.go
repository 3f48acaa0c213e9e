package goroutine

import (
	"runtime/debug"

	"github.com/mochi-xyz/market/base/log"
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type options struct {
	beforeStart    func()
	afterEnded     func()
	afterRecovered func(p interface{}, stack []byte)
}

type Option func(*options)

func WithBeforeStart(f func()) Option {
	return func(o *options) { o.beforeStart = f }
}

func WithAfterEnded(f func()) Option {
	return func(o *options) { o.afterEnded = f }
}

func WithAfterRecovered(f func(p interface{}, stack []byte)) Option {
	return func(o *options) { o.afterRecovered = f }
}

// RecoverableGo runs f in a new goroutine and turns a panic into a PanicEvent.
// The returned channel is closed when f returns normally.
func RecoverableGo(f func(), opts ...Option) <-chan *PanicEvent {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	panicChan := make(chan *PanicEvent, 1)
	go func() {
		defer func() {
			if o.afterEnded != nil {
				o.afterEnded()
			}

			p := recover()
			if p == nil {
				close(panicChan)
				return
			}
			stack := debug.Stack()
			log.Log().WithFields(log.Fields{
				"err":   p,
				"stack": string(stack),
			}).Error("panic")
			if o.afterRecovered != nil {
				o.afterRecovered(p, stack)
			}
			panicChan <- &PanicEvent{p, stack}
		}()

		if o.beforeStart != nil {
			o.beforeStart()
		}
		f()
	}()
	return panicChan
}
