// Package journal serializes state-changing calls and undoes their writes on failure.
//
// Stores append an undo closure for every write they perform. Atomic takes a
// snapshot before running a call and replays the undo closures in reverse order
// when the call fails, so a failed call leaves no trace. Calls nest: a call made
// with a ctx that already carries the open transaction runs inside it, taking its
// own snapshot.
package journal

import (
	"sync"

	"github.com/mochi-xyz/market/base/ctx"
)

type txKey struct{ j *Journal }

type viewKey struct{ j *Journal }

// Journal is the undo log shared by every store of one market instance.
type Journal struct {
	mu      sync.RWMutex
	entries []func()
	hooks   []func()
}

func New() *Journal {
	return &Journal{}
}

// InTx reports whether c carries an open transaction of j.
func (j *Journal) InTx(c ctx.Ctx) bool {
	v, _ := c.Value(txKey{j}).(bool)
	return v
}

// Append records the undo step of a write. Writes outside a transaction are not undoable.
func (j *Journal) Append(undo func()) {
	j.entries = append(j.entries, undo)
}

// Snapshot returns an identifier for the current state.
func (j *Journal) Snapshot() int {
	return len(j.entries)
}

// RevertToSnapshot undoes every write made after the snapshot was taken.
func (j *Journal) RevertToSnapshot(id int) {
	for i := len(j.entries) - 1; i >= id; i-- {
		j.entries[i]()
	}
	j.entries = j.entries[:id]
}

// OnCommit registers fn to run after the outermost transaction commits.
// Hooks registered by a reverted call are discarded with it.
func (j *Journal) OnCommit(fn func()) {
	n := len(j.hooks)
	j.hooks = append(j.hooks, fn)
	j.Append(func() { j.hooks = j.hooks[:n] })
}

// Atomic runs fn as one all-or-nothing unit.
func (j *Journal) Atomic(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	if j.InTx(c) {
		return j.run(c, fn)
	}

	var hooks []func()
	err := func() error {
		j.mu.Lock()
		defer func() {
			hooks = j.hooks
			j.entries = nil
			j.hooks = nil
			j.mu.Unlock()
		}()
		return j.run(ctx.WithHiddenValue(c, txKey{j}, true), fn)
	}()
	if err != nil {
		return err
	}
	for _, h := range hooks {
		h()
	}
	return nil
}

func (j *Journal) run(c ctx.Ctx, fn func(ctx.Ctx) error) (err error) {
	snap := j.Snapshot()
	defer func() {
		if p := recover(); p != nil {
			j.RevertToSnapshot(snap)
			panic(p)
		}
		if err != nil {
			j.RevertToSnapshot(snap)
		}
	}()
	return fn(c)
}

// View runs fn with shared access. It does not lock again inside Atomic or View.
func (j *Journal) View(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	if j.InTx(c) {
		return fn(c)
	}
	if v, _ := c.Value(viewKey{j}).(bool); v {
		return fn(c)
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	return fn(ctx.WithHiddenValue(c, viewKey{j}, true))
}
