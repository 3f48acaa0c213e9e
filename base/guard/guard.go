// Package guard rejects re-entry into an entry point that is still running.
//
// It does not synchronize goroutines; callers hold the journal lock already.
package guard

type Guard struct {
	err     error
	entered map[string]bool
}

// New returns a guard that fails with err on re-entry.
func New(err error) *Guard {
	return &Guard{
		err:     err,
		entered: map[string]bool{},
	}
}

// Enter marks name as running. The returned func must be deferred to leave it.
func (g *Guard) Enter(name string) (func(), error) {
	if g.entered[name] {
		return nil, g.err
	}
	g.entered[name] = true
	return func() { delete(g.entered, name) }, nil
}

func (g *Guard) Entered(name string) bool {
	return g.entered[name]
}
