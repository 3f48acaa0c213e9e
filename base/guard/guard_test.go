package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnter(t *testing.T) {
	req := require.New(t)
	errReentrant := errors.New("reentrant")
	g := New(errReentrant)

	leave, err := g.Enter("Buy")
	req.NoError(err)
	req.True(g.Entered("Buy"))

	_, err = g.Enter("Buy")
	req.Equal(errReentrant, err)

	// other entry points stay open
	leaveOther, err := g.Enter("Exchange")
	req.NoError(err)
	leaveOther()

	leave()
	req.False(g.Entered("Buy"))
	leave, err = g.Enter("Buy")
	req.NoError(err)
	leave()
}
