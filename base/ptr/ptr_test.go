package ptr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointer(t *testing.T) {
	req := require.New(t)

	req.Equal("abc123", *String("abc123"))
	req.Equal(123, *Int(123))
	req.Equal(uint64(891011), *Uint64(891011))

	// every call returns a fresh pointer
	req.False(Int(1) == Int(1))
}
