package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"
)

var (
	Big0 = big.NewInt(0)
	Big1 = big.NewInt(1)
	Big2 = big.NewInt(2)
)

type TokenType int

const (
	TokenType721  TokenType = 721
	TokenType1155 TokenType = 1155
)

func (t TokenType) IsValid() bool {
	return t == TokenType721 || t == TokenType1155
}

type Address string

// EmptyAddress doubles as the native coin sentinel for payment tokens.
const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

// NativeToken identifies the native coin wherever a payment token is expected.
const NativeToken = EmptyAddress

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) IsNative() bool {
	return a.Equals(NativeToken)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

// Hex returns the checksummed form.
func (a Address) Hex() string {
	return common.HexToAddress(string(a)).Hex()
}

// NewAddress normalizes a hex address to lower case.
func NewAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return "", xerrors.Errorf("invalid address %s", s)
	}
	return Address(strings.ToLower(common.HexToAddress(s).Hex())), nil
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

// Canonical strips leading zeros so equal ids share one key. Invalid ids are returned unchanged.
func (i TokenId) Canonical() TokenId {
	id, err := i.BigInt()
	if err != nil {
		return i
	}
	return TokenId(id.String())
}

func (i TokenId) BigInt() (*big.Int, error) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok || id.Sign() < 0 {
		return nil, xerrors.Errorf("invalid id %s", i)
	}
	return id, nil
}

// Table is a mongo collection name.
type Table string

const (
	TableActivities = Table("activities")
)

// ParseBigInt parses a non-negative decimal integer.
func ParseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, xerrors.Errorf("invalid integer %q", s)
	}
	return v, nil
}

// CopyBig returns nil for nil and an independent copy otherwise.
func CopyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
