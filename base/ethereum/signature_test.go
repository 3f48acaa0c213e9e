package ethereum

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestValidateMsgSignature(t *testing.T) {
	req := require.New(t)
	privateKey, publicKey, err := GenerateKey()
	req.NoError(err)
	address := crypto.PubkeyToAddress(*publicKey).Hex()
	message := SignInMessage(address, "123456")
	signature, err := crypto.Sign(accounts.TextHash(message), privateKey)
	req.NoError(err)

	res, err := ValidateMsgSignature(message, hexutil.Encode(signature), address)
	req.NoError(err)
	req.True(res)

	// V as 27/28
	sig27 := append([]byte{}, signature...)
	sig27[crypto.RecoveryIDOffset] += 27
	res, err = ValidateMsgSignature(message, hexutil.Encode(sig27), address)
	req.NoError(err)
	req.True(res)

	// incorrect nonce
	res, err = ValidateMsgSignature(SignInMessage(address, "654321"), hexutil.Encode(signature), address)
	req.NoError(err)
	req.False(res)

	// incorrect signer
	_, pubKey, err := GenerateKey()
	req.NoError(err)
	res, err = ValidateMsgSignature(message, hexutil.Encode(signature), crypto.PubkeyToAddress(*pubKey).Hex())
	req.NoError(err)
	req.False(res)

	_, err = ValidateMsgSignature(message, "0x1234", address)
	req.Error(err)

	_, err = ValidateMsgSignature(message, "not-hex", address)
	req.Error(err)
}

func TestDeriveAddress(t *testing.T) {
	req := require.New(t)
	vault := "0x00000000000000000000000000000000000000aa"
	a := DeriveAddress(vault, "0x00000000000000000000000000000000000000b1")
	b := DeriveAddress(vault, "0x00000000000000000000000000000000000000b2")

	req.Len(a, 42)
	req.NotEqual(a, b)
	req.Equal(a, DeriveAddress(vault, "0x00000000000000000000000000000000000000B1"))
}
