package ethereum

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignInMessage is the text a wallet signs to prove it owns an address.
func SignInMessage(address, nonce string) []byte {
	return []byte(fmt.Sprintf("Sign in to mochi market\n\nWallet: %s\nNonce: %s", common.HexToAddress(address).Hex(), nonce))
}

// ValidateMsgSignature checks a personal_sign signature of message by signer.
func ValidateMsgSignature(message []byte, signature, signer string) (bool, error) {
	return validateSignature(accounts.TextHash(message), signature, signer)
}

func validateSignature(hash []byte, signature, signer string) (bool, error) {
	if !common.IsHexAddress(signer) {
		return false, fmt.Errorf("invalid signer %s", signer)
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, err
	}
	recovered, err := ecRecover(hash, sig)
	if err != nil {
		return false, err
	}
	return bytes.Equal(common.HexToAddress(signer).Bytes(), recovered.Bytes()), nil
}

// ecRecover returns the address for the account that was used to create the signature.
func ecRecover(hash []byte, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes long", crypto.SignatureLength)
	}

	// wallets answer eth_sign with V as 0/1 or 27/28
	v := sig[crypto.RecoveryIDOffset]
	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return common.Address{}, fmt.Errorf("invalid Ethereum signature (V is not 27 or 28)")
	}

	rsv := make([]byte, len(sig))
	copy(rsv, sig)
	rsv[crypto.RecoveryIDOffset] = v - 27

	rpk, err := crypto.SigToPub(hash, rsv)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*rpk), nil
}
