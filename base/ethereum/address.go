package ethereum

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func GenerateKey() (*ecdsa.PrivateKey, *ecdsa.PublicKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	return privateKey, privateKey.Public().(*ecdsa.PublicKey), nil
}

// DeriveAddress returns the last 20 bytes of keccak256(deployer ++ salt), lower-cased.
// It gives contracts created by another contract a deterministic address.
func DeriveAddress(deployer, salt string) string {
	hash := crypto.Keccak256(common.HexToAddress(deployer).Bytes(), common.HexToAddress(salt).Bytes())
	return strings.ToLower(common.BytesToAddress(hash[12:]).Hex())
}
