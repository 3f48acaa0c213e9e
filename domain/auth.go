package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/mochi-xyz/market/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	// Nonce issues a one-time nonce that address must sign to obtain a token.
	Nonce(ctx ctx.Ctx, address Address) (string, error)
	// SignToken issues a token once signature proves ownership of address over the sign-in message for its nonce.
	SignToken(ctx ctx.Ctx, address Address, signature string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}

var (
	ErrInvalidSignature = newError(KindAuthorization, "INVALID_SIGNATURE", "Signature does not match address")
	ErrNonceNotFound    = newError(KindAuthorization, "NONCE_NOT_FOUND", "Nonce expired or never issued")
)
