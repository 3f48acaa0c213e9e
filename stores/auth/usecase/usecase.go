package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/mochi-xyz/market/base/ctx"
	"github.com/mochi-xyz/market/base/ethereum"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/service/cache"
)

const tokenTTL = 24 * time.Hour

type impl struct {
	jwtSecret []byte
	nonces    cache.Service
	now       func() time.Time
}

// New signs tokens with jwtSecret. nonces should expire entries after a few minutes.
func New(jwtSecret string, nonces cache.Service) domain.AuthUsecase {
	return &impl{
		jwtSecret: []byte(jwtSecret),
		nonces:    nonces,
		now:       time.Now,
	}
}

func (im *impl) Nonce(ctx ctx.Ctx, address domain.Address) (string, error) {
	if _, err := domain.NewAddress(string(address)); err != nil {
		return "", domain.ErrInvalidAddress
	}
	nonce := uuid.NewString()
	if err := im.nonces.Set(ctx, address.ToLowerStr(), nonce); err != nil {
		return "", err
	}
	return nonce, nil
}

func (im *impl) SignToken(ctx ctx.Ctx, address domain.Address, signature string) (string, error) {
	var nonce string
	if err := im.nonces.Get(ctx, address.ToLowerStr(), &nonce); err == cache.ErrNotFound {
		return "", domain.ErrNonceNotFound
	} else if err != nil {
		return "", err
	}

	ok, err := ethereum.ValidateMsgSignature(ethereum.SignInMessage(string(address), nonce), signature, string(address))
	if err != nil {
		ctx.WithField("err", err).Warn("ValidateMsgSignature failed")
		return "", domain.ErrInvalidSignature
	} else if !ok {
		return "", domain.ErrInvalidSignature
	}

	// a nonce signs in once
	if err := im.nonces.Del(ctx, address.ToLowerStr()); err != nil {
		return "", err
	}

	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: im.now().Add(tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(im.jwtSecret)
	if err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	}
	return ss, nil
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}
	return "", fmt.Errorf("invalid token")
}
