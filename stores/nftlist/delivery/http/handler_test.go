package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mochi-xyz/market/base/delivery/apitest"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	authUsecase "github.com/mochi-xyz/market/stores/auth/usecase"
	"github.com/mochi-xyz/market/stores/nftlist/repository"
	"github.com/mochi-xyz/market/stores/nftlist/usecase"
)

const (
	jwtSecret = "nftlist-secret"

	admin = domain.Address("0x00000000000000000000000000000000000000ad")
	alice = domain.Address("0x00000000000000000000000000000000000a11ce")
	nftA  = "0x00000000000000000000000000000000000000a1"
	nftB  = "0x00000000000000000000000000000000000000b2"
)

func newClient(t *testing.T) *apitest.Client {
	j := journal.New()
	admins := authUsecase.NewAdminRegistry([]string{string(admin)})
	e, auth := apitest.NewServer(jwtSecret, admins)
	New(e, usecase.New(j, repository.NewNFTListRepo(j), admins), auth)
	return &apitest.Client{T: t, E: e, Secret: jwtSecret}
}

func TestRegisterAcceptRevoke(t *testing.T) {
	req := require.New(t)
	cl := newClient(t)

	code, _ := cl.Do(http.MethodPost, "/nfts", "", `{"address":"`+nftA+`"}`)
	req.Equal(http.StatusUnauthorized, code)

	code, res := cl.Do(http.MethodPost, "/nfts", alice, `{"address":"`+nftA+`"}`)
	req.Equal(http.StatusCreated, code)
	code, res = cl.Do(http.MethodPost, "/nfts", alice, `{"address":"`+nftB+`","isERC1155":true}`)
	req.Equal(http.StatusCreated, code)

	code, res = cl.Do(http.MethodPost, "/nfts", alice, `{"address":"`+nftA+`"}`)
	req.Equal(http.StatusConflict, code)
	req.Equal("NFT_ALREADY_REGISTERED", res.Code)

	code, res = cl.Do(http.MethodPost, "/nfts/"+nftA+"/accept", alice, "")
	req.Equal(http.StatusForbidden, code)
	req.Equal("CALLER_NOT_MARKET_ADMIN", res.Code)

	code, _ = cl.Do(http.MethodPost, "/nfts/"+nftA+"/accept", admin, "")
	req.Equal(http.StatusOK, code)

	code, res = cl.Do(http.MethodGet, "/nfts/"+nftA, "", "")
	req.Equal(http.StatusOK, code)
	req.JSONEq(`{"address":"`+nftA+`","isRegistered":true,"isAccepted":true,"isERC1155":false}`, string(res.Data))

	code, res = cl.Do(http.MethodGet, "/nfts/accepted", "", "")
	req.Equal(http.StatusOK, code)
	req.JSONEq(`["`+nftA+`"]`, string(res.Data))

	code, res = cl.Do(http.MethodGet, "/nfts/count", "", "")
	req.Equal(http.StatusOK, code)
	req.JSONEq(`2`, string(res.Data))

	code, _ = cl.Do(http.MethodPost, "/nfts/"+nftA+"/revoke", admin, "")
	req.Equal(http.StatusOK, code)
	code, res = cl.Do(http.MethodPost, "/nfts/"+nftA+"/revoke", admin, "")
	req.Equal(http.StatusBadRequest, code)
	req.Equal("NFT_NOT_ACCEPTED", res.Code)
}

func TestNFTListBadRequests(t *testing.T) {
	cl := newClient(t)

	cases := []struct {
		name   string
		method string
		target string
		caller domain.Address
		body   string
		status int
	}{
		{"bad info address", http.MethodGet, "/nfts/0x12", "", "", http.StatusBadRequest},
		{"register without address", http.MethodPost, "/nfts", alice, `{}`, http.StatusBadRequest},
		{"accept unregistered", http.MethodPost, "/nfts/" + nftB + "/accept", admin, "", http.StatusBadRequest},
		{"missing token", http.MethodPost, "/nfts", "", `{"address":"` + nftA + `"}`, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, res := cl.Do(tc.method, tc.target, tc.caller, tc.body)
			require.Equal(t, tc.status, code)
			require.Equal(t, "fail", res.Status)
		})
	}
}
