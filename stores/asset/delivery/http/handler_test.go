package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mochi-xyz/market/base/delivery/apitest"
	"github.com/mochi-xyz/market/base/journal"
	"github.com/mochi-xyz/market/domain"
	"github.com/mochi-xyz/market/stores/asset/usecase"
	authUsecase "github.com/mochi-xyz/market/stores/auth/usecase"
)

const (
	jwtSecret = "asset-secret"

	faucet = domain.Address("0x00000000000000000000000000000000000000fc")
	alice  = domain.Address("0x00000000000000000000000000000000000a11ce")
	bob    = domain.Address("0x0000000000000000000000000000000000000b0b")
	usdc   = "0x000000000000000000000000000000000000dc01"
	nft    = "0x0000000000000000000000000000000000000721"
)

type handlerSuite struct {
	suite.Suite

	cl *apitest.Client
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) SetupTest() {
	j := journal.New()
	e, auth := apitest.NewServer(jwtSecret, authUsecase.NewAdminRegistry(nil))
	New(e, usecase.New(j, usecase.NativeConfig{Name: "Ether", Symbol: "ETH", Decimals: 18, Minter: faucet}), auth)
	s.cl = &apitest.Client{T: s.T(), E: e, Secret: jwtSecret}
}

func (s *handlerSuite) get(target, want string) {
	code, res := s.cl.Do(http.MethodGet, target, "", "")
	s.Require().Equal(http.StatusOK, code, target+" "+string(res.Data))
	s.JSONEq(want, string(res.Data), target)
}

func (s *handlerSuite) TestFungibleToken() {
	code, res := s.cl.Do(http.MethodPost, "/tokens", alice, `{"address":"`+usdc+`","name":"USD Coin","symbol":"USDC","decimals":6}`)
	s.Require().Equal(http.StatusCreated, code, string(res.Data))

	code, res = s.cl.Do(http.MethodPost, "/tokens", bob, `{"address":"`+usdc+`","name":"USD Coin","symbol":"USDC","decimals":6}`)
	s.Equal(http.StatusConflict, code)
	s.Equal("ASSET_ALREADY_EXISTS", res.Code)

	s.get("/tokens/"+usdc, `{"address":"`+usdc+`","name":"USD Coin","symbol":"USDC","decimals":6}`)

	code, res = s.cl.Do(http.MethodPost, "/tokens/"+usdc+"/mint", bob, `{"to":"`+string(bob)+`","amount":"500"}`)
	s.Equal(http.StatusForbidden, code)
	s.Equal("CALLER_NOT_TOKEN_MINTER", res.Code)

	code, _ = s.cl.Do(http.MethodPost, "/tokens/"+usdc+"/mint", alice, `{"to":"`+string(bob)+`","amount":"500"}`)
	s.Require().Equal(http.StatusOK, code)
	s.get("/tokens/"+usdc+"/supply", `500`)

	code, res = s.cl.Do(http.MethodPost, "/tokens/"+usdc+"/transfer", bob, `{"to":"`+string(alice)+`","amount":"600"}`)
	s.Equal(http.StatusPaymentRequired, code)
	s.Equal("TRANSFER_AMOUNT_EXCEEDS_BALANCE", res.Code)

	code, _ = s.cl.Do(http.MethodPost, "/tokens/"+usdc+"/transfer", bob, `{"to":"`+string(alice)+`","amount":"200"}`)
	s.Require().Equal(http.StatusOK, code)
	s.get("/tokens/"+usdc+"/balances/"+string(bob), `300`)
	s.get("/tokens/"+usdc+"/balances/"+string(alice), `200`)

	code, _ = s.cl.Do(http.MethodPost, "/tokens/"+usdc+"/approve", bob, `{"spender":"`+string(alice)+`","amount":"50"}`)
	s.Require().Equal(http.StatusOK, code)
	s.get("/tokens/"+usdc+"/allowances/"+string(bob)+"/"+string(alice), `50`)

	code, res = s.cl.Do(http.MethodGet, "/tokens/0x000000000000000000000000000000000000dead", "", "")
	s.Equal(http.StatusNotFound, code)
	s.Equal("ASSET_NOT_FOUND", res.Code)
}

func (s *handlerSuite) TestCollection() {
	code, res := s.cl.Do(http.MethodPost, "/collections", alice, `{"address":"`+nft+`","name":"Art","symbol":"ART","tokenType":5}`)
	s.Equal(http.StatusBadRequest, code)

	code, res = s.cl.Do(http.MethodPost, "/collections", alice, `{"address":"`+nft+`","name":"Art","symbol":"ART","tokenType":721}`)
	s.Require().Equal(http.StatusCreated, code, string(res.Data))
	s.get("/collections/"+nft, `{"address":"`+nft+`","name":"Art","symbol":"ART","tokenType":721,"owner":"`+string(alice)+`"}`)

	code, res = s.cl.Do(http.MethodPost, "/collections/"+nft+"/mint", bob, `{"to":"`+string(bob)+`","tokenId":"1","amount":1}`)
	s.Equal(http.StatusForbidden, code)
	s.Equal("CALLER_NOT_COLLECTION_OWNER", res.Code)

	code, _ = s.cl.Do(http.MethodPost, "/collections/"+nft+"/mint", alice, `{"to":"`+string(bob)+`","tokenId":"1","amount":1}`)
	s.Require().Equal(http.StatusCreated, code)
	s.get("/collections/"+nft+"/tokens/1/owner", `"`+string(bob)+`"`)

	transfer := "/collections/" + nft + "/tokens/1/transfer"
	code, res = s.cl.Do(http.MethodPost, transfer, alice, `{"from":"`+string(bob)+`","to":"`+string(alice)+`","amount":1}`)
	s.Equal(http.StatusForbidden, code)
	s.Equal("NFT_NOT_APPROVED_FOR_MARKET", res.Code)

	code, _ = s.cl.Do(http.MethodPut, "/collections/"+nft+"/operators/"+string(alice), bob, `{"approved":true}`)
	s.Require().Equal(http.StatusOK, code)
	s.get("/collections/"+nft+"/operators/"+string(bob)+"/"+string(alice), `true`)

	code, res = s.cl.Do(http.MethodPost, transfer, alice, `{"from":"`+string(bob)+`","to":"`+string(alice)+`","amount":1,"data":"0x01"}`)
	s.Require().Equal(http.StatusOK, code, string(res.Data))
	s.get("/collections/"+nft+"/tokens/1/owner", `"`+string(alice)+`"`)
	s.get("/collections/"+nft+"/tokens/1/balances/"+string(alice), `1`)
	s.get("/collections/"+nft+"/tokens/1/balances/"+string(bob), `0`)

	code, _ = s.cl.Do(http.MethodPost, transfer, alice, `{"to":"`+string(bob)+`","amount":1,"data":"zz"}`)
	s.Equal(http.StatusBadRequest, code)

	code, res = s.cl.Do(http.MethodGet, "/collections/"+nft+"/tokens/2/owner", "", "")
	s.Equal(http.StatusNotFound, code)
	s.Equal("TOKEN_NOT_MINTED", res.Code)
}
