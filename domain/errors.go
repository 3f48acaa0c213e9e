package domain

import (
	"errors"
)

// ErrorKind groups error codes by how callers should react.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAuthorization
	KindValidation
	KindStateConflict
	KindValueMismatch
	KindInsufficientFunds
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindStateConflict:
		return "state_conflict"
	case KindValueMismatch:
		return "value_mismatch"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a coded failure. Sentinels are compared by identity so wrapped
// errors still match with errors.Is.
type Error struct {
	Code    string
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Code: code, Kind: kind, Message: msg}
}

// KindOf returns the kind of the first *Error in the chain, KindInternal otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in the chain, empty otherwise.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidParams = errors.New("invalid params")
)

// authorization
var (
	ErrCallerNotMarketAdmin     = newError(KindAuthorization, "CALLER_NOT_MARKET_ADMIN", "Caller is not the market admin")
	ErrCallerNotMarket          = newError(KindAuthorization, "CALLER_NOT_MARKET", "Caller is not the market")
	ErrCallerNotSeller          = newError(KindAuthorization, "CALLER_NOT_SELLER", "Caller is not the seller")
	ErrCallerIsSeller           = newError(KindAuthorization, "CALLER_IS_SELLER", "Caller is the seller")
	ErrCallerNotNFTOwner        = newError(KindAuthorization, "CALLER_NOT_NFT_OWNER", "Caller is not the NFT owner")
	ErrNFTNotApprovedForMarket  = newError(KindAuthorization, "NFT_NOT_APPROVED_FOR_MARKET", "NFT is not approved for the market")
	ErrCallerNotReservedUser    = newError(KindAuthorization, "CALLER_NOT_RESERVED_USER", "Leg is reserved for another user")
	ErrCallerNotCollectionOwner = newError(KindAuthorization, "CALLER_NOT_COLLECTION_OWNER", "Caller is not the collection owner")
	ErrCallerNotTokenMinter     = newError(KindAuthorization, "CALLER_NOT_TOKEN_MINTER", "Caller is not the token minter")
)

// validation
var (
	ErrNFTNotAccepted       = newError(KindValidation, "NFT_NOT_ACCEPTED", "NFT is not accepted")
	ErrNFTNotRegistered     = newError(KindValidation, "NFT_NOT_REGISTERED", "NFT is not registered")
	ErrPriceIsZero          = newError(KindValidation, "PRICE_IS_ZERO", "Price is zero")
	ErrTokenNotAccepted     = newError(KindValidation, "TOKEN_NOT_ACCEPTED", "Token is not accepted")
	ErrAmountIsNotEqualOne  = newError(KindValidation, "AMOUNT_IS_NOT_EQUAL_ONE", "Amount is not equal one")
	ErrAmountIsZero         = newError(KindValidation, "AMOUNT_IS_ZERO", "Amount is zero")
	ErrAmountIsNotEnough    = newError(KindValidation, "AMOUNT_IS_NOT_ENOUGH", "Amount is not enough")
	ErrArrayLengthMismatch  = newError(KindValidation, "ARRAY_LENGTH_MISMATCH", "Leg arrays have different lengths")
	ErrInvalidLegCount      = newError(KindValidation, "INVALID_LEG_COUNT", "Invalid number of legs")
	ErrInvalidLegIndex      = newError(KindValidation, "INVALID_LEG_INDEX", "Invalid leg index")
	ErrInvalidLegPrice      = newError(KindValidation, "INVALID_LEG_PRICE", "Offered leg cannot carry a price")
	ErrInvalidInitialUsers  = newError(KindValidation, "INVALID_INITIAL_USERS", "Invalid initial users")
	ErrInvalidFraction      = newError(KindValidation, "INVALID_FRACTION", "Numerator must not exceed a non-zero denominator")
	ErrInvalidAddress       = newError(KindValidation, "INVALID_ADDRESS", "Invalid address")
	ErrInvalidTokenType     = newError(KindValidation, "INVALID_TOKEN_TYPE", "Invalid token type")
	ErrPeriodIsZero         = newError(KindValidation, "PERIOD_MUST_BE_GREATER_THAN_ZERO", "Period must be greater than zero")
	ErrNumberOfCycleIsZero  = newError(KindValidation, "NUMBER_OF_CYCLE_MUST_BE_GREATER_THAN_ZERO", "Number of cycle must be greater than zero")
	ErrInvalidStartTime     = newError(KindValidation, "INVALID_START_TIME", "Invalid start time")
	ErrFirstRateIsZero      = newError(KindValidation, "FIRST_RATE_MUST_BE_GREATER_THAN_ZERO", "First rate must be greater than zero")
	ErrSellOrderDuplicate   = newError(KindValidation, "SELL_ORDER_DUPLICATE", "Sell order is duplicate")
	ErrTransferToZeroAddr   = newError(KindValidation, "TRANSFER_TO_ZERO_ADDRESS", "Transfer to the zero address")
)

// state conflict
var (
	ErrSellOrderNotActive       = newError(KindStateConflict, "SELL_ORDER_NOT_ACTIVE", "Sell order is not active")
	ErrExchangeOrderNotActive   = newError(KindStateConflict, "EXCHANGE_ORDER_NOT_ACTIVE", "Exchange order is not active")
	ErrExchangeLegAlreadyFilled = newError(KindStateConflict, "EXCHANGE_LEG_ALREADY_FILLED", "Exchange leg is already filled")
	ErrPriceNotChange           = newError(KindStateConflict, "PRICE_NOT_CHANGE", "Price does not change")
	ErrNFTAlreadyRegistered     = newError(KindStateConflict, "NFT_ALREADY_REGISTERED", "NFT is already registered")
	ErrNFTAlreadyAccepted       = newError(KindStateConflict, "NFT_ALREADY_ACCEPTED", "NFT is already accepted")
	ErrTokenAlreadyAccepted     = newError(KindStateConflict, "TOKEN_ALREADY_ACCEPTED", "Token is already accepted")
	ErrReentrantCall            = newError(KindStateConflict, "REENTRANT_CALL", "Reentrant call")
	ErrAssetAlreadyExists       = newError(KindStateConflict, "ASSET_ALREADY_EXISTS", "Asset already exists")
	ErrTokenAlreadyMinted       = newError(KindStateConflict, "TOKEN_ALREADY_MINTED", "Token is already minted")
)

// value mismatch
var (
	ErrValueNotEqualPrice = newError(KindValueMismatch, "VALUE_NOT_EQUAL_PRICE", "Msg.value not equal price")
)

// insufficient funds
var (
	ErrInsufficientBalance            = newError(KindInsufficientFunds, "INSUFFICIENT_BALANCE", "Insufficient balance")
	ErrTransferAmountExceedsBalance   = newError(KindInsufficientFunds, "TRANSFER_AMOUNT_EXCEEDS_BALANCE", "Transfer amount exceeds balance")
	ErrTransferAmountExceedsAllowance = newError(KindInsufficientFunds, "TRANSFER_AMOUNT_EXCEEDS_ALLOWANCE", "Transfer amount exceeds allowance")
)

// not found
var (
	ErrSellOrderNotFound     = newError(KindNotFound, "SELL_ORDER_NOT_FOUND", "Sell order not found")
	ErrExchangeOrderNotFound = newError(KindNotFound, "EXCHANGE_ORDER_NOT_FOUND", "Exchange order not found")
	ErrAssetNotFound         = newError(KindNotFound, "ASSET_NOT_FOUND", "Asset not found")
	ErrTokenNotMinted        = newError(KindNotFound, "TOKEN_NOT_MINTED", "Token is not minted")
)
