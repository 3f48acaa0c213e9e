package domain

import (
	"time"

	"github.com/mochi-xyz/market/base/ctx"
)

type EventType string

const (
	EventSellOrderCreated       EventType = "SellOrderCreated"
	EventSellOrderPriceUpdated  EventType = "SellOrderPriceUpdated"
	EventSellOrderCancelled     EventType = "SellOrderCancelled"
	EventSellOrderBought        EventType = "SellOrderBought"
	EventSellOrderFilled        EventType = "SellOrderFilled"
	EventExchangeOrderCreated   EventType = "ExchangeOrderCreated"
	EventExchangeOrderCancelled EventType = "ExchangeOrderCancelled"
	EventExchangeLegFilled      EventType = "ExchangeLegFilled"
	EventExchangeOrderCompleted EventType = "ExchangeOrderCompleted"
	EventDeposited              EventType = "Deposited"
	EventRoyaltyClaimed         EventType = "RoyaltyClaimed"
	EventFundWithdrawn          EventType = "FundWithdrawn"
	EventRewardMinted           EventType = "RewardMinted"
)

// Event is a committed state change. Amount fields are decimal strings.
type Event struct {
	Id           string    `json:"id" bson:"id"`
	Type         EventType `json:"type" bson:"type"`
	OrderId      *uint64   `json:"orderId,omitempty" bson:"orderId,omitempty"`
	LegIndex     *int      `json:"legIndex,omitempty" bson:"legIndex,omitempty"`
	NftAddress   Address   `json:"nftAddress,omitempty" bson:"nftAddress,omitempty"`
	TokenId      TokenId   `json:"tokenId,omitempty" bson:"tokenId,omitempty"`
	Amount       uint64    `json:"amount,omitempty" bson:"amount,omitempty"`
	From         Address   `json:"from,omitempty" bson:"from,omitempty"`
	To           Address   `json:"to,omitempty" bson:"to,omitempty"`
	PaymentToken Address   `json:"paymentToken,omitempty" bson:"paymentToken,omitempty"`
	Value        string    `json:"value,omitempty" bson:"value,omitempty"`
	Time         time.Time `json:"time" bson:"time"`
}

// EventEmitter queues events to be published once the enclosing call commits.
type EventEmitter interface {
	Emit(c ctx.Ctx, e Event)
}

// EventSink receives committed events.
type EventSink interface {
	Name() string
	Consume(c ctx.Ctx, events []Event) error
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

func (NoopEmitter) Emit(ctx.Ctx, Event) {}

// EventDispatcher emits events to every sink after commit. Close drains pending events.
type EventDispatcher interface {
	EventEmitter
	Close()
}
