package token

import (
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/sat20-labs/tokenledger/common"
)

// Events are the append-only notification stream consumed by off-chain
// indexers. Each resource owns its logs; sequence numbers are per log and
// strictly increasing.

type EventKind string

const (
	EventCollectionCreated EventKind = "collection_created"
	EventTokenTypeCreated  EventKind = "token_type_created"
	EventDeposited         EventKind = "deposited"
	EventWithdrawn         EventKind = "withdrawn"
	EventMintNotification  EventKind = "mint"
)

type Event struct {
	Seq  uint64    `json:"seq"`
	Kind EventKind `json:"kind"`
	At   int64     `json:"at"` // unix seconds
	Data []byte    `json:"data"`
}

type CollectionCreatedData struct {
	Creator     string `cbor:"creator"`
	Name        string `cbor:"name"`
	URI         string `cbor:"uri"`
	Description string `cbor:"description"`
	HasMaximum  bool   `cbor:"hasMaximum"`
	Maximum     uint64 `cbor:"maximum,omitempty"`
}

type TokenTypeCreatedData struct {
	ID            AssetIdentity `cbor:"id"`
	Description   string        `cbor:"description"`
	URI           string        `cbor:"uri"`
	MonitorSupply bool          `cbor:"monitorSupply"`
	HasMaximum    bool          `cbor:"hasMaximum"`
	Maximum       uint64        `cbor:"maximum,omitempty"`
	InitialAmount uint64        `cbor:"initialAmount"`
	RoyaltyRateBp uint64        `cbor:"royaltyRateBp"`
}

// AmountData is the payload of Deposited, Withdrawn and MintNotification.
type AmountData struct {
	ID     AssetIdentity `cbor:"id"`
	Amount uint64        `cbor:"amount"`
}

// EventLog is one resource-owned log. Counter is the next sequence number and
// is the only part persisted with the resource; events themselves go to the
// store individually and pending ones ride along with the next flush.
type EventLog struct {
	Counter uint64
	pending []*Event
}

func (l *EventLog) append(kind EventKind, payload interface{}) *Event {
	data, err := cbor.Marshal(payload)
	if err != nil {
		common.Log.Panicf("cbor encode %s event failed, %v", kind, err)
	}
	ev := &Event{
		Seq:  l.Counter,
		Kind: kind,
		At:   time.Now().Unix(),
		Data: data,
	}
	l.Counter++
	l.pending = append(l.pending, ev)
	return ev
}

func (l *EventLog) takePending() []*Event {
	ret := l.pending
	l.pending = nil
	return ret
}

func DecodeEventData[T any](ev *Event) (*T, error) {
	var ret T
	if err := cbor.Unmarshal(ev.Data, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}
