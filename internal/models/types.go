package models

import "encoding/json"

// EventTypeChargeConfirmed is the only event type that produces a job.
const EventTypeChargeConfirmed = "charge:confirmed"

// DefaultLength is used when the purchaser did not ask for a length.
const DefaultLength = "medium"

// Event is a classified webhook payload. It is either ChargeConfirmed or
// Unrecognized.
type Event interface {
	EventType() string
}

// ChargeConfirmed is a charge:confirmed notification carrying its charge.
type ChargeConfirmed struct {
	Charge Charge
}

func (ChargeConfirmed) EventType() string { return EventTypeChargeConfirmed }

// Unrecognized is any other notification. Type may be empty when the payload
// did not carry one.
type Unrecognized struct {
	Type string
}

func (u Unrecognized) EventType() string { return u.Type }

// Charge is the provider's charge object. Raw keeps the exact bytes so the
// sink receives the charge as the provider sent it.
type Charge struct {
	Raw      json.RawMessage
	Fields   map[string]json.RawMessage
	Metadata map[string]json.RawMessage
}

// JobRecord is the normalized unit of work handed to the sink.
// Absent optional values are encoded as JSON null.
type JobRecord struct {
	OrderID   string          `json:"orderId"`
	Email     *string         `json:"email"`
	TitleHint *string         `json:"title_hint"`
	Tone      *string         `json:"tone"`
	Keywords  json.RawMessage `json:"keywords"`
	Length    string          `json:"length"`
	RawCharge json.RawMessage `json:"rawCharge"`
}
