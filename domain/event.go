package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregateKind identifies the subject of an event.
type AggregateKind string

const (
	KindMiningShift  AggregateKind = "mining_shift"
	KindStockpile    AggregateKind = "stockpile"
	KindMixBatch     AggregateKind = "mix_batch"
	KindCrushRun     AggregateKind = "crush_run"
	KindExtrusionRun AggregateKind = "extrusion_run"
	KindDryLoad      AggregateKind = "dry_load"
	KindKilnBatch    AggregateKind = "kiln_batch"
	KindPallet       AggregateKind = "pallet"
	KindShipment     AggregateKind = "shipment"
	KindSalesOrder   AggregateKind = "sales_order"
	KindInvoice      AggregateKind = "invoice"
	KindPayment      AggregateKind = "payment"
	KindAdmin        AggregateKind = "admin"
)

// Event is an immutable fact about something that happened to an aggregate.
// Events are never updated or deleted; corrections are new compensating
// events.
type Event struct {
	ID            uuid.UUID
	TenantID      string
	ActorID       string
	ActorRole     string
	AggregateKind AggregateKind
	AggregateID   string
	Type          string
	Payload       Payload

	// ReferenceID names the upstream aggregate a consumption event draws
	// from. Empty for production and lifecycle events.
	ReferenceID string

	// CorrelationID links the two halves of a cross-aggregate pair, e.g.
	// a pallet reservation and the consumer-side event it belongs to.
	CorrelationID string

	// CausationID points at the event that caused this one.
	CausationID string

	Source     string
	OccurredAt time.Time
}

// NewEvent builds an event attributed to the actor, stamped now.
func NewEvent(actor Actor, kind AggregateKind, aggregateID string, payload Payload) Event {
	return Event{
		ID:            uuid.New(),
		TenantID:      actor.TenantID,
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		AggregateKind: kind,
		AggregateID:   aggregateID,
		Type:          payload.EventType(),
		Payload:       payload,
		Source:        "production-core",
		OccurredAt:    time.Now().UTC(),
	}
}

// WithReference sets the upstream aggregate a consumption event draws from.
func (e Event) WithReference(upstreamID string) Event {
	e.ReferenceID = upstreamID
	return e
}

// WithCorrelation sets the shared correlation id of a paired event.
func (e Event) WithCorrelation(correlationID string) Event {
	e.CorrelationID = correlationID
	return e
}

// WithCausation sets the event id that caused this event.
func (e Event) WithCausation(causationID string) Event {
	e.CausationID = causationID
	return e
}

// Quantity returns the nettable quantity carried by the payload, or zero for
// payloads that do not move material.
func (e Event) Quantity() float64 {
	if q, ok := e.Payload.(Quantified); ok {
		return q.NettedQuantity()
	}
	return 0
}
