package domain

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Payload is one variant of the closed set of event payloads. Every event
// type maps to exactly one record type via the registry below, so decoding
// is exhaustive rather than ad hoc field lookups.
type Payload interface {
	EventType() string
}

// Quantified is implemented by payloads that move a nettable quantity; the
// appender extracts it into the stored row so availability sums stay plain
// SQL.
type Quantified interface {
	NettedQuantity() float64
}

// Event type vocabulary.
const (
	MiningShiftCreated        = "MINING_SHIFT_CREATED"
	MiningShiftStarted        = "MINING_SHIFT_STARTED"
	MiningShiftPaused         = "MINING_SHIFT_PAUSED"
	MiningShiftResumed        = "MINING_SHIFT_RESUMED"
	MiningShiftOutputRecorded = "MINING_SHIFT_OUTPUT_RECORDED"
	MiningShiftCompleted      = "MINING_SHIFT_COMPLETED"
	MiningShiftCancelled      = "MINING_SHIFT_CANCELLED"

	StockpileCreated         = "STOCKPILE_CREATED"
	StockpileDepositRecorded = "STOCKPILE_DEPOSIT_RECORDED"
	StockpileClosed          = "STOCKPILE_CLOSED"

	MixBatchCreated        = "MIX_BATCH_CREATED"
	MixBatchInputAdded     = "MIX_BATCH_INPUT_ADDED"
	MixBatchStarted        = "MIX_BATCH_STARTED"
	MixBatchPaused         = "MIX_BATCH_PAUSED"
	MixBatchResumed        = "MIX_BATCH_RESUMED"
	MixBatchOutputRecorded = "MIX_BATCH_OUTPUT_RECORDED"
	MixBatchCompleted      = "MIX_BATCH_COMPLETED"
	MixBatchCancelled      = "MIX_BATCH_CANCELLED"

	CrushRunCreated        = "CRUSH_RUN_CREATED"
	CrushRunInputAdded     = "CRUSH_RUN_INPUT_ADDED"
	CrushRunStarted        = "CRUSH_RUN_STARTED"
	CrushRunPaused         = "CRUSH_RUN_PAUSED"
	CrushRunResumed        = "CRUSH_RUN_RESUMED"
	CrushRunOutputRecorded = "CRUSH_RUN_OUTPUT_RECORDED"
	CrushRunCompleted      = "CRUSH_RUN_COMPLETED"
	CrushRunCancelled      = "CRUSH_RUN_CANCELLED"

	ExtrusionRunCreated        = "EXTRUSION_RUN_CREATED"
	ExtrusionRunInputAdded     = "EXTRUSION_RUN_INPUT_ADDED"
	ExtrusionRunStarted        = "EXTRUSION_RUN_STARTED"
	ExtrusionRunPaused         = "EXTRUSION_RUN_PAUSED"
	ExtrusionRunResumed        = "EXTRUSION_RUN_RESUMED"
	ExtrusionRunOutputRecorded = "EXTRUSION_RUN_OUTPUT_RECORDED"
	ExtrusionRunCompleted      = "EXTRUSION_RUN_COMPLETED"
	ExtrusionRunCancelled      = "EXTRUSION_RUN_CANCELLED"

	DryLoadCreated        = "DRY_LOAD_CREATED"
	DryLoadInputAdded     = "DRY_LOAD_INPUT_ADDED"
	DryLoadStarted        = "DRY_LOAD_STARTED"
	DryLoadPaused         = "DRY_LOAD_PAUSED"
	DryLoadResumed        = "DRY_LOAD_RESUMED"
	DryLoadOutputRecorded = "DRY_LOAD_OUTPUT_RECORDED"
	DryLoadCompleted      = "DRY_LOAD_COMPLETED"
	DryLoadCancelled      = "DRY_LOAD_CANCELLED"

	KilnBatchCreated        = "KILN_BATCH_CREATED"
	KilnBatchInputAdded     = "KILN_BATCH_INPUT_ADDED"
	KilnBatchStarted        = "KILN_BATCH_STARTED"
	KilnBatchPaused         = "KILN_BATCH_PAUSED"
	KilnBatchResumed        = "KILN_BATCH_RESUMED"
	KilnBatchOutputRecorded = "KILN_BATCH_OUTPUT_RECORDED"
	KilnBatchCompleted      = "KILN_BATCH_COMPLETED"
	KilnBatchCancelled      = "KILN_BATCH_CANCELLED"

	PackPalletCreated             = "PACK_PALLET_CREATED"
	PackPalletUnitsAdded          = "PACK_PALLET_UNITS_ADDED"
	PackPalletUnitsRemoved        = "PACK_PALLET_UNITS_REMOVED"
	PackPalletClosed              = "PACK_PALLET_CLOSED"
	PackPalletReserved            = "PACK_PALLET_RESERVED"
	PackPalletReservationReleased = "PACK_PALLET_RESERVATION_RELEASED"
	PackPalletCancelled           = "PACK_PALLET_CANCELLED"

	ShipmentCreated             = "SHIPMENT_CREATED"
	ShipmentPickAdded           = "SHIPMENT_PICK_ADDED"
	ShipmentDispatched          = "SHIPMENT_DISPATCHED"
	ShipmentReservationReleased = "SHIPMENT_RESERVATION_RELEASED"
	ShipmentCancelled           = "SHIPMENT_CANCELLED"

	SalesOrderCreated             = "SALES_ORDER_CREATED"
	SalesOrderLineAdded           = "SALES_ORDER_LINE_ADDED"
	SalesOrderReservationAdded    = "SALES_ORDER_RESERVATION_ADDED"
	SalesOrderReservationReleased = "SALES_ORDER_RESERVATION_RELEASED"
	SalesOrderConfirmed           = "SALES_ORDER_CONFIRMED"
	SalesOrderClosed              = "SALES_ORDER_CLOSED"
	SalesOrderCancelled           = "SALES_ORDER_CANCELLED"

	InvoiceIssued    = "INVOICE_ISSUED"
	InvoiceCompleted = "INVOICE_COMPLETED"
	InvoiceCancelled = "INVOICE_CANCELLED"
	PaymentRecorded  = "PAYMENT_RECORDED"
)

// Mining shift payloads.

type MiningShiftCreatedPayload struct {
	Code          string  `json:"code"`
	Pit           string  `json:"pit"`
	PlannedTonnes float64 `json:"planned_tonnes"`
}

type MiningShiftStartedPayload struct{}

type MiningShiftPausedPayload struct {
	Reason string `json:"reason"`
}

type MiningShiftResumedPayload struct{}

type MiningShiftOutputRecordedPayload struct {
	Tonnes float64 `json:"tonnes"`
}

type MiningShiftCompletedPayload struct{}

type MiningShiftCancelledPayload struct {
	Reason string `json:"reason"`
}

func (MiningShiftCreatedPayload) EventType() string        { return MiningShiftCreated }
func (MiningShiftStartedPayload) EventType() string        { return MiningShiftStarted }
func (MiningShiftPausedPayload) EventType() string         { return MiningShiftPaused }
func (MiningShiftResumedPayload) EventType() string        { return MiningShiftResumed }
func (MiningShiftOutputRecordedPayload) EventType() string { return MiningShiftOutputRecorded }
func (MiningShiftCompletedPayload) EventType() string      { return MiningShiftCompleted }
func (MiningShiftCancelledPayload) EventType() string      { return MiningShiftCancelled }

func (p MiningShiftOutputRecordedPayload) NettedQuantity() float64 { return p.Tonnes }

// Stockpile payloads.

type StockpileCreatedPayload struct {
	Code     string `json:"code"`
	Material string `json:"material"`
}

type StockpileDepositRecordedPayload struct {
	ShiftID string  `json:"shift_id"`
	Tonnes  float64 `json:"tonnes"`
}

type StockpileClosedPayload struct {
	Reason string `json:"reason"`
}

func (StockpileCreatedPayload) EventType() string         { return StockpileCreated }
func (StockpileDepositRecordedPayload) EventType() string { return StockpileDepositRecorded }
func (StockpileClosedPayload) EventType() string          { return StockpileClosed }

func (p StockpileDepositRecordedPayload) NettedQuantity() float64 { return p.Tonnes }

// Mix batch payloads.

type MixBatchCreatedPayload struct {
	Code   string `json:"code"`
	Recipe string `json:"recipe"`
}

type MixBatchInputAddedPayload struct {
	StockpileID string  `json:"stockpile_id"`
	Tonnes      float64 `json:"tonnes"`
}

type MixBatchStartedPayload struct{}

type MixBatchPausedPayload struct {
	Reason string `json:"reason"`
}

type MixBatchResumedPayload struct{}

type MixBatchOutputRecordedPayload struct {
	Tonnes float64 `json:"tonnes"`
}

type MixBatchCompletedPayload struct{}

type MixBatchCancelledPayload struct {
	Reason string `json:"reason"`
}

func (MixBatchCreatedPayload) EventType() string        { return MixBatchCreated }
func (MixBatchInputAddedPayload) EventType() string     { return MixBatchInputAdded }
func (MixBatchStartedPayload) EventType() string        { return MixBatchStarted }
func (MixBatchPausedPayload) EventType() string         { return MixBatchPaused }
func (MixBatchResumedPayload) EventType() string        { return MixBatchResumed }
func (MixBatchOutputRecordedPayload) EventType() string { return MixBatchOutputRecorded }
func (MixBatchCompletedPayload) EventType() string      { return MixBatchCompleted }
func (MixBatchCancelledPayload) EventType() string      { return MixBatchCancelled }

func (p MixBatchInputAddedPayload) NettedQuantity() float64     { return p.Tonnes }
func (p MixBatchOutputRecordedPayload) NettedQuantity() float64 { return p.Tonnes }

// Crush run payloads. Output carries the fines percentage measured at the
// crusher discharge.

type CrushRunCreatedPayload struct {
	Code string `json:"code"`
}

type CrushRunInputAddedPayload struct {
	MixBatchID string  `json:"mix_batch_id"`
	Tonnes     float64 `json:"tonnes"`
}

type CrushRunStartedPayload struct{}

type CrushRunPausedPayload struct {
	Reason string `json:"reason"`
}

type CrushRunResumedPayload struct{}

type CrushRunOutputRecordedPayload struct {
	Tonnes   float64 `json:"tonnes"`
	FinesPct float64 `json:"fines_pct"`
}

type CrushRunCompletedPayload struct{}

type CrushRunCancelledPayload struct {
	Reason string `json:"reason"`
}

func (CrushRunCreatedPayload) EventType() string        { return CrushRunCreated }
func (CrushRunInputAddedPayload) EventType() string     { return CrushRunInputAdded }
func (CrushRunStartedPayload) EventType() string        { return CrushRunStarted }
func (CrushRunPausedPayload) EventType() string         { return CrushRunPaused }
func (CrushRunResumedPayload) EventType() string        { return CrushRunResumed }
func (CrushRunOutputRecordedPayload) EventType() string { return CrushRunOutputRecorded }
func (CrushRunCompletedPayload) EventType() string      { return CrushRunCompleted }
func (CrushRunCancelledPayload) EventType() string      { return CrushRunCancelled }

func (p CrushRunInputAddedPayload) NettedQuantity() float64     { return p.Tonnes }
func (p CrushRunOutputRecordedPayload) NettedQuantity() float64 { return p.Tonnes }

// Extrusion run payloads.

type ExtrusionRunCreatedPayload struct {
	Code    string `json:"code"`
	DieCode string `json:"die_code"`
}

type ExtrusionRunInputAddedPayload struct {
	CrushRunID string  `json:"crush_run_id"`
	Tonnes     float64 `json:"tonnes"`
}

type ExtrusionRunStartedPayload struct{}

type ExtrusionRunPausedPayload struct {
	Reason string `json:"reason"`
}

type ExtrusionRunResumedPayload struct{}

type ExtrusionRunOutputRecordedPayload struct {
	Tonnes float64 `json:"tonnes"`
}

type ExtrusionRunCompletedPayload struct{}

type ExtrusionRunCancelledPayload struct {
	Reason string `json:"reason"`
}

func (ExtrusionRunCreatedPayload) EventType() string        { return ExtrusionRunCreated }
func (ExtrusionRunInputAddedPayload) EventType() string     { return ExtrusionRunInputAdded }
func (ExtrusionRunStartedPayload) EventType() string        { return ExtrusionRunStarted }
func (ExtrusionRunPausedPayload) EventType() string         { return ExtrusionRunPaused }
func (ExtrusionRunResumedPayload) EventType() string        { return ExtrusionRunResumed }
func (ExtrusionRunOutputRecordedPayload) EventType() string { return ExtrusionRunOutputRecorded }
func (ExtrusionRunCompletedPayload) EventType() string      { return ExtrusionRunCompleted }
func (ExtrusionRunCancelledPayload) EventType() string      { return ExtrusionRunCancelled }

func (p ExtrusionRunInputAddedPayload) NettedQuantity() float64     { return p.Tonnes }
func (p ExtrusionRunOutputRecordedPayload) NettedQuantity() float64 { return p.Tonnes }

// Dry load payloads. Output carries the residual moisture percentage.

type DryLoadCreatedPayload struct {
	Code string `json:"code"`
	Yard string `json:"yard"`
}

type DryLoadInputAddedPayload struct {
	ExtrusionRunID string  `json:"extrusion_run_id"`
	Tonnes         float64 `json:"tonnes"`
}

type DryLoadStartedPayload struct{}

type DryLoadPausedPayload struct {
	Reason string `json:"reason"`
}

type DryLoadResumedPayload struct{}

type DryLoadOutputRecordedPayload struct {
	Tonnes      float64 `json:"tonnes"`
	MoisturePct float64 `json:"moisture_pct"`
}

type DryLoadCompletedPayload struct{}

type DryLoadCancelledPayload struct {
	Reason string `json:"reason"`
}

func (DryLoadCreatedPayload) EventType() string        { return DryLoadCreated }
func (DryLoadInputAddedPayload) EventType() string     { return DryLoadInputAdded }
func (DryLoadStartedPayload) EventType() string        { return DryLoadStarted }
func (DryLoadPausedPayload) EventType() string         { return DryLoadPaused }
func (DryLoadResumedPayload) EventType() string        { return DryLoadResumed }
func (DryLoadOutputRecordedPayload) EventType() string { return DryLoadOutputRecorded }
func (DryLoadCompletedPayload) EventType() string      { return DryLoadCompleted }
func (DryLoadCancelledPayload) EventType() string      { return DryLoadCancelled }

func (p DryLoadInputAddedPayload) NettedQuantity() float64     { return p.Tonnes }
func (p DryLoadOutputRecordedPayload) NettedQuantity() float64 { return p.Tonnes }

// Kiln batch payloads. Output carries firing shrinkage.

type KilnBatchCreatedPayload struct {
	Code string `json:"code"`
	Kiln string `json:"kiln"`
}

type KilnBatchInputAddedPayload struct {
	DryLoadID string  `json:"dry_load_id"`
	Tonnes    float64 `json:"tonnes"`
}

type KilnBatchStartedPayload struct{}

type KilnBatchPausedPayload struct {
	Reason string `json:"reason"`
}

type KilnBatchResumedPayload struct{}

type KilnBatchOutputRecordedPayload struct {
	Units        float64 `json:"units"`
	ShrinkagePct float64 `json:"shrinkage_pct"`
}

type KilnBatchCompletedPayload struct{}

type KilnBatchCancelledPayload struct {
	Reason string `json:"reason"`
}

func (KilnBatchCreatedPayload) EventType() string        { return KilnBatchCreated }
func (KilnBatchInputAddedPayload) EventType() string     { return KilnBatchInputAdded }
func (KilnBatchStartedPayload) EventType() string        { return KilnBatchStarted }
func (KilnBatchPausedPayload) EventType() string         { return KilnBatchPaused }
func (KilnBatchResumedPayload) EventType() string        { return KilnBatchResumed }
func (KilnBatchOutputRecordedPayload) EventType() string { return KilnBatchOutputRecorded }
func (KilnBatchCompletedPayload) EventType() string      { return KilnBatchCompleted }
func (KilnBatchCancelledPayload) EventType() string      { return KilnBatchCancelled }

func (p KilnBatchInputAddedPayload) NettedQuantity() float64     { return p.Tonnes }
func (p KilnBatchOutputRecordedPayload) NettedQuantity() float64 { return p.Units }

// Pallet payloads.

type PackPalletCreatedPayload struct {
	Code    string `json:"code"`
	Product string `json:"product"`
}

type PackPalletUnitsAddedPayload struct {
	KilnBatchID string  `json:"kiln_batch_id"`
	Units       float64 `json:"units"`
}

type PackPalletUnitsRemovedPayload struct {
	ShipmentID string  `json:"shipment_id"`
	Units      float64 `json:"units"`
}

type PackPalletClosedPayload struct{}

type PackPalletReservedPayload struct {
	ConsumerKind string  `json:"consumer_kind"`
	ConsumerID   string  `json:"consumer_id"`
	Units        float64 `json:"units"`
}

type PackPalletReservationReleasedPayload struct {
	ConsumerKind string  `json:"consumer_kind"`
	ConsumerID   string  `json:"consumer_id"`
	Units        float64 `json:"units"`
}

type PackPalletCancelledPayload struct {
	Reason string `json:"reason"`
}

func (PackPalletCreatedPayload) EventType() string      { return PackPalletCreated }
func (PackPalletUnitsAddedPayload) EventType() string   { return PackPalletUnitsAdded }
func (PackPalletUnitsRemovedPayload) EventType() string { return PackPalletUnitsRemoved }
func (PackPalletClosedPayload) EventType() string       { return PackPalletClosed }
func (PackPalletReservedPayload) EventType() string     { return PackPalletReserved }
func (PackPalletReservationReleasedPayload) EventType() string {
	return PackPalletReservationReleased
}
func (PackPalletCancelledPayload) EventType() string { return PackPalletCancelled }

func (p PackPalletUnitsAddedPayload) NettedQuantity() float64          { return p.Units }
func (p PackPalletUnitsRemovedPayload) NettedQuantity() float64        { return p.Units }
func (p PackPalletReservedPayload) NettedQuantity() float64            { return p.Units }
func (p PackPalletReservationReleasedPayload) NettedQuantity() float64 { return p.Units }

// Shipment payloads.

type ShipmentCreatedPayload struct {
	Code    string `json:"code"`
	OrderID string `json:"order_id"`
}

type ShipmentPickAddedPayload struct {
	PalletID string  `json:"pallet_id"`
	Units    float64 `json:"units"`
}

type ShipmentDispatchedPayload struct{}

type ShipmentReservationReleasedPayload struct {
	PalletID string  `json:"pallet_id"`
	Units    float64 `json:"units"`
}

type ShipmentCancelledPayload struct {
	Reason string `json:"reason"`
}

func (ShipmentCreatedPayload) EventType() string             { return ShipmentCreated }
func (ShipmentPickAddedPayload) EventType() string           { return ShipmentPickAdded }
func (ShipmentDispatchedPayload) EventType() string          { return ShipmentDispatched }
func (ShipmentReservationReleasedPayload) EventType() string { return ShipmentReservationReleased }
func (ShipmentCancelledPayload) EventType() string           { return ShipmentCancelled }

func (p ShipmentPickAddedPayload) NettedQuantity() float64           { return p.Units }
func (p ShipmentReservationReleasedPayload) NettedQuantity() float64 { return p.Units }

// Sales order payloads.

type SalesOrderCreatedPayload struct {
	Code     string `json:"code"`
	Customer string `json:"customer"`
}

type SalesOrderLineAddedPayload struct {
	Product   string  `json:"product"`
	Units     float64 `json:"units"`
	UnitPrice float64 `json:"unit_price"`
}

type SalesOrderReservationAddedPayload struct {
	PalletID string  `json:"pallet_id"`
	Units    float64 `json:"units"`
}

type SalesOrderReservationReleasedPayload struct {
	PalletID string  `json:"pallet_id"`
	Units    float64 `json:"units"`
}

type SalesOrderConfirmedPayload struct{}

type SalesOrderClosedPayload struct{}

type SalesOrderCancelledPayload struct {
	Reason string `json:"reason"`
}

func (SalesOrderCreatedPayload) EventType() string          { return SalesOrderCreated }
func (SalesOrderLineAddedPayload) EventType() string        { return SalesOrderLineAdded }
func (SalesOrderReservationAddedPayload) EventType() string { return SalesOrderReservationAdded }
func (SalesOrderReservationReleasedPayload) EventType() string {
	return SalesOrderReservationReleased
}
func (SalesOrderConfirmedPayload) EventType() string { return SalesOrderConfirmed }
func (SalesOrderClosedPayload) EventType() string    { return SalesOrderClosed }
func (SalesOrderCancelledPayload) EventType() string { return SalesOrderCancelled }

func (p SalesOrderReservationAddedPayload) NettedQuantity() float64    { return p.Units }
func (p SalesOrderReservationReleasedPayload) NettedQuantity() float64 { return p.Units }

// Finance payloads.

type InvoiceIssuedPayload struct {
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
}

type InvoiceCompletedPayload struct{}

type InvoiceCancelledPayload struct {
	Reason string `json:"reason"`
}

type PaymentRecordedPayload struct {
	InvoiceID string  `json:"invoice_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

func (InvoiceIssuedPayload) EventType() string    { return InvoiceIssued }
func (InvoiceCompletedPayload) EventType() string { return InvoiceCompleted }
func (InvoiceCancelledPayload) EventType() string { return InvoiceCancelled }
func (PaymentRecordedPayload) EventType() string  { return PaymentRecorded }

func (p PaymentRecordedPayload) NettedQuantity() float64 { return p.Amount }

// registry maps every event type to its payload record. Decoding an event
// type missing here is an error, never a silent map.
var registry = map[string]func() Payload{
	MiningShiftCreated:        func() Payload { return &MiningShiftCreatedPayload{} },
	MiningShiftStarted:        func() Payload { return &MiningShiftStartedPayload{} },
	MiningShiftPaused:         func() Payload { return &MiningShiftPausedPayload{} },
	MiningShiftResumed:        func() Payload { return &MiningShiftResumedPayload{} },
	MiningShiftOutputRecorded: func() Payload { return &MiningShiftOutputRecordedPayload{} },
	MiningShiftCompleted:      func() Payload { return &MiningShiftCompletedPayload{} },
	MiningShiftCancelled:      func() Payload { return &MiningShiftCancelledPayload{} },

	StockpileCreated:         func() Payload { return &StockpileCreatedPayload{} },
	StockpileDepositRecorded: func() Payload { return &StockpileDepositRecordedPayload{} },
	StockpileClosed:          func() Payload { return &StockpileClosedPayload{} },

	MixBatchCreated:        func() Payload { return &MixBatchCreatedPayload{} },
	MixBatchInputAdded:     func() Payload { return &MixBatchInputAddedPayload{} },
	MixBatchStarted:        func() Payload { return &MixBatchStartedPayload{} },
	MixBatchPaused:         func() Payload { return &MixBatchPausedPayload{} },
	MixBatchResumed:        func() Payload { return &MixBatchResumedPayload{} },
	MixBatchOutputRecorded: func() Payload { return &MixBatchOutputRecordedPayload{} },
	MixBatchCompleted:      func() Payload { return &MixBatchCompletedPayload{} },
	MixBatchCancelled:      func() Payload { return &MixBatchCancelledPayload{} },

	CrushRunCreated:        func() Payload { return &CrushRunCreatedPayload{} },
	CrushRunInputAdded:     func() Payload { return &CrushRunInputAddedPayload{} },
	CrushRunStarted:        func() Payload { return &CrushRunStartedPayload{} },
	CrushRunPaused:         func() Payload { return &CrushRunPausedPayload{} },
	CrushRunResumed:        func() Payload { return &CrushRunResumedPayload{} },
	CrushRunOutputRecorded: func() Payload { return &CrushRunOutputRecordedPayload{} },
	CrushRunCompleted:      func() Payload { return &CrushRunCompletedPayload{} },
	CrushRunCancelled:      func() Payload { return &CrushRunCancelledPayload{} },

	ExtrusionRunCreated:        func() Payload { return &ExtrusionRunCreatedPayload{} },
	ExtrusionRunInputAdded:     func() Payload { return &ExtrusionRunInputAddedPayload{} },
	ExtrusionRunStarted:        func() Payload { return &ExtrusionRunStartedPayload{} },
	ExtrusionRunPaused:         func() Payload { return &ExtrusionRunPausedPayload{} },
	ExtrusionRunResumed:        func() Payload { return &ExtrusionRunResumedPayload{} },
	ExtrusionRunOutputRecorded: func() Payload { return &ExtrusionRunOutputRecordedPayload{} },
	ExtrusionRunCompleted:      func() Payload { return &ExtrusionRunCompletedPayload{} },
	ExtrusionRunCancelled:      func() Payload { return &ExtrusionRunCancelledPayload{} },

	DryLoadCreated:        func() Payload { return &DryLoadCreatedPayload{} },
	DryLoadInputAdded:     func() Payload { return &DryLoadInputAddedPayload{} },
	DryLoadStarted:        func() Payload { return &DryLoadStartedPayload{} },
	DryLoadPaused:         func() Payload { return &DryLoadPausedPayload{} },
	DryLoadResumed:        func() Payload { return &DryLoadResumedPayload{} },
	DryLoadOutputRecorded: func() Payload { return &DryLoadOutputRecordedPayload{} },
	DryLoadCompleted:      func() Payload { return &DryLoadCompletedPayload{} },
	DryLoadCancelled:      func() Payload { return &DryLoadCancelledPayload{} },

	KilnBatchCreated:        func() Payload { return &KilnBatchCreatedPayload{} },
	KilnBatchInputAdded:     func() Payload { return &KilnBatchInputAddedPayload{} },
	KilnBatchStarted:        func() Payload { return &KilnBatchStartedPayload{} },
	KilnBatchPaused:         func() Payload { return &KilnBatchPausedPayload{} },
	KilnBatchResumed:        func() Payload { return &KilnBatchResumedPayload{} },
	KilnBatchOutputRecorded: func() Payload { return &KilnBatchOutputRecordedPayload{} },
	KilnBatchCompleted:      func() Payload { return &KilnBatchCompletedPayload{} },
	KilnBatchCancelled:      func() Payload { return &KilnBatchCancelledPayload{} },

	PackPalletCreated:             func() Payload { return &PackPalletCreatedPayload{} },
	PackPalletUnitsAdded:          func() Payload { return &PackPalletUnitsAddedPayload{} },
	PackPalletUnitsRemoved:        func() Payload { return &PackPalletUnitsRemovedPayload{} },
	PackPalletClosed:              func() Payload { return &PackPalletClosedPayload{} },
	PackPalletReserved:            func() Payload { return &PackPalletReservedPayload{} },
	PackPalletReservationReleased: func() Payload { return &PackPalletReservationReleasedPayload{} },
	PackPalletCancelled:           func() Payload { return &PackPalletCancelledPayload{} },

	ShipmentCreated:             func() Payload { return &ShipmentCreatedPayload{} },
	ShipmentPickAdded:           func() Payload { return &ShipmentPickAddedPayload{} },
	ShipmentDispatched:          func() Payload { return &ShipmentDispatchedPayload{} },
	ShipmentReservationReleased: func() Payload { return &ShipmentReservationReleasedPayload{} },
	ShipmentCancelled:           func() Payload { return &ShipmentCancelledPayload{} },

	SalesOrderCreated:             func() Payload { return &SalesOrderCreatedPayload{} },
	SalesOrderLineAdded:           func() Payload { return &SalesOrderLineAddedPayload{} },
	SalesOrderReservationAdded:    func() Payload { return &SalesOrderReservationAddedPayload{} },
	SalesOrderReservationReleased: func() Payload { return &SalesOrderReservationReleasedPayload{} },
	SalesOrderConfirmed:           func() Payload { return &SalesOrderConfirmedPayload{} },
	SalesOrderClosed:              func() Payload { return &SalesOrderClosedPayload{} },
	SalesOrderCancelled:           func() Payload { return &SalesOrderCancelledPayload{} },

	InvoiceIssued:    func() Payload { return &InvoiceIssuedPayload{} },
	InvoiceCompleted: func() Payload { return &InvoiceCompletedPayload{} },
	InvoiceCancelled: func() Payload { return &InvoiceCancelledPayload{} },
	PaymentRecorded:  func() Payload { return &PaymentRecordedPayload{} },
}

// KnownEventTypes returns the full event vocabulary, for exhaustiveness
// checks and search filters.
func KnownEventTypes() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	return types
}

// DecodePayload unmarshals stored payload bytes into the registered record
// for the event type.
func DecodePayload(eventType string, data []byte) (Payload, error) {
	factory, ok := registry[eventType]
	if !ok {
		return nil, errors.Errorf("unknown event type: %s", eventType)
	}
	payload := factory()
	if len(data) > 0 {
		if err := json.Unmarshal(data, payload); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s payload", eventType)
		}
	}
	return payload, nil
}
