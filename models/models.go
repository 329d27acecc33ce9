package models

import (
	"time"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/domain"
)

// Event is a stored domain event. Rows are insert-only; corrections are new
// compensating events. Quantity and ReferenceID are extracted from the
// payload at append time so availability netting stays plain SQL.
type Event struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EventID       string    `gorm:"uniqueIndex" json:"event_id"`
	TenantID      string    `gorm:"index:idx_events_tenant_aggregate;index:idx_events_tenant_reference" json:"tenant_id"`
	ActorID       string    `json:"actor_id"`
	ActorRole     string    `json:"actor_role"`
	AggregateKind string    `gorm:"index" json:"aggregate_kind"`
	AggregateID   string    `gorm:"index:idx_events_tenant_aggregate" json:"aggregate_id"`
	EventType     string    `gorm:"index" json:"event_type"`
	Payload       []byte    `json:"payload"`
	Quantity      float64   `json:"quantity"`
	ReferenceID   *string   `gorm:"index:idx_events_tenant_reference" json:"reference_id"`
	CorrelationID *string   `gorm:"index" json:"correlation_id"`
	CausationID   *string   `json:"causation_id"`
	Source        string    `json:"source"`
	OccurredAt    time.Time `json:"occurred_at"`
	CreatedAt     time.Time `json:"created_at"`
	Processed     bool      `gorm:"index" json:"processed"`
	Error         *string   `json:"error"`
}

// Snapshot is the common surface the lifecycle engine needs from any
// aggregate snapshot row.
type Snapshot interface {
	GetID() string
	GetTenantID() string
	GetStatus() domain.Status
	SetStatus(domain.Status)
	MarkStarted(time.Time)
	MarkCompleted(time.Time)
	MarkCancelled(time.Time)
	Kind() domain.AggregateKind
}

// SnapshotBase carries the columns every aggregate snapshot shares. The
// snapshot is a materialized convenience cache; the event log stays
// authoritative. Rows are never physically deleted.
type SnapshotBase struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	TenantID    string     `gorm:"index" json:"tenant_id"`
	Code        string     `gorm:"index" json:"code"`
	Status      string     `gorm:"index" json:"status"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (b *SnapshotBase) GetID() string             { return b.ID }
func (b *SnapshotBase) GetTenantID() string       { return b.TenantID }
func (b *SnapshotBase) GetStatus() domain.Status  { return domain.Status(b.Status) }
func (b *SnapshotBase) SetStatus(s domain.Status) { b.Status = string(s) }
func (b *SnapshotBase) MarkStarted(t time.Time)   { b.StartedAt = &t }
func (b *SnapshotBase) MarkCompleted(t time.Time) { b.CompletedAt = &t }
func (b *SnapshotBase) MarkCancelled(t time.Time) { b.CancelledAt = &t }

// MiningShift is a pit extraction shift.
type MiningShift struct {
	SnapshotBase
	Pit           string  `json:"pit"`
	PlannedTonnes float64 `json:"planned_tonnes"`
}

func (MiningShift) Kind() domain.AggregateKind { return domain.KindMiningShift }

// Stockpile holds raw material between mining and mixing.
type Stockpile struct {
	SnapshotBase
	Material string `json:"material"`
}

func (Stockpile) Kind() domain.AggregateKind { return domain.KindStockpile }

type MixBatch struct {
	SnapshotBase
	Recipe string `json:"recipe"`
}

func (MixBatch) Kind() domain.AggregateKind { return domain.KindMixBatch }

type CrushRun struct {
	SnapshotBase
	LastFinesPct *float64 `json:"last_fines_pct"`
}

func (CrushRun) Kind() domain.AggregateKind { return domain.KindCrushRun }

type ExtrusionRun struct {
	SnapshotBase
	DieCode string `json:"die_code"`
}

func (ExtrusionRun) Kind() domain.AggregateKind { return domain.KindExtrusionRun }

type DryLoad struct {
	SnapshotBase
	Yard            string   `json:"yard"`
	LastMoisturePct *float64 `json:"last_moisture_pct"`
}

func (DryLoad) Kind() domain.AggregateKind { return domain.KindDryLoad }

type KilnBatch struct {
	SnapshotBase
	Kiln             string   `json:"kiln"`
	LastShrinkagePct *float64 `json:"last_shrinkage_pct"`
}

func (KilnBatch) Kind() domain.AggregateKind { return domain.KindKilnBatch }

// Pallet is a packed-inventory unit holder.
type Pallet struct {
	SnapshotBase
	Product string `json:"product"`
}

func (Pallet) Kind() domain.AggregateKind { return domain.KindPallet }

type Shipment struct {
	SnapshotBase
	OrderID      string     `gorm:"index" json:"order_id"`
	DispatchedAt *time.Time `json:"dispatched_at"`
}

func (Shipment) Kind() domain.AggregateKind { return domain.KindShipment }

type SalesOrder struct {
	SnapshotBase
	Customer string `json:"customer"`
}

func (SalesOrder) Kind() domain.AggregateKind { return domain.KindSalesOrder }

// Invoice keeps the issued amount and the paid-to-date sum as cached fields;
// payments themselves live in the event log.
type Invoice struct {
	SnapshotBase
	OrderID string  `gorm:"index" json:"order_id"`
	Amount  float64 `json:"amount"`
	Paid    float64 `json:"paid"`
}

func (Invoice) Kind() domain.AggregateKind { return domain.KindInvoice }

// SetupModels runs automigration for the event table and all snapshot
// tables.
func SetupModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&Event{},
		&MiningShift{},
		&Stockpile{},
		&MixBatch{},
		&CrushRun{},
		&ExtrusionRun{},
		&DryLoad{},
		&KilnBatch{},
		&Pallet{},
		&Shipment{},
		&SalesOrder{},
		&Invoice{},
	)
}
