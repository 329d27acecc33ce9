// Package services implements the guarded operations of the production
// pipeline. Every operation runs as a short-lived request: read snapshot and
// availability, validate, write snapshot mutation and append events, all in
// one transaction scope. The snapshot row is the lock boundary.
package services

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/internal/tracing"
	"example.com/brickworks/services/production/models"
)

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SnapshotStore reads and writes aggregate snapshot rows, always scoped by
// tenant.
type SnapshotStore interface {
	Find(ctx context.Context, tx *gorm.DB, tenantID, id string, out models.Snapshot) error
	FindForUpdate(ctx context.Context, tx *gorm.DB, tenantID, id string, out models.Snapshot) error
	Create(ctx context.Context, tx *gorm.DB, snap models.Snapshot) error
	Save(ctx context.Context, tx *gorm.DB, snap models.Snapshot) error
}

// EventLog is the append-only event store surface the operations need.
type EventLog interface {
	Append(ctx context.Context, tx *gorm.DB, e domain.Event) (*models.Event, error)
	AppendAudit(ctx context.Context, e domain.Event) []string
	ListForAggregate(ctx context.Context, tenantID, aggregateID string) ([]domain.Event, error)
	ReservationsForConsumer(ctx context.Context, tenantID, consumerID string) ([]domain.Event, error)
}

// AvailabilityReader exposes the derived availability calculations. The
// ForUpdate variants compute on the caller's open transaction and are the
// only forms a guard may consult; the plain forms may serve cached or
// replica reads and exist for the reporting endpoints.
type AvailabilityReader interface {
	Available(ctx context.Context, edge availability.Edge, upstreamID, tenantID string) (availability.Result, error)
	AvailableForUpdate(ctx context.Context, tx *gorm.DB, edge availability.Edge, upstreamID, tenantID string) (availability.Result, error)
	PalletBalanceFor(ctx context.Context, tenantID, palletID string) (availability.PalletBalance, error)
	PalletBalanceForUpdate(ctx context.Context, tx *gorm.DB, tenantID, palletID string) (availability.PalletBalance, error)
	Invalidate(ctx context.Context, edge availability.Edge, upstreamID, tenantID string)
}

// Core carries the dependencies shared by all pipeline operations.
type Core struct {
	tx        TxRunner
	snapshots SnapshotStore
	events    EventLog
	avail     AvailabilityReader
	tracer    tracing.Tracer
}

// NewCore creates the operation core. tracer may be nil.
func NewCore(tx TxRunner, snapshots SnapshotStore, events EventLog, avail AvailabilityReader, tracer tracing.Tracer) *Core {
	return &Core{
		tx:        tx,
		snapshots: snapshots,
		events:    events,
		avail:     avail,
		tracer:    tracer,
	}
}

// OpResult is the outcome of one successful guarded operation. Warnings
// report degraded audit appends; the state change itself is committed.
type OpResult struct {
	ID            string               `json:"id"`
	Code          string               `json:"code,omitempty"`
	Status        domain.Status        `json:"status"`
	CorrelationID string               `json:"correlation_id,omitempty"`
	Available     *availability.Result `json:"available,omitempty"`
	Warnings      []string             `json:"warnings,omitempty"`
}

func (c *Core) startTxn(name string) *newrelic.Transaction {
	if c.tracer == nil {
		return nil
	}
	return c.tracer.StartTransaction(name)
}

func (c *Core) endTxn(txn *newrelic.Transaction) {
	if c.tracer != nil {
		c.tracer.EndTransaction(txn)
	}
}

func (c *Core) recordError(txn *newrelic.Transaction, err error) {
	if c.tracer != nil {
		c.tracer.RecordError(txn, err)
	}
}
