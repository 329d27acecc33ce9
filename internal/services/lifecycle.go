package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// This file is the one generic guard + state-machine engine. Every stage
// operation goes through create, transition or withAggregate; none of them
// re-implements the status checks.

// create persists a fresh snapshot and its birth event in one transaction.
// The snapshot must arrive with id, tenant and initial status set.
func (c *Core) create(ctx context.Context, actor domain.Actor, snap models.Snapshot, payload domain.Payload) (*OpResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	txn := c.startTxn("create-" + string(snap.Kind()))
	defer c.endTxn(txn)

	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := c.snapshots.Create(ctx, tx, snap); err != nil {
			return err
		}
		_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, snap.Kind(), snap.GetID(), payload))
		return err
	})
	if err != nil {
		c.recordError(txn, err)
		return nil, err
	}

	return &OpResult{ID: snap.GetID(), Status: snap.GetStatus()}, nil
}

// transition performs one guarded status move. The snapshot row is locked
// and the status re-checked inside the transaction, so concurrent writers
// cannot both pass the guard. The lifecycle audit event is appended after
// commit; its failure degrades to a warning.
func (c *Core) transition(ctx context.Context, actor domain.Actor, snap models.Snapshot, id, op string, to domain.Status, payload domain.Payload) (*OpResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	txn := c.startTxn(op + "-" + string(snap.Kind()))
	defer c.endTxn(txn)

	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, id, snap); err != nil {
			return err
		}
		from := snap.GetStatus()
		if !domain.CanTransition(snap.Kind(), from, to) {
			return &domain.IllegalStateTransition{Kind: snap.Kind(), ID: id, Current: from, Op: op}
		}
		stamp(snap, from, to)
		snap.SetStatus(to)
		return c.snapshots.Save(ctx, tx, snap)
	})
	if err != nil {
		c.recordError(txn, err)
		return nil, err
	}

	warnings := c.events.AppendAudit(ctx, domain.NewEvent(actor, snap.Kind(), id, payload))
	return &OpResult{ID: id, Status: to, Warnings: warnings}, nil
}

// withAggregate locks the aggregate row, verifies its status accepts the
// operation, and runs fn inside the same transaction. Used by every
// quantity-moving operation; the events fn appends are part of the guarded
// mutation and abort it on failure.
func (c *Core) withAggregate(ctx context.Context, actor domain.Actor, snap models.Snapshot, id, op string, allowed []domain.Status, fn func(tx *gorm.DB) error) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	txn := c.startTxn(op + "-" + string(snap.Kind()))
	defer c.endTxn(txn)

	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, id, snap); err != nil {
			return err
		}
		if !statusIn(snap.GetStatus(), allowed) {
			return &domain.IllegalStateTransition{Kind: snap.Kind(), ID: id, Current: snap.GetStatus(), Op: op}
		}
		if err := fn(tx); err != nil {
			return err
		}
		return c.snapshots.Save(ctx, tx, snap)
	})
	if err != nil {
		c.recordError(txn, err)
	}
	return err
}

// consumeUpstream verifies the upstream aggregate is in an accepting state
// and that the edge has enough availability for the requested quantity. The
// sum is computed on the open transaction, after the row lock, so a writer
// that waited on the lock sees the quantities the previous writer committed.
// Unknown availability gates exactly like zero; the error says so.
func (c *Core) consumeUpstream(ctx context.Context, tx *gorm.DB, actor domain.Actor, edge availability.Edge, upstream models.Snapshot, upstreamID string, upstreamAllowed []domain.Status, qty float64) error {
	if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, upstreamID, upstream); err != nil {
		return err
	}
	if !statusIn(upstream.GetStatus(), upstreamAllowed) {
		return &domain.IllegalStateTransition{
			Kind:    upstream.Kind(),
			ID:      upstreamID,
			Current: upstream.GetStatus(),
			Op:      "consume from",
		}
	}

	res, err := c.avail.AvailableForUpdate(ctx, tx, edge, upstreamID, actor.TenantID)
	if err != nil {
		return err
	}
	if !res.Known() {
		return &domain.InsufficientAvailability{
			Edge:       edge.Name,
			UpstreamID: upstreamID,
			Requested:  qty,
			Unit:       edge.Unit,
			Unknown:    true,
		}
	}
	if res.Quantity < qty {
		return &domain.InsufficientAvailability{
			Edge:       edge.Name,
			UpstreamID: upstreamID,
			Requested:  qty,
			Available:  res.Quantity,
			Unit:       edge.Unit,
		}
	}
	return nil
}

// newBase builds the shared snapshot columns for a fresh aggregate.
func newBase(actor domain.Actor, kind domain.AggregateKind, code string) models.SnapshotBase {
	return models.SnapshotBase{
		ID:       uuid.New().String(),
		TenantID: actor.TenantID,
		Code:     code,
		Status:   string(domain.InitialStatus(kind)),
	}
}

// stamp sets the lifecycle timestamps a transition implies.
func stamp(snap models.Snapshot, from, to domain.Status) {
	now := time.Now().UTC()
	switch to {
	case domain.StatusActive, domain.StatusConfirmed:
		if from == domain.StatusPlanned {
			snap.MarkStarted(now)
		}
	case domain.StatusCompleted, domain.StatusClosed, domain.StatusDispatched:
		snap.MarkCompleted(now)
	case domain.StatusCancelled:
		snap.MarkCancelled(now)
	}
}
