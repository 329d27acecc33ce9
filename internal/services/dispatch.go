package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// CreateShipmentInput describes a new shipment against a confirmed order.
type CreateShipmentInput struct {
	Code    string `json:"code"`
	OrderID string `json:"order_id"`
}

// CreateShipment registers a planned shipment for a confirmed order. The
// order is locked so it cannot be cancelled under the shipment mid-create.
func (c *Core) CreateShipment(ctx context.Context, actor domain.Actor, in CreateShipmentInput) (*OpResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("order_id", in.OrderID); err != nil {
		return nil, err
	}

	txn := c.startTxn("create-shipment")
	defer c.endTxn(txn)

	shipment := &models.Shipment{
		SnapshotBase: newBase(actor, domain.KindShipment, in.Code),
		OrderID:      in.OrderID,
	}
	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		order := &models.SalesOrder{}
		if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, in.OrderID, order); err != nil {
			return err
		}
		if order.GetStatus() != domain.StatusConfirmed {
			return &domain.IllegalStateTransition{
				Kind:    domain.KindSalesOrder,
				ID:      in.OrderID,
				Current: order.GetStatus(),
				Op:      "ship against",
			}
		}
		if err := c.snapshots.Create(ctx, tx, shipment); err != nil {
			return err
		}
		_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindShipment, shipment.ID,
			domain.ShipmentCreatedPayload{Code: in.Code, OrderID: in.OrderID}).
			WithReference(in.OrderID))
		return err
	})
	if err != nil {
		c.recordError(txn, err)
		return nil, err
	}
	return &OpResult{ID: shipment.ID, Code: in.Code, Status: shipment.GetStatus()}, nil
}

// AddShipmentPick holds packed pallet units for the shipment. Same pairing
// protocol as an order reservation; the pick is the shipment-side half.
func (c *Core) AddShipmentPick(ctx context.Context, actor domain.Actor, shipmentID, palletID string, units float64) (*OpResult, error) {
	if err := guardRequired("pallet_id", palletID); err != nil {
		return nil, err
	}
	if err := guardQuantity("units", units); err != nil {
		return nil, err
	}

	var correlationID string
	shipment := &models.Shipment{}
	err := c.withAggregate(ctx, actor, shipment, shipmentID, "pick for",
		[]domain.Status{domain.StatusPlanned},
		func(tx *gorm.DB) error {
			var err error
			correlationID, err = c.reserveOnPallet(ctx, tx, actor, shipmentConsumer(shipmentID), palletID, units)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &OpResult{ID: shipmentID, Status: shipment.GetStatus(), CorrelationID: correlationID}, nil
}

// ReleaseShipmentPick gives back part or all of the shipment's hold on one
// pallet.
func (c *Core) ReleaseShipmentPick(ctx context.Context, actor domain.Actor, shipmentID, palletID string, units float64) (*OpResult, error) {
	if err := guardRequired("pallet_id", palletID); err != nil {
		return nil, err
	}
	if err := guardQuantity("units", units); err != nil {
		return nil, err
	}

	var correlationID string
	shipment := &models.Shipment{}
	err := c.withAggregate(ctx, actor, shipment, shipmentID, "release pick for",
		[]domain.Status{domain.StatusPlanned},
		func(tx *gorm.DB) error {
			var err error
			correlationID, err = c.releaseOnPallet(ctx, tx, actor, shipmentConsumer(shipmentID), palletID, units)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &OpResult{ID: shipmentID, Status: shipment.GetStatus(), CorrelationID: correlationID}, nil
}

// DispatchShipment sends a planned shipment out the gate. Every outstanding
// pick converts into a physical removal from its pallet plus a release pair,
// all committed with the status change. Dispatched is terminal.
func (c *Core) DispatchShipment(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	txn := c.startTxn("dispatch-shipment")
	defer c.endTxn(txn)

	shipment := &models.Shipment{}
	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, id, shipment); err != nil {
			return err
		}
		from := shipment.GetStatus()
		if !domain.CanTransition(domain.KindShipment, from, domain.StatusDispatched) {
			return &domain.IllegalStateTransition{Kind: domain.KindShipment, ID: id, Current: from, Op: "dispatch"}
		}

		released, err := c.releaseAllForConsumer(ctx, tx, actor, shipmentConsumer(id))
		if err != nil {
			return err
		}
		for _, hold := range released {
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindPallet, hold.PalletID,
				domain.PackPalletUnitsRemovedPayload{ShipmentID: id, Units: hold.Units}).
				WithReference(id))
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		shipment.DispatchedAt = &now
		stamp(shipment, from, domain.StatusDispatched)
		shipment.SetStatus(domain.StatusDispatched)
		return c.snapshots.Save(ctx, tx, shipment)
	})
	if err != nil {
		c.recordError(txn, err)
		return nil, err
	}

	warnings := c.events.AppendAudit(ctx, domain.NewEvent(actor, domain.KindShipment, id,
		domain.ShipmentDispatchedPayload{}))
	return &OpResult{ID: id, Status: domain.StatusDispatched, Warnings: warnings}, nil
}

// CancelShipment cancels a planned shipment, giving back every outstanding
// pick with a release pair. Dispatched shipments refuse cancellation.
func (c *Core) CancelShipment(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	txn := c.startTxn("cancel-shipment")
	defer c.endTxn(txn)

	shipment := &models.Shipment{}
	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, id, shipment); err != nil {
			return err
		}
		from := shipment.GetStatus()
		if !domain.CanTransition(domain.KindShipment, from, domain.StatusCancelled) {
			return &domain.IllegalStateTransition{Kind: domain.KindShipment, ID: id, Current: from, Op: "cancel"}
		}
		if _, err := c.releaseAllForConsumer(ctx, tx, actor, shipmentConsumer(id)); err != nil {
			return err
		}
		stamp(shipment, from, domain.StatusCancelled)
		shipment.SetStatus(domain.StatusCancelled)
		return c.snapshots.Save(ctx, tx, shipment)
	})
	if err != nil {
		c.recordError(txn, err)
		return nil, err
	}

	warnings := c.events.AppendAudit(ctx, domain.NewEvent(actor, domain.KindShipment, id,
		domain.ShipmentCancelledPayload{Reason: reason}))
	return &OpResult{ID: id, Status: domain.StatusCancelled, Warnings: warnings}, nil
}
