package services

import (
	"context"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// Read operations. All are tenant-scoped through the actor; a hit in another
// tenant reads as not found.

func (c *Core) getSnapshot(ctx context.Context, actor domain.Actor, id string, out models.Snapshot) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return c.tx.InTx(ctx, func(tx *gorm.DB) error {
		return c.snapshots.Find(ctx, tx, actor.TenantID, id, out)
	})
}

func (c *Core) GetMiningShift(ctx context.Context, actor domain.Actor, id string) (*models.MiningShift, error) {
	shift := &models.MiningShift{}
	if err := c.getSnapshot(ctx, actor, id, shift); err != nil {
		return nil, err
	}
	return shift, nil
}

func (c *Core) GetStockpile(ctx context.Context, actor domain.Actor, id string) (*models.Stockpile, error) {
	pile := &models.Stockpile{}
	if err := c.getSnapshot(ctx, actor, id, pile); err != nil {
		return nil, err
	}
	return pile, nil
}

func (c *Core) GetMixBatch(ctx context.Context, actor domain.Actor, id string) (*models.MixBatch, error) {
	batch := &models.MixBatch{}
	if err := c.getSnapshot(ctx, actor, id, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (c *Core) GetCrushRun(ctx context.Context, actor domain.Actor, id string) (*models.CrushRun, error) {
	run := &models.CrushRun{}
	if err := c.getSnapshot(ctx, actor, id, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (c *Core) GetExtrusionRun(ctx context.Context, actor domain.Actor, id string) (*models.ExtrusionRun, error) {
	run := &models.ExtrusionRun{}
	if err := c.getSnapshot(ctx, actor, id, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (c *Core) GetDryLoad(ctx context.Context, actor domain.Actor, id string) (*models.DryLoad, error) {
	load := &models.DryLoad{}
	if err := c.getSnapshot(ctx, actor, id, load); err != nil {
		return nil, err
	}
	return load, nil
}

func (c *Core) GetKilnBatch(ctx context.Context, actor domain.Actor, id string) (*models.KilnBatch, error) {
	batch := &models.KilnBatch{}
	if err := c.getSnapshot(ctx, actor, id, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (c *Core) GetPallet(ctx context.Context, actor domain.Actor, id string) (*models.Pallet, error) {
	pallet := &models.Pallet{}
	if err := c.getSnapshot(ctx, actor, id, pallet); err != nil {
		return nil, err
	}
	return pallet, nil
}

func (c *Core) GetShipment(ctx context.Context, actor domain.Actor, id string) (*models.Shipment, error) {
	shipment := &models.Shipment{}
	if err := c.getSnapshot(ctx, actor, id, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

func (c *Core) GetSalesOrder(ctx context.Context, actor domain.Actor, id string) (*models.SalesOrder, error) {
	order := &models.SalesOrder{}
	if err := c.getSnapshot(ctx, actor, id, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Core) GetInvoice(ctx context.Context, actor domain.Actor, id string) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	if err := c.getSnapshot(ctx, actor, id, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// AggregateHistory returns the full decoded event stream of one aggregate,
// oldest first. This is the audit trail.
func (c *Core) AggregateHistory(ctx context.Context, actor domain.Actor, aggregateID string) ([]domain.Event, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return c.events.ListForAggregate(ctx, actor.TenantID, aggregateID)
}

// EdgeAvailability answers how much of the upstream aggregate's output is
// still consumable on the named edge.
func (c *Core) EdgeAvailability(ctx context.Context, actor domain.Actor, edgeName, upstreamID string) (availability.Result, error) {
	if err := requireActor(actor); err != nil {
		return availability.Result{}, err
	}
	edge, ok := availability.EdgeByName(edgeName)
	if !ok {
		return availability.Result{}, domain.NewValidationError("edge", "unknown edge "+edgeName)
	}
	return c.avail.Available(ctx, edge, upstreamID, actor.TenantID)
}

// PalletInventory answers a pallet's on-hand and reserved unit position.
func (c *Core) PalletInventory(ctx context.Context, actor domain.Actor, palletID string) (availability.PalletBalance, error) {
	if err := requireActor(actor); err != nil {
		return availability.PalletBalance{}, err
	}
	return c.avail.PalletBalanceFor(ctx, actor.TenantID, palletID)
}

// OrderReservations answers the units an order still holds per pallet.
func (c *Core) OrderReservations(ctx context.Context, actor domain.Actor, orderID string) (map[string]float64, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return c.outstandingReservations(ctx, actor.TenantID, orderID)
}
