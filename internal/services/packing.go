package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// CreatePalletInput describes a new packed-inventory pallet.
type CreatePalletInput struct {
	Code    string `json:"code"`
	Product string `json:"product"`
}

// CreatePallet registers an open pallet.
func (c *Core) CreatePallet(ctx context.Context, actor domain.Actor, in CreatePalletInput) (*OpResult, error) {
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("product", in.Product); err != nil {
		return nil, err
	}

	pallet := &models.Pallet{
		SnapshotBase: newBase(actor, domain.KindPallet, in.Code),
		Product:      in.Product,
	}
	result, err := c.create(ctx, actor, pallet, domain.PackPalletCreatedPayload{
		Code:    in.Code,
		Product: in.Product,
	})
	if err != nil {
		return nil, err
	}
	result.Code = in.Code
	return result, nil
}

// AddPalletUnits packs fired units from a kiln batch onto an open pallet.
func (c *Core) AddPalletUnits(ctx context.Context, actor domain.Actor, palletID, kilnBatchID string, units float64) (*OpResult, error) {
	if err := guardRequired("kiln_batch_id", kilnBatchID); err != nil {
		return nil, err
	}
	if err := guardQuantity("units", units); err != nil {
		return nil, err
	}

	pallet := &models.Pallet{}
	err := c.withAggregate(ctx, actor, pallet, palletID, "add units to",
		[]domain.Status{domain.StatusOpen},
		func(tx *gorm.DB) error {
			batch := &models.KilnBatch{}
			if err := c.consumeUpstream(ctx, tx, actor, availability.KilnToPacking,
				batch, kilnBatchID, upstreamConsumable, units); err != nil {
				return err
			}
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindPallet, palletID,
				domain.PackPalletUnitsAddedPayload{KilnBatchID: kilnBatchID, Units: units}).
				WithReference(kilnBatchID))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.KilnToPacking, kilnBatchID, actor.TenantID)
	return &OpResult{ID: palletID, Status: pallet.GetStatus()}, nil
}

// ClosePallet seals an open pallet. Closed pallets accept no further units
// and no new reservations; holds taken while open stay live and are still
// released or dispatched.
func (c *Core) ClosePallet(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.Pallet{}, id, "close", domain.StatusClosed,
		domain.PackPalletClosedPayload{})
}

// CancelPallet writes off an open pallet. Refused while reservations are
// outstanding: the holders must release first.
func (c *Core) CancelPallet(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	pallet := &models.Pallet{}
	err := c.withAggregate(ctx, actor, pallet, id, "cancel",
		[]domain.Status{domain.StatusOpen},
		func(tx *gorm.DB) error {
			balance, err := c.avail.PalletBalanceForUpdate(ctx, tx, actor.TenantID, id)
			if err != nil {
				return err
			}
			if balance.Reserved > 0 {
				return domain.NewValidationError("pallet",
					fmt.Sprintf("has %.2f units reserved; release reservations before cancelling", balance.Reserved))
			}
			stamp(pallet, pallet.GetStatus(), domain.StatusCancelled)
			pallet.SetStatus(domain.StatusCancelled)
			return nil
		})
	if err != nil {
		return nil, err
	}

	warnings := c.events.AppendAudit(ctx, domain.NewEvent(actor, domain.KindPallet, id,
		domain.PackPalletCancelledPayload{Reason: reason}))
	return &OpResult{ID: id, Status: domain.StatusCancelled, Warnings: warnings}, nil
}
