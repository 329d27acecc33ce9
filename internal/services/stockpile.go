package services

import (
	"context"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// CreateStockpileInput describes a new raw material stockpile.
type CreateStockpileInput struct {
	Code     string `json:"code"`
	Material string `json:"material"`
}

// CreateStockpile registers an open stockpile.
func (c *Core) CreateStockpile(ctx context.Context, actor domain.Actor, in CreateStockpileInput) (*OpResult, error) {
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("material", in.Material); err != nil {
		return nil, err
	}

	pile := &models.Stockpile{
		SnapshotBase: newBase(actor, domain.KindStockpile, in.Code),
		Material:     in.Material,
	}
	result, err := c.create(ctx, actor, pile, domain.StockpileCreatedPayload{
		Code:     in.Code,
		Material: in.Material,
	})
	if err != nil {
		return nil, err
	}
	result.Code = in.Code
	return result, nil
}

// RecordStockpileDeposit moves extracted tonnage from a mining shift onto an
// open stockpile. The deposit consumes the shift's recorded output, so it is
// refused when the shift has less unconsumed tonnage than requested.
func (c *Core) RecordStockpileDeposit(ctx context.Context, actor domain.Actor, stockpileID, shiftID string, tonnes float64) (*OpResult, error) {
	if err := guardRequired("shift_id", shiftID); err != nil {
		return nil, err
	}
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	pile := &models.Stockpile{}
	err := c.withAggregate(ctx, actor, pile, stockpileID, "deposit into",
		[]domain.Status{domain.StatusOpen},
		func(tx *gorm.DB) error {
			shift := &models.MiningShift{}
			if err := c.consumeUpstream(ctx, tx, actor, availability.MiningToStockpile,
				shift, shiftID, upstreamConsumable, tonnes); err != nil {
				return err
			}
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindStockpile, stockpileID,
				domain.StockpileDepositRecordedPayload{ShiftID: shiftID, Tonnes: tonnes}).
				WithReference(shiftID))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.MiningToStockpile, shiftID, actor.TenantID)
	c.avail.Invalidate(ctx, availability.StockpileToMixing, stockpileID, actor.TenantID)
	return &OpResult{ID: stockpileID, Status: pile.GetStatus()}, nil
}

// CloseStockpile retires a stockpile. Remaining material is no longer drawn
// from.
func (c *Core) CloseStockpile(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.Stockpile{}, id, "close", domain.StatusClosed,
		domain.StockpileClosedPayload{Reason: reason})
}
