package services

import (
	"context"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// upstreamConsumable lists the statuses in which a production aggregate's
// recorded output may be drawn by the next stage. Planned aggregates have no
// output yet; cancelled ones are out of the pipeline.
var upstreamConsumable = []domain.Status{
	domain.StatusActive,
	domain.StatusPaused,
	domain.StatusCompleted,
}

// CreateMiningShiftInput describes a new pit extraction shift.
type CreateMiningShiftInput struct {
	Code          string  `json:"code"`
	Pit           string  `json:"pit"`
	PlannedTonnes float64 `json:"planned_tonnes"`
}

// CreateMiningShift registers a planned extraction shift.
func (c *Core) CreateMiningShift(ctx context.Context, actor domain.Actor, in CreateMiningShiftInput) (*OpResult, error) {
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("pit", in.Pit); err != nil {
		return nil, err
	}
	if err := guardQuantity("planned_tonnes", in.PlannedTonnes); err != nil {
		return nil, err
	}

	shift := &models.MiningShift{
		SnapshotBase:  newBase(actor, domain.KindMiningShift, in.Code),
		Pit:           in.Pit,
		PlannedTonnes: in.PlannedTonnes,
	}
	result, err := c.create(ctx, actor, shift, domain.MiningShiftCreatedPayload{
		Code:          in.Code,
		Pit:           in.Pit,
		PlannedTonnes: in.PlannedTonnes,
	})
	if err != nil {
		return nil, err
	}
	result.Code = in.Code
	return result, nil
}

// StartMiningShift moves a planned shift to active.
func (c *Core) StartMiningShift(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MiningShift{}, id, "start", domain.StatusActive,
		domain.MiningShiftStartedPayload{})
}

// PauseMiningShift pauses an active shift.
func (c *Core) PauseMiningShift(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MiningShift{}, id, "pause", domain.StatusPaused,
		domain.MiningShiftPausedPayload{Reason: reason})
}

// ResumeMiningShift resumes a paused shift.
func (c *Core) ResumeMiningShift(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MiningShift{}, id, "resume", domain.StatusActive,
		domain.MiningShiftResumedPayload{})
}

// RecordMiningOutput records extracted tonnage on an active shift. The event
// is the fact that makes the tonnage available for stockpile deposits.
func (c *Core) RecordMiningOutput(ctx context.Context, actor domain.Actor, id string, tonnes float64) (*OpResult, error) {
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	shift := &models.MiningShift{}
	err := c.withAggregate(ctx, actor, shift, id, "record output on",
		[]domain.Status{domain.StatusActive},
		func(tx *gorm.DB) error {
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindMiningShift, id,
				domain.MiningShiftOutputRecordedPayload{Tonnes: tonnes}))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.MiningToStockpile, id, actor.TenantID)
	return &OpResult{ID: id, Status: shift.GetStatus()}, nil
}

// CompleteMiningShift moves an active shift to completed. Recorded output
// stays available downstream.
func (c *Core) CompleteMiningShift(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MiningShift{}, id, "complete", domain.StatusCompleted,
		domain.MiningShiftCompletedPayload{})
}

// CancelMiningShift cancels a non-terminal shift.
func (c *Core) CancelMiningShift(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MiningShift{}, id, "cancel", domain.StatusCancelled,
		domain.MiningShiftCancelledPayload{Reason: reason})
}
