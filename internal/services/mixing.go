package services

import (
	"context"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// inputAccepting lists the statuses in which a production aggregate accepts
// new input material.
var inputAccepting = []domain.Status{domain.StatusPlanned, domain.StatusActive}

// CreateMixBatchInput describes a new mixing batch.
type CreateMixBatchInput struct {
	Code   string `json:"code"`
	Recipe string `json:"recipe"`
}

// CreateMixBatch registers a planned mix batch.
func (c *Core) CreateMixBatch(ctx context.Context, actor domain.Actor, in CreateMixBatchInput) (*OpResult, error) {
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("recipe", in.Recipe); err != nil {
		return nil, err
	}

	batch := &models.MixBatch{
		SnapshotBase: newBase(actor, domain.KindMixBatch, in.Code),
		Recipe:       in.Recipe,
	}
	result, err := c.create(ctx, actor, batch, domain.MixBatchCreatedPayload{
		Code:   in.Code,
		Recipe: in.Recipe,
	})
	if err != nil {
		return nil, err
	}
	result.Code = in.Code
	return result, nil
}

// AddMixInput draws material from an open stockpile into the batch.
func (c *Core) AddMixInput(ctx context.Context, actor domain.Actor, batchID, stockpileID string, tonnes float64) (*OpResult, error) {
	if err := guardRequired("stockpile_id", stockpileID); err != nil {
		return nil, err
	}
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	batch := &models.MixBatch{}
	err := c.withAggregate(ctx, actor, batch, batchID, "add input to", inputAccepting,
		func(tx *gorm.DB) error {
			pile := &models.Stockpile{}
			if err := c.consumeUpstream(ctx, tx, actor, availability.StockpileToMixing,
				pile, stockpileID, []domain.Status{domain.StatusOpen}, tonnes); err != nil {
				return err
			}
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindMixBatch, batchID,
				domain.MixBatchInputAddedPayload{StockpileID: stockpileID, Tonnes: tonnes}).
				WithReference(stockpileID))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.StockpileToMixing, stockpileID, actor.TenantID)
	return &OpResult{ID: batchID, Status: batch.GetStatus()}, nil
}

// StartMixBatch moves a planned batch to active.
func (c *Core) StartMixBatch(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MixBatch{}, id, "start", domain.StatusActive,
		domain.MixBatchStartedPayload{})
}

// PauseMixBatch pauses an active batch.
func (c *Core) PauseMixBatch(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MixBatch{}, id, "pause", domain.StatusPaused,
		domain.MixBatchPausedPayload{Reason: reason})
}

// ResumeMixBatch resumes a paused batch.
func (c *Core) ResumeMixBatch(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MixBatch{}, id, "resume", domain.StatusActive,
		domain.MixBatchResumedPayload{})
}

// RecordMixOutput records blended tonnage produced by an active batch.
func (c *Core) RecordMixOutput(ctx context.Context, actor domain.Actor, id string, tonnes float64) (*OpResult, error) {
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	batch := &models.MixBatch{}
	err := c.withAggregate(ctx, actor, batch, id, "record output on",
		[]domain.Status{domain.StatusActive},
		func(tx *gorm.DB) error {
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindMixBatch, id,
				domain.MixBatchOutputRecordedPayload{Tonnes: tonnes}))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.MixToCrushing, id, actor.TenantID)
	return &OpResult{ID: id, Status: batch.GetStatus()}, nil
}

// CompleteMixBatch moves an active batch to completed.
func (c *Core) CompleteMixBatch(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MixBatch{}, id, "complete", domain.StatusCompleted,
		domain.MixBatchCompletedPayload{})
}

// CancelMixBatch cancels a non-terminal batch.
func (c *Core) CancelMixBatch(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.MixBatch{}, id, "cancel", domain.StatusCancelled,
		domain.MixBatchCancelledPayload{Reason: reason})
}
