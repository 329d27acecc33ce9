package services

import (
	"context"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// CreateKilnBatchInput describes a new firing batch.
type CreateKilnBatchInput struct {
	Code string `json:"code"`
	Kiln string `json:"kiln"`
}

// CreateKilnBatch registers a planned kiln batch.
func (c *Core) CreateKilnBatch(ctx context.Context, actor domain.Actor, in CreateKilnBatchInput) (*OpResult, error) {
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("kiln", in.Kiln); err != nil {
		return nil, err
	}

	batch := &models.KilnBatch{
		SnapshotBase: newBase(actor, domain.KindKilnBatch, in.Code),
		Kiln:         in.Kiln,
	}
	result, err := c.create(ctx, actor, batch, domain.KilnBatchCreatedPayload{
		Code: in.Code,
		Kiln: in.Kiln,
	})
	if err != nil {
		return nil, err
	}
	result.Code = in.Code
	return result, nil
}

// AddKilnInput draws dried material from a dry load into the batch.
func (c *Core) AddKilnInput(ctx context.Context, actor domain.Actor, batchID, dryLoadID string, tonnes float64) (*OpResult, error) {
	if err := guardRequired("dry_load_id", dryLoadID); err != nil {
		return nil, err
	}
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	batch := &models.KilnBatch{}
	err := c.withAggregate(ctx, actor, batch, batchID, "add input to", inputAccepting,
		func(tx *gorm.DB) error {
			load := &models.DryLoad{}
			if err := c.consumeUpstream(ctx, tx, actor, availability.DryToKiln,
				load, dryLoadID, upstreamConsumable, tonnes); err != nil {
				return err
			}
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindKilnBatch, batchID,
				domain.KilnBatchInputAddedPayload{DryLoadID: dryLoadID, Tonnes: tonnes}).
				WithReference(dryLoadID))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.DryToKiln, dryLoadID, actor.TenantID)
	return &OpResult{ID: batchID, Status: batch.GetStatus()}, nil
}

// StartKilnBatch moves a planned batch to active.
func (c *Core) StartKilnBatch(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.KilnBatch{}, id, "start", domain.StatusActive,
		domain.KilnBatchStartedPayload{})
}

// PauseKilnBatch pauses an active batch.
func (c *Core) PauseKilnBatch(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.KilnBatch{}, id, "pause", domain.StatusPaused,
		domain.KilnBatchPausedPayload{Reason: reason})
}

// ResumeKilnBatch resumes a paused batch.
func (c *Core) ResumeKilnBatch(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.KilnBatch{}, id, "resume", domain.StatusActive,
		domain.KilnBatchResumedPayload{})
}

// RecordKilnOutput records fired brick units and the firing shrinkage. The
// pipeline switches from tonnes to discrete units at this stage.
func (c *Core) RecordKilnOutput(ctx context.Context, actor domain.Actor, id string, units, shrinkagePct float64) (*OpResult, error) {
	if err := guardQuantity("units", units); err != nil {
		return nil, err
	}
	if err := guardPercent("shrinkage_pct", shrinkagePct); err != nil {
		return nil, err
	}

	batch := &models.KilnBatch{}
	err := c.withAggregate(ctx, actor, batch, id, "record output on",
		[]domain.Status{domain.StatusActive},
		func(tx *gorm.DB) error {
			batch.LastShrinkagePct = &shrinkagePct
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindKilnBatch, id,
				domain.KilnBatchOutputRecordedPayload{Units: units, ShrinkagePct: shrinkagePct}))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.KilnToPacking, id, actor.TenantID)
	return &OpResult{ID: id, Status: batch.GetStatus()}, nil
}

// CompleteKilnBatch moves an active batch to completed.
func (c *Core) CompleteKilnBatch(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.KilnBatch{}, id, "complete", domain.StatusCompleted,
		domain.KilnBatchCompletedPayload{})
}

// CancelKilnBatch cancels a non-terminal batch.
func (c *Core) CancelKilnBatch(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.KilnBatch{}, id, "cancel", domain.StatusCancelled,
		domain.KilnBatchCancelledPayload{Reason: reason})
}
