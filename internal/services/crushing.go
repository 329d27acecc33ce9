package services

import (
	"context"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// CreateCrushRun registers a planned crushing run.
func (c *Core) CreateCrushRun(ctx context.Context, actor domain.Actor, code string) (*OpResult, error) {
	if err := guardRequired("code", code); err != nil {
		return nil, err
	}

	run := &models.CrushRun{SnapshotBase: newBase(actor, domain.KindCrushRun, code)}
	result, err := c.create(ctx, actor, run, domain.CrushRunCreatedPayload{Code: code})
	if err != nil {
		return nil, err
	}
	result.Code = code
	return result, nil
}

// AddCrushInput draws blended material from a mix batch into the run.
func (c *Core) AddCrushInput(ctx context.Context, actor domain.Actor, runID, mixBatchID string, tonnes float64) (*OpResult, error) {
	if err := guardRequired("mix_batch_id", mixBatchID); err != nil {
		return nil, err
	}
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	run := &models.CrushRun{}
	err := c.withAggregate(ctx, actor, run, runID, "add input to", inputAccepting,
		func(tx *gorm.DB) error {
			batch := &models.MixBatch{}
			if err := c.consumeUpstream(ctx, tx, actor, availability.MixToCrushing,
				batch, mixBatchID, upstreamConsumable, tonnes); err != nil {
				return err
			}
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindCrushRun, runID,
				domain.CrushRunInputAddedPayload{MixBatchID: mixBatchID, Tonnes: tonnes}).
				WithReference(mixBatchID))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.MixToCrushing, mixBatchID, actor.TenantID)
	return &OpResult{ID: runID, Status: run.GetStatus()}, nil
}

// StartCrushRun moves a planned run to active.
func (c *Core) StartCrushRun(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.CrushRun{}, id, "start", domain.StatusActive,
		domain.CrushRunStartedPayload{})
}

// PauseCrushRun pauses an active run.
func (c *Core) PauseCrushRun(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.CrushRun{}, id, "pause", domain.StatusPaused,
		domain.CrushRunPausedPayload{Reason: reason})
}

// ResumeCrushRun resumes a paused run.
func (c *Core) ResumeCrushRun(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.CrushRun{}, id, "resume", domain.StatusActive,
		domain.CrushRunResumedPayload{})
}

// RecordCrushOutput records crushed tonnage and the fines percentage measured
// at the crusher discharge.
func (c *Core) RecordCrushOutput(ctx context.Context, actor domain.Actor, id string, tonnes, finesPct float64) (*OpResult, error) {
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}
	if err := guardPercent("fines_pct", finesPct); err != nil {
		return nil, err
	}

	run := &models.CrushRun{}
	err := c.withAggregate(ctx, actor, run, id, "record output on",
		[]domain.Status{domain.StatusActive},
		func(tx *gorm.DB) error {
			run.LastFinesPct = &finesPct
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindCrushRun, id,
				domain.CrushRunOutputRecordedPayload{Tonnes: tonnes, FinesPct: finesPct}))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.CrushToExtrusion, id, actor.TenantID)
	return &OpResult{ID: id, Status: run.GetStatus()}, nil
}

// CompleteCrushRun moves an active run to completed.
func (c *Core) CompleteCrushRun(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.CrushRun{}, id, "complete", domain.StatusCompleted,
		domain.CrushRunCompletedPayload{})
}

// CancelCrushRun cancels a non-terminal run.
func (c *Core) CancelCrushRun(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.CrushRun{}, id, "cancel", domain.StatusCancelled,
		domain.CrushRunCancelledPayload{Reason: reason})
}
