package services

import (
	"context"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// CreateExtrusionRunInput describes a new extrusion run.
type CreateExtrusionRunInput struct {
	Code    string `json:"code"`
	DieCode string `json:"die_code"`
}

// CreateExtrusionRun registers a planned extrusion run.
func (c *Core) CreateExtrusionRun(ctx context.Context, actor domain.Actor, in CreateExtrusionRunInput) (*OpResult, error) {
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("die_code", in.DieCode); err != nil {
		return nil, err
	}

	run := &models.ExtrusionRun{
		SnapshotBase: newBase(actor, domain.KindExtrusionRun, in.Code),
		DieCode:      in.DieCode,
	}
	result, err := c.create(ctx, actor, run, domain.ExtrusionRunCreatedPayload{
		Code:    in.Code,
		DieCode: in.DieCode,
	})
	if err != nil {
		return nil, err
	}
	result.Code = in.Code
	return result, nil
}

// AddExtrusionInput draws crushed material from a crush run.
func (c *Core) AddExtrusionInput(ctx context.Context, actor domain.Actor, runID, crushRunID string, tonnes float64) (*OpResult, error) {
	if err := guardRequired("crush_run_id", crushRunID); err != nil {
		return nil, err
	}
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	run := &models.ExtrusionRun{}
	err := c.withAggregate(ctx, actor, run, runID, "add input to", inputAccepting,
		func(tx *gorm.DB) error {
			crush := &models.CrushRun{}
			if err := c.consumeUpstream(ctx, tx, actor, availability.CrushToExtrusion,
				crush, crushRunID, upstreamConsumable, tonnes); err != nil {
				return err
			}
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindExtrusionRun, runID,
				domain.ExtrusionRunInputAddedPayload{CrushRunID: crushRunID, Tonnes: tonnes}).
				WithReference(crushRunID))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.CrushToExtrusion, crushRunID, actor.TenantID)
	return &OpResult{ID: runID, Status: run.GetStatus()}, nil
}

// StartExtrusionRun moves a planned run to active.
func (c *Core) StartExtrusionRun(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.ExtrusionRun{}, id, "start", domain.StatusActive,
		domain.ExtrusionRunStartedPayload{})
}

// PauseExtrusionRun pauses an active run.
func (c *Core) PauseExtrusionRun(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.ExtrusionRun{}, id, "pause", domain.StatusPaused,
		domain.ExtrusionRunPausedPayload{Reason: reason})
}

// ResumeExtrusionRun resumes a paused run.
func (c *Core) ResumeExtrusionRun(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.ExtrusionRun{}, id, "resume", domain.StatusActive,
		domain.ExtrusionRunResumedPayload{})
}

// RecordExtrusionOutput records green (unfired) tonnage produced by an active
// run.
func (c *Core) RecordExtrusionOutput(ctx context.Context, actor domain.Actor, id string, tonnes float64) (*OpResult, error) {
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	run := &models.ExtrusionRun{}
	err := c.withAggregate(ctx, actor, run, id, "record output on",
		[]domain.Status{domain.StatusActive},
		func(tx *gorm.DB) error {
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindExtrusionRun, id,
				domain.ExtrusionRunOutputRecordedPayload{Tonnes: tonnes}))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.ExtrusionToDrying, id, actor.TenantID)
	return &OpResult{ID: id, Status: run.GetStatus()}, nil
}

// CompleteExtrusionRun moves an active run to completed.
func (c *Core) CompleteExtrusionRun(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.ExtrusionRun{}, id, "complete", domain.StatusCompleted,
		domain.ExtrusionRunCompletedPayload{})
}

// CancelExtrusionRun cancels a non-terminal run.
func (c *Core) CancelExtrusionRun(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.ExtrusionRun{}, id, "cancel", domain.StatusCancelled,
		domain.ExtrusionRunCancelledPayload{Reason: reason})
}
