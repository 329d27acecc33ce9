package services

import (
	"context"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// CreateDryLoadInput describes a new dry-yard load.
type CreateDryLoadInput struct {
	Code string `json:"code"`
	Yard string `json:"yard"`
}

// CreateDryLoad registers a planned dry-yard load.
func (c *Core) CreateDryLoad(ctx context.Context, actor domain.Actor, in CreateDryLoadInput) (*OpResult, error) {
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("yard", in.Yard); err != nil {
		return nil, err
	}

	load := &models.DryLoad{
		SnapshotBase: newBase(actor, domain.KindDryLoad, in.Code),
		Yard:         in.Yard,
	}
	result, err := c.create(ctx, actor, load, domain.DryLoadCreatedPayload{
		Code: in.Code,
		Yard: in.Yard,
	})
	if err != nil {
		return nil, err
	}
	result.Code = in.Code
	return result, nil
}

// AddDryInput draws green material from an extrusion run onto the load.
func (c *Core) AddDryInput(ctx context.Context, actor domain.Actor, loadID, extrusionRunID string, tonnes float64) (*OpResult, error) {
	if err := guardRequired("extrusion_run_id", extrusionRunID); err != nil {
		return nil, err
	}
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}

	load := &models.DryLoad{}
	err := c.withAggregate(ctx, actor, load, loadID, "add input to", inputAccepting,
		func(tx *gorm.DB) error {
			run := &models.ExtrusionRun{}
			if err := c.consumeUpstream(ctx, tx, actor, availability.ExtrusionToDrying,
				run, extrusionRunID, upstreamConsumable, tonnes); err != nil {
				return err
			}
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindDryLoad, loadID,
				domain.DryLoadInputAddedPayload{ExtrusionRunID: extrusionRunID, Tonnes: tonnes}).
				WithReference(extrusionRunID))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.ExtrusionToDrying, extrusionRunID, actor.TenantID)
	return &OpResult{ID: loadID, Status: load.GetStatus()}, nil
}

// StartDryLoad moves a planned load to active.
func (c *Core) StartDryLoad(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.DryLoad{}, id, "start", domain.StatusActive,
		domain.DryLoadStartedPayload{})
}

// PauseDryLoad pauses an active load.
func (c *Core) PauseDryLoad(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.DryLoad{}, id, "pause", domain.StatusPaused,
		domain.DryLoadPausedPayload{Reason: reason})
}

// ResumeDryLoad resumes a paused load.
func (c *Core) ResumeDryLoad(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.DryLoad{}, id, "resume", domain.StatusActive,
		domain.DryLoadResumedPayload{})
}

// RecordDryOutput records dried tonnage and the residual moisture percentage.
func (c *Core) RecordDryOutput(ctx context.Context, actor domain.Actor, id string, tonnes, moisturePct float64) (*OpResult, error) {
	if err := guardQuantity("tonnes", tonnes); err != nil {
		return nil, err
	}
	if err := guardPercent("moisture_pct", moisturePct); err != nil {
		return nil, err
	}

	load := &models.DryLoad{}
	err := c.withAggregate(ctx, actor, load, id, "record output on",
		[]domain.Status{domain.StatusActive},
		func(tx *gorm.DB) error {
			load.LastMoisturePct = &moisturePct
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindDryLoad, id,
				domain.DryLoadOutputRecordedPayload{Tonnes: tonnes, MoisturePct: moisturePct}))
			return err
		})
	if err != nil {
		return nil, err
	}

	c.avail.Invalidate(ctx, availability.DryToKiln, id, actor.TenantID)
	return &OpResult{ID: id, Status: load.GetStatus()}, nil
}

// CompleteDryLoad moves an active load to completed.
func (c *Core) CompleteDryLoad(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.DryLoad{}, id, "complete", domain.StatusCompleted,
		domain.DryLoadCompletedPayload{})
}

// CancelDryLoad cancels a non-terminal load.
func (c *Core) CancelDryLoad(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.DryLoad{}, id, "cancel", domain.StatusCancelled,
		domain.DryLoadCancelledPayload{Reason: reason})
}
