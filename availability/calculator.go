// Package availability derives the quantity still consumable on each
// pipeline edge by netting production events against consumption events.
// Nothing here is stored; the event log is the input.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/internal/cache"
	"example.com/brickworks/services/production/models"
)

// State distinguishes a measured quantity from one that could not be
// determined. Unknown is a real third outcome, not a zero: callers decide
// what it means, and guards treat it as nothing available (fail closed).
type State int

const (
	StateKnown State = iota
	StateUnknown
)

// Result is the outcome of one availability query.
type Result struct {
	Quantity float64
	State    State
	Unit     string
}

// Known reports whether the quantity was actually measured.
func (r Result) Known() bool { return r.State == StateKnown }

// PalletBalance is the derived inventory position of one pallet.
type PalletBalance struct {
	OnHand   float64
	Reserved float64
}

// Reservable is the quantity a new reservation may take.
func (b PalletBalance) Reservable() float64 {
	free := b.OnHand - b.Reserved
	if free < 0 {
		return 0
	}
	return free
}

const cacheTTL = 30 * time.Second

// Calculator computes per-edge availability. One instance serves all edges;
// the edge value parameterizes each query.
type Calculator struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewCalculator creates a calculator over the read database. cache may be
// nil-initialized (disabled); every path works without it.
func NewCalculator(db *gorm.DB, c *cache.RedisCache) *Calculator {
	return &Calculator{db: db, cache: c}
}

// Available computes the quantity of the upstream aggregate's output not yet
// consumed on the edge, clamped at zero. This is the reporting path: it may
// serve a cached sum and reads the replica. Guards must not use it; they go
// through AvailableForUpdate. Querying without a tenant is a programming
// error, not a valid state.
func (c *Calculator) Available(ctx context.Context, edge Edge, upstreamID, tenantID string) (Result, error) {
	if err := checkScope(tenantID, upstreamID); err != nil {
		return Result{}, err
	}

	key := cacheKey(tenantID, edge.Name, upstreamID)
	if c.cache != nil {
		var cached Result
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	result, err := c.compute(ctx, edge, upstreamID, tenantID)
	if err != nil {
		return Result{}, err
	}

	if c.cache != nil && result.Known() {
		if err := c.cache.Set(ctx, key, result, cacheTTL); err != nil {
			log.Warn().Err(err).Str("edge", edge.Name).Msg("Failed to cache availability")
		}
	}
	return result, nil
}

// AvailableForUpdate nets the edge sum on the caller's open transaction,
// bypassing the cache, the replica and any pre-aggregated view. The sum a
// guard acts on must come from the same transaction as the writes it gates,
// or two writers serialized on the row lock can both read a stale figure.
func (c *Calculator) AvailableForUpdate(ctx context.Context, tx *gorm.DB, edge Edge, upstreamID, tenantID string) (Result, error) {
	if err := checkScope(tenantID, upstreamID); err != nil {
		return Result{}, err
	}
	if tx == nil {
		tx = c.db
	}
	return c.net(ctx, tx, edge, upstreamID, tenantID)
}

func checkScope(tenantID, upstreamID string) error {
	if tenantID == "" {
		return &domain.AttributionMissing{Reason: "availability query requires a tenant"}
	}
	if upstreamID == "" {
		return domain.NewValidationError("upstream_id", "must not be empty")
	}
	return nil
}

func (c *Calculator) compute(ctx context.Context, edge Edge, upstreamID, tenantID string) (Result, error) {
	if edge.View != "" {
		return c.fromView(ctx, edge, upstreamID, tenantID), nil
	}
	return c.net(ctx, c.db, edge, upstreamID, tenantID)
}

func (c *Calculator) net(ctx context.Context, db *gorm.DB, edge Edge, upstreamID, tenantID string) (Result, error) {
	produced, err := c.sumByAggregate(ctx, db, tenantID, upstreamID, edge.ProducedTypes)
	if err != nil {
		return Result{}, err
	}
	consumed, err := c.sumByReference(ctx, db, tenantID, upstreamID, edge.ConsumedTypes)
	if err != nil {
		return Result{}, err
	}

	quantity := produced - consumed
	if quantity < 0 {
		// Should be unreachable while guards hold; clamp rather than
		// report a negative availability.
		log.Warn().
			Str("edge", edge.Name).
			Str("upstream_id", upstreamID).
			Float64("produced", produced).
			Float64("consumed", consumed).
			Msg("Negative availability clamped to zero")
		quantity = 0
	}
	return Result{Quantity: quantity, State: StateKnown, Unit: edge.Unit}, nil
}

// fromView reads a pre-aggregated materialized view. A missing row is a true
// zero; an unreachable view is Unknown, which callers must not confuse with
// a confirmed zero.
func (c *Calculator) fromView(ctx context.Context, edge Edge, upstreamID, tenantID string) Result {
	var row struct {
		Produced float64
		Consumed float64
	}
	err := c.db.WithContext(ctx).
		Table(edge.View).
		Select("produced, consumed").
		Where("upstream_id = ? AND tenant_id = ?", upstreamID, tenantID).
		Take(&row).Error
	switch {
	case err == nil:
		quantity := row.Produced - row.Consumed
		if quantity < 0 {
			quantity = 0
		}
		return Result{Quantity: quantity, State: StateKnown, Unit: edge.Unit}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Result{Quantity: 0, State: StateKnown, Unit: edge.Unit}
	default:
		log.Warn().Err(err).Str("view", edge.View).Msg("Availability view unreachable")
		return Result{State: StateUnknown, Unit: edge.Unit}
	}
}

// PalletBalanceFor derives a pallet's on-hand and outstanding-reserved unit
// counts from the event log on the read database. Reporting path only;
// reservation guards use PalletBalanceForUpdate.
func (c *Calculator) PalletBalanceFor(ctx context.Context, tenantID, palletID string) (PalletBalance, error) {
	return c.balanceOn(ctx, c.db, tenantID, palletID)
}

// PalletBalanceForUpdate derives the same balance on the caller's open
// transaction so a reservation guard sums the exact ledger its own write
// joins.
func (c *Calculator) PalletBalanceForUpdate(ctx context.Context, tx *gorm.DB, tenantID, palletID string) (PalletBalance, error) {
	if tx == nil {
		tx = c.db
	}
	return c.balanceOn(ctx, tx, tenantID, palletID)
}

func (c *Calculator) balanceOn(ctx context.Context, db *gorm.DB, tenantID, palletID string) (PalletBalance, error) {
	if tenantID == "" {
		return PalletBalance{}, &domain.AttributionMissing{Reason: "availability query requires a tenant"}
	}

	added, err := c.sumByAggregate(ctx, db, tenantID, palletID, []string{domain.PackPalletUnitsAdded})
	if err != nil {
		return PalletBalance{}, err
	}
	removed, err := c.sumByAggregate(ctx, db, tenantID, palletID, []string{domain.PackPalletUnitsRemoved})
	if err != nil {
		return PalletBalance{}, err
	}
	reserved, err := c.sumByAggregate(ctx, db, tenantID, palletID, []string{domain.PackPalletReserved})
	if err != nil {
		return PalletBalance{}, err
	}
	released, err := c.sumByAggregate(ctx, db, tenantID, palletID, []string{domain.PackPalletReservationReleased})
	if err != nil {
		return PalletBalance{}, err
	}

	balance := PalletBalance{
		OnHand:   added - removed,
		Reserved: reserved - released,
	}
	if balance.OnHand < 0 {
		balance.OnHand = 0
	}
	if balance.Reserved < 0 {
		balance.Reserved = 0
	}
	return balance, nil
}

// Invalidate drops the cached sum for one edge/upstream pair. Writers call
// this after any event that changes the sum.
func (c *Calculator) Invalidate(ctx context.Context, edge Edge, upstreamID, tenantID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, cacheKey(tenantID, edge.Name, upstreamID)); err != nil {
		log.Warn().Err(err).Str("edge", edge.Name).Msg("Failed to invalidate availability cache")
	}
}

func (c *Calculator) sumByAggregate(ctx context.Context, db *gorm.DB, tenantID, aggregateID string, eventTypes []string) (float64, error) {
	var total float64
	err := db.WithContext(ctx).
		Model(&models.Event{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("tenant_id = ? AND aggregate_id = ? AND event_type IN ?", tenantID, aggregateID, eventTypes).
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum events by aggregate")
	}
	return total, nil
}

func (c *Calculator) sumByReference(ctx context.Context, db *gorm.DB, tenantID, referenceID string, eventTypes []string) (float64, error) {
	var total float64
	err := db.WithContext(ctx).
		Model(&models.Event{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("tenant_id = ? AND reference_id = ? AND event_type IN ?", tenantID, referenceID, eventTypes).
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum events by reference")
	}
	return total, nil
}

func cacheKey(tenantID, edge, upstreamID string) string {
	return fmt.Sprintf("avail:%s:%s:%s", tenantID, edge, upstreamID)
}
