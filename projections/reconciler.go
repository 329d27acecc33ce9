package projections

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// consumerSideTypes are the consumer halves of reservation pairs.
var consumerSideTypes = []string{
	domain.SalesOrderReservationAdded,
	domain.SalesOrderReservationReleased,
	domain.ShipmentPickAdded,
	domain.ShipmentReservationReleased,
}

// palletSideTypes are the pallet halves of reservation pairs.
var palletSideTypes = []string{
	domain.PackPalletReserved,
	domain.PackPalletReservationReleased,
}

// ReconcileReport summarizes one pairing audit pass.
type ReconcileReport struct {
	PalletSideEvents   int64    `json:"pallet_side_events"`
	ConsumerSideEvents int64    `json:"consumer_side_events"`
	OrphanCorrelations []string `json:"orphan_correlations"`
	NegativeBalances   []string `json:"negative_balances"`
	StaleConsumerHolds []string `json:"stale_consumer_holds"`
}

// Healthy reports whether the pass found nothing to flag.
func (r ReconcileReport) Healthy() bool {
	return len(r.OrphanCorrelations) == 0 &&
		len(r.NegativeBalances) == 0 &&
		len(r.StaleConsumerHolds) == 0
}

// Reconciler audits the reservation protocol: every pallet-side hold or
// release must have a consumer-side partner sharing its correlation id, and
// no pallet may have more units reserved than it holds. Every check is
// scoped per tenant. Both halves commit in one transaction, so a finding
// here means corruption worth an operator's attention, not routine lag.
type Reconciler struct {
	db *gorm.DB
}

// NewReconciler creates a reconciler over the read database.
func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db}
}

// Run performs one audit pass over the whole log and logs its findings.
func (r *Reconciler) Run(ctx context.Context) (ReconcileReport, error) {
	report := ReconcileReport{}

	palletCorrs, err := r.correlations(ctx, palletSideTypes)
	if err != nil {
		return report, err
	}
	consumerCorrs, err := r.correlations(ctx, consumerSideTypes)
	if err != nil {
		return report, err
	}
	report.PalletSideEvents = int64(len(palletCorrs))
	report.ConsumerSideEvents = int64(len(consumerCorrs))

	report.OrphanCorrelations = append(
		unmatchedCorrelations(palletCorrs, consumerCorrs),
		unmatchedCorrelations(consumerCorrs, palletCorrs)...)

	negatives, err := r.overReservedPallets(ctx)
	if err != nil {
		return report, err
	}
	report.NegativeBalances = negatives

	stale, err := r.staleConsumerHolds(ctx)
	if err != nil {
		return report, err
	}
	report.StaleConsumerHolds = stale

	if report.Healthy() {
		log.Debug().
			Int64("pallet_side", report.PalletSideEvents).
			Int64("consumer_side", report.ConsumerSideEvents).
			Msg("Reservation reconciliation clean")
	} else {
		log.Warn().
			Strs("orphan_correlations", report.OrphanCorrelations).
			Strs("over_reserved_pallets", report.NegativeBalances).
			Strs("stale_consumer_holds", report.StaleConsumerHolds).
			Msg("Reservation reconciliation found inconsistencies")
	}
	return report, nil
}

// pairKey identifies one half of a reservation pair. A correlation id only
// pairs within its own tenant; the same id appearing under two tenants is two
// distinct (and both orphaned) halves.
type pairKey struct {
	TenantID      string
	CorrelationID string
}

func (r *Reconciler) correlations(ctx context.Context, eventTypes []string) ([]pairKey, error) {
	var keys []pairKey
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Select("DISTINCT tenant_id, correlation_id").
		Where("event_type IN ? AND correlation_id IS NOT NULL", eventTypes).
		Scan(&keys).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reservation correlations")
	}
	return keys, nil
}

// unmatchedCorrelations returns the correlation ids in left with no partner
// in right under the same tenant.
func unmatchedCorrelations(left, right []pairKey) []string {
	partner := make(map[pairKey]struct{}, len(right))
	for _, k := range right {
		partner[k] = struct{}{}
	}
	var orphans []string
	for _, k := range left {
		if _, ok := partner[k]; !ok {
			orphans = append(orphans, k.CorrelationID)
		}
	}
	return orphans
}

// overReservedPallets finds pallets whose outstanding reserved units exceed
// their on-hand units.
func (r *Reconciler) overReservedPallets(ctx context.Context) ([]string, error) {
	type row struct {
		TenantID    string
		AggregateID string
		OnHand      float64
		Reserved    float64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Select(`tenant_id, aggregate_id,
			COALESCE(SUM(CASE WHEN event_type = ? THEN quantity WHEN event_type = ? THEN -quantity ELSE 0 END), 0) AS on_hand,
			COALESCE(SUM(CASE WHEN event_type = ? THEN quantity WHEN event_type = ? THEN -quantity ELSE 0 END), 0) AS reserved`,
			domain.PackPalletUnitsAdded, domain.PackPalletUnitsRemoved,
			domain.PackPalletReserved, domain.PackPalletReservationReleased).
		Where("aggregate_kind = ?", string(domain.KindPallet)).
		Group("tenant_id, aggregate_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute pallet balances")
	}

	var flagged []string
	for _, p := range rows {
		if p.Reserved > p.OnHand {
			flagged = append(flagged, p.AggregateID)
		}
	}
	return flagged, nil
}

// staleConsumerHolds finds orders and shipments already terminal that still
// net a positive pallet hold. Cancellation and dispatch release every hold in
// the same transaction, so a hit means a release pair went missing.
func (r *Reconciler) staleConsumerHolds(ctx context.Context) ([]string, error) {
	type row struct {
		TenantID    string
		ReferenceID string
		Held        float64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Select(`tenant_id, reference_id,
			COALESCE(SUM(CASE WHEN event_type = ? THEN quantity ELSE -quantity END), 0) AS held`,
			domain.PackPalletReserved).
		Where("event_type IN ? AND reference_id IS NOT NULL", palletSideTypes).
		Group("tenant_id, reference_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute consumer holds")
	}

	holders := make(map[string][]string)
	for _, h := range rows {
		if h.Held > 0 {
			holders[h.TenantID] = append(holders[h.TenantID], h.ReferenceID)
		}
	}
	if len(holders) == 0 {
		return nil, nil
	}

	terminal := []string{
		string(domain.StatusCancelled),
		string(domain.StatusClosed),
		string(domain.StatusDispatched),
	}
	var stale []string
	for tenantID, ids := range holders {
		var orderIDs []string
		err = r.db.WithContext(ctx).
			Model(&models.SalesOrder{}).
			Where("tenant_id = ? AND id IN ? AND status IN ?", tenantID, ids, terminal).
			Pluck("id", &orderIDs).Error
		if err != nil {
			return nil, errors.Wrap(err, "failed to check terminal orders")
		}
		stale = append(stale, orderIDs...)

		var shipmentIDs []string
		err = r.db.WithContext(ctx).
			Model(&models.Shipment{}).
			Where("tenant_id = ? AND id IN ? AND status IN ?", tenantID, ids, terminal).
			Pluck("id", &shipmentIDs).Error
		if err != nil {
			return nil, errors.Wrap(err, "failed to check terminal shipments")
		}
		stale = append(stale, shipmentIDs...)
	}
	return stale, nil
}
