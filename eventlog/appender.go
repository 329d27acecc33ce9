// Package eventlog is the append-only, tenant-scoped event log. It is the
// sole source of truth; snapshot rows are a derived cache.
package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// Appender writes and reads event rows.
type Appender struct {
	db *gorm.DB
}

// NewAppender creates an appender over the write database.
func NewAppender(db *gorm.DB) *Appender {
	return &Appender{db: db}
}

// Append stores one immutable event row inside the caller's transaction.
// Events appended here are part of the guarded mutation: a failure aborts
// the whole operation. Attribution is mandatory.
func (a *Appender) Append(ctx context.Context, tx *gorm.DB, e domain.Event) (*models.Event, error) {
	row, err := toRow(e)
	if err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to append event")
	}

	log.Info().
		Str("tenant_id", e.TenantID).
		Str("aggregate_id", e.AggregateID).
		Str("event_type", e.Type).
		Float64("quantity", row.Quantity).
		Msg("Event appended")

	return row, nil
}

// AppendAudit stores a lifecycle audit event after the guarded mutation has
// already committed. Failure here must not roll back a correct state change,
// so it degrades to a returned warning instead of an error. Quantity-bearing
// events never go through this path.
func (a *Appender) AppendAudit(ctx context.Context, e domain.Event) []string {
	row, err := toRow(e)
	if err == nil {
		err = a.db.WithContext(ctx).Create(row).Error
	}
	if err != nil {
		log.Warn().
			Err(err).
			Str("aggregate_id", e.AggregateID).
			Str("event_type", e.Type).
			Msg("Audit event append failed; state change is committed")
		return []string{errors.Wrapf(err, "audit event %s not recorded", e.Type).Error()}
	}
	return nil
}

// ListForAggregate returns the decoded events of one aggregate within the
// tenant, oldest first.
func (a *Appender) ListForAggregate(ctx context.Context, tenantID, aggregateID string) ([]domain.Event, error) {
	if tenantID == "" {
		return nil, &domain.AttributionMissing{Reason: "tenant filter required for event reads"}
	}

	var rows []models.Event
	if err := a.db.WithContext(ctx).
		Where("tenant_id = ? AND aggregate_id = ?", tenantID, aggregateID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load events")
	}

	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		e, err := FromRow(row)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// ReservationsForConsumer returns every pallet-side reservation and release
// event whose reference is the given consumer aggregate, oldest first. Used
// by the release walk and the pairing reconciler.
func (a *Appender) ReservationsForConsumer(ctx context.Context, tenantID, consumerID string) ([]domain.Event, error) {
	if tenantID == "" {
		return nil, &domain.AttributionMissing{Reason: "tenant filter required for event reads"}
	}

	var rows []models.Event
	if err := a.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_id = ? AND event_type IN ?",
			tenantID, consumerID,
			[]string{domain.PackPalletReserved, domain.PackPalletReservationReleased}).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load reservation events")
	}

	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		e, err := FromRow(row)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func toRow(e domain.Event) (*models.Event, error) {
	if e.TenantID == "" || e.ActorID == "" {
		return nil, &domain.AttributionMissing{Reason: "event requires actor and tenant"}
	}
	if e.Payload == nil {
		return nil, errors.New("event payload is nil")
	}

	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s payload", e.Type)
	}

	occurredAt := e.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	row := &models.Event{
		EventID:       e.ID.String(),
		TenantID:      e.TenantID,
		ActorID:       e.ActorID,
		ActorRole:     e.ActorRole,
		AggregateKind: string(e.AggregateKind),
		AggregateID:   e.AggregateID,
		EventType:     e.Type,
		Payload:       data,
		Quantity:      e.Quantity(),
		Source:        e.Source,
		OccurredAt:    occurredAt,
	}
	if e.ReferenceID != "" {
		row.ReferenceID = &e.ReferenceID
	}
	if e.CorrelationID != "" {
		row.CorrelationID = &e.CorrelationID
	}
	if e.CausationID != "" {
		row.CausationID = &e.CausationID
	}
	return row, nil
}

// FromRow decodes a stored row back into a domain event via the payload
// registry.
func FromRow(row models.Event) (domain.Event, error) {
	payload, err := domain.DecodePayload(row.EventType, row.Payload)
	if err != nil {
		return domain.Event{}, err
	}

	id, err := uuid.Parse(row.EventID)
	if err != nil {
		return domain.Event{}, errors.Wrapf(err, "invalid event id %q", row.EventID)
	}
	e := domain.Event{
		ID:            id,
		TenantID:      row.TenantID,
		ActorID:       row.ActorID,
		ActorRole:     row.ActorRole,
		AggregateKind: domain.AggregateKind(row.AggregateKind),
		AggregateID:   row.AggregateID,
		Type:          row.EventType,
		Payload:       payload,
		Source:        row.Source,
		OccurredAt:    row.OccurredAt,
	}
	if row.ReferenceID != nil {
		e.ReferenceID = *row.ReferenceID
	}
	if row.CorrelationID != nil {
		e.CorrelationID = *row.CorrelationID
	}
	if row.CausationID != nil {
		e.CausationID = *row.CausationID
	}
	return e, nil
}
