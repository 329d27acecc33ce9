package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// reservationConsumer describes the consumer side of a pallet reservation:
// the aggregate holding the reservation and the payloads it records for the
// add and release halves of each pair.
type reservationConsumer struct {
	kind    domain.AggregateKind
	id      string
	reserve func(palletID string, units float64) domain.Payload
	release func(palletID string, units float64) domain.Payload
}

func orderConsumer(orderID string) reservationConsumer {
	return reservationConsumer{
		kind: domain.KindSalesOrder,
		id:   orderID,
		reserve: func(palletID string, units float64) domain.Payload {
			return domain.SalesOrderReservationAddedPayload{PalletID: palletID, Units: units}
		},
		release: func(palletID string, units float64) domain.Payload {
			return domain.SalesOrderReservationReleasedPayload{PalletID: palletID, Units: units}
		},
	}
}

func shipmentConsumer(shipmentID string) reservationConsumer {
	return reservationConsumer{
		kind: domain.KindShipment,
		id:   shipmentID,
		reserve: func(palletID string, units float64) domain.Payload {
			return domain.ShipmentPickAddedPayload{PalletID: palletID, Units: units}
		},
		release: func(palletID string, units float64) domain.Payload {
			return domain.ShipmentReservationReleasedPayload{PalletID: palletID, Units: units}
		},
	}
}

// reserveOnPallet appends one reservation pair: the consumer-side event
// first, then the pallet-side hold, both sharing a fresh correlation id.
// Only open pallets accept new holds. The pallet row is locked so concurrent
// reservations serialize; the reservable balance is summed on the same
// transaction, under that lock.
func (c *Core) reserveOnPallet(ctx context.Context, tx *gorm.DB, actor domain.Actor, consumer reservationConsumer, palletID string, units float64) (string, error) {
	pallet := &models.Pallet{}
	if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, palletID, pallet); err != nil {
		return "", err
	}
	if !statusIn(pallet.GetStatus(), []domain.Status{domain.StatusOpen}) {
		return "", &domain.IllegalStateTransition{
			Kind:    domain.KindPallet,
			ID:      palletID,
			Current: pallet.GetStatus(),
			Op:      "reserve on",
		}
	}

	balance, err := c.avail.PalletBalanceForUpdate(ctx, tx, actor.TenantID, palletID)
	if err != nil {
		return "", err
	}
	if units > balance.Reservable() {
		return "", &domain.InsufficientAvailability{
			Edge:       "pallet_inventory",
			UpstreamID: palletID,
			Requested:  units,
			Available:  balance.Reservable(),
			Unit:       "units",
		}
	}

	correlationID := uuid.New().String()
	consumerRow, err := c.events.Append(ctx, tx,
		domain.NewEvent(actor, consumer.kind, consumer.id, consumer.reserve(palletID, units)).
			WithReference(palletID).
			WithCorrelation(correlationID))
	if err != nil {
		return "", err
	}
	_, err = c.events.Append(ctx, tx,
		domain.NewEvent(actor, domain.KindPallet, palletID, domain.PackPalletReservedPayload{
			ConsumerKind: string(consumer.kind),
			ConsumerID:   consumer.id,
			Units:        units,
		}).
			WithReference(consumer.id).
			WithCorrelation(correlationID).
			WithCausation(consumerRow.EventID))
	if err != nil {
		return "", err
	}
	return correlationID, nil
}

// releaseOnPallet appends one release pair for part or all of a consumer's
// hold on a pallet. Releasing more than is outstanding is refused.
func (c *Core) releaseOnPallet(ctx context.Context, tx *gorm.DB, actor domain.Actor, consumer reservationConsumer, palletID string, units float64) (string, error) {
	outstanding, err := c.outstandingReservations(ctx, actor.TenantID, consumer.id)
	if err != nil {
		return "", err
	}
	held := outstanding[palletID]
	if units > held {
		return "", domain.NewValidationError("units",
			fmt.Sprintf("exceeds outstanding reservation of %.2f units on pallet %s", held, palletID))
	}
	return c.appendReleasePair(ctx, tx, actor, consumer, palletID, units)
}

func (c *Core) appendReleasePair(ctx context.Context, tx *gorm.DB, actor domain.Actor, consumer reservationConsumer, palletID string, units float64) (string, error) {
	correlationID := uuid.New().String()
	consumerRow, err := c.events.Append(ctx, tx,
		domain.NewEvent(actor, consumer.kind, consumer.id, consumer.release(palletID, units)).
			WithReference(palletID).
			WithCorrelation(correlationID))
	if err != nil {
		return "", err
	}
	_, err = c.events.Append(ctx, tx,
		domain.NewEvent(actor, domain.KindPallet, palletID, domain.PackPalletReservationReleasedPayload{
			ConsumerKind: string(consumer.kind),
			ConsumerID:   consumer.id,
			Units:        units,
		}).
			WithReference(consumer.id).
			WithCorrelation(correlationID).
			WithCausation(consumerRow.EventID))
	if err != nil {
		return "", err
	}
	return correlationID, nil
}

// outstandingReservations nets a consumer's pallet-side reservation events
// into the units still held per pallet.
func (c *Core) outstandingReservations(ctx context.Context, tenantID, consumerID string) (map[string]float64, error) {
	events, err := c.events.ReservationsForConsumer(ctx, tenantID, consumerID)
	if err != nil {
		return nil, err
	}

	held := make(map[string]float64)
	for _, e := range events {
		switch e.Type {
		case domain.PackPalletReserved:
			held[e.AggregateID] += e.Quantity()
		case domain.PackPalletReservationReleased:
			held[e.AggregateID] -= e.Quantity()
		}
	}
	for palletID, units := range held {
		if units <= 0 {
			delete(held, palletID)
		}
	}
	return held, nil
}

// releasedHold is one pallet hold given back during a release walk.
type releasedHold struct {
	PalletID string
	Units    float64
}

// releaseAllForConsumer walks every outstanding hold of the consumer and
// appends one release pair each, in pallet id order so replays are
// deterministic.
func (c *Core) releaseAllForConsumer(ctx context.Context, tx *gorm.DB, actor domain.Actor, consumer reservationConsumer) ([]releasedHold, error) {
	outstanding, err := c.outstandingReservations(ctx, actor.TenantID, consumer.id)
	if err != nil {
		return nil, err
	}

	palletIDs := make([]string, 0, len(outstanding))
	for palletID := range outstanding {
		palletIDs = append(palletIDs, palletID)
	}
	sort.Strings(palletIDs)

	released := make([]releasedHold, 0, len(palletIDs))
	for _, palletID := range palletIDs {
		units := outstanding[palletID]
		if _, err := c.appendReleasePair(ctx, tx, actor, consumer, palletID, units); err != nil {
			return nil, err
		}
		released = append(released, releasedHold{PalletID: palletID, Units: units})
	}
	return released, nil
}
