package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

func palletReserved(palletID, consumerID string, units float64, corr string) domain.Event {
	return domain.NewEvent(testActor, domain.KindPallet, palletID,
		domain.PackPalletReservedPayload{
			ConsumerKind: string(domain.KindSalesOrder),
			ConsumerID:   consumerID,
			Units:        units,
		}).
		WithReference(consumerID).
		WithCorrelation(corr)
}

func palletReleased(palletID, consumerID string, units float64, corr string) domain.Event {
	return domain.NewEvent(testActor, domain.KindPallet, palletID,
		domain.PackPalletReservationReleasedPayload{
			ConsumerKind: string(domain.KindSalesOrder),
			ConsumerID:   consumerID,
			Units:        units,
		}).
		WithReference(consumerID).
		WithCorrelation(corr)
}

func TestReserveForOrderAppendsPairedEvents(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusConfirmed)}
	})
	loadSnapshot(deps.snapshots, "pallet-1", func(s models.Snapshot) {
		pallet := s.(*models.Pallet)
		pallet.SnapshotBase = models.SnapshotBase{ID: "pallet-1", TenantID: testActor.TenantID, Status: string(domain.StatusOpen)}
	})
	deps.avail.On("PalletBalanceForUpdate", mock.Anything, mock.Anything, testActor.TenantID, "pallet-1").
		Return(availability.PalletBalance{OnHand: 500, Reserved: 0}, nil)
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := core.ReserveForOrder(context.Background(), testActor, "order-1", "pallet-1", 400)

	require.NoError(t, err)
	require.NotEmpty(t, result.CorrelationID)
	require.Len(t, deps.events.appended, 2)

	// Consumer side first, then the pallet hold; the pair shares one
	// correlation id and the hold is caused by the consumer event.
	orderSide := deps.events.appended[0]
	palletSide := deps.events.appended[1]
	require.Equal(t, domain.SalesOrderReservationAdded, orderSide.Type)
	require.Equal(t, "order-1", orderSide.AggregateID)
	require.Equal(t, "pallet-1", orderSide.ReferenceID)
	require.Equal(t, domain.PackPalletReserved, palletSide.Type)
	require.Equal(t, "pallet-1", palletSide.AggregateID)
	require.Equal(t, "order-1", palletSide.ReferenceID)
	require.Equal(t, result.CorrelationID, orderSide.CorrelationID)
	require.Equal(t, result.CorrelationID, palletSide.CorrelationID)
	require.Equal(t, orderSide.ID.String(), palletSide.CausationID)
}

func TestReserveForOrderRefusedOverReservable(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusPlanned)}
	})
	loadSnapshot(deps.snapshots, "pallet-1", func(s models.Snapshot) {
		pallet := s.(*models.Pallet)
		pallet.SnapshotBase = models.SnapshotBase{ID: "pallet-1", TenantID: testActor.TenantID, Status: string(domain.StatusOpen)}
	})
	deps.avail.On("PalletBalanceForUpdate", mock.Anything, mock.Anything, testActor.TenantID, "pallet-1").
		Return(availability.PalletBalance{OnHand: 500, Reserved: 400}, nil)

	_, err := core.ReserveForOrder(context.Background(), testActor, "order-1", "pallet-1", 400)

	var insufficient *domain.InsufficientAvailability
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 100.0, insufficient.Available)
	require.Empty(t, deps.events.appended)
}

func TestReserveOnClosedPalletRefused(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusConfirmed)}
	})
	loadSnapshot(deps.snapshots, "pallet-1", func(s models.Snapshot) {
		pallet := s.(*models.Pallet)
		pallet.SnapshotBase = models.SnapshotBase{ID: "pallet-1", TenantID: testActor.TenantID, Status: string(domain.StatusClosed)}
	})

	_, err := core.ReserveForOrder(context.Background(), testActor, "order-1", "pallet-1", 10)

	var illegal *domain.IllegalStateTransition
	require.ErrorAs(t, err, &illegal)
	require.Equal(t, domain.StatusClosed, illegal.Current)
	require.Empty(t, deps.events.appended)
}

func TestReserveOnCancelledPalletRefused(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusPlanned)}
	})
	loadSnapshot(deps.snapshots, "pallet-1", func(s models.Snapshot) {
		pallet := s.(*models.Pallet)
		pallet.SnapshotBase = models.SnapshotBase{ID: "pallet-1", TenantID: testActor.TenantID, Status: string(domain.StatusCancelled)}
	})

	_, err := core.ReserveForOrder(context.Background(), testActor, "order-1", "pallet-1", 10)

	var illegal *domain.IllegalStateTransition
	require.ErrorAs(t, err, &illegal)
	require.Empty(t, deps.events.appended)
}

func TestReleaseOrderReservationBounded(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusConfirmed)}
	})
	// 400 reserved, 200 already released: 200 outstanding.
	deps.events.On("ReservationsForConsumer", mock.Anything, testActor.TenantID, "order-1").
		Return([]domain.Event{
			palletReserved("pallet-1", "order-1", 400, "c1"),
			palletReleased("pallet-1", "order-1", 200, "c2"),
		}, nil)

	_, err := core.ReleaseOrderReservation(context.Background(), testActor, "order-1", "pallet-1", 300)

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Contains(t, err.Error(), "outstanding reservation")
	require.Empty(t, deps.events.appended)
}

func TestReleaseOrderReservationAppendsPair(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusConfirmed)}
	})
	deps.events.On("ReservationsForConsumer", mock.Anything, testActor.TenantID, "order-1").
		Return([]domain.Event{palletReserved("pallet-1", "order-1", 400, "c1")}, nil)
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := core.ReleaseOrderReservation(context.Background(), testActor, "order-1", "pallet-1", 200)

	require.NoError(t, err)
	require.Len(t, deps.events.appended, 2)
	require.Equal(t, domain.SalesOrderReservationReleased, deps.events.appended[0].Type)
	require.Equal(t, domain.PackPalletReservationReleased, deps.events.appended[1].Type)
	require.Equal(t, result.CorrelationID, deps.events.appended[0].CorrelationID)
	require.Equal(t, result.CorrelationID, deps.events.appended[1].CorrelationID)
}

func TestCancelOrderReleasesEveryOutstandingHold(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusConfirmed)}
	})
	deps.events.On("ReservationsForConsumer", mock.Anything, testActor.TenantID, "order-1").
		Return([]domain.Event{
			palletReserved("pallet-1", "order-1", 200, "c1"),
			palletReserved("pallet-2", "order-1", 100, "c2"),
		}, nil)
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	deps.events.On("AppendAudit", mock.Anything, mock.Anything).Return(nil)

	result, err := core.CancelOrder(context.Background(), testActor, "order-1", "customer withdrew")

	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, result.Status)

	// One release pair per outstanding pallet hold, in pallet order.
	require.Len(t, deps.events.appended, 4)
	require.Equal(t, domain.SalesOrderReservationReleased, deps.events.appended[0].Type)
	require.Equal(t, domain.PackPalletReservationReleased, deps.events.appended[1].Type)
	require.Equal(t, "pallet-1", deps.events.appended[1].AggregateID)
	require.Equal(t, 200.0, deps.events.appended[1].Quantity())
	require.Equal(t, "pallet-2", deps.events.appended[3].AggregateID)
	require.Equal(t, 100.0, deps.events.appended[3].Quantity())

	require.Len(t, deps.events.audited, 1)
	require.Equal(t, domain.SalesOrderCancelled, deps.events.audited[0].Type)
}

func TestCloseOrderRefusedWhileHoldsOutstanding(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusConfirmed)}
	})
	deps.events.On("ReservationsForConsumer", mock.Anything, testActor.TenantID, "order-1").
		Return([]domain.Event{palletReserved("pallet-1", "order-1", 200, "c1")}, nil)

	_, err := core.CloseOrder(context.Background(), testActor, "order-1")

	// Closed is terminal: a hold surviving closure would never be released.
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Contains(t, err.Error(), "outstanding reservations")
	require.Empty(t, deps.events.appended)
	require.Empty(t, deps.events.audited)
	deps.snapshots.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCloseOrderWithReleasedHolds(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusConfirmed)}
	})
	// Fully released hold nets to zero: nothing outstanding.
	deps.events.On("ReservationsForConsumer", mock.Anything, testActor.TenantID, "order-1").
		Return([]domain.Event{
			palletReserved("pallet-1", "order-1", 200, "c1"),
			palletReleased("pallet-1", "order-1", 200, "c2"),
		}, nil)
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("AppendAudit", mock.Anything, mock.Anything).Return(nil)

	result, err := core.CloseOrder(context.Background(), testActor, "order-1")

	require.NoError(t, err)
	require.Equal(t, domain.StatusClosed, result.Status)
	require.Len(t, deps.events.audited, 1)
	require.Equal(t, domain.SalesOrderClosed, deps.events.audited[0].Type)
}

func TestDispatchShipmentConvertsPicksToRemovals(t *testing.T) {
	core, deps := newTestCore(t)
	shipment := &models.Shipment{}
	loadSnapshot(deps.snapshots, "ship-1", func(s models.Snapshot) {
		sh := s.(*models.Shipment)
		sh.SnapshotBase = models.SnapshotBase{ID: "ship-1", TenantID: testActor.TenantID, Status: string(domain.StatusPlanned)}
		sh.OrderID = "order-1"
		*shipment = *sh
	})
	deps.events.On("ReservationsForConsumer", mock.Anything, testActor.TenantID, "ship-1").
		Return([]domain.Event{palletReserved("pallet-1", "ship-1", 200, "c1")}, nil)
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*shipment = *args.Get(2).(*models.Shipment)
		}).
		Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	deps.events.On("AppendAudit", mock.Anything, mock.Anything).Return(nil)

	result, err := core.DispatchShipment(context.Background(), testActor, "ship-1")

	require.NoError(t, err)
	require.Equal(t, domain.StatusDispatched, result.Status)
	require.NotNil(t, shipment.DispatchedAt)

	// Release pair first, then the physical removal from the pallet.
	require.Len(t, deps.events.appended, 3)
	require.Equal(t, domain.ShipmentReservationReleased, deps.events.appended[0].Type)
	require.Equal(t, domain.PackPalletReservationReleased, deps.events.appended[1].Type)
	removal := deps.events.appended[2]
	require.Equal(t, domain.PackPalletUnitsRemoved, removal.Type)
	require.Equal(t, "pallet-1", removal.AggregateID)
	require.Equal(t, "ship-1", removal.ReferenceID)
	require.Equal(t, 200.0, removal.Quantity())

	require.Len(t, deps.events.audited, 1)
	require.Equal(t, domain.ShipmentDispatched, deps.events.audited[0].Type)
}

func TestDispatchedShipmentRefusesCancel(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "ship-1", func(s models.Snapshot) {
		sh := s.(*models.Shipment)
		sh.SnapshotBase = models.SnapshotBase{ID: "ship-1", TenantID: testActor.TenantID, Status: string(domain.StatusDispatched)}
	})

	_, err := core.CancelShipment(context.Background(), testActor, "ship-1", "late")

	var illegal *domain.IllegalStateTransition
	require.ErrorAs(t, err, &illegal)
	require.Empty(t, deps.events.appended)
	require.Empty(t, deps.events.audited)
}

func TestCancelPalletRefusedWhileReserved(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "pallet-1", func(s models.Snapshot) {
		pallet := s.(*models.Pallet)
		pallet.SnapshotBase = models.SnapshotBase{ID: "pallet-1", TenantID: testActor.TenantID, Status: string(domain.StatusOpen)}
	})
	deps.avail.On("PalletBalanceForUpdate", mock.Anything, mock.Anything, testActor.TenantID, "pallet-1").
		Return(availability.PalletBalance{OnHand: 300, Reserved: 50}, nil)

	_, err := core.CancelPallet(context.Background(), testActor, "pallet-1", "damaged")

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Contains(t, err.Error(), "reserved")
	require.Empty(t, deps.events.audited)
}
