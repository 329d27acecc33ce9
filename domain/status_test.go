package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductionLifecycle(t *testing.T) {
	kinds := []AggregateKind{
		KindMiningShift, KindMixBatch, KindCrushRun,
		KindExtrusionRun, KindDryLoad, KindKilnBatch,
	}

	for _, kind := range kinds {
		require.Equal(t, StatusPlanned, InitialStatus(kind))

		require.True(t, CanTransition(kind, StatusPlanned, StatusActive))
		require.True(t, CanTransition(kind, StatusActive, StatusPaused))
		require.True(t, CanTransition(kind, StatusPaused, StatusActive))
		require.True(t, CanTransition(kind, StatusActive, StatusCompleted))

		// Cancel is reachable from every non-terminal state and only those.
		require.True(t, CanTransition(kind, StatusPlanned, StatusCancelled))
		require.True(t, CanTransition(kind, StatusActive, StatusCancelled))
		require.True(t, CanTransition(kind, StatusPaused, StatusCancelled))
		require.False(t, CanTransition(kind, StatusCompleted, StatusCancelled))
		require.False(t, CanTransition(kind, StatusCancelled, StatusCancelled))

		// No resurrection and no skipping.
		require.False(t, CanTransition(kind, StatusPlanned, StatusCompleted))
		require.False(t, CanTransition(kind, StatusPlanned, StatusPaused))
		require.False(t, CanTransition(kind, StatusCompleted, StatusActive))
		require.False(t, CanTransition(kind, StatusCancelled, StatusActive))

		require.True(t, Terminal(kind, StatusCompleted))
		require.True(t, Terminal(kind, StatusCancelled))
		require.False(t, Terminal(kind, StatusActive))
	}
}

func TestPalletLifecycle(t *testing.T) {
	require.Equal(t, StatusOpen, InitialStatus(KindPallet))
	require.True(t, CanTransition(KindPallet, StatusOpen, StatusClosed))
	require.True(t, CanTransition(KindPallet, StatusOpen, StatusCancelled))
	require.False(t, CanTransition(KindPallet, StatusClosed, StatusOpen))
	require.False(t, CanTransition(KindPallet, StatusClosed, StatusCancelled))
	require.True(t, Terminal(KindPallet, StatusClosed))
}

func TestShipmentLifecycle(t *testing.T) {
	require.Equal(t, StatusPlanned, InitialStatus(KindShipment))
	require.True(t, CanTransition(KindShipment, StatusPlanned, StatusDispatched))
	require.True(t, CanTransition(KindShipment, StatusPlanned, StatusCancelled))

	// A dispatched shipment is out the gate; nothing moves it.
	require.False(t, CanTransition(KindShipment, StatusDispatched, StatusCancelled))
	require.True(t, Terminal(KindShipment, StatusDispatched))
}

func TestSalesOrderLifecycle(t *testing.T) {
	require.Equal(t, StatusPlanned, InitialStatus(KindSalesOrder))
	require.True(t, CanTransition(KindSalesOrder, StatusPlanned, StatusConfirmed))
	require.True(t, CanTransition(KindSalesOrder, StatusConfirmed, StatusClosed))
	require.True(t, CanTransition(KindSalesOrder, StatusConfirmed, StatusCancelled))
	require.False(t, CanTransition(KindSalesOrder, StatusPlanned, StatusClosed))
	require.False(t, CanTransition(KindSalesOrder, StatusClosed, StatusCancelled))
}

func TestInvoiceLifecycle(t *testing.T) {
	require.Equal(t, StatusIssued, InitialStatus(KindInvoice))
	require.True(t, CanTransition(KindInvoice, StatusIssued, StatusCompleted))
	require.True(t, CanTransition(KindInvoice, StatusIssued, StatusCancelled))

	// A completed invoice is settled; corrections are credit documents.
	require.False(t, CanTransition(KindInvoice, StatusCompleted, StatusCancelled))
}

func TestStockpileLifecycle(t *testing.T) {
	require.Equal(t, StatusOpen, InitialStatus(KindStockpile))
	require.True(t, CanTransition(KindStockpile, StatusOpen, StatusClosed))
	require.False(t, CanTransition(KindStockpile, StatusClosed, StatusOpen))
}
