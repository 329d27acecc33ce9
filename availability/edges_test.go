package availability

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/brickworks/services/production/domain"
)

func TestEdgesCoverThePipeline(t *testing.T) {
	edges := Edges()
	require.Len(t, edges, 7)

	// Each stage's production feeds exactly the next stage's consumption.
	wantUpstream := []domain.AggregateKind{
		domain.KindMiningShift,
		domain.KindStockpile,
		domain.KindMixBatch,
		domain.KindCrushRun,
		domain.KindExtrusionRun,
		domain.KindDryLoad,
		domain.KindKilnBatch,
	}
	for i, edge := range edges {
		require.Equal(t, wantUpstream[i], edge.UpstreamKind, edge.Name)
		require.NotEmpty(t, edge.ProducedTypes, edge.Name)
		require.NotEmpty(t, edge.ConsumedTypes, edge.Name)
	}

	// The pipeline switches from tonnes to units at the kiln.
	require.Equal(t, "t", DryToKiln.Unit)
	require.Equal(t, "units", KilnToPacking.Unit)
}

func TestEdgeByName(t *testing.T) {
	edge, ok := EdgeByName("stockpile_to_mixing")
	require.True(t, ok)
	require.Equal(t, domain.KindStockpile, edge.UpstreamKind)

	_, ok = EdgeByName("no_such_edge")
	require.False(t, ok)
}

func TestResultKnown(t *testing.T) {
	require.True(t, Result{Quantity: 5, State: StateKnown}.Known())
	require.False(t, Result{State: StateUnknown}.Known())
}

func TestPalletBalanceReservable(t *testing.T) {
	require.Equal(t, 100.0, PalletBalance{OnHand: 500, Reserved: 400}.Reservable())
	require.Equal(t, 0.0, PalletBalance{OnHand: 100, Reserved: 150}.Reservable())
	require.Equal(t, 500.0, PalletBalance{OnHand: 500}.Reservable())
}
