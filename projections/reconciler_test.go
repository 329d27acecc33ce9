package projections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmatchedCorrelationsPairsWithinTenant(t *testing.T) {
	palletSide := []pairKey{
		{TenantID: "t1", CorrelationID: "c1"},
		{TenantID: "t1", CorrelationID: "c2"},
		{TenantID: "t2", CorrelationID: "c3"},
	}
	consumerSide := []pairKey{
		{TenantID: "t1", CorrelationID: "c1"},
		// Same correlation id as t2's pallet half, but under another
		// tenant: it must not pair across the boundary.
		{TenantID: "t1", CorrelationID: "c3"},
	}

	require.ElementsMatch(t, []string{"c2", "c3"},
		unmatchedCorrelations(palletSide, consumerSide))
	require.ElementsMatch(t, []string{"c3"},
		unmatchedCorrelations(consumerSide, palletSide))
}

func TestUnmatchedCorrelationsCleanLog(t *testing.T) {
	keys := []pairKey{
		{TenantID: "t1", CorrelationID: "c1"},
		{TenantID: "t2", CorrelationID: "c2"},
	}
	require.Empty(t, unmatchedCorrelations(keys, keys))
}
