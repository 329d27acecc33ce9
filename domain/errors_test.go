package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsufficientAvailabilityMessage(t *testing.T) {
	err := &InsufficientAvailability{
		Edge:       "stockpile_to_mixing",
		UpstreamID: "SP-1",
		Requested:  12,
		Available:  9,
		Unit:       "t",
	}
	require.Equal(t,
		"insufficient availability on stockpile_to_mixing for SP-1: requested 12.00 t, 9.00 t remaining",
		err.Error())
}

func TestInsufficientAvailabilityUnknownMessage(t *testing.T) {
	err := &InsufficientAvailability{
		Edge:       "dry_to_kiln",
		UpstreamID: "DL-7",
		Requested:  3,
		Unit:       "t",
		Unknown:    true,
	}
	require.Contains(t, err.Error(), "is unknown")
	require.Contains(t, err.Error(), "treating as none available")
}

func TestIllegalStateTransitionMessage(t *testing.T) {
	err := &IllegalStateTransition{
		Kind:    KindMiningShift,
		ID:      "MS-1",
		Current: StatusCancelled,
		Op:      "complete",
	}
	require.Equal(t, "cannot complete mining_shift MS-1: status is cancelled", err.Error())
}

func TestActorAttribution(t *testing.T) {
	require.True(t, Actor{ID: "u1", TenantID: "t1"}.Attributed())
	require.False(t, Actor{ID: "u1"}.Attributed())
	require.False(t, Actor{TenantID: "t1"}.Attributed())
	require.False(t, Actor{}.Attributed())
}
