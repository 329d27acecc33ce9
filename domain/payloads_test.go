package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryIsExhaustive(t *testing.T) {
	// Every registered type must decode from an empty document and must
	// report the event type it is registered under.
	for _, eventType := range KnownEventTypes() {
		payload, err := DecodePayload(eventType, []byte(`{}`))
		require.NoError(t, err, eventType)
		require.Equal(t, eventType, payload.EventType())
	}
}

func TestDecodePayloadUnknownType(t *testing.T) {
	_, err := DecodePayload("SOMETHING_NOBODY_EMITS", []byte(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown event type")
}

func TestDecodePayloadRoundTrip(t *testing.T) {
	original := StockpileDepositRecordedPayload{ShiftID: "shift-1", Tonnes: 12.5}
	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := DecodePayload(StockpileDepositRecorded, data)
	require.NoError(t, err)

	deposit, ok := decoded.(*StockpileDepositRecordedPayload)
	require.True(t, ok)
	require.Equal(t, original, *deposit)
}

func TestEventQuantityExtraction(t *testing.T) {
	actor := Actor{ID: "u1", TenantID: "t1", Role: "operator"}

	quantified := NewEvent(actor, KindMiningShift, "shift-1",
		MiningShiftOutputRecordedPayload{Tonnes: 40})
	require.Equal(t, 40.0, quantified.Quantity())

	lifecycle := NewEvent(actor, KindMiningShift, "shift-1", MiningShiftStartedPayload{})
	require.Equal(t, 0.0, lifecycle.Quantity())
}

func TestEventBuilders(t *testing.T) {
	actor := Actor{ID: "u1", TenantID: "t1", Role: "operator"}

	e := NewEvent(actor, KindPallet, "pallet-1", PackPalletReservedPayload{
		ConsumerKind: string(KindSalesOrder),
		ConsumerID:   "order-1",
		Units:        10,
	}).WithReference("order-1").WithCorrelation("corr-1").WithCausation("cause-1")

	require.Equal(t, "t1", e.TenantID)
	require.Equal(t, "u1", e.ActorID)
	require.Equal(t, PackPalletReserved, e.Type)
	require.Equal(t, "order-1", e.ReferenceID)
	require.Equal(t, "corr-1", e.CorrelationID)
	require.Equal(t, "cause-1", e.CausationID)
	require.False(t, e.OccurredAt.IsZero())
	require.NotEqual(t, "", e.ID.String())
}
