package eventlog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

func TestToRowExtractsQuantityAndReference(t *testing.T) {
	actor := domain.Actor{ID: "u1", TenantID: "t1", Role: "operator"}
	e := domain.NewEvent(actor, domain.KindMixBatch, "batch-1",
		domain.MixBatchInputAddedPayload{StockpileID: "sp-1", Tonnes: 7.5}).
		WithReference("sp-1").
		WithCorrelation("corr-1")

	row, err := toRow(e)
	require.NoError(t, err)
	require.Equal(t, "t1", row.TenantID)
	require.Equal(t, "batch-1", row.AggregateID)
	require.Equal(t, domain.MixBatchInputAdded, row.EventType)
	require.Equal(t, 7.5, row.Quantity)
	require.NotNil(t, row.ReferenceID)
	require.Equal(t, "sp-1", *row.ReferenceID)
	require.NotNil(t, row.CorrelationID)
	require.Equal(t, "corr-1", *row.CorrelationID)
	require.Nil(t, row.CausationID)
}

func TestToRowRequiresAttribution(t *testing.T) {
	e := domain.NewEvent(domain.Actor{}, domain.KindMixBatch, "batch-1",
		domain.MixBatchStartedPayload{})

	_, err := toRow(e)
	var attribution *domain.AttributionMissing
	require.ErrorAs(t, err, &attribution)
}

func TestFromRowDecodesViaRegistry(t *testing.T) {
	payload, err := json.Marshal(domain.StockpileDepositRecordedPayload{ShiftID: "shift-1", Tonnes: 10})
	require.NoError(t, err)

	ref := "shift-1"
	row := models.Event{
		EventID:       "9b4f1c94-6d35-4a27-9f6c-52c17ddfd60f",
		TenantID:      "t1",
		ActorID:       "u1",
		AggregateKind: string(domain.KindStockpile),
		AggregateID:   "sp-1",
		EventType:     domain.StockpileDepositRecorded,
		Payload:       payload,
		Quantity:      10,
		ReferenceID:   &ref,
		OccurredAt:    time.Now().UTC(),
	}

	e, err := FromRow(row)
	require.NoError(t, err)
	require.Equal(t, "9b4f1c94-6d35-4a27-9f6c-52c17ddfd60f", e.ID.String())
	require.Equal(t, "shift-1", e.ReferenceID)

	deposit, ok := e.Payload.(*domain.StockpileDepositRecordedPayload)
	require.True(t, ok)
	require.Equal(t, 10.0, deposit.Tonnes)
	require.Equal(t, 10.0, e.Quantity())
}

func TestFromRowMalformedEventIDFails(t *testing.T) {
	payload, err := json.Marshal(domain.StockpileDepositRecordedPayload{ShiftID: "shift-1", Tonnes: 10})
	require.NoError(t, err)

	row := models.Event{
		EventID:     "not-a-uuid",
		TenantID:    "t1",
		EventType:   domain.StockpileDepositRecorded,
		Payload:     payload,
		AggregateID: "sp-1",
	}

	// A corrupted id must surface, not decode as the zero uuid.
	_, err = FromRow(row)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not-a-uuid")
}

func TestFromRowUnknownTypeFails(t *testing.T) {
	row := models.Event{
		EventID:   "4fb0e54e-15ab-41d0-b318-1a7516cf2c0a",
		EventType: "LEGACY_EVENT",
		Payload:   []byte(`{}`),
	}
	_, err := FromRow(row)
	require.Error(t, err)
}
