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

func TestCreateMiningShift(t *testing.T) {
	core, deps := newTestCore(t)
	deps.snapshots.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.MiningShift")).Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := core.CreateMiningShift(context.Background(), testActor, CreateMiningShiftInput{
		Code:          "MS-2024-001",
		Pit:           "north",
		PlannedTonnes: 120,
	})

	require.NoError(t, err)
	require.NotEmpty(t, result.ID)
	require.Equal(t, "MS-2024-001", result.Code)
	require.Equal(t, domain.StatusPlanned, result.Status)

	require.Len(t, deps.events.appended, 1)
	created := deps.events.appended[0]
	require.Equal(t, domain.MiningShiftCreated, created.Type)
	require.Equal(t, testActor.TenantID, created.TenantID)
	require.Equal(t, testActor.ID, created.ActorID)
	deps.snapshots.AssertExpectations(t)
}

func TestOperationsRequireAttribution(t *testing.T) {
	core, deps := newTestCore(t)

	_, err := core.CreateMiningShift(context.Background(), domain.Actor{}, CreateMiningShiftInput{
		Code:          "MS-1",
		Pit:           "north",
		PlannedTonnes: 10,
	})

	var attribution *domain.AttributionMissing
	require.ErrorAs(t, err, &attribution)
	deps.snapshots.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	require.Empty(t, deps.events.appended)
}

func TestStartMiningShift(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "shift-1", func(s models.Snapshot) {
		shift := s.(*models.MiningShift)
		shift.SnapshotBase = models.SnapshotBase{ID: "shift-1", TenantID: testActor.TenantID, Status: string(domain.StatusPlanned)}
	})
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("AppendAudit", mock.Anything, mock.Anything).Return(nil)

	result, err := core.StartMiningShift(context.Background(), testActor, "shift-1")

	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, result.Status)
	require.Empty(t, result.Warnings)
	require.Len(t, deps.events.audited, 1)
	require.Equal(t, domain.MiningShiftStarted, deps.events.audited[0].Type)
}

func TestCompleteCancelledShiftRefused(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "shift-1", func(s models.Snapshot) {
		shift := s.(*models.MiningShift)
		shift.SnapshotBase = models.SnapshotBase{ID: "shift-1", TenantID: testActor.TenantID, Status: string(domain.StatusCancelled)}
	})

	_, err := core.CompleteMiningShift(context.Background(), testActor, "shift-1")

	var illegal *domain.IllegalStateTransition
	require.ErrorAs(t, err, &illegal)
	require.Equal(t, domain.StatusCancelled, illegal.Current)

	// The refused operation must leave no trace: no snapshot write, no event.
	deps.snapshots.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	deps.events.AssertNotCalled(t, "AppendAudit", mock.Anything, mock.Anything)
	require.Empty(t, deps.events.appended)
	require.Empty(t, deps.events.audited)
}

func TestTransitionAuditFailureSurfacesWarning(t *testing.T) {
	core, deps := newTestCore(t)
	deps.events.auditWarnings = []string{"audit event MINING_SHIFT_COMPLETED not recorded: connection refused"}
	loadSnapshot(deps.snapshots, "shift-1", func(s models.Snapshot) {
		shift := s.(*models.MiningShift)
		shift.SnapshotBase = models.SnapshotBase{ID: "shift-1", TenantID: testActor.TenantID, Status: string(domain.StatusActive)}
	})
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("AppendAudit", mock.Anything, mock.Anything).Return(nil)

	result, err := core.CompleteMiningShift(context.Background(), testActor, "shift-1")

	// The state change committed; the lost audit event is reported, not
	// swallowed and not fatal.
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, result.Status)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "not recorded")
}

func TestRecordMiningOutput(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "shift-1", func(s models.Snapshot) {
		shift := s.(*models.MiningShift)
		shift.SnapshotBase = models.SnapshotBase{ID: "shift-1", TenantID: testActor.TenantID, Status: string(domain.StatusActive)}
	})
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	deps.avail.On("Invalidate", mock.Anything, mock.Anything, "shift-1", testActor.TenantID).Return()

	result, err := core.RecordMiningOutput(context.Background(), testActor, "shift-1", 40)

	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, result.Status)
	require.Len(t, deps.events.appended, 1)
	require.Equal(t, domain.MiningShiftOutputRecorded, deps.events.appended[0].Type)
	require.Equal(t, 40.0, deps.events.appended[0].Quantity())
	deps.avail.AssertExpectations(t)
}

func TestRecordMiningOutputRejectsNonPositive(t *testing.T) {
	core, deps := newTestCore(t)

	_, err := core.RecordMiningOutput(context.Background(), testActor, "shift-1", 0)

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Empty(t, deps.events.appended)
}

func TestStockpileDepositConsumesShiftOutput(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "sp-1", func(s models.Snapshot) {
		pile := s.(*models.Stockpile)
		pile.SnapshotBase = models.SnapshotBase{ID: "sp-1", TenantID: testActor.TenantID, Status: string(domain.StatusOpen)}
	})
	loadSnapshot(deps.snapshots, "shift-1", func(s models.Snapshot) {
		shift := s.(*models.MiningShift)
		shift.SnapshotBase = models.SnapshotBase{ID: "shift-1", TenantID: testActor.TenantID, Status: string(domain.StatusCompleted)}
	})
	deps.avail.On("AvailableForUpdate", mock.Anything, mock.Anything, mock.Anything, "shift-1", testActor.TenantID).
		Return(availability.Result{Quantity: 15, State: availability.StateKnown, Unit: "t"}, nil)
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	deps.avail.On("Invalidate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := core.RecordStockpileDeposit(context.Background(), testActor, "sp-1", "shift-1", 10)

	require.NoError(t, err)
	require.Equal(t, "sp-1", result.ID)
	require.Len(t, deps.events.appended, 1)
	deposit := deps.events.appended[0]
	require.Equal(t, domain.StockpileDepositRecorded, deposit.Type)
	require.Equal(t, "shift-1", deposit.ReferenceID)
	require.Equal(t, 10.0, deposit.Quantity())
}

func TestConsumptionGuardUsesTransactionalSum(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "batch-1", func(s models.Snapshot) {
		batch := s.(*models.MixBatch)
		batch.SnapshotBase = models.SnapshotBase{ID: "batch-1", TenantID: testActor.TenantID, Status: string(domain.StatusActive)}
	})
	loadSnapshot(deps.snapshots, "SP-1", func(s models.Snapshot) {
		pile := s.(*models.Stockpile)
		pile.SnapshotBase = models.SnapshotBase{ID: "SP-1", TenantID: testActor.TenantID, Status: string(domain.StatusOpen)}
	})
	// The cached reporting read would happily return a stale 15t here; the
	// guard must sum on its own transaction, which sees only 9t.
	deps.avail.On("Available", mock.Anything, mock.Anything, "SP-1", testActor.TenantID).
		Return(availability.Result{Quantity: 15, State: availability.StateKnown, Unit: "t"}, nil).Maybe()
	deps.avail.On("AvailableForUpdate", mock.Anything, mock.Anything, mock.Anything, "SP-1", testActor.TenantID).
		Return(availability.Result{Quantity: 9, State: availability.StateKnown, Unit: "t"}, nil)

	_, err := core.AddMixInput(context.Background(), testActor, "batch-1", "SP-1", 12)

	var insufficient *domain.InsufficientAvailability
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 9.0, insufficient.Available)
	deps.avail.AssertNotCalled(t, "Available", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.Empty(t, deps.events.appended)
}

func TestAddMixInputInsufficientAvailability(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "batch-1", func(s models.Snapshot) {
		batch := s.(*models.MixBatch)
		batch.SnapshotBase = models.SnapshotBase{ID: "batch-1", TenantID: testActor.TenantID, Status: string(domain.StatusActive)}
	})
	loadSnapshot(deps.snapshots, "SP-1", func(s models.Snapshot) {
		pile := s.(*models.Stockpile)
		pile.SnapshotBase = models.SnapshotBase{ID: "SP-1", TenantID: testActor.TenantID, Status: string(domain.StatusOpen)}
	})
	deps.avail.On("AvailableForUpdate", mock.Anything, mock.Anything, mock.Anything, "SP-1", testActor.TenantID).
		Return(availability.Result{Quantity: 9, State: availability.StateKnown, Unit: "t"}, nil)

	_, err := core.AddMixInput(context.Background(), testActor, "batch-1", "SP-1", 12)

	var insufficient *domain.InsufficientAvailability
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 9.0, insufficient.Available)
	require.Contains(t, err.Error(), "9.00 t remaining")

	// The guarded mutation aborts whole: no event, no snapshot write.
	require.Empty(t, deps.events.appended)
	deps.snapshots.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddMixInputUnknownAvailabilityFailsClosed(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "batch-1", func(s models.Snapshot) {
		batch := s.(*models.MixBatch)
		batch.SnapshotBase = models.SnapshotBase{ID: "batch-1", TenantID: testActor.TenantID, Status: string(domain.StatusPlanned)}
	})
	loadSnapshot(deps.snapshots, "SP-1", func(s models.Snapshot) {
		pile := s.(*models.Stockpile)
		pile.SnapshotBase = models.SnapshotBase{ID: "SP-1", TenantID: testActor.TenantID, Status: string(domain.StatusOpen)}
	})
	deps.avail.On("AvailableForUpdate", mock.Anything, mock.Anything, mock.Anything, "SP-1", testActor.TenantID).
		Return(availability.Result{State: availability.StateUnknown, Unit: "t"}, nil)

	_, err := core.AddMixInput(context.Background(), testActor, "batch-1", "SP-1", 1)

	var insufficient *domain.InsufficientAvailability
	require.ErrorAs(t, err, &insufficient)
	require.True(t, insufficient.Unknown)
	require.Contains(t, err.Error(), "treating as none available")
	require.Empty(t, deps.events.appended)
}

func TestAddMixInputFromClosedStockpileRefused(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "batch-1", func(s models.Snapshot) {
		batch := s.(*models.MixBatch)
		batch.SnapshotBase = models.SnapshotBase{ID: "batch-1", TenantID: testActor.TenantID, Status: string(domain.StatusActive)}
	})
	loadSnapshot(deps.snapshots, "SP-1", func(s models.Snapshot) {
		pile := s.(*models.Stockpile)
		pile.SnapshotBase = models.SnapshotBase{ID: "SP-1", TenantID: testActor.TenantID, Status: string(domain.StatusClosed)}
	})

	_, err := core.AddMixInput(context.Background(), testActor, "batch-1", "SP-1", 1)

	var illegal *domain.IllegalStateTransition
	require.ErrorAs(t, err, &illegal)
	require.Empty(t, deps.events.appended)
}
