package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// passTx runs the operation body directly; the persistence surfaces are
// mocked, so there is no real transaction to manage.
type passTx struct{}

func (passTx) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type mockSnapshots struct {
	mock.Mock
}

func (m *mockSnapshots) Find(ctx context.Context, tx *gorm.DB, tenantID, id string, out models.Snapshot) error {
	args := m.Called(ctx, tx, tenantID, id, out)
	return args.Error(0)
}

func (m *mockSnapshots) FindForUpdate(ctx context.Context, tx *gorm.DB, tenantID, id string, out models.Snapshot) error {
	args := m.Called(ctx, tx, tenantID, id, out)
	return args.Error(0)
}

func (m *mockSnapshots) Create(ctx context.Context, tx *gorm.DB, snap models.Snapshot) error {
	args := m.Called(ctx, tx, snap)
	return args.Error(0)
}

func (m *mockSnapshots) Save(ctx context.Context, tx *gorm.DB, snap models.Snapshot) error {
	args := m.Called(ctx, tx, snap)
	return args.Error(0)
}

// mockEventLog records appended events so tests can assert on the exact
// stream an operation produced.
type mockEventLog struct {
	mock.Mock
	appended      []domain.Event
	audited       []domain.Event
	auditWarnings []string
}

func (m *mockEventLog) Append(ctx context.Context, tx *gorm.DB, e domain.Event) (*models.Event, error) {
	args := m.Called(ctx, tx, e)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	m.appended = append(m.appended, e)
	return &models.Event{EventID: e.ID.String()}, nil
}

func (m *mockEventLog) AppendAudit(ctx context.Context, e domain.Event) []string {
	m.Called(ctx, e)
	m.audited = append(m.audited, e)
	return m.auditWarnings
}

func (m *mockEventLog) ListForAggregate(ctx context.Context, tenantID, aggregateID string) ([]domain.Event, error) {
	args := m.Called(ctx, tenantID, aggregateID)
	events, _ := args.Get(0).([]domain.Event)
	return events, args.Error(1)
}

func (m *mockEventLog) ReservationsForConsumer(ctx context.Context, tenantID, consumerID string) ([]domain.Event, error) {
	args := m.Called(ctx, tenantID, consumerID)
	events, _ := args.Get(0).([]domain.Event)
	return events, args.Error(1)
}

type mockAvailability struct {
	mock.Mock
}

func (m *mockAvailability) Available(ctx context.Context, edge availability.Edge, upstreamID, tenantID string) (availability.Result, error) {
	args := m.Called(ctx, edge, upstreamID, tenantID)
	return args.Get(0).(availability.Result), args.Error(1)
}

func (m *mockAvailability) AvailableForUpdate(ctx context.Context, tx *gorm.DB, edge availability.Edge, upstreamID, tenantID string) (availability.Result, error) {
	args := m.Called(ctx, tx, edge, upstreamID, tenantID)
	return args.Get(0).(availability.Result), args.Error(1)
}

func (m *mockAvailability) PalletBalanceFor(ctx context.Context, tenantID, palletID string) (availability.PalletBalance, error) {
	args := m.Called(ctx, tenantID, palletID)
	return args.Get(0).(availability.PalletBalance), args.Error(1)
}

func (m *mockAvailability) PalletBalanceForUpdate(ctx context.Context, tx *gorm.DB, tenantID, palletID string) (availability.PalletBalance, error) {
	args := m.Called(ctx, tx, tenantID, palletID)
	return args.Get(0).(availability.PalletBalance), args.Error(1)
}

func (m *mockAvailability) Invalidate(ctx context.Context, edge availability.Edge, upstreamID, tenantID string) {
	m.Called(ctx, edge, upstreamID, tenantID)
}

type testDeps struct {
	snapshots *mockSnapshots
	events    *mockEventLog
	avail     *mockAvailability
}

func newTestCore(t *testing.T) (*Core, *testDeps) {
	t.Helper()
	deps := &testDeps{
		snapshots: new(mockSnapshots),
		events:    new(mockEventLog),
		avail:     new(mockAvailability),
	}
	core := NewCore(passTx{}, deps.snapshots, deps.events, deps.avail, nil)
	return core, deps
}

var testActor = domain.Actor{ID: "user-1", TenantID: "tenant-1", Role: "operator"}

// loadSnapshot sets a FindForUpdate expectation that fills the passed
// snapshot with base fields.
func loadSnapshot(m *mockSnapshots, id string, fill func(models.Snapshot)) {
	m.On("FindForUpdate", mock.Anything, mock.Anything, testActor.TenantID, id, mock.Anything).
		Run(func(args mock.Arguments) {
			fill(args.Get(4).(models.Snapshot))
		}).
		Return(nil)
}
