package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

func TestIssueInvoiceRequiresConfirmedOrClosedOrder(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusPlanned)}
	})

	_, err := core.IssueInvoice(context.Background(), testActor, IssueInvoiceInput{
		Code:    "INV-1",
		OrderID: "order-1",
		Amount:  1200,
	})

	var illegal *domain.IllegalStateTransition
	require.ErrorAs(t, err, &illegal)
	deps.snapshots.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	require.Empty(t, deps.events.appended)
}

func TestIssueInvoice(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "order-1", func(s models.Snapshot) {
		order := s.(*models.SalesOrder)
		order.SnapshotBase = models.SnapshotBase{ID: "order-1", TenantID: testActor.TenantID, Status: string(domain.StatusConfirmed)}
	})
	deps.snapshots.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Invoice")).Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	result, err := core.IssueInvoice(context.Background(), testActor, IssueInvoiceInput{
		Code:    "INV-1",
		OrderID: "order-1",
		Amount:  1200,
	})

	require.NoError(t, err)
	require.Equal(t, domain.StatusIssued, result.Status)
	require.Len(t, deps.events.appended, 1)
	issued := deps.events.appended[0]
	require.Equal(t, domain.InvoiceIssued, issued.Type)
	require.Equal(t, "order-1", issued.ReferenceID)
	require.Equal(t, result.ID, issued.AggregateID)
}

func TestRecordPaymentAccumulates(t *testing.T) {
	core, deps := newTestCore(t)
	invoice := &models.Invoice{}
	loadSnapshot(deps.snapshots, "inv-1", func(s models.Snapshot) {
		inv := s.(*models.Invoice)
		inv.SnapshotBase = models.SnapshotBase{ID: "inv-1", TenantID: testActor.TenantID, Status: string(domain.StatusIssued)}
		inv.Amount = 100
		inv.Paid = 40
	})
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*invoice = *args.Get(2).(*models.Invoice)
		}).
		Return(nil)
	deps.events.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	_, err := core.RecordPayment(context.Background(), testActor, "inv-1", PaymentInput{
		Amount: 20,
		Method: "eft",
	})

	require.NoError(t, err)
	require.Equal(t, 60.0, invoice.Paid)
	require.Len(t, deps.events.appended, 1)
	payment := deps.events.appended[0]
	require.Equal(t, domain.PaymentRecorded, payment.Type)
	require.Equal(t, 20.0, payment.Quantity())
}

func TestRecordPaymentRefusedOverBalance(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "inv-1", func(s models.Snapshot) {
		inv := s.(*models.Invoice)
		inv.SnapshotBase = models.SnapshotBase{ID: "inv-1", TenantID: testActor.TenantID, Status: string(domain.StatusIssued)}
		inv.Amount = 100
		inv.Paid = 90
	})

	_, err := core.RecordPayment(context.Background(), testActor, "inv-1", PaymentInput{
		Amount: 20,
		Method: "eft",
	})

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Contains(t, err.Error(), "exceeds remaining balance")
	require.Empty(t, deps.events.appended)
}

func TestCompleteInvoiceRequiresFullPayment(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "inv-1", func(s models.Snapshot) {
		inv := s.(*models.Invoice)
		inv.SnapshotBase = models.SnapshotBase{ID: "inv-1", TenantID: testActor.TenantID, Status: string(domain.StatusIssued)}
		inv.Amount = 100
		inv.Paid = 40
	})

	_, err := core.CompleteInvoice(context.Background(), testActor, "inv-1")

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Contains(t, err.Error(), "40.00 of 100.00 paid")
	require.Empty(t, deps.events.audited)
}

func TestCompleteInvoicePaidInFull(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "inv-1", func(s models.Snapshot) {
		inv := s.(*models.Invoice)
		inv.SnapshotBase = models.SnapshotBase{ID: "inv-1", TenantID: testActor.TenantID, Status: string(domain.StatusIssued)}
		inv.Amount = 100
		inv.Paid = 100
	})
	deps.snapshots.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.events.On("AppendAudit", mock.Anything, mock.Anything).Return(nil)

	result, err := core.CompleteInvoice(context.Background(), testActor, "inv-1")

	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, result.Status)
	require.Len(t, deps.events.audited, 1)
	require.Equal(t, domain.InvoiceCompleted, deps.events.audited[0].Type)
}

func TestCompletedInvoiceRefusesCancel(t *testing.T) {
	core, deps := newTestCore(t)
	loadSnapshot(deps.snapshots, "inv-1", func(s models.Snapshot) {
		inv := s.(*models.Invoice)
		inv.SnapshotBase = models.SnapshotBase{ID: "inv-1", TenantID: testActor.TenantID, Status: string(domain.StatusCompleted)}
	})

	_, err := core.CancelInvoice(context.Background(), testActor, "inv-1", "duplicate")

	var illegal *domain.IllegalStateTransition
	require.ErrorAs(t, err, &illegal)
	require.Empty(t, deps.events.audited)
}
