package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// IssueInvoiceInput describes a new invoice against an order.
type IssueInvoiceInput struct {
	Code    string  `json:"code"`
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
}

// IssueInvoice issues an invoice for a confirmed or closed order.
func (c *Core) IssueInvoice(ctx context.Context, actor domain.Actor, in IssueInvoiceInput) (*OpResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("order_id", in.OrderID); err != nil {
		return nil, err
	}
	if err := guardQuantity("amount", in.Amount); err != nil {
		return nil, err
	}

	txn := c.startTxn("issue-invoice")
	defer c.endTxn(txn)

	invoice := &models.Invoice{
		SnapshotBase: newBase(actor, domain.KindInvoice, in.Code),
		OrderID:      in.OrderID,
		Amount:       in.Amount,
	}
	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		order := &models.SalesOrder{}
		if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, in.OrderID, order); err != nil {
			return err
		}
		if !statusIn(order.GetStatus(), []domain.Status{domain.StatusConfirmed, domain.StatusClosed}) {
			return &domain.IllegalStateTransition{
				Kind:    domain.KindSalesOrder,
				ID:      in.OrderID,
				Current: order.GetStatus(),
				Op:      "invoice",
			}
		}
		if err := c.snapshots.Create(ctx, tx, invoice); err != nil {
			return err
		}
		_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindInvoice, invoice.ID,
			domain.InvoiceIssuedPayload{OrderID: in.OrderID, Amount: in.Amount}).
			WithReference(in.OrderID))
		return err
	})
	if err != nil {
		c.recordError(txn, err)
		return nil, err
	}
	return &OpResult{ID: invoice.ID, Code: in.Code, Status: invoice.GetStatus()}, nil
}

// PaymentInput describes one payment against an invoice.
type PaymentInput struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

// RecordPayment records a payment against an issued invoice. The paid-to-date
// sum on the snapshot is a cache; the payment events are the record.
func (c *Core) RecordPayment(ctx context.Context, actor domain.Actor, invoiceID string, in PaymentInput) (*OpResult, error) {
	if err := guardQuantity("amount", in.Amount); err != nil {
		return nil, err
	}
	if err := guardRequired("method", in.Method); err != nil {
		return nil, err
	}

	invoice := &models.Invoice{}
	err := c.withAggregate(ctx, actor, invoice, invoiceID, "record payment on",
		[]domain.Status{domain.StatusIssued},
		func(tx *gorm.DB) error {
			if invoice.Paid+in.Amount > invoice.Amount {
				return domain.NewValidationError("amount",
					fmt.Sprintf("payment of %.2f exceeds remaining balance of %.2f",
						in.Amount, invoice.Amount-invoice.Paid))
			}
			invoice.Paid += in.Amount
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindInvoice, invoiceID,
				domain.PaymentRecordedPayload{
					InvoiceID: invoiceID,
					Amount:    in.Amount,
					Method:    in.Method,
					Reference: in.Reference,
				}))
			return err
		})
	if err != nil {
		return nil, err
	}
	return &OpResult{ID: invoiceID, Status: invoice.GetStatus()}, nil
}

// CompleteInvoice settles an issued invoice. Refused until payments cover the
// issued amount.
func (c *Core) CompleteInvoice(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	invoice := &models.Invoice{}
	err := c.withAggregate(ctx, actor, invoice, id, "complete",
		[]domain.Status{domain.StatusIssued},
		func(tx *gorm.DB) error {
			if invoice.Paid < invoice.Amount {
				return domain.NewValidationError("paid",
					fmt.Sprintf("%.2f of %.2f paid", invoice.Paid, invoice.Amount))
			}
			stamp(invoice, invoice.GetStatus(), domain.StatusCompleted)
			invoice.SetStatus(domain.StatusCompleted)
			return nil
		})
	if err != nil {
		return nil, err
	}

	warnings := c.events.AppendAudit(ctx, domain.NewEvent(actor, domain.KindInvoice, id,
		domain.InvoiceCompletedPayload{}))
	return &OpResult{ID: id, Status: domain.StatusCompleted, Warnings: warnings}, nil
}

// CancelInvoice voids an issued invoice. Completed invoices refuse
// cancellation; a correction is a new credit document, not a status edit.
func (c *Core) CancelInvoice(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.Invoice{}, id, "cancel", domain.StatusCancelled,
		domain.InvoiceCancelledPayload{Reason: reason})
}
