package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"example.com/brickworks/services/production/domain"
	"example.com/brickworks/services/production/models"
)

// CreateSalesOrderInput describes a new customer order.
type CreateSalesOrderInput struct {
	Code     string `json:"code"`
	Customer string `json:"customer"`
}

// CreateSalesOrder registers a planned sales order.
func (c *Core) CreateSalesOrder(ctx context.Context, actor domain.Actor, in CreateSalesOrderInput) (*OpResult, error) {
	if err := guardRequired("code", in.Code); err != nil {
		return nil, err
	}
	if err := guardRequired("customer", in.Customer); err != nil {
		return nil, err
	}

	order := &models.SalesOrder{
		SnapshotBase: newBase(actor, domain.KindSalesOrder, in.Code),
		Customer:     in.Customer,
	}
	result, err := c.create(ctx, actor, order, domain.SalesOrderCreatedPayload{
		Code:     in.Code,
		Customer: in.Customer,
	})
	if err != nil {
		return nil, err
	}
	result.Code = in.Code
	return result, nil
}

// OrderLineInput describes one product line on an order.
type OrderLineInput struct {
	Product   string  `json:"product"`
	Units     float64 `json:"units"`
	UnitPrice float64 `json:"unit_price"`
}

// AddOrderLine appends a product line to a planned order.
func (c *Core) AddOrderLine(ctx context.Context, actor domain.Actor, orderID string, in OrderLineInput) (*OpResult, error) {
	if err := guardRequired("product", in.Product); err != nil {
		return nil, err
	}
	if err := guardQuantity("units", in.Units); err != nil {
		return nil, err
	}
	if err := guardQuantity("unit_price", in.UnitPrice); err != nil {
		return nil, err
	}

	order := &models.SalesOrder{}
	err := c.withAggregate(ctx, actor, order, orderID, "add line to",
		[]domain.Status{domain.StatusPlanned},
		func(tx *gorm.DB) error {
			_, err := c.events.Append(ctx, tx, domain.NewEvent(actor, domain.KindSalesOrder, orderID,
				domain.SalesOrderLineAddedPayload{
					Product:   in.Product,
					Units:     in.Units,
					UnitPrice: in.UnitPrice,
				}))
			return err
		})
	if err != nil {
		return nil, err
	}
	return &OpResult{ID: orderID, Status: order.GetStatus()}, nil
}

// ReserveForOrder places a hold on packed pallet units for the order. Both
// halves of the pair commit together; the correlation id ties them.
func (c *Core) ReserveForOrder(ctx context.Context, actor domain.Actor, orderID, palletID string, units float64) (*OpResult, error) {
	if err := guardRequired("pallet_id", palletID); err != nil {
		return nil, err
	}
	if err := guardQuantity("units", units); err != nil {
		return nil, err
	}

	var correlationID string
	order := &models.SalesOrder{}
	err := c.withAggregate(ctx, actor, order, orderID, "reserve for",
		[]domain.Status{domain.StatusPlanned, domain.StatusConfirmed},
		func(tx *gorm.DB) error {
			var err error
			correlationID, err = c.reserveOnPallet(ctx, tx, actor, orderConsumer(orderID), palletID, units)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &OpResult{ID: orderID, Status: order.GetStatus(), CorrelationID: correlationID}, nil
}

// ReleaseOrderReservation gives back part or all of the order's hold on one
// pallet.
func (c *Core) ReleaseOrderReservation(ctx context.Context, actor domain.Actor, orderID, palletID string, units float64) (*OpResult, error) {
	if err := guardRequired("pallet_id", palletID); err != nil {
		return nil, err
	}
	if err := guardQuantity("units", units); err != nil {
		return nil, err
	}

	var correlationID string
	order := &models.SalesOrder{}
	err := c.withAggregate(ctx, actor, order, orderID, "release reservation for",
		[]domain.Status{domain.StatusPlanned, domain.StatusConfirmed},
		func(tx *gorm.DB) error {
			var err error
			correlationID, err = c.releaseOnPallet(ctx, tx, actor, orderConsumer(orderID), palletID, units)
			return err
		})
	if err != nil {
		return nil, err
	}
	return &OpResult{ID: orderID, Status: order.GetStatus(), CorrelationID: correlationID}, nil
}

// ConfirmOrder moves a planned order to confirmed.
func (c *Core) ConfirmOrder(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	return c.transition(ctx, actor, &models.SalesOrder{}, id, "confirm", domain.StatusConfirmed,
		domain.SalesOrderConfirmedPayload{})
}

// CloseOrder moves a confirmed order to closed. Closed is terminal, so an
// order still holding pallet reservations refuses closure: the holds must be
// dispatched or released first. Cancellation is the path that gives holds
// back implicitly.
func (c *Core) CloseOrder(ctx context.Context, actor domain.Actor, id string) (*OpResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	txn := c.startTxn("close-sales_order")
	defer c.endTxn(txn)

	order := &models.SalesOrder{}
	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, id, order); err != nil {
			return err
		}
		from := order.GetStatus()
		if !domain.CanTransition(domain.KindSalesOrder, from, domain.StatusClosed) {
			return &domain.IllegalStateTransition{Kind: domain.KindSalesOrder, ID: id, Current: from, Op: "close"}
		}
		outstanding, err := c.outstandingReservations(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if len(outstanding) > 0 {
			return domain.NewValidationError("order",
				fmt.Sprintf("holds outstanding reservations on %d pallet(s); dispatch or release them before closing", len(outstanding)))
		}
		stamp(order, from, domain.StatusClosed)
		order.SetStatus(domain.StatusClosed)
		return c.snapshots.Save(ctx, tx, order)
	})
	if err != nil {
		c.recordError(txn, err)
		return nil, err
	}

	warnings := c.events.AppendAudit(ctx, domain.NewEvent(actor, domain.KindSalesOrder, id,
		domain.SalesOrderClosedPayload{}))
	return &OpResult{ID: id, Status: domain.StatusClosed, Warnings: warnings}, nil
}

// CancelOrder cancels a non-terminal order, walking its outstanding pallet
// holds and giving each back with a release pair. The releases and the
// status change commit together.
func (c *Core) CancelOrder(ctx context.Context, actor domain.Actor, id, reason string) (*OpResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	txn := c.startTxn("cancel-sales_order")
	defer c.endTxn(txn)

	order := &models.SalesOrder{}
	err := c.tx.InTx(ctx, func(tx *gorm.DB) error {
		if err := c.snapshots.FindForUpdate(ctx, tx, actor.TenantID, id, order); err != nil {
			return err
		}
		from := order.GetStatus()
		if !domain.CanTransition(domain.KindSalesOrder, from, domain.StatusCancelled) {
			return &domain.IllegalStateTransition{Kind: domain.KindSalesOrder, ID: id, Current: from, Op: "cancel"}
		}
		if _, err := c.releaseAllForConsumer(ctx, tx, actor, orderConsumer(id)); err != nil {
			return err
		}
		stamp(order, from, domain.StatusCancelled)
		order.SetStatus(domain.StatusCancelled)
		return c.snapshots.Save(ctx, tx, order)
	})
	if err != nil {
		c.recordError(txn, err)
		return nil, err
	}

	warnings := c.events.AppendAudit(ctx, domain.NewEvent(actor, domain.KindSalesOrder, id,
		domain.SalesOrderCancelledPayload{Reason: reason}))
	return &OpResult{ID: id, Status: domain.StatusCancelled, Warnings: warnings}, nil
}
