package domain

// Status is an aggregate lifecycle state. Production aggregates share the
// planned/active/paused model; pallets, shipments, orders and invoices reuse
// the same machine with their own names for the equivalent states.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"

	// Pallet lifecycle.
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"

	// Shipment terminal state.
	StatusDispatched Status = "dispatched"

	// Sales order intermediate state.
	StatusConfirmed Status = "confirmed"

	// Invoice lifecycle.
	StatusIssued Status = "issued"
)

// productionTransitions is the shared machine for mining shifts, mix batches,
// crush runs, extrusion runs, dry loads and kiln batches:
// planned -> active <-> paused -> completed, cancelled from any non-terminal.
var productionTransitions = map[Status][]Status{
	StatusPlanned: {StatusActive, StatusCancelled},
	StatusActive:  {StatusPaused, StatusCompleted, StatusCancelled},
	StatusPaused:  {StatusActive, StatusCancelled},
}

// transitions maps each aggregate kind to its legal status moves. A kind
// missing a current status has no legal moves from it (terminal).
var transitions = map[AggregateKind]map[Status][]Status{
	KindMiningShift:  productionTransitions,
	KindMixBatch:     productionTransitions,
	KindCrushRun:     productionTransitions,
	KindExtrusionRun: productionTransitions,
	KindDryLoad:      productionTransitions,
	KindKilnBatch:    productionTransitions,
	KindStockpile: {
		StatusOpen: {StatusClosed},
	},
	KindPallet: {
		StatusOpen: {StatusClosed, StatusCancelled},
	},
	KindShipment: {
		StatusPlanned: {StatusDispatched, StatusCancelled},
	},
	KindSalesOrder: {
		StatusPlanned:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusClosed, StatusCancelled},
	},
	KindInvoice: {
		StatusIssued: {StatusCompleted, StatusCancelled},
	},
}

// initialStatus is the status a freshly created aggregate of each kind gets.
var initialStatus = map[AggregateKind]Status{
	KindMiningShift:  StatusPlanned,
	KindMixBatch:     StatusPlanned,
	KindCrushRun:     StatusPlanned,
	KindExtrusionRun: StatusPlanned,
	KindDryLoad:      StatusPlanned,
	KindKilnBatch:    StatusPlanned,
	KindStockpile:    StatusOpen,
	KindPallet:       StatusOpen,
	KindShipment:     StatusPlanned,
	KindSalesOrder:   StatusPlanned,
	KindInvoice:      StatusIssued,
}

// InitialStatus returns the birth status for an aggregate kind.
func InitialStatus(kind AggregateKind) Status {
	return initialStatus[kind]
}

// CanTransition reports whether moving kind from one status to another is
// legal under its lifecycle table.
func CanTransition(kind AggregateKind, from, to Status) bool {
	table, ok := transitions[kind]
	if !ok {
		return false
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status has no outgoing transitions for the kind.
func Terminal(kind AggregateKind, s Status) bool {
	table, ok := transitions[kind]
	if !ok {
		return true
	}
	return len(table[s]) == 0
}
