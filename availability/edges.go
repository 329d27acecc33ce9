package availability

import "example.com/brickworks/services/production/domain"

// Edge describes one pipeline consumption edge: which event types count as
// production on the upstream aggregate and which count as consumption
// recorded against it by downstream operations.
type Edge struct {
	Name         string
	UpstreamKind domain.AggregateKind
	Unit         string

	// ProducedTypes are summed over events whose aggregate_id is the
	// upstream aggregate.
	ProducedTypes []string

	// ConsumedTypes are summed over events whose reference_id is the
	// upstream aggregate.
	ConsumedTypes []string

	// View optionally names a pre-aggregated materialized view with
	// (upstream_id, tenant_id, produced, consumed) columns. When set, the
	// view is read instead of the event log; an unreachable view yields
	// StateUnknown, never an over-permitting guess.
	View string
}

var (
	// MiningToStockpile gates stockpile deposits on recorded shift output.
	MiningToStockpile = Edge{
		Name:          "mining_to_stockpile",
		UpstreamKind:  domain.KindMiningShift,
		Unit:          "t",
		ProducedTypes: []string{domain.MiningShiftOutputRecorded},
		ConsumedTypes: []string{domain.StockpileDepositRecorded},
	}

	// StockpileToMixing gates mix inputs on stockpile deposits.
	StockpileToMixing = Edge{
		Name:          "stockpile_to_mixing",
		UpstreamKind:  domain.KindStockpile,
		Unit:          "t",
		ProducedTypes: []string{domain.StockpileDepositRecorded},
		ConsumedTypes: []string{domain.MixBatchInputAdded},
	}

	MixToCrushing = Edge{
		Name:          "mix_to_crushing",
		UpstreamKind:  domain.KindMixBatch,
		Unit:          "t",
		ProducedTypes: []string{domain.MixBatchOutputRecorded},
		ConsumedTypes: []string{domain.CrushRunInputAdded},
	}

	CrushToExtrusion = Edge{
		Name:          "crush_to_extrusion",
		UpstreamKind:  domain.KindCrushRun,
		Unit:          "t",
		ProducedTypes: []string{domain.CrushRunOutputRecorded},
		ConsumedTypes: []string{domain.ExtrusionRunInputAdded},
	}

	ExtrusionToDrying = Edge{
		Name:          "extrusion_to_drying",
		UpstreamKind:  domain.KindExtrusionRun,
		Unit:          "t",
		ProducedTypes: []string{domain.ExtrusionRunOutputRecorded},
		ConsumedTypes: []string{domain.DryLoadInputAdded},
	}

	DryToKiln = Edge{
		Name:          "dry_to_kiln",
		UpstreamKind:  domain.KindDryLoad,
		Unit:          "t",
		ProducedTypes: []string{domain.DryLoadOutputRecorded},
		ConsumedTypes: []string{domain.KilnBatchInputAdded},
	}

	KilnToPacking = Edge{
		Name:          "kiln_to_packing",
		UpstreamKind:  domain.KindKilnBatch,
		Unit:          "units",
		ProducedTypes: []string{domain.KilnBatchOutputRecorded},
		ConsumedTypes: []string{domain.PackPalletUnitsAdded},
	}
)

// Edges lists every production pipeline edge in upstream order.
func Edges() []Edge {
	return []Edge{
		MiningToStockpile,
		StockpileToMixing,
		MixToCrushing,
		CrushToExtrusion,
		ExtrusionToDrying,
		DryToKiln,
		KilnToPacking,
	}
}

// EdgeByName resolves an edge by its wire name.
func EdgeByName(name string) (Edge, bool) {
	for _, e := range Edges() {
		if e.Name == name {
			return e, true
		}
	}
	return Edge{}, false
}
