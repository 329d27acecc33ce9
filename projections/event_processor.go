// Package projections holds the background consumers of the event log: the
// processor that fans committed events out to search and the bus, and the
// reconciler that audits reservation pairing.
package projections

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/models"
)

// EventSink receives processed events. Both the search indexer and the bus
// publisher satisfy it.
type EventSink interface {
	Name() string
	Deliver(ctx context.Context, event *models.Event) error
}

// EventProcessor drains unprocessed event rows to the configured sinks. Rows
// stay unprocessed until every sink accepted them; the error column keeps the
// last failure for operators.
type EventProcessor struct {
	db        *gorm.DB
	sinks     []EventSink
	batchSize int
}

// NewEventProcessor creates a processor over the write database.
func NewEventProcessor(db *gorm.DB, batchSize int, sinks ...EventSink) *EventProcessor {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &EventProcessor{db: db, sinks: sinks, batchSize: batchSize}
}

// ProcessPending handles one batch of unprocessed events and reports how many
// it completed. A failing event is recorded and skipped; the batch continues.
func (p *EventProcessor) ProcessPending(ctx context.Context) (int, error) {
	var rows []models.Event
	err := p.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(p.batchSize).
		Find(&rows).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to load unprocessed events")
	}

	processed := 0
	for i := range rows {
		row := &rows[i]
		if err := p.deliver(ctx, row); err != nil {
			msg := err.Error()
			row.Error = &msg
			log.Warn().
				Err(err).
				Str("event_id", row.EventID).
				Str("event_type", row.EventType).
				Msg("Event delivery failed")
		} else {
			row.Processed = true
			row.Error = nil
			processed++
		}
		if err := p.db.WithContext(ctx).
			Model(&models.Event{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{"processed": row.Processed, "error": row.Error}).Error; err != nil {
			return processed, errors.Wrap(err, "failed to mark event")
		}
	}

	if processed > 0 {
		log.Info().Int("count", processed).Msg("Events processed")
	}
	return processed, nil
}

func (p *EventProcessor) deliver(ctx context.Context, event *models.Event) error {
	for _, sink := range p.sinks {
		if err := sink.Deliver(ctx, event); err != nil {
			return fmt.Errorf("%s: %w", sink.Name(), err)
		}
	}
	return nil
}
