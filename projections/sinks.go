package projections

import (
	"context"

	"example.com/brickworks/services/production/internal/messaging"
	"example.com/brickworks/services/production/internal/search"
	"example.com/brickworks/services/production/models"
)

// SearchSink indexes events into the audit search index.
type SearchSink struct {
	client *search.ElasticClient
}

// NewSearchSink wraps the search client as an event sink.
func NewSearchSink(client *search.ElasticClient) *SearchSink {
	return &SearchSink{client: client}
}

func (s *SearchSink) Name() string { return "search" }

func (s *SearchSink) Deliver(ctx context.Context, event *models.Event) error {
	return s.client.IndexEvent(ctx, event)
}

// BusSink publishes events onto the service bus for downstream consumers.
type BusSink struct {
	publisher *messaging.Publisher
}

// NewBusSink wraps the bus publisher as an event sink.
func NewBusSink(publisher *messaging.Publisher) *BusSink {
	return &BusSink{publisher: publisher}
}

func (s *BusSink) Name() string { return "bus" }

func (s *BusSink) Deliver(ctx context.Context, event *models.Event) error {
	return s.publisher.PublishEvent(ctx, event)
}
