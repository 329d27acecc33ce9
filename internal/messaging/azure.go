package messaging

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/brickworks/services/production/config"
	"example.com/brickworks/services/production/models"
)

// Publisher pushes processed events onto the service bus for downstream
// consumers (reporting, finance export).
type Publisher struct {
	client *azservicebus.Client
	sender *azservicebus.Sender
}

// NewPublisher creates a publisher for the configured events queue.
func NewPublisher(cfg config.AzureConfig) (*Publisher, error) {
	client, err := azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create service bus client")
	}

	sender, err := client.NewSender(cfg.EventsQueueName, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create service bus sender")
	}

	return &Publisher{client: client, sender: sender}, nil
}

// PublishEvent sends one stored event to the bus. Message id is the event id
// so downstream consumers can deduplicate.
func (p *Publisher) PublishEvent(ctx context.Context, event *models.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event for publishing")
	}

	messageID := event.EventID
	msg := &azservicebus.Message{
		MessageID: &messageID,
		Body:      body,
		Subject:   &event.EventType,
	}

	if err := p.sender.SendMessage(ctx, msg, nil); err != nil {
		return errors.Wrapf(err, "failed to publish event %s", event.EventID)
	}

	log.Debug().Str("event_id", event.EventID).Str("event_type", event.EventType).Msg("Event published")
	return nil
}

// Close releases the sender and client.
func (p *Publisher) Close(ctx context.Context) error {
	if p.sender != nil {
		if err := p.sender.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Error closing service bus sender")
		}
	}
	if p.client != nil {
		return p.client.Close(ctx)
	}
	return nil
}
