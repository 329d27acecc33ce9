package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/brickworks/services/production/config"
	"example.com/brickworks/services/production/models"
)

// ElasticClient indexes stored events for audit search.
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewElasticClient creates a new Elasticsearch client.
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{client: client, config: cfg}, nil
}

// IndexEvent writes one event document into the audit index.
func (c *ElasticClient) IndexEvent(ctx context.Context, event *models.Event) error {
	doc := map[string]interface{}{
		"event_id":       event.EventID,
		"tenant_id":      event.TenantID,
		"actor_id":       event.ActorID,
		"actor_role":     event.ActorRole,
		"aggregate_kind": event.AggregateKind,
		"aggregate_id":   event.AggregateID,
		"event_type":     event.EventType,
		"quantity":       event.Quantity,
		"payload":        json.RawMessage(event.Payload),
		"occurred_at":    event.OccurredAt,
		"source":         event.Source,
	}
	if event.ReferenceID != nil {
		doc["reference_id"] = *event.ReferenceID
	}
	if event.CorrelationID != nil {
		doc["correlation_id"] = *event.CorrelationID
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event document")
	}

	req := esapi.IndexRequest{
		Index:      config.FormatIndex(c.config, "events"),
		DocumentID: event.EventID,
		Body:       bytes.NewReader(docJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.Errorf("failed to index event %s: %s", event.EventID, res.String())
	}

	log.Debug().Str("event_id", event.EventID).Msg("Event indexed")
	return nil
}

// SearchEvents runs a tenant-scoped term query over the audit index and
// returns the raw hits.
func (c *ElasticClient) SearchEvents(ctx context.Context, tenantID, aggregateID, eventType string, size int) ([]json.RawMessage, error) {
	must := []map[string]interface{}{
		{"term": map[string]interface{}{"tenant_id": tenantID}},
	}
	if aggregateID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"aggregate_id": aggregateID}})
	}
	if eventType != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"event_type": eventType}})
	}

	query := map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"sort":  []map[string]interface{}{{"occurred_at": map[string]interface{}{"order": "desc"}}},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(config.FormatIndex(c.config, "events")),
		c.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute Elasticsearch search")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.Errorf("event search failed: %s", res.String())
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read search response")
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, "failed to parse search response")
	}

	hits := make([]json.RawMessage, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		hits = append(hits, hit.Source)
	}
	return hits, nil
}
