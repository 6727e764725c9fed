package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// TopicPageServed receives an event for every load-more page served.
var TopicPageServed = pkgkafka.Topic("storefront", "listing.page_served")

// AggregateTypeListing is the aggregate type of listing events.
const AggregateTypeListing = "listing"

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront-service"

// PageServedData is the payload of a listing.page_served event.
type PageServedData struct {
	Kind      domain.Kind `json:"kind"`
	Taxonomy  string      `json:"taxonomy"`
	Offset    int         `json:"offset"`
	Limit     int         `json:"limit"`
	Items     int         `json:"items"`
	Total     int         `json:"total"`
	HasMore   bool        `json:"has_more"`
	SessionID string      `json:"session_id,omitempty"`
	ItemSlugs []string    `json:"item_slugs"`
}

// Publisher publishes listing events.
type Publisher interface {
	PublishPageServed(ctx context.Context, data PageServedData) error
}

// Producer publishes listing events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishPageServed publishes a listing.page_served event keyed by kind.
func (p *Producer) PublishPageServed(ctx context.Context, data PageServedData) error {
	evt, err := pkgkafka.NewEvent(TopicPageServed, string(data.Kind), AggregateTypeListing, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create listing.page_served event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if data.Taxonomy != "" {
		evt.WithMetadata("taxonomy", data.Taxonomy)
	}

	if err := p.kafka.Publish(ctx, TopicPageServed, evt); err != nil {
		return fmt.Errorf("publish listing.page_served event: %w", err)
	}

	p.logger.DebugContext(ctx, "published listing.page_served event",
		slog.String("kind", string(data.Kind)),
		slog.Int("offset", data.Offset),
		slog.Int("items", data.Items),
	)
	return nil
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

// PublishPageServed does nothing.
func (NopPublisher) PublishPageServed(context.Context, PageServedData) error { return nil }
