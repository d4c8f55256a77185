package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ads-service/internal/constants"
	"ads-service/internal/contextkeys"
	"ads-service/internal/core/domain"
	"ads-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DTO события жизненного цикла объявления
type AdEventDTO struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       *float64           `json:"price,omitempty"`
	Category    *string            `json:"category,omitempty"`
	Location    *AdEventLocationDTO `json:"location,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type AdEventLocationDTO struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Geohash string   `json:"geohash,omitempty"`
}

// RabbitMQAdEventsAdapter публикует события объявлений в обменник
type RabbitMQAdEventsAdapter struct {
	producer *rabbitmq_producer.Publisher
}

// NewRabbitMQAdEventsAdapter создает новый экземпляр
func NewRabbitMQAdEventsAdapter(producer *rabbitmq_producer.Publisher) (*RabbitMQAdEventsAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	return &RabbitMQAdEventsAdapter{producer: producer}, nil
}

func (a *RabbitMQAdEventsAdapter) AdCreated(ctx context.Context, ad domain.Ad) error {
	return a.publishAd(ctx, constants.RoutingKeyAdCreated, "AdCreatedEvent", ad)
}

func (a *RabbitMQAdEventsAdapter) AdUpdated(ctx context.Context, ad domain.Ad) error {
	return a.publishAd(ctx, constants.RoutingKeyAdUpdated, "AdUpdatedEvent", ad)
}

func (a *RabbitMQAdEventsAdapter) AdDeleted(ctx context.Context, adID uuid.UUID) error {
	payload, err := json.Marshal(struct {
		ID string `json:"id"`
	}{ID: adID.String()})
	if err != nil {
		return fmt.Errorf("failed to marshal ad deleted event: %w", err)
	}
	return a.publish(ctx, constants.RoutingKeyAdDeleted, "AdDeletedEvent", payload)
}

func (a *RabbitMQAdEventsAdapter) publishAd(ctx context.Context, routingKey, eventType string, ad domain.Ad) error {
	eventDTO := AdEventDTO{
		ID:          ad.ID.String(),
		Title:       ad.Title,
		Description: ad.Description,
		Price:       ad.Price,
		Category:    ad.Category,
		CreatedAt:   ad.CreatedAt,
		UpdatedAt:   ad.UpdatedAt,
	}
	if ad.Location != nil {
		eventDTO.Location = &AdEventLocationDTO{
			Address: ad.Location.Address,
			Lat:     ad.Location.Lat,
			Lng:     ad.Location.Lng,
			Geohash: ad.Location.Geohash,
		}
	}

	payload, err := json.Marshal(eventDTO)
	if err != nil {
		return fmt.Errorf("failed to marshal ad event for ad %s: %w", ad.ID, err)
	}
	return a.publish(ctx, routingKey, eventType, payload)
}

func (a *RabbitMQAdEventsAdapter) publish(ctx context.Context, routingKey, eventType string, payload []byte) error {
	headers := amqp.Table{
		"event-type":    eventType,
		"event-version": "1.0.0",
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		headers["trace-id"] = traceID
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      headers,
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return a.producer.Publish(publishCtx, routingKey, msg)
}
