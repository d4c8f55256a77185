package rabbitmq

import (
	"context"

	"ads-service/internal/core/domain"

	"github.com/google/uuid"
)

// NoopAdEventsAdapter используется, когда публикация событий выключена
type NoopAdEventsAdapter struct{}

func NewNoopAdEventsAdapter() *NoopAdEventsAdapter { return &NoopAdEventsAdapter{} }

func (NoopAdEventsAdapter) AdCreated(context.Context, domain.Ad) error { return nil }
func (NoopAdEventsAdapter) AdUpdated(context.Context, domain.Ad) error { return nil }
func (NoopAdEventsAdapter) AdDeleted(context.Context, uuid.UUID) error { return nil }
