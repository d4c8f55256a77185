package port

import (
	"context"

	"ads-service/internal/core/domain"

	"github.com/google/uuid"
)

// AdEventsPort - публикация событий жизненного цикла объявления.
// События best-effort: сбой публикации логируется, но не отменяет операцию.
type AdEventsPort interface {
	AdCreated(ctx context.Context, ad domain.Ad) error
	AdUpdated(ctx context.Context, ad domain.Ad) error
	AdDeleted(ctx context.Context, adID uuid.UUID) error
}
